// Package config resolves the runtime configuration from the environment
// once at startup.
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"freshscan/freshness"
)

const (
	BrandName = "FreshScan"
	Tagline   = "Scan Safe, Eat Fresh"
	Version   = "1.0.0"
)

type Config struct {
	Port string
	// BaseURL is embedded in every generated QR image. Defaults to the
	// machine's LAN address so codes scanned by a phone on the same network
	// resolve.
	BaseURL string

	Thresholds freshness.Thresholds
	Styles     freshness.StyleTable

	QROutputDir string
	QRLogoPath  string
}

func Load() Config {
	port := getenv("PORT", "5003")

	baseURL := getenv("BASE_URL", "")
	if baseURL == "" {
		baseURL = fmt.Sprintf("http://%s:%s", LocalIP(), port)
	}
	baseURL = strings.TrimRight(baseURL, "/")

	return Config{
		Port:        port,
		BaseURL:     baseURL,
		Thresholds:  loadThresholds(),
		Styles:      loadStyles(),
		QROutputDir: getenv("QR_OUTPUT_DIR", "static/qrcodes"),
		QRLogoPath:  getenv("QR_LOGO_PATH", "static/images/logo.png"),
	}
}

func loadThresholds() freshness.Thresholds {
	th := freshness.DefaultThresholds()
	if v, err := strconv.Atoi(getenv("EXPIRED_THRESHOLD", "")); err == nil {
		th.ExpiredDays = v
	}
	if v, err := strconv.Atoi(getenv("NEAR_EXPIRY_THRESHOLD", "")); err == nil {
		th.NearExpiryDays = v
	}
	return th
}

func loadStyles() freshness.StyleTable {
	styles := freshness.DefaultStyles()
	override := func(tier freshness.Tier, colorKey, iconKey string) {
		s := styles[tier]
		if v := os.Getenv(colorKey); v != "" {
			s.Color = v
		}
		if v := os.Getenv(iconKey); v != "" {
			s.Icon = v
		}
		styles[tier] = s
	}
	override(freshness.TierSafe, "STATUS_COLOR_SAFE", "STATUS_ICON_SAFE")
	override(freshness.TierNearExpiry, "STATUS_COLOR_NEAR_EXPIRY", "STATUS_ICON_NEAR_EXPIRY")
	override(freshness.TierExpired, "STATUS_COLOR_EXPIRED", "STATUS_ICON_EXPIRED")
	return styles
}

// LocalIP discovers the outbound interface address. No packets are sent; the
// dial just resolves the local endpoint. Falls back to loopback.
func LocalIP() string {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "127.0.0.1"
	}
	defer conn.Close()
	if addr, ok := conn.LocalAddr().(*net.UDPAddr); ok {
		return addr.IP.String()
	}
	return "127.0.0.1"
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return strings.TrimSpace(v)
	}
	return def
}
