// Package freshness classifies a product's expiry date into a freshness tier.
// Classification is a pure function of the expiry date, a reference "now" and
// two configured thresholds; it performs no I/O and is never persisted.
package freshness

import "time"

// DateLayout is the calendar-date format used throughout the system.
// Dates carry no time-of-day component.
const DateLayout = "2006-01-02"

// Tier is the freshness classification of a product.
type Tier string

const (
	TierSafe       Tier = "SAFE"
	TierNearExpiry Tier = "NEAR_EXPIRY"
	TierExpired    Tier = "EXPIRED"
)

// Thresholds holds the two day counts that bound the tiers.
type Thresholds struct {
	// ExpiredDays: remaining days strictly below this are EXPIRED.
	ExpiredDays int
	// NearExpiryDays: remaining days up to and including this are NEAR_EXPIRY.
	NearExpiryDays int
}

// DefaultThresholds returns the stock configuration: anything past its expiry
// date is EXPIRED, anything within three days is NEAR_EXPIRY.
func DefaultThresholds() Thresholds {
	return Thresholds{ExpiredDays: 0, NearExpiryDays: 3}
}

// Style is the presentation pair associated with a tier.
type Style struct {
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

// StyleTable maps each tier to its color/icon tokens. Supplied by
// configuration so presentation can be restyled without touching the
// classifier.
type StyleTable map[Tier]Style

func DefaultStyles() StyleTable {
	return StyleTable{
		TierSafe:       {Color: "#28a745", Icon: "✅"},
		TierNearExpiry: {Color: "#ffc107", Icon: "⚠️"},
		TierExpired:    {Color: "#dc3545", Icon: "❌"},
	}
}

// Status is the derived freshness of a single product. It is recomputed on
// every read and never stored.
type Status struct {
	RemainingDays int    `json:"remaining_days"`
	Tier          Tier   `json:"status"`
	Color         string `json:"color"`
	Icon          string `json:"icon"`
}

// Classify maps an expiry date and a reference time to a freshness status.
// Tiers are checked in order, first match wins:
//
//	remaining < ExpiredDays      -> EXPIRED
//	remaining <= NearExpiryDays  -> NEAR_EXPIRY
//	otherwise                    -> SAFE
func Classify(expiry, now time.Time, th Thresholds, styles StyleTable) Status {
	remaining := DaysUntil(now, expiry)

	var tier Tier
	switch {
	case remaining < th.ExpiredDays:
		tier = TierExpired
	case remaining <= th.NearExpiryDays:
		tier = TierNearExpiry
	default:
		tier = TierSafe
	}

	style := styles[tier]
	return Status{
		RemainingDays: remaining,
		Tier:          tier,
		Color:         style.Color,
		Icon:          style.Icon,
	}
}

// ClassifyDate is Classify for an expiry date in DateLayout form.
func ClassifyDate(expiryDate string, now time.Time, th Thresholds, styles StyleTable) (Status, error) {
	expiry, err := ParseDate(expiryDate)
	if err != nil {
		return Status{}, err
	}
	return Classify(expiry, now, th, styles), nil
}

// ParseDate parses a calendar date in DateLayout form.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// DaysUntil returns the whole calendar days from now to expiry, negative when
// expiry is in the past. Both inputs are truncated to their calendar date
// first, so the result is independent of time of day.
func DaysUntil(now, expiry time.Time) int {
	a := truncateToDate(now)
	b := truncateToDate(expiry)
	return int(b.Sub(a).Hours() / 24)
}

func truncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DateWindows are the date-string bounds the aggregate queries filter on.
// They are derived from the same thresholds Classify uses, which keeps the
// stats counts and the per-product classification consistent:
//
//	expiry <  ExpiredBefore            -> EXPIRED
//	ExpiredBefore <= expiry <= NearUntil -> NEAR_EXPIRY
//	expiry >  NearUntil                -> SAFE
type DateWindows struct {
	ExpiredBefore string
	NearUntil     string
}

// Windows returns the tier boundaries as dates relative to now.
func (th Thresholds) Windows(now time.Time) DateWindows {
	day := truncateToDate(now)
	return DateWindows{
		ExpiredBefore: day.AddDate(0, 0, th.ExpiredDays).Format(DateLayout),
		NearUntil:     day.AddDate(0, 0, th.NearExpiryDays).Format(DateLayout),
	}
}
