// Package qrgen renders the scannable per-product images. It encodes the
// public scan URL for a product, optionally overlays a branding logo and a
// name/batch caption, and writes the result to an addressable path keyed by
// product id. Rendering is a side effect; nothing else in the system depends
// on its output for correctness.
package qrgen

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg"
	"image/png"
	"log"
	"os"
	"path/filepath"

	qrcode "github.com/skip2/go-qrcode"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"freshscan/models"
)

const (
	qrSize        = 512
	captionHeight = 56
)

// Uploader mirrors a generated image to remote storage. Optional.
type Uploader interface {
	Upload(objectName, filePath string) error
}

type Config struct {
	BaseURL   string
	OutputDir string
	// LogoPath is the optional branding asset. When the file is absent the
	// overlay is skipped silently.
	LogoPath string
}

type Generator struct {
	cfg      Config
	uploader Uploader
}

// New creates a Generator and ensures the output directory exists.
func New(cfg Config, uploader Uploader) (*Generator, error) {
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create qr output dir: %w", err)
	}
	return &Generator{cfg: cfg, uploader: uploader}, nil
}

// ImagePath returns the addressable path for a product's image.
func (g *Generator) ImagePath(productID uint) string {
	return filepath.Join(g.cfg.OutputDir, fmt.Sprintf("product_%d.png", productID))
}

// Generate renders the image for one product and returns the stored path.
func (g *Generator) Generate(productID uint, productName, batchID string) (string, error) {
	url := fmt.Sprintf("%s/product/%d", g.cfg.BaseURL, productID)

	code, err := qrcode.New(url, qrcode.High)
	if err != nil {
		return "", fmt.Errorf("encode qr for product %d: %w", productID, err)
	}

	canvas := image.NewRGBA(image.Rect(0, 0, qrSize, qrSize+captionHeight))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(canvas, image.Rect(0, 0, qrSize, qrSize), code.Image(qrSize), image.Point{}, draw.Src)

	g.overlayLogo(canvas)
	drawCaption(canvas, productName, "Batch: "+batchID)

	path := g.ImagePath(productID)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := png.Encode(f, canvas); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}

	if g.uploader != nil {
		// best effort: the local file is the source of truth
		if err := g.uploader.Upload(filepath.Base(path), path); err != nil {
			log.Printf("[qrgen] mirror upload of %s failed: %v", path, err)
		}
	}
	return path, nil
}

// GenerateAll regenerates the image for every given product and returns how
// many succeeded. Individual failures are logged and skipped so one bad
// record does not abort the batch.
func (g *Generator) GenerateAll(products []models.Product) int {
	generated := 0
	for _, p := range products {
		if _, err := g.Generate(p.ID, p.ProductName, p.BatchID); err != nil {
			log.Printf("[qrgen] product %d: %v", p.ID, err)
			continue
		}
		generated++
	}
	return generated
}

// overlayLogo centers the branding asset on a white backing square, a quarter
// of the code's width. High error correction leaves enough redundancy for the
// covered modules.
func (g *Generator) overlayLogo(canvas *image.RGBA) {
	if g.cfg.LogoPath == "" {
		return
	}
	f, err := os.Open(g.cfg.LogoPath)
	if err != nil {
		return // optional asset, skip silently
	}
	defer f.Close()
	logo, _, err := image.Decode(f)
	if err != nil {
		log.Printf("[qrgen] unreadable logo %s: %v", g.cfg.LogoPath, err)
		return
	}

	side := qrSize / 4
	pad := 4
	x0 := (qrSize - side) / 2
	y0 := (qrSize - side) / 2

	backing := image.Rect(x0-pad, y0-pad, x0+side+pad, y0+side+pad)
	draw.Draw(canvas, backing, image.White, image.Point{}, draw.Src)
	xdraw.ApproxBiLinear.Scale(canvas, image.Rect(x0, y0, x0+side, y0+side),
		logo, logo.Bounds(), xdraw.Over, nil)
}

// drawCaption prints the two caption lines centered in the strip below the
// code.
func drawCaption(canvas *image.RGBA, lines ...string) {
	face := basicfont.Face7x13
	lineHeight := face.Metrics().Height.Ceil() + 4
	y := qrSize + (captionHeight-lineHeight*len(lines))/2 + face.Metrics().Ascent.Ceil()

	for _, line := range lines {
		d := font.Drawer{
			Dst:  canvas,
			Src:  image.NewUniform(color.Black),
			Face: face,
		}
		width := d.MeasureString(line).Ceil()
		d.Dot = fixed.P((qrSize-width)/2, y)
		d.DrawString(line)
		y += lineHeight
	}
}
