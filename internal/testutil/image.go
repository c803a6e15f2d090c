package testutil

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// LabelConfig describes a synthetic photo of a nutrition table.
type LabelConfig struct {
	Width, Height int
	Panel         image.Rectangle // outer edge of the table frame
	Border        int             // frame thickness
	Background    color.Color
	PanelFill     color.Color
	Foreground    color.Color
	Lines         []string // drawn inside the panel, one per row
	LineSpacing   int
	Rotation      float64 // degrees counter-clockwise, applied last
}

// SampleLines is the text printed on the default label.
var SampleLines = []string{
	"Nutrition Facts",
	"Calories 250kcal",
	"Sodium 120mg",
	"Carbohydrate 30g",
	"Sugar 12g",
	"Fat 10g",
	"Protein 5g",
}

// DefaultLabelConfig returns an 800x600 photo with a light grey panel at
// (200,100)-(600,500) framed by a 2px black border.
func DefaultLabelConfig() LabelConfig {
	return LabelConfig{
		Width:       800,
		Height:      600,
		Panel:       image.Rect(200, 100, 600, 500),
		Border:      2,
		Background:  color.White,
		PanelFill:   color.Gray{Y: 240},
		Foreground:  color.Black,
		Lines:       SampleLines,
		LineSpacing: 40,
	}
}

// GenerateLabelImage renders cfg.
func GenerateLabelImage(cfg LabelConfig) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, cfg.Width, cfg.Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(cfg.Background), image.Point{}, draw.Src)

	if !cfg.Panel.Empty() {
		draw.Draw(img, cfg.Panel, image.NewUniform(cfg.Foreground), image.Point{}, draw.Src)
		inner := cfg.Panel.Inset(cfg.Border)
		draw.Draw(img, inner, image.NewUniform(cfg.PanelFill), image.Point{}, draw.Src)

		face := basicfont.Face7x13
		d := &font.Drawer{Dst: img, Src: image.NewUniform(cfg.Foreground), Face: face}
		spacing := cfg.LineSpacing
		if spacing <= 0 {
			spacing = face.Metrics().Height.Ceil() * 2
		}
		x := inner.Min.X + 30
		for i, line := range cfg.Lines {
			y := inner.Min.Y + 30 + i*spacing
			if y+face.Descent >= inner.Max.Y-10 {
				break
			}
			d.Dot = fixed.P(x, y+face.Ascent)
			d.DrawString(line)
		}
	}

	if cfg.Rotation != 0 {
		rotated := imaging.Rotate(img, cfg.Rotation, cfg.Background)
		rgba := image.NewRGBA(image.Rect(0, 0, rotated.Bounds().Dx(), rotated.Bounds().Dy()))
		draw.Draw(rgba, rgba.Bounds(), rotated, rotated.Bounds().Min, draw.Src)
		return rgba
	}
	return img
}

// LabelImage renders the default label.
func LabelImage() *image.RGBA {
	return GenerateLabelImage(DefaultLabelConfig())
}

// BlankImage returns a w x h image of a single colour.
func BlankImage(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

// EncodePNG returns img as PNG bytes.
func EncodePNG(t testing.TB, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// SaveImage saves an image as PNG to the specified path.
func SaveImage(t testing.TB, img image.Image, path string) {
	t.Helper()
	require.NoError(t, EnsureDir(filepath.Dir(path)))
	require.NoError(t, os.WriteFile(path, EncodePNG(t, img), 0o600))
}
