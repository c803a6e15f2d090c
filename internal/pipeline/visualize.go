package pipeline

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/MeKo-Tech/nutrilabel/internal/utils"
)

// Default overlay colours.
const (
	DefaultBoxColor    = "#ff0000"
	DefaultRegionColor = "#00a0ff"
)

// ParseColor parses a "#rrggbb" colour.
func ParseColor(hex string) (color.Color, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return nil, fmt.Errorf("invalid colour %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

// RenderOverlay draws the ROI box, labelled with its source, and any text
// regions over an RGBA copy of img.
func RenderOverlay(img image.Image, res *Result, boxColor, regionColor color.Color) *image.RGBA {
	if img == nil {
		return nil
	}
	dst := utils.ToRGBA(img)
	if res == nil {
		return dst
	}
	for _, r := range res.TextRegions {
		utils.DrawRect(dst, r.Rect(), regionColor, 1)
	}
	if box := res.Provenance.ROIBox; box != nil {
		rect := box.Rect()
		utils.DrawRect(dst, rect, boxColor, 3)
		label := "ROI " + res.Provenance.ROISource
		pt := image.Pt(rect.Min.X+4, rect.Min.Y+4)
		if rect.Min.Y >= utils.LabelHeight+2 {
			pt.Y = rect.Min.Y - utils.LabelHeight - 2
		}
		bg := image.Rect(pt.X-1, pt.Y, pt.X+utils.LabelWidth(label)+1, pt.Y+utils.LabelHeight)
		draw.Draw(dst, bg.Intersect(dst.Bounds()), image.NewUniform(boxColor), image.Point{}, draw.Src)
		utils.DrawLabel(dst, pt, label, color.White)
	}
	return dst
}

// FitOverlay downsizes an overlay so its longer side is at most maxSide.
// Images already small enough are returned as is.
func FitOverlay(img image.Image, maxSide int) image.Image {
	b := img.Bounds()
	if maxSide <= 0 || (b.Dx() <= maxSide && b.Dy() <= maxSide) {
		return img
	}
	return imaging.Fit(img, maxSide, maxSide, imaging.Lanczos)
}
