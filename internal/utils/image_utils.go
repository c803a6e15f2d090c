package utils

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// CropImageRect crops an image to the given rectangle.
func CropImageRect(img image.Image, rect image.Rectangle) image.Image {
	rect = rect.Intersect(img.Bounds())
	if rect.Empty() {
		return imaging.New(0, 0, color.Transparent)
	}
	return imaging.Crop(img, rect)
}

// DrawRect draws an axis-aligned rectangle outline into dst.
func DrawRect(dst draw.Image, rect image.Rectangle, col color.Color, thickness int) {
	if thickness < 1 {
		thickness = 1
	}
	rect = rect.Intersect(dst.Bounds())
	if rect.Empty() {
		return
	}
	src := image.NewUniform(col)
	t := min(thickness, (rect.Dx()+1)/2, (rect.Dy()+1)/2)
	// Top and bottom edges
	draw.Draw(dst, image.Rect(rect.Min.X, rect.Min.Y, rect.Max.X, rect.Min.Y+t), src, image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(rect.Min.X, rect.Max.Y-t, rect.Max.X, rect.Max.Y), src, image.Point{}, draw.Src)
	// Left and right edges
	draw.Draw(dst, image.Rect(rect.Min.X, rect.Min.Y, rect.Min.X+t, rect.Max.Y), src, image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(rect.Max.X-t, rect.Min.Y, rect.Max.X, rect.Max.Y), src, image.Point{}, draw.Src)
}

// LabelHeight is the pixel height of a line drawn by DrawLabel.
const LabelHeight = 13

// DrawLabel writes text with its top-left corner at pt using the built-in
// 7x13 bitmap face. Only ASCII renders; other runes show as boxes.
func DrawLabel(dst draw.Image, pt image.Point, text string, col color.Color) {
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(pt.X, pt.Y+face.Ascent),
	}
	d.DrawString(text)
}

// LabelWidth returns the pixel width DrawLabel uses for text.
func LabelWidth(text string) int {
	return font.MeasureString(basicfont.Face7x13, text).Ceil()
}
