package roi

import (
	"image"
	"image/color"
	"image/draw"
)

func whiteRGBA(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	return img
}

func fillRect(img draw.Image, r image.Rectangle, c color.Color) {
	draw.Draw(img, r, image.NewUniform(c), image.Point{}, draw.Src)
}

// framedPanel draws a black frame of the given thickness whose outer edge is r.
func framedPanel(img draw.Image, r image.Rectangle, thickness int) {
	fillRect(img, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+thickness), color.Black)
	fillRect(img, image.Rect(r.Min.X, r.Max.Y-thickness, r.Max.X, r.Max.Y), color.Black)
	fillRect(img, image.Rect(r.Min.X, r.Min.Y, r.Min.X+thickness, r.Max.Y), color.Black)
	fillRect(img, image.Rect(r.Max.X-thickness, r.Min.Y, r.Max.X, r.Max.Y), color.Black)
}

// labelPhoto is an 800x600 white photo with one framed panel at
// (200,100)-(600,500) and a few dark text rows inside it.
func labelPhoto() *image.RGBA {
	img := whiteRGBA(800, 600)
	framedPanel(img, image.Rect(200, 100, 600, 500), 3)
	for i := range 5 {
		y := 150 + i*60
		fillRect(img, image.Rect(240, y, 340, y+12), color.Black)
		fillRect(img, image.Rect(460, y, 520, y+12), color.Black)
	}
	return img
}

func grayFromRows(rows ...string) *image.Gray {
	h := len(rows)
	w := len(rows[0])
	g := image.NewGray(image.Rect(0, 0, w, h))
	for y, row := range rows {
		for x, ch := range row {
			if ch == '#' {
				g.Pix[y*w+x] = 255
			}
		}
	}
	return g
}

// stripes returns a white w x h image with full-height black stripes of the
// given width every period pixels, starting at x=0.
func stripes(w, h, width, period int) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			if x%period >= width {
				g.Pix[y*w+x] = 255
			}
		}
	}
	return g
}
