package roi

import (
	"image"

	"github.com/disintegration/imaging"
)

// All grayscale planes handled inside this package are anchored at the origin
// with Stride == width; compactGray enforces that at the entry points.

// toGray converts img to 8-bit luminance using fixed-point BT.601 weights.
func toGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return compactGray(g)
	}

	src := imaging.Clone(img)
	w, h := src.Rect.Dx(), src.Rect.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := range h {
		row := src.Pix[y*src.Stride : y*src.Stride+w*4]
		for x := range w {
			r, g, b := uint32(row[x*4]), uint32(row[x*4+1]), uint32(row[x*4+2])
			out.Pix[y*w+x] = uint8((r*4899 + g*9617 + b*1868 + 8192) >> 14)
		}
	}
	return out
}

// compactGray returns g itself when it already satisfies the plane layout,
// otherwise an origin-anchored copy.
func compactGray(g *image.Gray) *image.Gray {
	w, h := g.Rect.Dx(), g.Rect.Dy()
	if g.Rect.Min == (image.Point{}) && g.Stride == w {
		return g
	}
	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := range h {
		off := g.PixOffset(g.Rect.Min.X, g.Rect.Min.Y+y)
		copy(out.Pix[y*w:(y+1)*w], g.Pix[off:off+w])
	}
	return out
}

func cloneGray(g *image.Gray) *image.Gray {
	out := image.NewGray(g.Rect)
	copy(out.Pix, g.Pix)
	return out
}

func dims(g *image.Gray) (int, int) { return g.Rect.Dx(), g.Rect.Dy() }

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// medianBlur3 applies a 3x3 median filter with replicated borders.
func medianBlur3(src *image.Gray) *image.Gray {
	w, h := dims(src)
	dst := image.NewGray(src.Rect)
	var win [9]uint8
	for y := range h {
		for x := range w {
			k := 0
			for dy := -1; dy <= 1; dy++ {
				yy := clampInt(y+dy, 0, h-1)
				for dx := -1; dx <= 1; dx++ {
					win[k] = src.Pix[yy*w+clampInt(x+dx, 0, w-1)]
					k++
				}
			}
			dst.Pix[y*w+x] = median9(&win)
		}
	}
	return dst
}

func median9(v *[9]uint8) uint8 {
	for i := 1; i < len(v); i++ {
		for j := i; j > 0 && v[j-1] > v[j]; j-- {
			v[j-1], v[j] = v[j], v[j-1]
		}
	}
	return v[4]
}
