package roi

import (
	"image"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestClosing_BridgesGap(t *testing.T) {
	mask := grayFromRows(
		"..........",
		"..........",
		"..###.##..",
		"..........",
		"..........",
	)
	got := closing(mask, rectKernel(3, 3))
	assert.Equal(t, grayFromRows(
		"..........",
		"..........",
		"..######..",
		"..........",
		"..........",
	).Pix, got.Pix)
}

func TestClosing_EvenKernelStaysRegistered(t *testing.T) {
	src := stripes(24, 6, 3, 12)
	got := closing(src, rectKernel(2, 2))
	assert.Equal(t, src.Pix, got.Pix)

	// A one pixel dark line away from the border is narrower than the
	// element and disappears.
	thin := stripes(24, 6, 1, 12)
	closed := closing(thin, rectKernel(2, 2))
	for y := range 6 {
		assert.Equal(t, uint8(255), closed.Pix[y*24+12])
	}
}

func TestDilateErode(t *testing.T) {
	mask := grayFromRows(
		".....",
		".....",
		"..#..",
		".....",
		".....",
	)
	d := dilate(mask, rectKernel(3, 3))
	assert.Equal(t, grayFromRows(
		".....",
		".###.",
		".###.",
		".###.",
		".....",
	).Pix, d.Pix)
	assert.Equal(t, mask.Pix, erode(d, rectKernel(3, 3)).Pix)

	d2 := dilateN(mask, rectKernel(3, 3), 2)
	for _, v := range d2.Pix {
		assert.Equal(t, uint8(255), v)
	}
}

// TestClosing_Properties verifies closing is extensive and idempotent.
func TestClosing_Properties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	build := func(bits []bool, w int) *image.Gray {
		h := len(bits) / w
		g := image.NewGray(image.Rect(0, 0, w, h))
		for i := range w * h {
			if bits[i] {
				g.Pix[i] = 255
			}
		}
		return g
	}

	properties.Property("closing never darkens and is idempotent", prop.ForAll(
		func(bits []bool, w, ks int) bool {
			src := build(bits, w)
			k := rectKernel(ks, ks)
			once := closing(src, k)
			for i := range src.Pix {
				if once.Pix[i] < src.Pix[i] {
					return false
				}
			}
			twice := closing(once, k)
			for i := range once.Pix {
				if twice.Pix[i] != once.Pix[i] {
					return false
				}
			}
			return true
		},
		gen.SliceOfN(144, gen.Bool()),
		gen.OneConstOf(6, 8, 12),
		gen.IntRange(2, 3),
	))

	properties.TestingRun(t)
}
