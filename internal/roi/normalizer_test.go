package roi

import (
	"image"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_EmptyCrop(t *testing.T) {
	img := whiteRGBA(100, 100)

	_, err := Normalize(img, BoundingBox{X: 200, Y: 200, Width: 10, Height: 10})
	require.ErrorIs(t, err, ErrEmptyCrop)

	_, err = Normalize(img, BoundingBox{X: 10, Y: 10})
	require.ErrorIs(t, err, ErrEmptyCrop)

	_, err = Normalize(nil, FullImage(10, 10))
	require.ErrorIs(t, err, ErrEmptyCrop)
}

func TestNormalize_OutputIsBinaryCropSize(t *testing.T) {
	img := labelPhoto()
	box := BoundingBox{X: 200, Y: 100, Width: 400, Height: 400}

	p, err := Normalize(img, box)
	require.NoError(t, err)
	assert.Equal(t, 400, p.Width)
	assert.Equal(t, 400, p.Height)
	assert.Equal(t, image.Rect(0, 0, 400, 400), p.Gray.Rect)
	for _, v := range p.Gray.Pix {
		require.True(t, v == 0 || v == 255, "non-binary pixel %d", v)
	}

	// The top edge of a text row stays dark, open panel stays white.
	assert.Equal(t, uint8(0), p.Gray.GrayAt(90, 50).Y)
	assert.Equal(t, uint8(255), p.Gray.GrayAt(200, 30).Y)
}

func TestNormalize_ClampsPartialBox(t *testing.T) {
	p, err := Normalize(whiteRGBA(100, 80), BoundingBox{X: 60, Y: 40, Width: 100, Height: 100})
	require.NoError(t, err)
	assert.Equal(t, 40, p.Width)
	assert.Equal(t, 40, p.Height)
}

func TestNormalize_SubImageOrigin(t *testing.T) {
	img := labelPhoto()
	sub := img.SubImage(image.Rect(200, 100, 600, 500))

	a, err := Normalize(sub, BoundingBox{X: 0, Y: 0, Width: 400, Height: 400})
	require.NoError(t, err)
	b, err := Normalize(img, BoundingBox{X: 200, Y: 100, Width: 400, Height: 400})
	require.NoError(t, err)
	assert.Equal(t, b.Gray.Pix, a.Gray.Pix)
}

func TestNormalize_CleanStrokesAreFixedPoint(t *testing.T) {
	src := stripes(96, 64, 3, 12)

	first, err := Normalize(src, FullImage(96, 64))
	require.NoError(t, err)
	assert.Equal(t, src.Pix, first.Gray.Pix)

	second, err := Normalize(first.Gray, FullImage(96, 64))
	require.NoError(t, err)
	assert.Equal(t, first.Gray.Pix, second.Gray.Pix)
}

// TestNormalize_Deterministic verifies repeated normalization of the same input is identical.
func TestNormalize_Deterministic(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("same input yields same output", prop.ForAll(
		func(pix []uint8, w int) bool {
			h := len(pix) / w
			g := image.NewGray(image.Rect(0, 0, w, h))
			copy(g.Pix, pix)

			a, errA := Normalize(g, FullImage(w, h))
			b, errB := Normalize(g, FullImage(w, h))
			if errA != nil || errB != nil {
				return false
			}
			if len(a.Gray.Pix) != w*h {
				return false
			}
			for i := range a.Gray.Pix {
				if a.Gray.Pix[i] != b.Gray.Pix[i] {
					return false
				}
			}
			return true
		},
		gen.SliceOfN(360, gen.UInt8()),
		gen.OneConstOf(9, 12, 20, 30),
	))

	properties.TestingRun(t)
}

func TestCLAHE_UniformStaysUniform(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 64, 64))
	for i := range g.Pix {
		g.Pix[i] = 100
	}
	out := clahe(g, claheClipLimit, claheTiles, claheTiles)
	for _, v := range out.Pix {
		assert.Equal(t, uint8(108), v)
	}
}

func TestCLAHE_OddSizes(t *testing.T) {
	for _, size := range [][2]int{{3, 5}, {13, 7}, {100, 61}} {
		g := image.NewGray(image.Rect(0, 0, size[0], size[1]))
		for i := range g.Pix {
			g.Pix[i] = uint8(i * 7)
		}
		out := clahe(g, claheClipLimit, claheTiles, claheTiles)
		assert.Len(t, out.Pix, size[0]*size[1])
	}
}

func TestReflect101(t *testing.T) {
	assert.Equal(t, 0, reflect101(0, 5))
	assert.Equal(t, 3, reflect101(5, 5))
	assert.Equal(t, 2, reflect101(6, 5))
	assert.Equal(t, 1, reflect101(-1, 5))
	assert.Equal(t, 1, reflect101(7, 3))
	assert.Equal(t, 0, reflect101(9, 1))
}

func TestAdaptiveThreshold(t *testing.T) {
	src := stripes(24, 12, 3, 12)

	bin := adaptiveThreshold(src, thresholdBlock, thresholdC, false)
	assert.Equal(t, src.Pix, bin.Pix)

	inv := adaptiveThreshold(src, thresholdBlock, thresholdC, true)
	for i := range src.Pix {
		assert.Equal(t, 255-src.Pix[i], inv.Pix[i])
	}
}

func TestGaussianKernel(t *testing.T) {
	k := gaussianKernel(11)
	require.Len(t, k, 11)
	sum := 0.0
	for _, v := range k {
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-12)
	assert.InDelta(t, k[0], k[10], 1e-15)
	assert.Greater(t, k[5], k[4])
}
