package roi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectTextRegions(t *testing.T) {
	crop, err := Crop(labelPhoto(), BoundingBox{X: 210, Y: 110, Width: 380, Height: 380})
	require.NoError(t, err)

	regions := DetectTextRegions(crop)
	require.NotEmpty(t, regions)
	for _, r := range regions {
		assert.True(t, r.Valid(380, 380), "region %v outside crop", r)
	}
	for i := 1; i < len(regions); i++ {
		assert.LessOrEqual(t, regions[i-1].Y, regions[i].Y)
	}
}

func TestDetectTextRegions_Inputs(t *testing.T) {
	t.Run("blank", func(t *testing.T) {
		assert.Empty(t, DetectTextRegions(whiteRGBA(200, 120)))
	})

	t.Run("gray", func(t *testing.T) {
		crop, err := Crop(labelPhoto(), BoundingBox{X: 210, Y: 110, Width: 380, Height: 380})
		require.NoError(t, err)
		regions := DetectTextRegions(toGray(crop))
		require.NotEmpty(t, regions)
		for _, r := range regions {
			assert.True(t, r.Valid(380, 380), "region %v outside crop", r)
		}
	})
}

func TestDetectTextRegions_Nil(t *testing.T) {
	assert.Nil(t, DetectTextRegions(nil))
}

func TestNewBackend(t *testing.T) {
	for _, name := range []string{"", "native", " NATIVE "} {
		b, err := NewBackend(name)
		require.NoError(t, err)
		assert.Equal(t, BackendNative, b.Name())
	}

	_, err := NewBackend("opencl")
	assert.Error(t, err)
}

func TestNativeBackend(t *testing.T) {
	b := NativeBackend{}
	img := labelPhoto()

	cands, err := b.DetectCandidates(img)
	require.NoError(t, err)
	assert.Equal(t, DetectCandidates(img), cands)

	p, err := b.Normalize(img, FullImage(800, 600))
	require.NoError(t, err)
	assert.Equal(t, 800, p.Width)
}
