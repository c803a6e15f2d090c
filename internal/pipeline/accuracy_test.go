package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/nutrilabel/internal/testutil"
)

// Synthetic photos with a known table position.
func TestROIAccuracy_Synthetic(t *testing.T) {
	p := newTestPipeline(t, &fakeEngine{fragments: []string{"x"}})

	for _, f := range testutil.ROIFixtures() {
		t.Run(f.Name, func(t *testing.T) {
			res, err := p.Process(context.Background(), Input{Name: f.Name, Image: f.Image})
			require.NoError(t, err)
			box := res.Provenance.ROIBox
			require.NotNil(t, box)

			if f.Expected.Empty() {
				assert.Equal(t, SourceFallback, res.Provenance.ROISource)
				assert.Equal(t, f.Image.Bounds(), box.Rect())
				return
			}
			assert.Equal(t, SourceDetected, res.Provenance.ROISource)
			got := box.Rect()
			tol := float64(f.Tolerance)
			assert.InDelta(t, f.Expected.Min.X, got.Min.X, tol, "min x")
			assert.InDelta(t, f.Expected.Min.Y, got.Min.Y, tol, "min y")
			assert.InDelta(t, f.Expected.Max.X, got.Max.X, tol, "max x")
			assert.InDelta(t, f.Expected.Max.Y, got.Max.Y, tol, "max y")
		})
	}
}
