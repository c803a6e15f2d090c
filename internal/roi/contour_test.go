package roi

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExternalContours_FilledRectangle(t *testing.T) {
	mask := grayFromRows(
		"........",
		".####...",
		".####...",
		".####...",
		"........",
	)

	cs := externalContours(mask)
	require.Len(t, cs, 1)
	assert.Equal(t, BoundingBox{X: 1, Y: 1, Width: 4, Height: 3}, cs[0].box)
	assert.InDelta(t, 6.0, cs[0].area, 1e-9) // 3 x 2 between pixel centers
	assert.Subset(t, cs[0].points, []image.Point{{1, 1}, {4, 1}, {4, 3}, {1, 3}})
	assert.NotContains(t, cs[0].points, image.Point{2, 1})
}

func TestExternalContours_NestedComponentsDropped(t *testing.T) {
	mask := grayFromRows(
		"..........",
		".########.",
		".#......#.",
		".#..##..#.",
		".#..##..#.",
		".#......#.",
		".########.",
		"..........",
	)

	cs := externalContours(mask)
	require.Len(t, cs, 1)
	assert.Equal(t, BoundingBox{X: 1, Y: 1, Width: 8, Height: 6}, cs[0].box)
	assert.InDelta(t, 35.0, cs[0].area, 1e-9)
}

func TestExternalContours_TouchingBorder(t *testing.T) {
	mask := grayFromRows(
		"##....",
		"##....",
		"......",
		"....##",
	)

	cs := externalContours(mask)
	require.Len(t, cs, 2)
	assert.Equal(t, BoundingBox{X: 0, Y: 0, Width: 2, Height: 2}, cs[0].box)
	assert.Equal(t, BoundingBox{X: 4, Y: 3, Width: 2, Height: 1}, cs[1].box)
	assert.Zero(t, cs[1].area)
}

func TestExternalContours_DiagonalIsOneComponent(t *testing.T) {
	mask := grayFromRows(
		"#...",
		".#..",
		"..#.",
		"...#",
	)
	cs := externalContours(mask)
	require.Len(t, cs, 1)
	assert.Equal(t, BoundingBox{X: 0, Y: 0, Width: 4, Height: 4}, cs[0].box)
}

func TestExternalContours_SinglePixelAndEmpty(t *testing.T) {
	cs := externalContours(grayFromRows("...", ".#.", "..."))
	require.Len(t, cs, 1)
	assert.Equal(t, []image.Point{{1, 1}}, cs[0].points)
	assert.Zero(t, cs[0].area)

	assert.Empty(t, externalContours(grayFromRows("...", "...")))
}

func TestPolygonArea(t *testing.T) {
	assert.Equal(t, 0.0, polygonArea(nil))
	assert.Equal(t, 0.0, polygonArea([]image.Point{{0, 0}, {1, 1}}))
	assert.Equal(t, 12.0, polygonArea([]image.Point{{0, 0}, {4, 0}, {4, 3}, {0, 3}}))
	assert.Equal(t, 12.0, polygonArea([]image.Point{{0, 0}, {0, 3}, {4, 3}, {4, 0}}))
	assert.Equal(t, 2.0, polygonArea([]image.Point{{0, 0}, {2, 0}, {0, 2}}))
}
