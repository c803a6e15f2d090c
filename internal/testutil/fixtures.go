package testutil

import (
	"image"
	"image/color"
)

// ROIFixture is a synthetic photo with the region the detector is expected
// to find. Expected is empty when no region should qualify.
type ROIFixture struct {
	Name      string
	Image     image.Image
	Expected  image.Rectangle
	Tolerance int
}

// ROIFixtures returns the synthetic detection accuracy set.
func ROIFixtures() []ROIFixture {
	wide := DefaultLabelConfig()
	wide.Panel = image.Rect(100, 200, 700, 500)

	portrait := DefaultLabelConfig()
	portrait.Panel = image.Rect(250, 60, 550, 460)

	return []ROIFixture{
		{Name: "centered panel", Image: LabelImage(), Expected: image.Rect(200, 100, 600, 500), Tolerance: 4},
		{Name: "wide panel", Image: GenerateLabelImage(wide), Expected: wide.Panel, Tolerance: 4},
		{Name: "portrait panel", Image: GenerateLabelImage(portrait), Expected: portrait.Panel, Tolerance: 4},
		{Name: "blank canvas", Image: BlankImage(800, 600, color.White)},
	}
}
