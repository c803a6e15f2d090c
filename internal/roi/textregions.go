package roi

import (
	"image"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/effect"
)

const (
	textBlurRadius    = 2.0
	minTextRegionArea = 100.0
)

// DetectTextRegions finds blocks of dark text inside an already cropped
// region: blur, inverse adaptive threshold, two 3x3 dilations to merge glyphs
// into blocks, then outer contours larger than 100 px².
func DetectTextRegions(img image.Image) []BoundingBox {
	if img == nil || img.Bounds().Empty() {
		return nil
	}

	gray := toGray(effect.Grayscale(blur.Gaussian(img, textBlurRadius)))
	binary := adaptiveThreshold(gray, thresholdBlock, thresholdC, true)
	blocks := dilateN(binary, rectKernel(3, 3), 2)

	var cands []RegionCandidate
	for _, c := range externalContours(blocks) {
		if c.area > minTextRegionArea {
			cands = append(cands, newCandidate(c.box, c.area))
		}
	}
	sortCandidates(cands)

	out := make([]BoundingBox, len(cands))
	for i, c := range cands {
		out[i] = c.Box
	}
	return out
}
