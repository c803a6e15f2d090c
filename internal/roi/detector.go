package roi

import (
	"image"
	"log/slog"
	"sort"
)

// DetectCandidates finds closed outer contours in img that may enclose a
// nutrition table. The image is converted to grayscale, denoised with a 3x3
// median, edge-detected (Canny 50/150) and closed with a 3x3 element to bridge
// broken borders. Candidates are ordered top-to-bottom, then left-to-right.
//
// A blank or edge-free image yields no candidates.
func DetectCandidates(img image.Image) []RegionCandidate {
	if img == nil || img.Bounds().Empty() {
		return nil
	}

	gray := toGray(img)
	edges := canny(medianBlur3(gray), cannyLow, cannyHigh)
	closed := closing(edges, rectKernel(3, 3))

	contours := externalContours(closed)
	cands := make([]RegionCandidate, 0, len(contours))
	for _, c := range contours {
		cands = append(cands, newCandidate(c.box, c.area))
	}
	sortCandidates(cands)

	slog.Debug("region candidates detected",
		"width", gray.Rect.Dx(), "height", gray.Rect.Dy(), "candidates", len(cands))
	return cands
}

func sortCandidates(cands []RegionCandidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		a, b := cands[i].Box, cands[j].Box
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.X < b.X
	})
}
