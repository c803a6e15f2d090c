package roi

import "log/slog"

// Selection thresholds applied to every candidate, in this order.
const (
	MinCandidateArea = 1000.0
	MinAspectRatio   = 0.3
	MaxAspectRatio   = 3.0
	MinAreaFraction  = 0.05
)

// rejection returns why a candidate cannot be the table, or "" when it can.
func rejection(c RegionCandidate, imageArea float64) string {
	switch {
	case c.Area < MinCandidateArea:
		return "area"
	case c.AspectRatio < MinAspectRatio || c.AspectRatio > MaxAspectRatio:
		return "aspect"
	case c.Area < imageArea*MinAreaFraction:
		return "fraction"
	}
	return ""
}

// SelectRegion picks the largest eligible candidate for a width x height
// image. On equal areas the earlier candidate wins. The box is clamped to the
// image; ok is false when nothing qualifies and the caller should fall back to
// the full image.
func SelectRegion(cands []RegionCandidate, width, height int) (box BoundingBox, ok bool) {
	imageArea := float64(width) * float64(height)
	best := -1
	for i, c := range cands {
		if reason := rejection(c, imageArea); reason != "" {
			slog.Debug("region candidate rejected", "box", c.Box.String(), "area", c.Area, "reason", reason)
			continue
		}
		if best < 0 || c.Area > cands[best].Area {
			best = i
		}
	}
	if best < 0 {
		return BoundingBox{}, false
	}
	return cands[best].Box.Clamp(width, height)
}
