// Package roi locates the nutrition table inside a photo and prepares the
// cropped region for text recognition.
package roi

import (
	"fmt"
	"image"
	"strconv"
	"strings"
)

// BoundingBox is an axis-aligned rectangle given by its top-left corner and
// size, in pixels relative to the image origin.
type BoundingBox struct {
	X      int `json:"x" yaml:"x"`
	Y      int `json:"y" yaml:"y"`
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// FullImage returns the box covering an entire width x height image.
func FullImage(width, height int) BoundingBox {
	return BoundingBox{Width: width, Height: height}
}

// BoxFromRect converts an image rectangle into a box.
func BoxFromRect(r image.Rectangle) BoundingBox {
	r = r.Canon()
	return BoundingBox{X: r.Min.X, Y: r.Min.Y, Width: r.Dx(), Height: r.Dy()}
}

// Rect returns the box as an image rectangle.
func (b BoundingBox) Rect() image.Rectangle {
	return image.Rect(b.X, b.Y, b.X+b.Width, b.Y+b.Height)
}

// Area returns the box area in pixels.
func (b BoundingBox) Area() int { return b.Width * b.Height }

// Empty reports whether the box has no area.
func (b BoundingBox) Empty() bool { return b.Width <= 0 || b.Height <= 0 }

// Valid reports whether the box has positive size and lies fully inside a
// width x height image.
func (b BoundingBox) Valid(width, height int) bool {
	return b.X >= 0 && b.Y >= 0 && b.Width > 0 && b.Height > 0 &&
		b.X+b.Width <= width && b.Y+b.Height <= height
}

// Clamp intersects the box with a width x height image. The second result is
// false when nothing of the box remains.
func (b BoundingBox) Clamp(width, height int) (BoundingBox, bool) {
	r := b.Rect().Intersect(image.Rect(0, 0, width, height))
	if r.Empty() {
		return BoundingBox{}, false
	}
	return BoxFromRect(r), true
}

func (b BoundingBox) String() string {
	return fmt.Sprintf("%d,%d,%d,%d", b.X, b.Y, b.Width, b.Height)
}

// ParseBoundingBox reads a box written as "x,y,width,height".
func ParseBoundingBox(s string) (BoundingBox, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return BoundingBox{}, fmt.Errorf("bounding box %q: want x,y,width,height", s)
	}
	var vals [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return BoundingBox{}, fmt.Errorf("bounding box %q: %w", s, err)
		}
		vals[i] = n
	}
	b := BoundingBox{X: vals[0], Y: vals[1], Width: vals[2], Height: vals[3]}
	if b.Empty() {
		return BoundingBox{}, fmt.Errorf("bounding box %q: width and height must be positive", s)
	}
	return b, nil
}

// RegionCandidate is one closed contour found in the edge map.
type RegionCandidate struct {
	Box BoundingBox `json:"box"`
	// Area is the area enclosed by the contour, not the box area.
	Area        float64 `json:"area"`
	AspectRatio float64 `json:"aspect_ratio"`
}

func newCandidate(box BoundingBox, area float64) RegionCandidate {
	c := RegionCandidate{Box: box, Area: area}
	if box.Height > 0 {
		c.AspectRatio = float64(box.Width) / float64(box.Height)
	}
	return c
}

// ProcessedImage is the single-channel output of normalization.
type ProcessedImage struct {
	Gray   *image.Gray
	Width  int
	Height int
}

func newProcessedImage(g *image.Gray) *ProcessedImage {
	return &ProcessedImage{Gray: g, Width: g.Rect.Dx(), Height: g.Rect.Dy()}
}
