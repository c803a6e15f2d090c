package roi

import (
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// ErrEmptyCrop is returned when the requested region has no pixels inside
// the image.
var ErrEmptyCrop = errors.New("roi: empty crop")

// Crop returns the part of img under box as a new origin-anchored image. Box
// coordinates are relative to img.Bounds().Min.
func Crop(img image.Image, box BoundingBox) (image.Image, error) {
	if img == nil {
		return nil, ErrEmptyCrop
	}
	b := img.Bounds()
	clamped, ok := box.Clamp(b.Dx(), b.Dy())
	if !ok {
		return nil, fmt.Errorf("%w: box %s outside %dx%d image", ErrEmptyCrop, box, b.Dx(), b.Dy())
	}
	return imaging.Crop(img, clamped.Rect().Add(b.Min)), nil
}

// Normalize crops img to box and turns the crop into a clean binary image:
// 3x3 median, CLAHE (clip 2.0, 8x8 tiles), Gaussian adaptive threshold
// (block 11, C 2) and a 2x2 closing to reconnect thin strokes.
func Normalize(img image.Image, box BoundingBox) (*ProcessedImage, error) {
	crop, err := Crop(img, box)
	if err != nil {
		return nil, err
	}
	return newProcessedImage(normalizeGray(toGray(crop))), nil
}

func normalizeGray(gray *image.Gray) *image.Gray {
	eq := clahe(medianBlur3(gray), claheClipLimit, claheTiles, claheTiles)
	bin := adaptiveThreshold(eq, thresholdBlock, thresholdC, false)
	return closing(bin, rectKernel(2, 2))
}
