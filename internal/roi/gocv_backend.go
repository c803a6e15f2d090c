//go:build gocv

package roi

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"gocv.io/x/gocv"
)

func newGocvBackend() (Backend, error) { return &gocvBackend{}, nil }

// gocvBackend runs the same stages through OpenCV.
type gocvBackend struct{}

func (b *gocvBackend) Name() string { return BackendGocv }

func (b *gocvBackend) DetectCandidates(img image.Image) ([]RegionCandidate, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, nil
	}
	gray, err := grayMat(img)
	if err != nil {
		return nil, err
	}
	defer gray.Close()

	denoised := gocv.NewMat()
	defer denoised.Close()
	gocv.MedianBlur(gray, &denoised, 3)

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(denoised, &edges, cannyLow, cannyHigh)

	k := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(3, 3))
	defer k.Close()
	closed := gocv.NewMat()
	defer closed.Close()
	gocv.MorphologyEx(edges, &closed, gocv.MorphClose, k)

	contours := gocv.FindContours(closed, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	cands := make([]RegionCandidate, 0, contours.Size())
	for i := 0; i < contours.Size(); i++ {
		c := contours.At(i)
		cands = append(cands, newCandidate(BoxFromRect(gocv.BoundingRect(c)), gocv.ContourArea(c)))
	}
	sortCandidates(cands)
	return cands, nil
}

func (b *gocvBackend) Normalize(img image.Image, box BoundingBox) (*ProcessedImage, error) {
	crop, err := Crop(img, box)
	if err != nil {
		return nil, err
	}
	gray, err := grayMat(crop)
	if err != nil {
		return nil, err
	}
	defer gray.Close()

	denoised := gocv.NewMat()
	defer denoised.Close()
	gocv.MedianBlur(gray, &denoised, 3)

	clahe := gocv.NewCLAHEWithParams(claheClipLimit, image.Pt(claheTiles, claheTiles))
	defer clahe.Close()
	enhanced := gocv.NewMat()
	defer enhanced.Close()
	clahe.Apply(denoised, &enhanced)

	binary := gocv.NewMat()
	defer binary.Close()
	gocv.AdaptiveThreshold(enhanced, &binary, 255, gocv.AdaptiveThresholdGaussian,
		gocv.ThresholdBinary, thresholdBlock, thresholdC)

	k := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(2, 2))
	defer k.Close()
	closed := gocv.NewMat()
	defer closed.Close()
	gocv.MorphologyEx(binary, &closed, gocv.MorphClose, k)

	out, err := closed.ToImage()
	if err != nil {
		return nil, fmt.Errorf("roi: convert normalized mat: %w", err)
	}
	g, ok := out.(*image.Gray)
	if !ok {
		return nil, fmt.Errorf("roi: unexpected mat image type %T", out)
	}
	return newProcessedImage(compactGray(g)), nil
}

func grayMat(img image.Image) (gocv.Mat, error) {
	rgba := imaging.Clone(img)
	b := rgba.Bounds()
	mat, err := gocv.NewMatFromBytes(b.Dy(), b.Dx(), gocv.MatTypeCV8UC4, rgba.Pix)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("roi: build mat: %w", err)
	}
	defer mat.Close()

	gray := gocv.NewMat()
	gocv.CvtColor(mat, &gray, gocv.ColorRGBAToGray)
	return gray, nil
}
