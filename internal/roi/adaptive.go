package roi

import (
	"image"
	"math"
)

const (
	thresholdBlock = 11
	thresholdC     = 2.0
)

// gaussianKernel returns a normalized 1-D kernel of odd size. The sigma is
// derived from the size.
func gaussianKernel(size int) []float64 {
	sigma := 0.3*(float64(size-1)*0.5-1) + 0.8
	k := make([]float64, size)
	half := (size - 1) / 2
	sum := 0.0
	for i := range k {
		d := float64(i - half)
		k[i] = math.Exp(-d * d / (2 * sigma * sigma))
		sum += k[i]
	}
	for i := range k {
		k[i] /= sum
	}
	return k
}

// gaussianMean blurs src with a separable Gaussian of the given block size
// and replicated borders.
func gaussianMean(src *image.Gray, block int) *image.Gray {
	w, h := dims(src)
	k := gaussianKernel(block)
	half := block / 2

	tmp := make([]float64, w*h)
	for y := range h {
		row := src.Pix[y*w : (y+1)*w]
		for x := range w {
			s := 0.0
			for i, kv := range k {
				s += kv * float64(row[clampInt(x+i-half, 0, w-1)])
			}
			tmp[y*w+x] = s
		}
	}

	dst := image.NewGray(src.Rect)
	for y := range h {
		for x := range w {
			s := 0.0
			for i, kv := range k {
				s += kv * tmp[clampInt(y+i-half, 0, h-1)*w+x]
			}
			dst.Pix[y*w+x] = saturate8(math.Round(s))
		}
	}
	return dst
}

// adaptiveThreshold binarizes src against its local Gaussian-weighted mean
// minus c. Pixels above the threshold become 255, or 0 when inverse is set.
func adaptiveThreshold(src *image.Gray, block int, c float64, inverse bool) *image.Gray {
	w, h := dims(src)
	mean := gaussianMean(src, block)
	delta := int(math.Ceil(c))
	dst := image.NewGray(src.Rect)
	for i := range w * h {
		above := int(src.Pix[i])-int(mean.Pix[i]) > -delta
		if above != inverse {
			dst.Pix[i] = 255
		}
	}
	return dst
}
