package roi

import (
	"image"
	"math"
)

const (
	claheClipLimit = 2.0
	claheTiles     = 8
)

// clahe applies contrast-limited adaptive histogram equalization over a
// tilesX x tilesY grid. Images that do not divide evenly into tiles are
// padded by reflection for the histograms only.
func clahe(src *image.Gray, clipLimit float64, tilesX, tilesY int) *image.Gray {
	w, h := dims(src)
	padX, padY := 0, 0
	if w%tilesX != 0 || h%tilesY != 0 {
		padX = tilesX - w%tilesX
		padY = tilesY - h%tilesY
	}
	tw := (w + padX) / tilesX
	th := (h + padY) / tilesY
	tileArea := tw * th

	clip := 0
	if clipLimit > 0 {
		clip = max(int(clipLimit*float64(tileArea)/256), 1)
	}
	lutScale := 255.0 / float64(tileArea)

	luts := make([][256]uint8, tilesX*tilesY)
	for ty := range tilesY {
		for tx := range tilesX {
			var hist [256]int
			for y := ty * th; y < (ty+1)*th; y++ {
				row := reflect101(y, h) * w
				for x := tx * tw; x < (tx+1)*tw; x++ {
					hist[src.Pix[row+reflect101(x, w)]]++
				}
			}
			if clip > 0 {
				clipHistogram(&hist, clip)
			}
			lut := &luts[ty*tilesX+tx]
			sum := 0
			for i, c := range hist {
				sum += c
				lut[i] = saturate8(math.RoundToEven(float64(sum) * lutScale))
			}
		}
	}

	dst := image.NewGray(src.Rect)
	invTW, invTH := 1/float64(tw), 1/float64(th)
	for y := range h {
		tyf := float64(y)*invTH - 0.5
		ty1 := int(math.Floor(tyf))
		ya := tyf - float64(ty1)
		ty2 := min(ty1+1, tilesY-1)
		ty1 = max(ty1, 0)
		for x := range w {
			txf := float64(x)*invTW - 0.5
			tx1 := int(math.Floor(txf))
			xa := txf - float64(tx1)
			tx2 := min(tx1+1, tilesX-1)
			tx1 = max(tx1, 0)

			v := src.Pix[y*w+x]
			top := float64(luts[ty1*tilesX+tx1][v])*(1-xa) + float64(luts[ty1*tilesX+tx2][v])*xa
			bot := float64(luts[ty2*tilesX+tx1][v])*(1-xa) + float64(luts[ty2*tilesX+tx2][v])*xa
			dst.Pix[y*w+x] = saturate8(math.RoundToEven(top*(1-ya) + bot*ya))
		}
	}
	return dst
}

// clipHistogram caps every bin at clip and spreads the excess evenly, with
// the remainder going to bins at a fixed stride.
func clipHistogram(hist *[256]int, clip int) {
	clipped := 0
	for i, c := range hist {
		if c > clip {
			clipped += c - clip
			hist[i] = clip
		}
	}
	batch := clipped / 256
	residual := clipped - batch*256
	for i := range hist {
		hist[i] += batch
	}
	if residual > 0 {
		step := max(256/residual, 1)
		for i := 0; i < 256 && residual > 0; i, residual = i+step, residual-1 {
			hist[i]++
		}
	}
}

// reflect101 maps an index outside [0, n) back inside, mirroring around the
// edge pixels without repeating them.
func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		}
		if i >= n {
			i = 2*(n-1) - i
		}
	}
	return i
}

func saturate8(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(v)
	}
}
