package roi

import "image"

// kernel is a rectangular structuring element. The anchor sits at (w/2, h/2),
// so even-sized kernels reach one pixel further up and left.
type kernel struct {
	w, h   int
	ax, ay int
}

func rectKernel(w, h int) kernel {
	return kernel{w: w, h: h, ax: w / 2, ay: h / 2}
}

func (k kernel) reflect() kernel {
	return kernel{w: k.w, h: k.h, ax: k.w - 1 - k.ax, ay: k.h - 1 - k.ay}
}

// dilate grows bright regions. Pixels outside the image are ignored.
func dilate(src *image.Gray, k kernel) *image.Gray {
	return rankFilter(src, k, func(a, b uint8) uint8 { return max(a, b) })
}

// erode shrinks bright regions. Pixels outside the image are ignored.
func erode(src *image.Gray, k kernel) *image.Gray {
	return rankFilter(src, k, func(a, b uint8) uint8 { return min(a, b) })
}

// closing fills dark gaps narrower than the kernel. The erosion uses the
// reflected element so the result stays registered with the input.
func closing(src *image.Gray, k kernel) *image.Gray {
	return erode(dilate(src, k), k.reflect())
}

func dilateN(src *image.Gray, k kernel, iterations int) *image.Gray {
	out := src
	for range iterations {
		out = dilate(out, k)
	}
	return out
}

// rankFilter applies pick over the kernel window, separably by rows then
// columns.
func rankFilter(src *image.Gray, k kernel, pick func(a, b uint8) uint8) *image.Gray {
	w, h := dims(src)
	tmp := image.NewGray(src.Rect)
	for y := range h {
		row := src.Pix[y*w : (y+1)*w]
		for x := range w {
			lo := max(x-k.ax, 0)
			hi := min(x-k.ax+k.w-1, w-1)
			v := row[lo]
			for xx := lo + 1; xx <= hi; xx++ {
				v = pick(v, row[xx])
			}
			tmp.Pix[y*w+x] = v
		}
	}

	dst := image.NewGray(src.Rect)
	for y := range h {
		lo := max(y-k.ay, 0)
		hi := min(y-k.ay+k.h-1, h-1)
		for x := range w {
			v := tmp.Pix[lo*w+x]
			for yy := lo + 1; yy <= hi; yy++ {
				v = pick(v, tmp.Pix[yy*w+x])
			}
			dst.Pix[y*w+x] = v
		}
	}
	return dst
}
