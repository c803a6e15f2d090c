package roi

import "image"

const (
	cannyLow  = 50
	cannyHigh = 150

	// tan(22.5°) and tan(67.5°) split gradient directions into four sectors.
	tan22 = 0.41421356237309503
	tan67 = 2.414213562373095
)

// 8-neighbourhood offsets, clockwise starting east (y grows downward).
var (
	nbrDX = [8]int{1, 1, 0, -1, -1, -1, 0, 1}
	nbrDY = [8]int{0, 1, 1, 1, 0, -1, -1, -1}
)

// canny returns a binary edge map (255 on edges). Gradients come from 3x3
// Sobel with replicated borders and an L1 magnitude; low and high are the
// hysteresis thresholds on that magnitude.
func canny(src *image.Gray, low, high int) *image.Gray {
	w, h := dims(src)
	n := w * h
	gx := make([]int32, n)
	gy := make([]int32, n)
	mag := make([]int32, n)

	at := func(x, y int) int32 {
		return int32(src.Pix[clampInt(y, 0, h-1)*w+clampInt(x, 0, w-1)])
	}
	for y := range h {
		for x := range w {
			dx := (at(x+1, y-1) + 2*at(x+1, y) + at(x+1, y+1)) -
				(at(x-1, y-1) + 2*at(x-1, y) + at(x-1, y+1))
			dy := (at(x-1, y+1) + 2*at(x, y+1) + at(x+1, y+1)) -
				(at(x-1, y-1) + 2*at(x, y-1) + at(x+1, y-1))
			i := y*w + x
			gx[i], gy[i] = dx, dy
			mag[i] = abs32(dx) + abs32(dy)
		}
	}

	magAt := func(x, y int) int32 {
		if x < 0 || y < 0 || x >= w || y >= h {
			return 0
		}
		return mag[y*w+x]
	}

	const (
		none = iota
		weak
		strong
	)
	state := make([]uint8, n)
	stack := make([]int, 0, 1024)

	for y := range h {
		for x := range w {
			i := y*w + x
			m := mag[i]
			if m <= int32(low) {
				continue
			}
			ax, ay := float64(abs32(gx[i])), float64(abs32(gy[i]))
			var keep bool
			switch {
			case ay < ax*tan22:
				keep = m > magAt(x-1, y) && m >= magAt(x+1, y)
			case ay > ax*tan67:
				keep = m > magAt(x, y-1) && m >= magAt(x, y+1)
			default:
				s := 1
				if (gx[i] < 0) != (gy[i] < 0) {
					s = -1
				}
				keep = m > magAt(x-s, y-1) && m > magAt(x+s, y+1)
			}
			if !keep {
				continue
			}
			if m > int32(high) {
				state[i] = strong
				stack = append(stack, i)
			} else {
				state[i] = weak
			}
		}
	}

	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := i%w, i/w
		for d := range 8 {
			nx, ny := x+nbrDX[d], y+nbrDY[d]
			if nx < 0 || ny < 0 || nx >= w || ny >= h {
				continue
			}
			j := ny*w + nx
			if state[j] == weak {
				state[j] = strong
				stack = append(stack, j)
			}
		}
	}

	out := image.NewGray(src.Rect)
	for i, s := range state {
		if s == strong {
			out.Pix[i] = 255
		}
	}
	return out
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
