package roi

import (
	"image"
	"math"
)

// contour is the outer boundary of one foreground component.
type contour struct {
	points []image.Point
	box    BoundingBox
	area   float64
}

type compStats struct {
	minX, minY, maxX, maxY int
	startX, startY         int
	count                  int
	external               bool
}

// externalContours returns the outer boundary of every foreground (non-zero)
// component of mask that is not enclosed by another component. Components are
// 8-connected and reported in raster order of their first pixel.
func externalContours(mask *image.Gray) []contour {
	w, h := dims(mask)
	if w == 0 || h == 0 {
		return nil
	}
	labels, stats := labelComponents(mask)
	markExternal(mask, labels, stats)

	out := make([]contour, 0, len(stats))
	for i, st := range stats {
		if !st.external {
			continue
		}
		pts := traceBoundary(labels, w, h, i+1, st)
		out = append(out, contour{
			points: pts,
			box: BoundingBox{
				X: st.minX, Y: st.minY,
				Width: st.maxX - st.minX + 1, Height: st.maxY - st.minY + 1,
			},
			area: polygonArea(pts),
		})
	}
	return out
}

// labelComponents assigns 1-based labels to 8-connected foreground pixels.
func labelComponents(mask *image.Gray) ([]int, []compStats) {
	w, h := dims(mask)
	labels := make([]int, w*h)
	var stats []compStats
	queue := make([]int, 0, 256)

	for i, v := range mask.Pix[:w*h] {
		if v == 0 || labels[i] != 0 {
			continue
		}
		label := len(stats) + 1
		sx, sy := i%w, i/w
		st := compStats{minX: sx, minY: sy, maxX: sx, maxY: sy, startX: sx, startY: sy}
		labels[i] = label
		queue = append(queue[:0], i)
		for len(queue) > 0 {
			p := queue[0]
			queue = queue[1:]
			x, y := p%w, p/w
			st.count++
			st.minX, st.maxX = min(st.minX, x), max(st.maxX, x)
			st.minY, st.maxY = min(st.minY, y), max(st.maxY, y)
			for d := range 8 {
				nx, ny := x+nbrDX[d], y+nbrDY[d]
				if nx < 0 || ny < 0 || nx >= w || ny >= h {
					continue
				}
				j := ny*w + nx
				if mask.Pix[j] != 0 && labels[j] == 0 {
					labels[j] = label
					queue = append(queue, j)
				}
			}
		}
		stats = append(stats, st)
	}
	return labels, stats
}

// markExternal flags components that touch the image border or the
// background reachable from it. Background is 4-connected, the dual of the
// 8-connected foreground.
func markExternal(mask *image.Gray, labels []int, stats []compStats) {
	w, h := dims(mask)
	outside := make([]bool, w*h)
	queue := make([]int, 0, 2*(w+h))
	seed := func(x, y int) {
		i := y*w + x
		if mask.Pix[i] == 0 && !outside[i] {
			outside[i] = true
			queue = append(queue, i)
		}
	}
	for x := range w {
		seed(x, 0)
		seed(x, h-1)
	}
	for y := range h {
		seed(0, y)
		seed(w-1, y)
	}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		x, y := p%w, p/w
		for d := 0; d < 8; d += 2 {
			nx, ny := x+nbrDX[d], y+nbrDY[d]
			if nx < 0 || ny < 0 || nx >= w || ny >= h {
				continue
			}
			seed(nx, ny)
		}
	}

	for i, l := range labels {
		if l == 0 || stats[l-1].external {
			continue
		}
		x, y := i%w, i/w
		if x == 0 || y == 0 || x == w-1 || y == h-1 {
			stats[l-1].external = true
			continue
		}
		for d := 0; d < 8; d += 2 {
			if outside[(y+nbrDY[d])*w+x+nbrDX[d]] {
				stats[l-1].external = true
				break
			}
		}
	}
}

// traceBoundary walks the outer boundary of a component clockwise with a
// radial sweep, starting from its first raster pixel. Runs of points moving
// in the same direction collapse to their end points.
func traceBoundary(labels []int, w, h, label int, st compStats) []image.Point {
	inside := func(x, y int) bool {
		return x >= 0 && y >= 0 && x < w && y < h && labels[y*w+x] == label
	}

	sx, sy := st.startX, st.startY
	pts := make([]image.Point, 0, 64)
	add := func(p image.Point) {
		n := len(pts)
		if n >= 2 {
			a, b := pts[n-2], pts[n-1]
			v1, v2 := b.Sub(a), p.Sub(b)
			if v1.X*v2.Y-v1.Y*v2.X == 0 && v1.X*v2.X+v1.Y*v2.Y > 0 {
				pts = pts[:n-1]
			}
		}
		pts = append(pts, p)
	}
	add(image.Pt(sx, sy))

	cx, cy := sx, sy
	back := 4 // west of the first raster pixel is always background
	var second image.Point
	haveSecond := false
	maxSteps := 4*st.count + 16

	for range maxSteps {
		next, dir := -1, 0
		for k := 1; k <= 8; k++ {
			d := (back + k) % 8
			if inside(cx+nbrDX[d], cy+nbrDY[d]) {
				next, dir = d, d
				break
			}
		}
		if next < 0 {
			break // isolated pixel
		}
		nx, ny := cx+nbrDX[dir], cy+nbrDY[dir]
		if cx == sx && cy == sy && haveSecond && nx == second.X && ny == second.Y {
			break
		}
		if !haveSecond {
			second, haveSecond = image.Pt(nx, ny), true
		}
		cx, cy = nx, ny
		back = (dir + 4) % 8
		if cx != sx || cy != sy {
			add(image.Pt(cx, cy))
		}
	}
	return pts
}

// polygonArea returns the area enclosed by a closed polygon (shoelace).
func polygonArea(pts []image.Point) float64 {
	if len(pts) < 3 {
		return 0
	}
	var sum int
	for i, p := range pts {
		q := pts[(i+1)%len(pts)]
		sum += p.X*q.Y - q.X*p.Y
	}
	return math.Abs(float64(sum)) / 2
}
