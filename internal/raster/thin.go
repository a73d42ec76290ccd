package raster

import (
	"github.com/ironsheep/nuclei-tools-mcp/internal/geometry"
)

// Thin returns the one-pixel-wide skeleton of the bitmap using Zhang-Suen
// thinning with the Lu-Wang neighbour floor. Boundary pixels are marked in
// two alternating sub-iterations until neither removes anything; the
// receiver is not modified.
//
// Marked pixels are deleted one at a time and each is re-checked against
// the partly thinned state first, so two-pixel-thick shapes such as a 2x2
// block keep a connected remnant and their end pixels.
func (b *Bitmap) Thin() *Bitmap {
	out := b.Clone()
	var del []geometry.Point

	for {
		changed := false
		for step := 0; step < 2; step++ {
			del = del[:0]
			for y := 0; y < out.height; y++ {
				for x := 0; x < out.width; x++ {
					if out.at(x, y) && out.removable(x, y, step) {
						del = append(del, geometry.Point{X: x, Y: y})
					}
				}
			}
			for _, p := range del {
				if out.simple(p.X, p.Y) {
					out.put(p.X, p.Y, false)
					changed = true
				}
			}
		}
		if !changed {
			return out
		}
	}
}

// ring returns the eight neighbours of (x, y) as P2..P9: N, NE, E, SE, S,
// SW, W, NW.
func (b *Bitmap) ring(x, y int) [8]bool {
	return [8]bool{
		b.at(x, y-1),
		b.at(x+1, y-1),
		b.at(x+1, y),
		b.at(x+1, y+1),
		b.at(x, y+1),
		b.at(x-1, y+1),
		b.at(x-1, y),
		b.at(x-1, y-1),
	}
}

// crossing counts the on neighbours and the off-to-on transitions around
// the ring.
func crossing(p [8]bool) (count, transitions int) {
	for i := 0; i < 8; i++ {
		if p[i] {
			count++
		}
		if !p[i] && p[(i+1)%8] {
			transitions++
		}
	}
	return count, transitions
}

// simple reports whether deleting (x, y) keeps its neighbours connected
// and leaves an end or corner pixel alone.
func (b *Bitmap) simple(x, y int) bool {
	count, transitions := crossing(b.ring(x, y))
	return count >= 3 && count <= 6 && transitions == 1
}

// removable applies the Zhang-Suen deletion test to pixel (x, y).
func (b *Bitmap) removable(x, y, step int) bool {
	p := b.ring(x, y)
	count, transitions := crossing(p)
	if count < 3 || count > 6 || transitions != 1 {
		return false
	}

	n, e, s, w := p[0], p[2], p[4], p[6]
	if step == 0 {
		return !(n && e && s) && !(e && s && w)
	}
	return !(n && e && w) && !(n && s && w)
}

// Step preference when following a skeleton: the four axis neighbours
// before the diagonals.
var skeletonSteps = [8]geometry.Point{
	{X: 1, Y: 0}, {X: 0, Y: 1}, {X: -1, Y: 0}, {X: 0, Y: -1},
	{X: 1, Y: 1}, {X: -1, Y: 1}, {X: -1, Y: -1}, {X: 1, Y: -1},
}

func (b *Bitmap) degree(p geometry.Point) int {
	n := 0
	for _, s := range skeletonSteps {
		if b.at(p.X+s.X, p.Y+s.Y) {
			n++
		}
	}
	return n
}

type edgeKey struct{ a, b int }

// Segments vectorizes a thinned skeleton into straight line segments.
//
// Walks start at end points and junctions (pixels whose neighbour count is
// not two), then at any closed loops left over. Each pixel-to-pixel step is
// walked once. At a pixel with several unwalked continuations the walk keeps
// its current direction when possible, else takes an axis neighbour, else a
// diagonal. A segment ends wherever the step direction changes, so runs of
// collinear pixels collapse into one Line. Isolated pixels become
// zero-length lines.
func (b *Bitmap) Segments() []geometry.Line {
	walked := make(map[edgeKey]bool)
	var lines []geometry.Line

	key := func(p, q geometry.Point) edgeKey {
		i, j := p.Y*b.width+p.X, q.Y*b.width+q.X
		if i > j {
			i, j = j, i
		}
		return edgeKey{i, j}
	}

	// next picks the continuation from cur, preferring dir.
	next := func(cur, dir geometry.Point) (geometry.Point, bool) {
		if dir != (geometry.Point{}) {
			n := cur.Add(dir.X, dir.Y)
			if b.at(n.X, n.Y) && !walked[key(cur, n)] {
				return dir, true
			}
		}
		for _, s := range skeletonSteps {
			n := cur.Add(s.X, s.Y)
			if b.at(n.X, n.Y) && !walked[key(cur, n)] {
				return s, true
			}
		}
		return geometry.Point{}, false
	}

	walk := func(start geometry.Point) {
		for {
			dir, ok := next(start, geometry.Point{})
			if !ok {
				return
			}
			from, cur := start, start
			for {
				n := cur.Add(dir.X, dir.Y)
				walked[key(cur, n)] = true
				cur = n

				d, ok := next(cur, dir)
				if !ok {
					lines = append(lines, geometry.Line{A: from, B: cur})
					break
				}
				if d != dir {
					lines = append(lines, geometry.Line{A: from, B: cur})
					from, dir = cur, d
				}
			}
		}
	}

	var loops []geometry.Point
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			if !b.at(x, y) {
				continue
			}
			p := geometry.Point{X: x, Y: y}
			switch b.degree(p) {
			case 0:
				lines = append(lines, geometry.Line{A: p, B: p})
			case 2:
				loops = append(loops, p)
			default:
				walk(p)
			}
		}
	}
	for _, p := range loops {
		walk(p)
	}
	return lines
}
