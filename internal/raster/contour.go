package raster

import (
	"math"

	"github.com/ironsheep/nuclei-tools-mcp/internal/geometry"
)

// Chain is an ordered, closed sequence of boundary pixels.
type Chain []geometry.Point

// Moore neighbourhood, clockwise starting west.
var moore = [8]geometry.Point{
	{X: -1, Y: 0},  // W
	{X: -1, Y: -1}, // NW
	{X: 0, Y: -1},  // N
	{X: 1, Y: -1},  // NE
	{X: 1, Y: 0},   // E
	{X: 1, Y: 1},   // SE
	{X: 0, Y: 1},   // S
	{X: -1, Y: 1},  // SW
}

func mooreIndex(dx, dy int) int {
	for i, m := range moore {
		if m.X == dx && m.Y == dy {
			return i
		}
	}
	return 0
}

// Trace walks the boundary pixels of the first component (in row-major
// order) using Moore-neighbour tracing with Jacob's stopping criterion.
// It returns nil for an empty bitmap and a single pixel for an isolated
// pixel.
func (b *Bitmap) Trace() Chain {
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			if b.at(x, y) {
				return b.TraceFrom(geometry.Point{X: x, Y: y})
			}
		}
	}
	return nil
}

// TraceFrom traces the boundary of the component containing start, which
// must be the component's first pixel in row-major order.
func (b *Bitmap) TraceFrom(start geometry.Point) Chain {
	if !b.at(start.X, start.Y) {
		return nil
	}

	chain := Chain{start}
	limit := 4*b.width*b.height + 8
	cur, back := start, 0 // entered from the west

	for len(chain) < limit {
		next, nextBack, ok := b.mooreStep(cur, back)
		if !ok {
			return chain
		}
		if cur == start && len(chain) > 1 && next == chain[1] {
			break
		}
		chain = append(chain, next)
		cur, back = next, nextBack
	}

	if len(chain) > 1 && chain[len(chain)-1] == start {
		chain = chain[:len(chain)-1]
	}
	return chain
}

// mooreStep scans the neighbours of cur clockwise, starting just after the
// backtrack direction, and returns the first on pixel together with the
// backtrack direction as seen from that pixel.
func (b *Bitmap) mooreStep(cur geometry.Point, back int) (geometry.Point, int, bool) {
	for i := 1; i <= 8; i++ {
		d := (back + i) % 8
		n := cur.Add(moore[d].X, moore[d].Y)
		if !b.at(n.X, n.Y) {
			continue
		}
		prev := moore[(back+i-1)%8]
		px, py := cur.X+prev.X, cur.Y+prev.Y
		return n, mooreIndex(px-n.X, py-n.Y), true
	}
	return geometry.Point{}, 0, false
}

// DominantPoints simplifies the chain to the pixels where the boundary
// direction changes by at least minAngle degrees, measured with the
// k-cosine over support pixels on each side. Only local curvature maxima
// are kept.
//
// Chains too short for the support are returned unchanged. When fewer than
// three dominant points survive, the convex hull of the chain is returned.
func (c Chain) DominantPoints(support int, minAngle float64) geometry.Polygon {
	n := len(c)
	if support < 1 {
		support = 1
	}
	if n < 2*support+1 {
		return geometry.Polygon(append([]geometry.Point(nil), c...))
	}

	// turn[i] is the deviation from a straight line at pixel i, in degrees.
	turn := make([]float64, n)
	for i := range c {
		a := c[(i-support+n)%n]
		b := c[(i+support)%n]
		ax, ay := float64(a.X-c[i].X), float64(a.Y-c[i].Y)
		bx, by := float64(b.X-c[i].X), float64(b.Y-c[i].Y)
		den := math.Hypot(ax, ay) * math.Hypot(bx, by)
		if den == 0 {
			continue
		}
		cos := math.Max(-1, math.Min(1, (ax*bx+ay*by)/den))
		turn[i] = 180 - math.Acos(cos)*180/math.Pi
	}

	half := max(1, support/2)
	var out geometry.Polygon
	for i := range c {
		if turn[i] < minAngle {
			continue
		}
		peak := true
		for k := 1; k <= half && peak; k++ {
			l, r := turn[(i-k+n)%n], turn[(i+k)%n]
			// ties resolve to the earliest pixel in the run
			if l >= turn[i] || r > turn[i] {
				peak = false
			}
		}
		if peak {
			out = append(out, c[i])
		}
	}

	if len(out) < 3 {
		return geometry.ConvexHull(c)
	}
	return out
}
