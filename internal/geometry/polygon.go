package geometry

import (
	"math"
	"sort"
)

// Polygon is a closed polygon given by its ordered vertices in corner
// coordinates. The closing edge from the last vertex back to the first is
// implicit.
type Polygon []Point

// RectPolygon returns the polygon outlining all pixels of r.
func RectPolygon(r Rect) Polygon {
	if r.Empty() {
		return nil
	}
	return Polygon{
		{X: r.X, Y: r.Y},
		{X: r.MaxX(), Y: r.Y},
		{X: r.MaxX(), Y: r.MaxY()},
		{X: r.X, Y: r.MaxY()},
	}
}

// Bounds returns the pixel rectangle spanned by the polygon's vertices.
func (p Polygon) Bounds() Rect {
	if len(p) == 0 {
		return Rect{}
	}
	minX, minY := p[0].X, p[0].Y
	maxX, maxY := minX, minY
	for _, v := range p[1:] {
		minX, maxX = min(minX, v.X), max(maxX, v.X)
		minY, maxY = min(minY, v.Y), max(maxY, v.Y)
	}
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// Contains reports whether the centre of pixel (x, y) lies inside the
// polygon, using even-odd ray casting.
func (p Polygon) Contains(x, y int) bool {
	n := len(p)
	if n < 3 {
		return false
	}
	px, py := float64(x)+0.5, float64(y)+0.5
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := float64(p[i].X), float64(p[i].Y)
		xj, yj := float64(p[j].X), float64(p[j].Y)
		if (yi > py) != (yj > py) && px < (xj-xi)*(py-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}

// Area returns the enclosed area computed with the shoelace formula. The
// result is independent of vertex orientation.
func (p Polygon) Area() float64 {
	n := len(p)
	if n < 3 {
		return 0
	}
	var sum int
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		sum += (p[j].X + p[i].X) * (p[i].Y - p[j].Y)
	}
	return math.Abs(float64(sum)) / 2
}

// Translate returns a copy of the polygon moved by (dx, dy).
func (p Polygon) Translate(dx, dy int) Polygon {
	if p == nil {
		return nil
	}
	out := make(Polygon, len(p))
	for i, v := range p {
		out[i] = v.Add(dx, dy)
	}
	return out
}

// ConvexHull returns the convex hull of the points in counter-clockwise
// order (monotone chain). Collinear boundary points are dropped. Fewer than
// three distinct points are returned as-is.
func ConvexHull(points []Point) Polygon {
	pts := make([]Point, len(points))
	copy(pts, points)
	sort.Slice(pts, func(i, j int) bool {
		if pts[i].X != pts[j].X {
			return pts[i].X < pts[j].X
		}
		return pts[i].Y < pts[j].Y
	})
	pts = dedupe(pts)
	if len(pts) < 3 {
		return Polygon(pts)
	}

	hull := make([]Point, 0, 2*len(pts))
	for _, p := range pts {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := len(pts) - 2; i >= 0; i-- {
		p := pts[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	return Polygon(hull[:len(hull)-1])
}

// cross returns the z component of (a-o) x (b-o).
func cross(o, a, b Point) int {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}

func dedupe(sorted []Point) []Point {
	if len(sorted) == 0 {
		return sorted
	}
	out := sorted[:1]
	for _, p := range sorted[1:] {
		if p != out[len(out)-1] {
			out = append(out, p)
		}
	}
	return out
}
