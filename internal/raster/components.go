package raster

import (
	"github.com/ironsheep/nuclei-tools-mcp/internal/geometry"
)

// Component is one 8-connected group of on pixels.
type Component struct {
	// Bounds is the pixel bounding box of the component.
	Bounds geometry.Rect `json:"bounds"`
	// Polygon is the traced outer boundary in corner coordinates. It is nil
	// for components returned by Components.
	Polygon geometry.Polygon `json:"polygon,omitempty"`
	// Area is the number of on pixels in the component.
	Area int `json:"area"`
	// Start is the first pixel of the component in row-major order.
	Start geometry.Point `json:"start"`
}

// Components returns the bounding box of every 8-connected component, in
// row-major order of each component's first pixel. An empty bitmap yields
// no components.
func (b *Bitmap) Components() []geometry.Rect {
	_, comps := b.label()
	out := make([]geometry.Rect, len(comps))
	for i, c := range comps {
		out[i] = c.Bounds
	}
	return out
}

// PolyComponents returns every 8-connected component with its boundary
// traced into an ordered polygon.
func (b *Bitmap) PolyComponents() []Component {
	_, comps := b.label()
	for i := range comps {
		comps[i].Polygon = b.outline(comps[i].Start)
	}
	return comps
}

// Labels maps every pixel to the component that owns it.
type Labels struct {
	width, height int
	ids           []int32
}

// At returns the 1-based index of the component owning (x, y), or 0 for
// background and out-of-range pixels.
func (l Labels) At(x, y int) int {
	if x < 0 || y < 0 || x >= l.width || y >= l.height {
		return 0
	}
	return int(l.ids[y*l.width+x])
}

// Label returns the 8-connected components, in the order of Components,
// together with the per-pixel component map. Each on pixel belongs to
// exactly one component, so a component lying in another's hole is never
// counted twice.
func (b *Bitmap) Label() (Labels, []Component) {
	ids, comps := b.label()
	return Labels{width: b.width, height: b.height, ids: ids}, comps
}

// label groups on pixels into 8-connected components.
//
// Uses an iterative stack-based flood fill so that large components cannot
// overflow the goroutine stack.
func (b *Bitmap) label() ([]int32, []Component) {
	ids := make([]int32, b.width*b.height)
	var comps []Component
	var stack []geometry.Point

	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			if !b.at(x, y) || ids[y*b.width+x] != 0 {
				continue
			}
			id := int32(len(comps) + 1)

			c := Component{Start: geometry.Point{X: x, Y: y}}
			minX, minY, maxX, maxY := x, y, x, y
			stack = append(stack[:0], c.Start)
			ids[y*b.width+x] = id

			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				c.Area++
				minX, maxX = min(minX, p.X), max(maxX, p.X)
				minY, maxY = min(minY, p.Y), max(maxY, p.Y)

				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						if dx == 0 && dy == 0 {
							continue
						}
						nx, ny := p.X+dx, p.Y+dy
						if !b.at(nx, ny) || ids[ny*b.width+nx] != 0 {
							continue
						}
						ids[ny*b.width+nx] = id
						stack = append(stack, geometry.Point{X: nx, Y: ny})
					}
				}
			}

			c.Bounds = geometry.NewRect(minX, minY, maxX-minX+1, maxY-minY+1)
			comps = append(comps, c)
		}
	}
	return ids, comps
}

// Crack-following headings on the corner lattice, in clockwise order.
var headings = [4]geometry.Point{
	{X: 1, Y: 0},  // east
	{X: 0, Y: 1},  // south
	{X: -1, Y: 0}, // west
	{X: 0, Y: -1}, // north
}

// ahead returns the pixels to the front-left and front-right of vertex
// (cx, cy) when travelling in heading d.
func ahead(cx, cy, d int) (left, right geometry.Point) {
	switch d {
	case 0:
		return geometry.Point{X: cx, Y: cy - 1}, geometry.Point{X: cx, Y: cy}
	case 1:
		return geometry.Point{X: cx, Y: cy}, geometry.Point{X: cx - 1, Y: cy}
	case 2:
		return geometry.Point{X: cx - 1, Y: cy}, geometry.Point{X: cx - 1, Y: cy - 1}
	default:
		return geometry.Point{X: cx - 1, Y: cy - 1}, geometry.Point{X: cx, Y: cy - 1}
	}
}

// outline follows the outer pixel edges of the component whose first
// row-major pixel is start, keeping the component on the right-hand side.
// Pixels that touch only at a corner stay on the same boundary, matching
// 8-connectivity. Only corner vertices are emitted.
func (b *Bitmap) outline(start geometry.Point) geometry.Polygon {
	poly := geometry.Polygon{start}
	cx, cy, d := start.X, start.Y, 0

	for {
		cx += headings[d].X
		cy += headings[d].Y
		if cx == start.X && cy == start.Y {
			break
		}

		left, right := ahead(cx, cy, d)
		next := d
		switch {
		case b.at(left.X, left.Y):
			next = (d + 3) % 4
		case b.at(right.X, right.Y):
		default:
			next = (d + 1) % 4
		}
		if next != d {
			poly = append(poly, geometry.Point{X: cx, Y: cy})
			d = next
		}
	}
	return poly
}
