package rle

import (
	"github.com/ironsheep/nuclei-tools-mcp/internal/geometry"
	"github.com/ironsheep/nuclei-tools-mcp/internal/raster"
)

// shape is a group of traced components merged into one mask.
type shape struct {
	polys  []geometry.Polygon
	bounds geometry.Rect
}

func (s shape) contains(x, y int) bool {
	for _, p := range s.polys {
		if p.Contains(x, y) {
			return true
		}
	}
	return false
}

// merge groups polygon components until no two groups have intersecting
// bounding boxes. Containment of one box in another counts as intersection.
func merge(comps []raster.Component) []shape {
	var shapes []shape
	for _, c := range comps {
		s := shape{polys: []geometry.Polygon{c.Polygon}, bounds: c.Bounds}
		for merged := true; merged; {
			merged = false
			for i, m := range shapes {
				if m.bounds.Intersects(s.bounds) {
					s.polys = append(m.polys, s.polys...)
					s.bounds = m.bounds.Union(s.bounds)
					shapes = append(shapes[:i], shapes[i+1:]...)
					merged = true
					break
				}
			}
		}
		shapes = append(shapes, s)
	}
	return shapes
}

// Encode returns one run list per mask found in b.
//
// Components are traced, merged while their bounding boxes intersect, and
// each merged shape is scanned column by column, top to bottom, emitting a
// run for every strip of pixels that are on and inside one of the shape's
// polygons. Shapes that emit no runs are dropped.
func Encode(b *raster.Bitmap) [][]Run {
	shapes := merge(b.PolyComponents())
	masks := make([][]Run, 0, len(shapes))
	for _, s := range shapes {
		if runs := encodeShape(b, s); len(runs) > 0 {
			masks = append(masks, runs)
		}
	}
	return masks
}

func encodeShape(b *raster.Bitmap, s shape) []Run {
	h := b.Height()
	var runs []Run
	for x := s.bounds.X; x < s.bounds.MaxX(); x++ {
		start, n := 0, 0
		for y := s.bounds.Y; y < s.bounds.MaxY(); y++ {
			on, _ := b.IsOn(x, y)
			if on && s.contains(x, y) {
				if n == 0 {
					start = y
				}
				n++
				continue
			}
			if n > 0 {
				runs = append(runs, RunAt(h, x, start, n))
				n = 0
			}
		}
		if n > 0 {
			runs = append(runs, RunAt(h, x, start, n))
		}
	}
	return runs
}
