package segment

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/ironsheep/nuclei-tools-mcp/internal/geometry"
	"github.com/ironsheep/nuclei-tools-mcp/internal/raster"
)

// Region summarizes one component at one threshold.
type Region struct {
	Bounds  geometry.Rect    `json:"bounds"`
	Polygon geometry.Polygon `json:"-"`
	// Area is the number of pixels inside the polygon.
	Area int `json:"area"`
	// Mean and Variance are the population statistics of the intensities
	// inside the polygon.
	Mean     float64 `json:"mean"`
	Variance float64 `json:"variance"`
	// SNR is Mean/sqrt(Variance), or zero for a flat region.
	SNR float64 `json:"snr"`
}

// NewRegion measures the pixels of src whose centres lie inside poly.
func NewRegion(src raster.Source, poly geometry.Polygon) Region {
	b := poly.Bounds()
	vals := make([]float64, 0, b.Area())
	for y := b.Y; y < b.MaxY(); y++ {
		for x := b.X; x < b.MaxX(); x++ {
			if poly.Contains(x, y) {
				vals = append(vals, float64(src.Get(x, y)))
			}
		}
	}

	r := Region{Bounds: b, Polygon: poly, Area: len(vals)}
	if len(vals) == 0 {
		return r
	}
	r.Mean, r.Variance = stat.PopMeanVariance(vals, nil)
	if r.Variance > 0 {
		r.SNR = r.Mean / math.Sqrt(r.Variance)
	}
	return r
}

// covers reports whether region r contains region o: r's box strictly
// contains o's box, and the pixels of o's box that lie inside both
// polygons span all of o's box.
func (r Region) covers(o Region) bool {
	if !r.Bounds.ContainsRect(o.Bounds) || r.Bounds.Area() <= o.Bounds.Area() {
		return false
	}
	var hit geometry.Rect
	for y := o.Bounds.Y; y < o.Bounds.MaxY(); y++ {
		for x := o.Bounds.X; x < o.Bounds.MaxX(); x++ {
			if o.Polygon.Contains(x, y) && r.Polygon.Contains(x, y) {
				hit = hit.Union(geometry.NewRect(x, y, 1, 1))
			}
		}
	}
	return hit == o.Bounds
}

// less orders regions by area, then x, y, width and height.
func (r Region) less(o Region) bool {
	switch {
	case r.Area != o.Area:
		return r.Area < o.Area
	case r.Bounds.X != o.Bounds.X:
		return r.Bounds.X < o.Bounds.X
	case r.Bounds.Y != o.Bounds.Y:
		return r.Bounds.Y < o.Bounds.Y
	case r.Bounds.W != o.Bounds.W:
		return r.Bounds.W < o.Bounds.W
	default:
		return r.Bounds.H < o.Bounds.H
	}
}
