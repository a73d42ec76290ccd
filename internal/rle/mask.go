package rle

import (
	"fmt"
	"sort"

	"github.com/ironsheep/nuclei-tools-mcp/internal/geometry"
)

// Mask is one labelled object decoded from runs.
type Mask struct {
	Label string
	// Runs are sorted by index.
	Runs []Run
	// Polygon is the convex hull of the pixel corners at the run ends.
	Polygon geometry.Polygon
	// Bounds is the exact pixel bounding box of the runs.
	Bounds geometry.Rect
	// Area is the number of pixels covered.
	Area int
	// Confidence is an optional prediction score.
	Confidence *float64
}

// NewMask builds a mask from runs. It returns ErrNoRuns for an empty run
// list and ErrStrideMismatch unless every run shares one positive stride.
func NewMask(label string, runs []Run) (*Mask, error) {
	if len(runs) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoRuns, label)
	}
	stride := runs[0].Stride
	for _, r := range runs {
		if r.Stride < 1 || r.Stride != stride {
			return nil, fmt.Errorf("%w: mask %q has stride %d and %d", ErrStrideMismatch, label, stride, r.Stride)
		}
	}
	sorted := append([]Run(nil), runs...)
	SortRuns(sorted)

	pts := make([]geometry.Point, 0, 4*len(sorted))
	var bounds geometry.Rect
	for _, r := range sorted {
		x, y0, y1 := r.X(), r.Y0(), r.Y1()
		pts = append(pts,
			geometry.Point{X: x, Y: y0}, geometry.Point{X: x + 1, Y: y0},
			geometry.Point{X: x, Y: y1 + 1}, geometry.Point{X: x + 1, Y: y1 + 1})
		bounds = bounds.Union(geometry.NewRect(x, y0, 1, r.Len))
	}

	return &Mask{
		Label:   label,
		Runs:    sorted,
		Polygon: geometry.ConvexHull(pts),
		Bounds:  bounds,
		Area:    TotalLen(sorted),
	}, nil
}

// WithConfidence returns a copy of the mask carrying a prediction score.
func (m *Mask) WithConfidence(p float64) *Mask {
	out := *m
	out.Confidence = &p
	return &out
}

// Has reports whether pixel (x, y) is covered by one of the mask's runs.
func (m *Mask) Has(x, y int) bool {
	if !m.Bounds.Contains(x, y) {
		return false
	}
	stride := m.Runs[0].Stride
	idx := x*stride + y + 1
	// last run starting at or before idx
	i := sort.Search(len(m.Runs), func(i int) bool { return m.Runs[i].Index > idx }) - 1
	for ; i >= 0; i-- {
		r := m.Runs[i]
		if r.X() != x {
			return false
		}
		if idx < r.Index+r.Len {
			return true
		}
	}
	return false
}

// Contains reports whether the centre of pixel (x, y) lies inside the
// mask's hull polygon.
func (m *Mask) Contains(x, y int) bool {
	return m.Polygon.Contains(x, y)
}

// Lines returns every run as a vertical segment.
func (m *Mask) Lines() []geometry.Line {
	out := make([]geometry.Line, len(m.Runs))
	for i, r := range m.Runs {
		out[i] = r.Line()
	}
	return out
}
