package segment

import (
	"errors"
	"fmt"
	"io"
	"log"
	"runtime"
	"sort"
	"strings"

	"github.com/ironsheep/nuclei-tools-mcp/internal/geometry"
	"github.com/ironsheep/nuclei-tools-mcp/internal/raster"
)

var (
	// ErrUnknownSegment is returned for an index outside the arena or a
	// segment that has been pruned.
	ErrUnknownSegment = errors.New("unknown segment")

	// ErrNoLayer is returned when a layer-only operation is applied to the
	// synthetic root.
	ErrNoLayer = errors.New("segment has no layer")
)

// Options controls tree construction and analysis.
type Options struct {
	// MinArea is the exclusive lower bound on region area.
	MinArea int `yaml:"minArea"`
	// MinPath prunes leaves whose branch-ancestor path is at most this
	// long. It is also the minimum trend-fit window.
	MinPath int `yaml:"minPath"`
	// MaxError is the largest prediction error that still extends a fit.
	MaxError float64 `yaml:"maxError"`
	// AbsMinScore marks candidate windows whose |score| exceeds it as strong.
	AbsMinScore float64 `yaml:"absMinScore"`
	// Workers is the number of layer sweep goroutines. Zero or less uses
	// one per CPU.
	Workers int `yaml:"workers"`
	// Inverted forces the threshold polarity for every layer. Nil decides
	// it once from the channel at its mid-range threshold.
	Inverted *bool `yaml:"-"`
	// Logger receives progress messages. Nil is silent.
	Logger *log.Logger `yaml:"-"`
}

// DefaultOptions returns the standard segmentation parameters.
func DefaultOptions() Options {
	return Options{
		MinArea:     1,
		MinPath:     5,
		MaxError:    30,
		AbsMinScore: 1.5,
		Workers:     runtime.NumCPU(),
	}
}

func (o Options) logf(format string, args ...any) {
	if o.Logger != nil {
		o.Logger.Printf(format, args...)
	}
}

// Layer describes one threshold level of the sweep.
type Layer struct {
	Threshold int `json:"threshold"`
	// Regions is the number of regions kept at this level.
	Regions  int     `json:"regions"`
	MeanArea float64 `json:"mean_area"`
	VarArea  float64 `json:"var_area"`
}

// Segment is one node of the tree.
type Segment struct {
	ID     int    `json:"id"`
	Region Region `json:"region"`
	// Layer is nil for the synthetic root.
	Layer *Layer `json:"-"`
	// Threshold is the layer threshold, or -1 for the root.
	Threshold int   `json:"threshold"`
	Parent    int   `json:"parent"`
	Children  []int `json:"children,omitempty"`
	Depth     int   `json:"depth"`
	Removed   bool  `json:"-"`

	mask *raster.Bitmap
}

// IsRoot reports whether the segment is the synthetic root.
func (s *Segment) IsRoot() bool { return s.Layer == nil }

// Tree is a segment hierarchy stored as an arena.
type Tree struct {
	nodes    []Segment
	root     int
	layers   []Layer
	width    int
	height   int
	inverted bool
	opts     Options
}

// Root returns the index of the synthetic root.
func (t *Tree) Root() int { return t.root }

// Len returns the number of live segments, root included.
func (t *Tree) Len() int {
	n := 0
	for i := range t.nodes {
		if !t.nodes[i].Removed {
			n++
		}
	}
	return n
}

// Inverted reports the threshold polarity used by the sweep.
func (t *Tree) Inverted() bool { return t.inverted }

// Layers returns the per-threshold summary of the sweep.
func (t *Tree) Layers() []Layer { return append([]Layer(nil), t.layers...) }

// Segment returns a copy of segment id.
func (t *Tree) Segment(id int) (Segment, error) {
	if !t.live(id) {
		return Segment{}, fmt.Errorf("%w: %d", ErrUnknownSegment, id)
	}
	s := t.nodes[id]
	s.Children = append([]int(nil), s.Children...)
	s.mask = nil
	return s, nil
}

func (t *Tree) live(id int) bool {
	return id >= 0 && id < len(t.nodes) && !t.nodes[id].Removed
}

// link attaches every id to the first later id whose region covers it.
// ids must be in ascending order with the root last; ids that no region
// covers go to the root.
func (t *Tree) link(ids []int) {
	for k, i := range ids {
		if i == t.root {
			continue
		}
		parent := t.root
		for _, j := range ids[k+1:] {
			if t.nodes[j].Region.covers(t.nodes[i].Region) {
				parent = j
				break
			}
		}
		t.nodes[i].Parent = parent
		t.nodes[parent].Children = append(t.nodes[parent].Children, i)
	}
	t.updateDepth()
}

func (t *Tree) updateDepth() {
	t.nodes[t.root].Depth = 0
	queue := []int{t.root}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, c := range t.nodes[id].Children {
			t.nodes[c].Depth = t.nodes[id].Depth + 1
			queue = append(queue, c)
		}
	}
}

// Leaves returns the live segments without children in depth-first order.
// The root is never a leaf.
func (t *Tree) Leaves() []int {
	var leaves []int
	var walk func(id int)
	walk = func(id int) {
		if id != t.root && len(t.nodes[id].Children) == 0 {
			leaves = append(leaves, id)
			return
		}
		for _, c := range t.nodes[id].Children {
			walk(c)
		}
	}
	walk(t.root)
	return leaves
}

// RootPath returns id and its ancestors, leaf first, excluding the root.
func (t *Tree) RootPath(id int) []int {
	if !t.live(id) {
		return nil
	}
	var path []int
	for p := id; p != t.root && p >= 0; p = t.nodes[p].Parent {
		path = append(path, p)
	}
	return path
}

// BranchAncestorPath returns id followed by its ancestors up to and
// including the nearest one with more than one child, stopping before the
// root. A segment that itself branches returns only itself.
func (t *Tree) BranchAncestorPath(id int) []int {
	if !t.live(id) || id == t.root {
		return nil
	}
	path := []int{id}
	if len(t.nodes[id].Children) > 1 {
		return path
	}
	for p := t.nodes[id].Parent; p >= 0 && p != t.root; p = t.nodes[p].Parent {
		path = append(path, p)
		if len(t.nodes[p].Children) > 1 {
			break
		}
	}
	return path
}

// Prune removes leaves whose branch-ancestor path has at most minPath
// segments, repeating until no leaf qualifies. Each pass selects all
// qualifying leaves before removing any. It returns the number of segments
// removed. The root is never removed.
func (t *Tree) Prune(minPath int) int {
	total := 0
	for {
		var pruned []int
		for _, leaf := range t.Leaves() {
			if len(t.BranchAncestorPath(leaf)) <= minPath {
				pruned = append(pruned, leaf)
			}
		}
		if len(pruned) == 0 {
			return total
		}
		for _, id := range pruned {
			t.remove(id)
		}
		total += len(pruned)
		t.opts.logf("segment: %d segment(s) pruned", len(pruned))
	}
}

func (t *Tree) remove(id int) {
	p := t.nodes[id].Parent
	if p >= 0 {
		kids := t.nodes[p].Children
		for k, c := range kids {
			if c == id {
				t.nodes[p].Children = append(kids[:k:k], kids[k+1:]...)
				break
			}
		}
	}
	t.nodes[id].Removed = true
}

// Filter returns a new tree holding the live segments whose bounding box
// contains pixel (x, y), re-linked by containment. The root is always kept,
// so a point outside the image yields a root-only tree.
func (t *Tree) Filter(x, y int) *Tree {
	var matched []int
	var walk func(id int)
	walk = func(id int) {
		if id != t.root && !t.nodes[id].Region.Bounds.Contains(x, y) {
			return
		}
		matched = append(matched, id)
		for _, c := range t.nodes[id].Children {
			walk(c)
		}
	}
	walk(t.root)

	out := &Tree{
		layers:   t.layers,
		width:    t.width,
		height:   t.height,
		inverted: t.inverted,
		opts:     t.opts,
	}
	rest := matched[1:] // matched[0] is the root
	sort.SliceStable(rest, func(a, b int) bool { return t.before(rest[a], rest[b]) })
	for _, id := range append(rest, t.root) {
		s := t.nodes[id]
		s.ID = len(out.nodes)
		s.Parent = -1
		s.Children = nil
		out.nodes = append(out.nodes, s)
	}
	out.root = len(out.nodes) - 1

	ids := make([]int, len(out.nodes))
	for i := range ids {
		ids[i] = i
	}
	out.link(ids)
	return out
}

// before orders segments by region, then threshold.
func (t *Tree) before(a, b int) bool {
	ra, rb := t.nodes[a].Region, t.nodes[b].Region
	if ra.less(rb) {
		return true
	}
	if rb.less(ra) {
		return false
	}
	return t.nodes[a].Threshold < t.nodes[b].Threshold
}

// Crop returns the component pixels of segment id within its bounding box,
// addressed from (0, 0).
func (t *Tree) Crop(id int) (*raster.Bitmap, error) {
	if !t.live(id) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSegment, id)
	}
	if t.nodes[id].mask == nil {
		return nil, fmt.Errorf("%w: %d", ErrNoLayer, id)
	}
	return t.nodes[id].mask.Clone(), nil
}

// DominantPoints simplifies the outline of segment id to its dominant
// points in image pixel coordinates.
func (t *Tree) DominantPoints(id, support int, minAngle float64) (geometry.Polygon, error) {
	mask, err := t.Crop(id)
	if err != nil {
		return nil, err
	}
	b := t.nodes[id].Region.Bounds
	return mask.Trace().DominantPoints(support, minAngle).Translate(b.X, b.Y), nil
}

// Dump writes an indented text rendering of the hierarchy.
func (t *Tree) Dump(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "#### %d segments!\n", t.Len()-1); err != nil {
		return err
	}
	var walk func(id int) error
	walk = func(id int) error {
		s := &t.nodes[id]
		indent := strings.Repeat(" ", s.Depth)
		if s.IsRoot() {
			indent = "r"
		}
		r := s.Region
		if _, err := fmt.Fprintf(w, "%s%d: t=%d r=%v a=%d m=%.3f v=%.3f snr=%.3f (%d)\n",
			indent, s.Depth, s.Threshold, r.Bounds, r.Area, r.Mean, r.Variance, r.SNR, len(s.Children)); err != nil {
			return err
		}
		for _, c := range s.Children {
			if err := walk(c); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(t.root)
}
