package segment

import (
	"runtime"
	"sort"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/ironsheep/nuclei-tools-mcp/internal/geometry"
	"github.com/ironsheep/nuclei-tools-mcp/internal/raster"
)

// candidate is a region found by the sweep before it joins the arena.
type candidate struct {
	region    Region
	layer     int
	threshold int
	mask      *raster.Bitmap
}

// Build sweeps src over every threshold strictly between its minimum and
// maximum intensity, assembles the regions into a containment tree and
// prunes it with opts.MinPath. A channel with fewer than three distinct
// levels yields a tree holding only the root.
func Build(src raster.Source, opts Options) (*Tree, error) {
	w, h := src.Width(), src.Height()
	if w <= 0 || h <= 0 {
		return nil, raster.ErrInvalidSize
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}

	full := geometry.NewRect(0, 0, w, h)
	t := &Tree{width: w, height: h, opts: opts}

	var cands []candidate
	lo, hi := src.Min()+1, src.Max()-1
	if lo <= hi {
		t.inverted = raster.Inverted(src, (src.Min()+src.Max()+1)/2)
		if opts.Inverted != nil {
			t.inverted = *opts.Inverted
		}
		layers, found, err := sweep(src, lo, hi, t.inverted, opts)
		if err != nil {
			return nil, err
		}
		t.layers = layers
		cands = found
	}
	opts.logf("segment: %d layer(s), %d region(s), inverted=%v", len(t.layers), len(cands), t.inverted)

	sort.SliceStable(cands, func(a, b int) bool {
		ra, rb := cands[a].region, cands[b].region
		if ra.less(rb) {
			return true
		}
		if rb.less(ra) {
			return false
		}
		return cands[a].threshold < cands[b].threshold
	})

	t.nodes = make([]Segment, 0, len(cands)+1)
	var prev geometry.Rect
	for _, c := range cands {
		b := c.region.Bounds
		if b == full || b == prev {
			prev = b
			continue
		}
		prev = b
		t.nodes = append(t.nodes, Segment{
			ID:        len(t.nodes),
			Region:    c.region,
			Layer:     &t.layers[c.layer],
			Threshold: c.threshold,
			Parent:    -1,
			mask:      c.mask,
		})
	}
	t.root = len(t.nodes)
	t.nodes = append(t.nodes, Segment{
		ID:        t.root,
		Region:    NewRegion(src, geometry.RectPolygon(full)),
		Threshold: -1,
		Parent:    -1,
	})

	ids := make([]int, len(t.nodes))
	for i := range ids {
		ids[i] = i
	}
	t.link(ids)
	opts.logf("segment: %d segment(s) after dedupe", len(t.nodes)-1)

	if opts.MinPath > 0 {
		t.Prune(opts.MinPath)
	}
	return t, nil
}

// sweep thresholds src at lo..hi on opts.Workers goroutines. Results are
// stored by layer index so the output does not depend on scheduling.
func sweep(src raster.Source, lo, hi int, inverted bool, opts Options) ([]Layer, []candidate, error) {
	n := hi - lo + 1
	layers := make([]Layer, n)
	found := make([][]candidate, n)

	workers := min(opts.Workers, n)
	scratch := make([]*raster.Bitmap, workers)
	for i := range scratch {
		b, err := raster.New(src.Width(), src.Height())
		if err != nil {
			return nil, nil, err
		}
		scratch[i] = b
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for _, bm := range scratch {
		wg.Add(1)
		go func(bm *raster.Bitmap) {
			defer wg.Done()
			for i := range jobs {
				layers[i], found[i] = scanLayer(bm, src, i, lo+i, inverted, opts.MinArea)
			}
		}(bm)
	}
	for i := 0; i < n; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	var out []candidate
	for _, cs := range found {
		out = append(out, cs...)
	}
	return layers, out, nil
}

func scanLayer(bm *raster.Bitmap, src raster.Source, layer, threshold int, inverted bool, minArea int) (Layer, []candidate) {
	// Sizes match by construction.
	_ = raster.ThresholdInto(bm, src, threshold, inverted)

	var cs []candidate
	var areas []float64
	for _, c := range bm.PolyComponents() {
		r := NewRegion(src, c.Polygon)
		if r.Area <= minArea {
			continue
		}
		cs = append(cs, candidate{
			region:    r,
			layer:     layer,
			threshold: threshold,
			mask:      componentMask(bm, c),
		})
		areas = append(areas, float64(r.Area))
	}

	l := Layer{Threshold: threshold, Regions: len(cs)}
	if len(areas) > 0 {
		l.MeanArea, l.VarArea = stat.PopMeanVariance(areas, nil)
	}
	return l, cs
}

// componentMask copies the pixels of one component into a bitmap the size
// of its bounding box.
func componentMask(bm *raster.Bitmap, c raster.Component) *raster.Bitmap {
	b := c.Bounds
	mask, err := raster.New(b.W, b.H)
	if err != nil {
		return nil
	}
	for y := b.Y; y < b.MaxY(); y++ {
		for x := b.X; x < b.MaxX(); x++ {
			if on, _ := bm.IsOn(x, y); on && c.Polygon.Contains(x, y) {
				_ = mask.Set(x-b.X, y-b.Y, true)
			}
		}
	}
	return mask
}
