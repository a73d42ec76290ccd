// Package iou scores candidate segmentations against ground-truth nuclei
// masks with the mean average precision over IoU thresholds used by the
// 2018 Data Science Bowl.
//
// Every ground-truth object is matched, in the order it was supplied, to the
// not yet matched candidate component with the highest intersection over
// union. Matching does not depend on the threshold: a match below the
// threshold still consumes its candidate and counts as a false negative.
//
// Objects taken from a raster own exactly the pixels of their 8-connected
// component. A component lying inside another's hole is a separate object
// and does not enlarge the outer one.
package iou

import (
	"errors"
	"fmt"

	"github.com/ironsheep/nuclei-tools-mcp/internal/geometry"
	"github.com/ironsheep/nuclei-tools-mcp/internal/raster"
	"github.com/ironsheep/nuclei-tools-mcp/internal/rle"
)

// ErrSizeMismatch is returned when a candidate raster does not have the
// dimensions of the ground truth.
var ErrSizeMismatch = errors.New("candidate size differs from ground truth")

// Thresholds are the IoU levels averaged by Precision.
var Thresholds = []float64{0.5, 0.55, 0.6, 0.65, 0.7, 0.75, 0.8, 0.85, 0.9, 0.95}

// object is one labelled region with exact pixel membership.
type object struct {
	bounds geometry.Rect
	has    func(x, y int) bool
	runs   []rle.Run
}

// Evaluator holds the ground truth for one image.
type Evaluator struct {
	truth   *raster.Bitmap
	objects []object
}

// New rasterizes the ground-truth masks of a width x height image. A nil
// mask collection, or a mask without runs, is a configuration error.
func New(width, height int, masks [][]rle.Run) (*Evaluator, error) {
	if masks == nil {
		return nil, fmt.Errorf("%w: nil mask collection", rle.ErrNoRuns)
	}
	truth, err := raster.New(width, height)
	if err != nil {
		return nil, err
	}

	e := &Evaluator{truth: truth, objects: make([]object, 0, len(masks))}
	for i, runs := range masks {
		m, err := rle.NewMask(fmt.Sprintf("%d", i+1), runs)
		if err != nil {
			return nil, err
		}
		if err := rle.Decode(truth, m.Runs...); err != nil {
			return nil, fmt.Errorf("mask %d: %w", i+1, err)
		}
		e.objects = append(e.objects, object{bounds: m.Bounds, has: m.Has, runs: m.Runs})
	}
	return e, nil
}

// FromRaster uses the connected components of a ground-truth raster as the
// truth objects. The raster is cloned.
func FromRaster(truth *raster.Bitmap) (*Evaluator, error) {
	if truth == nil {
		return nil, fmt.Errorf("%w: nil truth raster", raster.ErrInvalidSize)
	}
	t := truth.Clone()
	e := &Evaluator{truth: t}
	labels, comps := t.Label()
	for i, c := range comps {
		o := componentObject(labels, i+1, c)
		o.runs = objectRuns(t.Height(), o)
		e.objects = append(e.objects, o)
	}
	return e, nil
}

// componentObject owns exactly the pixels labelled id, so a component
// nested in another's hole is not part of the outer object.
func componentObject(labels raster.Labels, id int, c raster.Component) object {
	return object{
		bounds: c.Bounds,
		has: func(x, y int) bool {
			return labels.At(x, y) == id
		},
	}
}

func objectRuns(stride int, o object) []rle.Run {
	var runs []rle.Run
	for x := o.bounds.X; x < o.bounds.MaxX(); x++ {
		start, n := 0, 0
		for y := o.bounds.Y; y <= o.bounds.MaxY(); y++ {
			if y < o.bounds.MaxY() && o.has(x, y) {
				if n == 0 {
					start = y
				}
				n++
			} else if n > 0 {
				runs = append(runs, rle.RunAt(stride, x, start, n))
				n = 0
			}
		}
	}
	return runs
}

// Truth returns the rasterized ground truth. It must not be modified.
func (e *Evaluator) Truth() *raster.Bitmap { return e.truth }

// Len returns the number of ground-truth objects.
func (e *Evaluator) Len() int { return len(e.objects) }

// Masks returns the run lists of the ground-truth objects.
func (e *Evaluator) Masks() [][]rle.Run {
	out := make([][]rle.Run, len(e.objects))
	for i, o := range e.objects {
		out[i] = append([]rle.Run(nil), o.runs...)
	}
	return out
}

// Score is the outcome at one IoU threshold.
type Score struct {
	Threshold float64 `json:"threshold"`
	TP        int     `json:"true_positives"`
	FP        int     `json:"false_positives"`
	FN        int     `json:"false_negatives"`
	Precision float64 `json:"precision"`
}

// Precision returns the mean precision of candidate over all Thresholds.
func (e *Evaluator) Precision(candidate *raster.Bitmap) (float64, error) {
	scores, err := e.Scores(candidate)
	if err != nil {
		return 0, err
	}
	var sum float64
	for _, s := range scores {
		sum += s.Precision
	}
	return sum / float64(len(scores)), nil
}

// PrecisionAt returns the precision of candidate at a single threshold.
func (e *Evaluator) PrecisionAt(candidate *raster.Bitmap, threshold float64) (float64, error) {
	ious, unmatched, err := e.match(candidate)
	if err != nil {
		return 0, err
	}
	return score(ious, unmatched, threshold).Precision, nil
}

// Scores returns the per-threshold detail for candidate.
func (e *Evaluator) Scores(candidate *raster.Bitmap) ([]Score, error) {
	ious, unmatched, err := e.match(candidate)
	if err != nil {
		return nil, err
	}
	out := make([]Score, len(Thresholds))
	for i, t := range Thresholds {
		out[i] = score(ious, unmatched, t)
	}
	return out, nil
}

// score classifies the matches at one threshold. ious holds the IoU of each
// truth object's match, or a negative value when it has none.
func score(ious []float64, unmatched int, threshold float64) Score {
	s := Score{Threshold: threshold, FP: unmatched}
	for _, v := range ious {
		if v >= threshold {
			s.TP++
		} else {
			s.FN++
		}
	}
	if s.TP > 0 {
		s.Precision = float64(s.TP) / float64(s.TP+s.FP+s.FN)
	}
	return s
}

// match pairs truth objects with candidate components and returns the IoU
// of every truth object's match (-1 when unmatched) and the number of
// candidates left unmatched.
func (e *Evaluator) match(candidate *raster.Bitmap) ([]float64, int, error) {
	if candidate == nil || candidate.Width() != e.truth.Width() || candidate.Height() != e.truth.Height() {
		return nil, 0, fmt.Errorf("%w: want %dx%d", ErrSizeMismatch, e.truth.Width(), e.truth.Height())
	}

	labels, comps := candidate.Label()
	cands := make([]object, len(comps))
	for i, c := range comps {
		cands[i] = componentObject(labels, i+1, c)
	}

	used := make([]bool, len(cands))
	ious := make([]float64, len(e.objects))
	unmatched := len(cands)

	for i, o := range e.objects {
		best, bestIoU := -1, 0.0
		for j, c := range cands {
			if used[j] || !o.bounds.Intersects(c.bounds) {
				continue
			}
			v, ok := overlap(o, c)
			if ok && (best < 0 || v > bestIoU) {
				best, bestIoU = j, v
			}
		}
		if best < 0 {
			ious[i] = -1
			continue
		}
		used[best] = true
		unmatched--
		ious[i] = bestIoU
	}
	return ious, unmatched, nil
}

// overlap computes the IoU of two objects by classifying every pixel in the
// union of their bounding boxes. ok is false when they share no pixel.
func overlap(a, b object) (float64, bool) {
	u := a.bounds.Union(b.bounds)
	var both, onlyA, onlyB int
	for y := u.Y; y < u.MaxY(); y++ {
		for x := u.X; x < u.MaxX(); x++ {
			inA, inB := a.has(x, y), b.has(x, y)
			switch {
			case inA && inB:
				both++
			case inA:
				onlyA++
			case inB:
				onlyB++
			}
		}
	}
	if both == 0 {
		return 0, false
	}
	return float64(both) / float64(both+onlyA+onlyB), true
}
