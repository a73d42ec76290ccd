package rle

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ironsheep/nuclei-tools-mcp/internal/geometry"
	"github.com/ironsheep/nuclei-tools-mcp/internal/raster"
)

var (
	// ErrOddTokens is reported for a record whose run list does not hold an
	// even number of tokens. The record is skipped.
	ErrOddTokens = errors.New("odd number of run-length tokens")

	// ErrBadToken is reported for a record with a non-numeric, zero or
	// negative index or length. The record is skipped.
	ErrBadToken = errors.New("invalid run-length token")

	// ErrNoRuns is returned when a mask is built from no runs.
	ErrNoRuns = errors.New("no runs defined for mask")

	// ErrStrideMismatch is returned when runs are decoded into a raster
	// whose height differs from the runs' stride.
	ErrStrideMismatch = errors.New("run stride does not match raster height")
)

// Run is one vertical strip of on pixels.
type Run struct {
	// Index is the 1-based, column-major index of the first pixel.
	Index int `json:"index" yaml:"index"`
	// Len is the number of pixels in the strip.
	Len int `json:"len" yaml:"len"`
	// Stride is the height of the raster the run belongs to.
	Stride int `json:"-" yaml:"-"`
}

// NewRun creates a run from its index and length.
func NewRun(stride, index, length int) Run {
	return Run{Index: index, Len: length, Stride: stride}
}

// RunAt creates a run starting at pixel (x, y).
func RunAt(stride, x, y, length int) Run {
	return Run{Index: x*stride + y + 1, Len: length, Stride: stride}
}

// X returns the run's column.
func (r Run) X() int { return (r.Index - 1) / r.Stride }

// Y0 returns the first row of the run.
func (r Run) Y0() int { return (r.Index - 1) % r.Stride }

// Y1 returns the last row of the run, inclusive.
func (r Run) Y1() int { return r.Y0() + r.Len - 1 }

// Line returns the run as a vertical segment between its end pixels.
func (r Run) Line() geometry.Line {
	x := r.X()
	return geometry.Line{A: geometry.Point{X: x, Y: r.Y0()}, B: geometry.Point{X: x, Y: r.Y1()}}
}

func (r Run) String() string {
	return fmt.Sprintf("%d %d", r.Index, r.Len)
}

// SortRuns orders runs by index, then by length.
func SortRuns(runs []Run) {
	sort.Slice(runs, func(i, j int) bool {
		if runs[i].Index != runs[j].Index {
			return runs[i].Index < runs[j].Index
		}
		return runs[i].Len < runs[j].Len
	})
}

// TotalLen returns the number of pixels covered by the runs.
func TotalLen(runs []Run) int {
	n := 0
	for _, r := range runs {
		n += r.Len
	}
	return n
}

// Decode turns on the pixels of every run in b. Runs are validated before
// anything is written, so an invalid run leaves b untouched.
func Decode(b *raster.Bitmap, runs ...Run) error {
	for _, r := range runs {
		if r.Stride != b.Height() {
			return fmt.Errorf("%w: stride %d, height %d", ErrStrideMismatch, r.Stride, b.Height())
		}
		if r.Index < 1 || r.Len < 1 {
			return fmt.Errorf("%w: run %v", ErrBadToken, r)
		}
		if r.X() >= b.Width() || r.Y1() >= b.Height() {
			return fmt.Errorf("%w: run %v spans (%d,%d)-(%d,%d)", raster.ErrOutOfBounds, r, r.X(), r.Y0(), r.X(), r.Y1())
		}
	}
	for _, r := range runs {
		x := r.X()
		for y := r.Y0(); y <= r.Y1(); y++ {
			if err := b.Set(x, y, true); err != nil {
				return err
			}
		}
	}
	return nil
}

// DecodeAll rasterizes every mask into a new width x height bitmap.
func DecodeAll(width, height int, masks [][]Run) (*raster.Bitmap, error) {
	b, err := raster.New(width, height)
	if err != nil {
		return nil, err
	}
	for _, m := range masks {
		if err := Decode(b, m...); err != nil {
			return nil, err
		}
	}
	return b, nil
}
