package raster

import (
	"errors"
	"fmt"
	"math/bits"

	"github.com/ironsheep/nuclei-tools-mcp/internal/geometry"
)

var (
	// ErrOutOfBounds is returned for pixel coordinates outside the raster.
	ErrOutOfBounds = errors.New("pixel out of bounds")

	// ErrInvalidSize is returned when a raster is constructed with a zero or
	// negative dimension.
	ErrInvalidSize = errors.New("invalid raster size")
)

// Bitmap is a fixed-size binary raster.
type Bitmap struct {
	width  int
	height int
	words  []uint64
}

// New creates an all-off bitmap of the given size.
func New(width, height int) (*Bitmap, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	n := width * height
	return &Bitmap{
		width:  width,
		height: height,
		words:  make([]uint64, (n+63)/64),
	}, nil
}

// Width returns the number of columns.
func (b *Bitmap) Width() int { return b.width }

// Height returns the number of rows.
func (b *Bitmap) Height() int { return b.height }

// Bounds returns the rectangle covering the whole bitmap.
func (b *Bitmap) Bounds() geometry.Rect {
	return geometry.NewRect(0, 0, b.width, b.height)
}

func (b *Bitmap) inside(x, y int) bool {
	return x >= 0 && x < b.width && y >= 0 && y < b.height
}

// Set turns pixel (x, y) on or off.
func (b *Bitmap) Set(x, y int, on bool) error {
	if !b.inside(x, y) {
		return fmt.Errorf("%w: (%d,%d) in %dx%d raster", ErrOutOfBounds, x, y, b.width, b.height)
	}
	i := y*b.width + x
	if on {
		b.words[i>>6] |= 1 << (uint(i) & 63)
	} else {
		b.words[i>>6] &^= 1 << (uint(i) & 63)
	}
	return nil
}

// IsOn reports whether pixel (x, y) is on.
func (b *Bitmap) IsOn(x, y int) (bool, error) {
	if !b.inside(x, y) {
		return false, fmt.Errorf("%w: (%d,%d) in %dx%d raster", ErrOutOfBounds, x, y, b.width, b.height)
	}
	return b.at(x, y), nil
}

// at is the unchecked read used by the scanning algorithms. Pixels outside
// the raster read as off.
func (b *Bitmap) at(x, y int) bool {
	if !b.inside(x, y) {
		return false
	}
	i := y*b.width + x
	return b.words[i>>6]&(1<<(uint(i)&63)) != 0
}

// put is the unchecked write used internally on coordinates already known
// to be inside.
func (b *Bitmap) put(x, y int, on bool) {
	i := y*b.width + x
	if on {
		b.words[i>>6] |= 1 << (uint(i) & 63)
	} else {
		b.words[i>>6] &^= 1 << (uint(i) & 63)
	}
}

// Clear turns every pixel off.
func (b *Bitmap) Clear() {
	clear(b.words)
}

// Area returns the number of on pixels.
func (b *Bitmap) Area() int {
	n := 0
	for _, w := range b.words {
		n += bits.OnesCount64(w)
	}
	return n
}

// Clone returns a deep, independent copy.
func (b *Bitmap) Clone() *Bitmap {
	words := make([]uint64, len(b.words))
	copy(words, b.words)
	return &Bitmap{width: b.width, height: b.height, words: words}
}

// Equal reports whether both bitmaps have the same size and pixels.
func (b *Bitmap) Equal(o *Bitmap) bool {
	if o == nil || b.width != o.width || b.height != o.height {
		return false
	}
	for i, w := range b.words {
		if w != o.words[i] {
			return false
		}
	}
	return true
}

// Crop returns a new bitmap holding the pixels inside r, re-addressed so
// that r's top-left pixel becomes (0, 0).
func (b *Bitmap) Crop(r geometry.Rect) (*Bitmap, error) {
	if r.Empty() || !b.Bounds().ContainsRect(r) {
		return nil, fmt.Errorf("%w: crop region %v outside %dx%d raster", ErrOutOfBounds, r, b.width, b.height)
	}
	out, err := New(r.W, r.H)
	if err != nil {
		return nil, err
	}
	for y := 0; y < r.H; y++ {
		for x := 0; x < r.W; x++ {
			if b.at(r.X+x, r.Y+y) {
				out.put(x, y, true)
			}
		}
	}
	return out, nil
}

// RowHistogram returns, for every row, the number of on pixels.
func (b *Bitmap) RowHistogram() []int {
	hist := make([]int, b.height)
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			if b.at(x, y) {
				hist[y]++
			}
		}
	}
	return hist
}

// ColumnHistogram returns, for every column, the number of on pixels.
func (b *Bitmap) ColumnHistogram() []int {
	hist := make([]int, b.width)
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			if b.at(x, y) {
				hist[x]++
			}
		}
	}
	return hist
}

func (b *Bitmap) String() string {
	return fmt.Sprintf("Bitmap{%dx%d, area=%d}", b.width, b.height, b.Area())
}
