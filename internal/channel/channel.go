package channel

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/ironsheep/nuclei-tools-mcp/internal/geometry"
	"github.com/ironsheep/nuclei-tools-mcp/internal/raster"
)

// ErrInvalidChannel is returned when a channel is built from inconsistent
// dimensions or pixel data.
var ErrInvalidChannel = errors.New("invalid channel")

// Channel is an 8-bit single-channel pixel grid.
//
// Channel implements raster.Source.
type Channel struct {
	kind   Kind
	width  int
	height int
	pix    []uint8
	hist   [256]int
	pmin   int
	pmax   int
}

var _ raster.Source = (*Channel)(nil)

// New creates a channel from row-major pixel data.
//
// Parameters:
//   - kind: The channel kind, used for naming and model matching.
//   - width, height: Dimensions in pixels. Both must be positive.
//   - pix: Exactly width*height samples. The slice is copied.
//
// Returns an error wrapping ErrInvalidChannel if the dimensions are not
// positive or the sample count does not match.
func New(kind Kind, width, height int, pix []uint8) (*Channel, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: size %dx%d", ErrInvalidChannel, width, height)
	}
	if len(pix) != width*height {
		return nil, fmt.Errorf("%w: %d samples for %dx%d", ErrInvalidChannel, len(pix), width, height)
	}
	c := &Channel{
		kind:   kind,
		width:  width,
		height: height,
		pix:    append([]uint8(nil), pix...),
	}
	c.index()
	return c, nil
}

// index computes the histogram and intensity range.
func (c *Channel) index() {
	c.pmin, c.pmax = 255, 0
	for _, p := range c.pix {
		c.hist[p]++
		c.pmin = min(c.pmin, int(p))
		c.pmax = max(c.pmax, int(p))
	}
}

// Kind returns the channel kind.
func (c *Channel) Kind() Kind { return c.kind }

// Name returns the channel kind as a string.
func (c *Channel) Name() string { return string(c.kind) }

// Width returns the channel width in pixels.
func (c *Channel) Width() int { return c.width }

// Height returns the channel height in pixels.
func (c *Channel) Height() int { return c.height }

// Get returns the intensity at (x, y).
func (c *Channel) Get(x, y int) uint8 { return c.pix[y*c.width+x] }

// Min returns the smallest intensity present.
func (c *Channel) Min() int { return c.pmin }

// Max returns the largest intensity present.
func (c *Channel) Max() int { return c.pmax }

// Histogram returns a copy of the 256-bin intensity histogram.
func (c *Channel) Histogram() [256]int { return c.hist }

// PMF returns the histogram normalized to sum to one.
func (c *Channel) PMF() []float64 {
	pmf := make([]float64, 256)
	total := float64(len(c.pix))
	for i, n := range c.hist {
		pmf[i] = float64(n) / total
	}
	return pmf
}

// Stats summarizes the intensities of a channel, or of a region of it.
type Stats struct {
	Count    int     `json:"count"`
	Mean     float64 `json:"mean"`
	Variance float64 `json:"variance"`
	Min      int     `json:"min"`
	Max      int     `json:"max"`
}

// Stats returns the population statistics of the whole channel.
func (c *Channel) Stats() Stats {
	var sum, sq float64
	for i, n := range c.hist {
		v := float64(i)
		sum += v * float64(n)
		sq += v * v * float64(n)
	}
	count := float64(len(c.pix))
	mean := sum / count
	return Stats{
		Count:    len(c.pix),
		Mean:     mean,
		Variance: math.Max(0, sq/count-mean*mean),
		Min:      c.pmin,
		Max:      c.pmax,
	}
}

// Crop returns the part of the channel inside r as a new channel.
func (c *Channel) Crop(r geometry.Rect) (*Channel, error) {
	full := geometry.NewRect(0, 0, c.width, c.height)
	if !full.ContainsRect(r) {
		return nil, fmt.Errorf("%w: crop region %v outside %dx%d channel", ErrInvalidChannel, r, c.width, c.height)
	}
	pix := make([]uint8, 0, r.Area())
	for y := r.Y; y < r.MaxY(); y++ {
		pix = append(pix, c.pix[y*c.width+r.X:y*c.width+r.MaxX()]...)
	}
	return New(c.kind, r.W, r.H, pix)
}

// Image returns the channel as a grayscale image sharing no memory with it.
func (c *Channel) Image() *image.Gray {
	return &image.Gray{
		Pix:    append([]uint8(nil), c.pix...),
		Stride: c.width,
		Rect:   image.Rect(0, 0, c.width, c.height),
	}
}

func (c *Channel) String() string {
	return fmt.Sprintf("Channel{%s, %dx%d, range=[%d,%d]}", c.kind, c.width, c.height, c.pmin, c.pmax)
}
