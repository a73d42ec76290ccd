package raster

// Source is a read-only 8-bit single-channel pixel grid.
type Source interface {
	Width() int
	Height() int
	// Get returns the intensity at (x, y). Callers stay within bounds.
	Get(x, y int) uint8
	// Min and Max return the smallest and largest intensity present.
	Min() int
	Max() int
	// PMF returns the 256-bin normalized intensity histogram.
	PMF() []float64
}

// Inverted reports whether thresholding src at t should treat the dark side
// as foreground: true when fewer than a third of the pixels fall below t.
func Inverted(src Source, t int) bool {
	w, h := src.Width(), src.Height()
	low := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if int(src.Get(x, y)) < t {
				low++
			}
		}
	}
	return low < w*h/3
}

// Threshold binarizes src at t, deciding the polarity with Inverted.
func Threshold(src Source, t int) (*Bitmap, error) {
	return ThresholdInverted(src, t, Inverted(src, t))
}

// ThresholdInverted binarizes src at t with a fixed polarity. A pixel is on
// when its value is strictly below t if inverted, or strictly above t
// otherwise; pixels equal to t are always off.
func ThresholdInverted(src Source, t int, inverted bool) (*Bitmap, error) {
	bm, err := New(src.Width(), src.Height())
	if err != nil {
		return nil, err
	}
	bm.fill(src, t, inverted)
	return bm, nil
}

// ThresholdInto is ThresholdInverted writing into an existing scratch bitmap
// of the same size, so a worker can reuse one allocation across thresholds.
func ThresholdInto(dst *Bitmap, src Source, t int, inverted bool) error {
	if dst.width != src.Width() || dst.height != src.Height() {
		return ErrInvalidSize
	}
	dst.Clear()
	dst.fill(src, t, inverted)
	return nil
}

func (b *Bitmap) fill(src Source, t int, inverted bool) {
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			p := int(src.Get(x, y))
			if (inverted && p < t) || (!inverted && p > t) {
				b.put(x, y, true)
			}
		}
	}
}
