package raster

import (
	"github.com/ironsheep/nuclei-tools-mcp/internal/geometry"
)

// interval is a half-open run [start, end) of a smoothed histogram above
// the split threshold.
type interval struct {
	start, end int
}

// RegionsOfInterest splits the bitmap top-down into a grid of rectangles
// using its projection histograms, as used for separating plates or
// colonies that are laid out on a grid.
//
// Each histogram is smoothed by averaging the mean of up to window bins on
// the left with the mean of up to window bins on the right. Runs of bins
// whose smoothed value exceeds threshold become intervals; every pairing of
// a column interval with a row interval is one region. Histograms shorter
// than two bins yield no regions.
func (b *Bitmap) RegionsOfInterest(window int, threshold float64) []geometry.Rect {
	rows := intervals(smooth(b.RowHistogram(), window), threshold)
	cols := intervals(smooth(b.ColumnHistogram(), window), threshold)

	roi := make([]geometry.Rect, 0, len(rows)*len(cols))
	for _, c := range cols {
		for _, r := range rows {
			roi = append(roi, geometry.NewRect(c.start, r.start, c.end-c.start, r.end-r.start))
		}
	}
	return roi
}

func smooth(signal []int, window int) []float64 {
	out := make([]float64, len(signal))
	for i := range signal {
		var left, right float64
		lo := max(i-window, 0)
		for j := lo; j < i; j++ {
			left += float64(signal[j])
		}
		if i > lo {
			left /= float64(i - lo)
		}
		hi := min(i+window+1, len(signal))
		for j := i + 1; j < hi; j++ {
			right += float64(signal[j])
		}
		if hi > i+1 {
			right /= float64(hi - i - 1)
		}
		out[i] = (left + right) / 2
	}
	return out
}

func intervals(signal []float64, threshold float64) []interval {
	if len(signal) < 2 {
		return nil
	}
	var out []interval
	open := false
	for i := 1; i < len(signal); i++ {
		switch {
		case signal[i] > threshold && signal[i-1] <= threshold:
			out = append(out, interval{start: i})
			open = true
		case signal[i] <= threshold && signal[i-1] > threshold && open:
			out[len(out)-1].end = i
			open = false
		}
	}
	if open {
		out[len(out)-1].end = len(signal)
	}
	return out
}
