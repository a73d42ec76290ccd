package segment

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Fit is a linear fit of region area against threshold along a window of a
// root path, starting at segment Start and extending to Stop.
type Fit struct {
	Start     int     `json:"start"`
	Stop      int     `json:"stop"`
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	// Err is the prediction error that ended the window, or zero when the
	// window reached the end of the path.
	Err float64 `json:"err"`
	Len int     `json:"len"`
	// Score is Len/Slope, or zero for a flat fit.
	Score float64 `json:"score"`
}

// Candidate is a leaf whose fit agrees with the majority slope sign, with
// the successive windows fitted up its root path.
type Candidate struct {
	Leaf    int   `json:"leaf"`
	Windows []Fit `json:"windows"`
	// Best is the window with the largest |Score|.
	Best Fit `json:"best"`
	// Strong is set when |Best.Score| exceeds the configured minimum.
	Strong bool `json:"strong"`
	// Boundary is the segment proposed as the object boundary.
	Boundary int `json:"boundary"`
}

// Analysis is the outcome of trend fitting over all leaves.
type Analysis struct {
	Fits       []Fit       `json:"fits"`
	Positive   int         `json:"positive"`
	Negative   int         `json:"negative"`
	Candidates []Candidate `json:"candidates"`
}

// Analyze fits every leaf's root path and reports the candidates whose
// slope sign is held by a strict majority of fits. A tie yields none.
func (t *Tree) Analyze() Analysis {
	leaves := t.Leaves()
	rootLen := make(map[int]int, len(leaves))
	branchLen := make(map[int]int, len(leaves))
	for _, id := range leaves {
		rootLen[id] = len(t.RootPath(id))
		branchLen[id] = len(t.BranchAncestorPath(id))
	}
	sort.SliceStable(leaves, func(a, b int) bool {
		la, lb := leaves[a], leaves[b]
		ra, rb := t.nodes[la].Region, t.nodes[lb].Region
		switch {
		case rootLen[la] != rootLen[lb]:
			return rootLen[la] > rootLen[lb]
		case branchLen[la] != branchLen[lb]:
			return branchLen[la] > branchLen[lb]
		case ra.Area != rb.Area:
			return ra.Area > rb.Area
		case ra.Bounds.X != rb.Bounds.X:
			return ra.Bounds.X < rb.Bounds.X
		default:
			return ra.Bounds.Y < rb.Bounds.Y
		}
	})

	var a Analysis
	for _, id := range leaves {
		f, ok := t.fitFrom(id)
		if !ok {
			continue
		}
		a.Fits = append(a.Fits, f)
		switch {
		case f.Slope > 0:
			a.Positive++
		case f.Slope < 0:
			a.Negative++
		}
	}

	for _, f := range a.Fits {
		if (f.Slope > 0 && a.Positive > a.Negative) || (f.Slope < 0 && a.Negative > a.Positive) {
			a.Candidates = append(a.Candidates, t.candidate(f))
		}
	}
	t.opts.logf("segment: %d fit(s), %d positive, %d negative, %d candidate(s)",
		len(a.Fits), a.Positive, a.Negative, len(a.Candidates))
	return a
}

// candidate walks successive windows up the root path, each starting at the
// parent of the previous window's stop.
func (t *Tree) candidate(first Fit) Candidate {
	c := Candidate{Leaf: first.Start, Windows: []Fit{first}}
	f := first
	for {
		next := t.nodes[f.Stop].Parent
		if next < 0 || next == t.root {
			break
		}
		var ok bool
		if f, ok = t.fitFrom(next); !ok {
			break
		}
		c.Windows = append(c.Windows, f)
	}

	c.Best = c.Windows[0]
	for _, f := range c.Windows[1:] {
		if math.Abs(f.Score) > math.Abs(c.Best.Score) {
			c.Best = f
		}
	}
	c.Strong = math.Abs(c.Best.Score) > t.opts.AbsMinScore
	c.Boundary = c.Best.Stop
	return c
}

// fitFrom fits the root path of id. ok is false when the path is shorter
// than the minimum window.
func (t *Tree) fitFrom(id int) (Fit, bool) {
	path := t.RootPath(id)
	minLen := max(2, t.opts.MinPath)
	if len(path) < minLen {
		return Fit{}, false
	}
	xs := make([]float64, len(path))
	ys := make([]float64, len(path))
	for i, p := range path {
		xs[i] = float64(t.nodes[p].Threshold)
		ys[i] = float64(t.nodes[p].Region.Area)
	}

	f := extend(xs, ys, minLen, t.opts.MaxError)
	f.Start, f.Stop = id, path[f.Len-1]
	return f, true
}

// extend fits the first minLen points and grows the window while the
// current fit predicts the next point within maxErr.
func extend(xs, ys []float64, minLen int, maxErr float64) Fit {
	n := minLen
	alpha, beta := regress(xs[:n], ys[:n])
	var lastErr float64
	for n < len(xs) {
		e := math.Abs(alpha + beta*xs[n] - ys[n])
		if e > maxErr {
			lastErr = e
			break
		}
		n++
		alpha, beta = regress(xs[:n], ys[:n])
	}

	f := Fit{Slope: beta, Intercept: alpha, Err: lastErr, Len: n}
	if beta != 0 {
		f.Score = float64(n) / beta
	}
	return f
}

// regress returns the least-squares intercept and slope of ys on xs. A
// window with constant x has slope zero through the mean of ys.
func regress(xs, ys []float64) (alpha, beta float64) {
	if _, v := stat.PopMeanVariance(xs, nil); v == 0 {
		return stat.Mean(ys, nil), 0
	}
	return stat.LinearRegression(xs, ys, nil, false)
}
