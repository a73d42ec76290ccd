package model

import (
	"fmt"
	"log"
	"sort"

	"github.com/ironsheep/nuclei-tools-mcp/internal/channel"
	"github.com/ironsheep/nuclei-tools-mcp/internal/raster"
)

// Candidate pairs a stored model with a channel of the same kind.
type Candidate struct {
	Model   *ThresholdModel  `json:"model"`
	Channel *channel.Channel `json:"-"`
	// Similarity is the cosine similarity of the two PMFs.
	Similarity float64 `json:"similarity"`
	// Score is Similarity weighted by the model's training precision.
	Score float64 `json:"score"`
}

// Rank builds a candidate for every model whose channel kind matches one of
// channels, most similar first. Ties order by model name.
func Rank(channels []*channel.Channel, models []*ThresholdModel) []Candidate {
	var out []Candidate
	for _, c := range channels {
		pmf := c.PMF()
		for _, m := range models {
			if m.Channel != c.Kind() {
				continue
			}
			sim := m.Similarity(pmf)
			out = append(out, Candidate{Model: m, Channel: c, Similarity: sim, Score: sim * m.Precision})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Similarity != out[j].Similarity {
			return out[i].Similarity > out[j].Similarity
		}
		return out[i].Model.Name < out[j].Model.Name
	})
	return out
}

// PredictOptions controls Predict.
type PredictOptions struct {
	// MinSimilarity is the similarity the best candidate needs to be applied.
	MinSimilarity float64 `yaml:"minSimilarity"`
	// Candidates is how many top candidates are averaged when no model is
	// trusted.
	Candidates int         `yaml:"candidates"`
	Logger     *log.Logger `yaml:"-"`
}

// DefaultPredictOptions returns the standard prediction parameters.
func DefaultPredictOptions() PredictOptions {
	return PredictOptions{MinSimilarity: 0.8, Candidates: 5}
}

// Prediction is the outcome of Predict.
type Prediction struct {
	// Candidates holds the top ranked candidates considered.
	Candidates []Candidate `json:"candidates"`
	// Threshold is the applied threshold, or the mean of the top
	// candidates' thresholds when untrusted.
	Threshold float64 `json:"threshold"`
	Trusted   bool    `json:"trusted"`
	// Mask is the thresholded channel of a trusted prediction.
	Mask *raster.Bitmap `json:"-"`
}

// Predict applies the most similar model to its channel. When the best
// similarity is below opts.MinSimilarity the returned prediction carries
// only the mean threshold of the top candidates and the error wraps
// ErrUntrusted.
func Predict(channels []*channel.Channel, models []*ThresholdModel, opts PredictOptions) (*Prediction, error) {
	if len(channels) == 0 {
		return nil, ErrNoChannels
	}
	ranked := Rank(channels, models)
	if len(ranked) == 0 {
		return nil, ErrNoCandidates
	}
	n := opts.Candidates
	if n <= 0 || n > len(ranked) {
		n = len(ranked)
	}

	p := &Prediction{Candidates: ranked[:n]}
	best := ranked[0]
	if best.Similarity >= opts.MinSimilarity {
		mask, err := best.Model.Apply(best.Channel)
		if err != nil {
			return nil, err
		}
		p.Mask = mask
		p.Threshold = float64(best.Model.Threshold)
		p.Trusted = true
		return p, nil
	}

	for _, c := range p.Candidates {
		p.Threshold += float64(c.Model.Threshold)
		if opts.Logger != nil {
			opts.Logger.Printf("model: %s: score=%.5f sim=%.5f %v", c.Model.Name, c.Score, c.Similarity, c.Model)
		}
	}
	p.Threshold /= float64(n)
	return p, fmt.Errorf("%w: best similarity %.5f below %.5f, mean threshold %.1f",
		ErrUntrusted, best.Similarity, opts.MinSimilarity, p.Threshold)
}
