package model

import (
	"errors"
	"fmt"
	"log"

	"gonum.org/v1/gonum/floats"

	"github.com/ironsheep/nuclei-tools-mcp/internal/channel"
	"github.com/ironsheep/nuclei-tools-mcp/internal/iou"
	"github.com/ironsheep/nuclei-tools-mcp/internal/raster"
)

// Version is the schema version written by Save.
const Version = 1

var (
	// ErrNoChannels is returned when training or prediction gets no input.
	ErrNoChannels = errors.New("no channels")

	// ErrNoThreshold is returned when no channel has a usable threshold
	// range.
	ErrNoThreshold = errors.New("no threshold to evaluate")

	// ErrNoCandidates is returned when no stored model matches any channel.
	ErrNoCandidates = errors.New("no model matches the channels")

	// ErrUntrusted is returned by Predict when the most similar model is
	// below the similarity floor.
	ErrUntrusted = errors.New("no sufficiently similar model")

	// ErrUnsupportedVersion is returned when loading a model written with
	// an unknown schema.
	ErrUnsupportedVersion = errors.New("unsupported model version")

	// ErrInvalidModel is returned for a model with inconsistent fields.
	ErrInvalidModel = errors.New("invalid model")
)

// ThresholdModel is a trained global threshold for one channel kind.
type ThresholdModel struct {
	Version int `yaml:"version" json:"version"`
	// Name identifies the training image.
	Name      string       `yaml:"name" json:"name"`
	Channel   channel.Kind `yaml:"channel" json:"channel"`
	Threshold int          `yaml:"threshold" json:"threshold"`
	// Precision is the mean IoU precision reached on the training image.
	Precision float64 `yaml:"precision" json:"precision"`
	// PMF is the 256-bin intensity mass function of the training channel.
	PMF []float64 `yaml:"pmf" json:"-"`
	// TMF is the foreground fraction at each threshold.
	TMF []float64 `yaml:"tmf" json:"-"`
}

// Apply thresholds src with the model's threshold.
func (m *ThresholdModel) Apply(src raster.Source) (*raster.Bitmap, error) {
	return raster.Threshold(src, m.Threshold)
}

// Similarity returns the cosine similarity between the model's PMF and pmf,
// or zero when either is empty or their lengths differ.
func (m *ThresholdModel) Similarity(pmf []float64) float64 {
	return Similarity(m.PMF, pmf)
}

// Similarity returns the cosine similarity of two mass functions.
func Similarity(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	den := floats.Norm(a, 2) * floats.Norm(b, 2)
	if den == 0 {
		return 0
	}
	return floats.Dot(a, b) / den
}

func (m *ThresholdModel) String() string {
	return fmt.Sprintf("ThresholdModel{channel=%s,precision=%.5f,threshold=%d}", m.Channel, m.Precision, m.Threshold)
}

func (m *ThresholdModel) validate() error {
	if m.Version != Version {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, m.Version)
	}
	if _, err := channel.ParseKind(string(m.Channel)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidModel, err)
	}
	if len(m.PMF) != 256 {
		return fmt.Errorf("%w: pmf has %d bins, want 256", ErrInvalidModel, len(m.PMF))
	}
	if m.TMF != nil && len(m.TMF) != 256 {
		return fmt.Errorf("%w: tmf has %d bins, want 256", ErrInvalidModel, len(m.TMF))
	}
	if m.Threshold < 0 || m.Threshold > 255 {
		return fmt.Errorf("%w: threshold %d", ErrInvalidModel, m.Threshold)
	}
	return nil
}

// TrainOptions controls Train.
type TrainOptions struct {
	// Name is stored in the model to identify the training image.
	Name   string
	Logger *log.Logger
}

// Train evaluates every threshold strictly between each channel's minimum
// and maximum intensity against eval and returns the model with the highest
// mean precision. Ties keep the earliest channel and threshold.
func Train(channels []*channel.Channel, eval *iou.Evaluator, opts TrainOptions) (*ThresholdModel, error) {
	if len(channels) == 0 {
		return nil, ErrNoChannels
	}

	var best *ThresholdModel
	for _, c := range channels {
		tmf := make([]float64, 256)
		total := float64(c.Width() * c.Height())
		won := false
		for t := c.Min() + 1; t < c.Max(); t++ {
			b, err := raster.Threshold(c, t)
			if err != nil {
				return nil, err
			}
			p, err := eval.Precision(b)
			if err != nil {
				return nil, fmt.Errorf("channel %s threshold %d: %w", c.Name(), t, err)
			}
			if best == nil || p > best.Precision {
				best = &ThresholdModel{
					Version:   Version,
					Name:      opts.Name,
					Channel:   c.Kind(),
					Threshold: t,
					Precision: p,
					PMF:       c.PMF(),
				}
				won = true
			}
			tmf[t] = float64(b.Area()) / total
		}
		if won {
			best.TMF = tmf
		}
		if opts.Logger != nil {
			opts.Logger.Printf("model: channel %s [%d,%d] evaluated", c.Name(), c.Min(), c.Max())
		}
	}

	if best == nil {
		return nil, ErrNoThreshold
	}
	if opts.Logger != nil {
		opts.Logger.Printf("model: best channel=%s precision=%.5f threshold=%d", best.Channel, best.Precision, best.Threshold)
	}
	return best, nil
}
