package vision

import (
	"context"
	"sort"
	"strings"
)

const (
	DefaultThreshold = 0.3
	DefaultMaxLabels = 5
)

// Tagger recognizes objects in an image. Labels come back most-confident
// first; an image with nothing recognizable yields an empty slice and no error.
type Tagger interface {
	Tag(ctx context.Context, img Buffer) ([]string, error)
}

// Candidate is a label with the backend's confidence in [0, 1].
type Candidate struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Options bounds what a tagger reports. Zero values select the defaults.
type Options struct {
	Threshold float64
	MaxLabels int
}

// WithDefaults fills unset fields.
func (o Options) WithDefaults() Options {
	if o.Threshold <= 0 {
		o.Threshold = DefaultThreshold
	}
	if o.MaxLabels <= 0 {
		o.MaxLabels = DefaultMaxLabels
	}
	return o
}

// Rank drops candidates below threshold, merges duplicate labels (keeping the
// highest confidence), sorts by confidence then label, and caps the result at max.
// A max of zero or less means no cap. The result is never nil.
func Rank(cands []Candidate, threshold float64, max int) []string {
	best := make(map[string]float64, len(cands))
	for _, c := range cands {
		label := strings.ToLower(strings.TrimSpace(c.Label))
		if label == "" || c.Confidence < threshold {
			continue
		}
		if prev, ok := best[label]; !ok || c.Confidence > prev {
			best[label] = c.Confidence
		}
	}

	kept := make([]Candidate, 0, len(best))
	for label, conf := range best {
		kept = append(kept, Candidate{Label: label, Confidence: conf})
	}
	sort.Slice(kept, func(i, j int) bool {
		if kept[i].Confidence != kept[j].Confidence {
			return kept[i].Confidence > kept[j].Confidence
		}
		return kept[i].Label < kept[j].Label
	})
	if max > 0 && len(kept) > max {
		kept = kept[:max]
	}

	labels := make([]string, len(kept))
	for i, c := range kept {
		labels[i] = c.Label
	}
	return labels
}
