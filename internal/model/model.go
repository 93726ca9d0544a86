// Package model implements the statistical half of career scoring: a seeded
// random forest trained once on reference charts plus rule-labelled synthetic
// charts. A trained Model is immutable and shared by all requests.
package model

import (
	"fmt"

	"github.com/couchcryptid/career-scoring-engine/internal/domain"
)

// Model maps feature sets to per-career probabilities.
type Model struct {
	forest  *Forest
	labels  []domain.Career
	trained map[domain.Career]bool
	samples int
}

// Probabilities returns a probability in [0,1] for every label. Labels the
// forest never saw during training get domain.FloorProbability. A nil or
// unfitted model returns domain.ErrModelUnavailable.
func (m *Model) Probabilities(fs domain.FeatureSet) (map[domain.Career]float64, error) {
	if m == nil || m.forest == nil {
		return nil, domain.ErrModelUnavailable
	}
	proba, err := m.forest.PredictProba(fs.Vector())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrModelUnavailable, err)
	}

	out := make(map[domain.Career]float64, len(m.labels))
	for i, c := range m.labels {
		if !m.trained[c] || i >= len(proba) {
			out[c] = domain.FloorProbability
			continue
		}
		out[c] = proba[i]
	}
	return out, nil
}

// Labels returns the careers the model scores, in training order.
func (m *Model) Labels() []domain.Career {
	return append([]domain.Career(nil), m.labels...)
}

// SampleCount is the number of training samples, seed corpus included.
func (m *Model) SampleCount() int { return m.samples }

// Build trains a model from the embedded seed corpus.
func Build(scorer Scorer, opts Options) (*Model, error) {
	corpus, err := SeedCorpus()
	if err != nil {
		return nil, fmt.Errorf("load seed corpus: %w", err)
	}
	return Train(scorer, corpus, opts)
}
