package model

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/couchcryptid/career-scoring-engine/internal/domain"
)

// Options controls training. The zero value is not useful; start from
// DefaultOptions.
type Options struct {
	Seed             int64
	SyntheticSamples int
	Trees            int
}

// DefaultOptions returns the production training settings.
func DefaultOptions() Options {
	return Options{Seed: 42, SyntheticSamples: 2000, Trees: 100}
}

// Scorer is the rule engine used to label synthetic samples.
type Scorer interface {
	Score(fs domain.FeatureSet) domain.RuleScores
	Careers() []domain.Career
}

// Sample is one labelled training example.
type Sample struct {
	Features domain.FeatureSet
	Label    domain.Career
}

// Train fits a Model on the corpus plus synthetic samples labelled by the
// scorer. Training is deterministic for a given seed.
func Train(scorer Scorer, corpus []Individual, opts Options) (*Model, error) {
	if opts.Trees < 1 {
		return nil, fmt.Errorf("train model: trees must be positive, got %d", opts.Trees)
	}
	if opts.SyntheticSamples < 0 {
		return nil, fmt.Errorf("train model: synthetic samples must not be negative, got %d", opts.SyntheticSamples)
	}
	rng := rand.New(rand.NewSource(opts.Seed)) //nolint:gosec // reproducible training, not security

	samples := make([]Sample, 0, len(corpus)+opts.SyntheticSamples)
	for _, ind := range corpus {
		samples = append(samples, Sample{Features: ind.FeatureSet(), Label: ind.Career})
	}
	samples = append(samples, Synthesize(rng, scorer, opts.SyntheticSamples)...)

	labels := scorer.Careers()
	samples = EnsureCoverage(rng, labels, samples)

	index := make(map[domain.Career]int, len(labels))
	for i, c := range labels {
		index[c] = i
	}
	x := make([][]float64, 0, len(samples))
	y := make([]int, 0, len(samples))
	trained := make(map[domain.Career]bool, len(labels))
	for _, s := range samples {
		i, ok := index[s.Label]
		if !ok {
			i = len(labels)
			labels = append(labels, s.Label)
			index[s.Label] = i
		}
		x = append(x, s.Features.Vector())
		y = append(y, i)
		trained[s.Label] = true
	}

	forest, err := FitForest(x, y, len(labels), ForestOptions{
		Trees: opts.Trees,
		Seed:  rng.Int63(),
	})
	if err != nil {
		return nil, fmt.Errorf("train model: %w", err)
	}

	return &Model{
		forest:  forest,
		labels:  labels,
		trained: trained,
		samples: len(samples),
	}, nil
}

// Synthesize draws n random charts, scores each with the rule engine and
// labels it with a career sampled from the top three in proportion to score.
// When every score is zero the label is drawn uniformly from the top three.
func Synthesize(rng *rand.Rand, scorer Scorer, n int) []Sample {
	order := scorer.Careers()
	out := make([]Sample, 0, n)
	for i := 0; i < n; i++ {
		fs := RandomChart(rng)
		top := topScores(order, scorer.Score(fs), 3)
		out = append(out, Sample{Features: fs, Label: sampleLabel(rng, top)})
	}
	return out
}

// EnsureCoverage appends one random-chart sample for every label that has no
// sample yet, so the classifier can emit a probability for each career.
func EnsureCoverage(rng *rand.Rand, labels []domain.Career, samples []Sample) []Sample {
	seen := make(map[domain.Career]bool, len(labels))
	for _, s := range samples {
		seen[s.Label] = true
	}
	for _, c := range labels {
		if !seen[c] {
			samples = append(samples, Sample{Features: RandomChart(rng), Label: c})
		}
	}
	return samples
}

// RandomChart places every core planet in a uniformly random house and sign.
func RandomChart(rng *rand.Rand) domain.FeatureSet {
	placements := make(map[domain.Planet]domain.Placement, len(domain.CorePlanets))
	for _, p := range domain.CorePlanets {
		placements[p] = domain.Placement{House: rng.Intn(12) + 1, Sign: rng.Intn(12)}
	}
	return domain.NewFeatureSet(placements)
}

// topScores returns the n best careers, ties in declared order.
func topScores(order []domain.Career, scores domain.RuleScores, n int) []domain.CareerWeight {
	all := make([]domain.CareerWeight, 0, len(order))
	for _, c := range order {
		all = append(all, domain.CareerWeight{Career: c, Weight: scores[c]})
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].Weight > all[j].Weight })
	if n > len(all) {
		n = len(all)
	}
	return all[:n]
}

func sampleLabel(rng *rand.Rand, top []domain.CareerWeight) domain.Career {
	total := 0.0
	for _, w := range top {
		total += w.Weight
	}
	if total == 0 {
		return top[rng.Intn(len(top))].Career
	}
	r := rng.Float64() * total
	for _, w := range top {
		r -= w.Weight
		if r < 0 {
			return w.Career
		}
	}
	return top[len(top)-1].Career
}
