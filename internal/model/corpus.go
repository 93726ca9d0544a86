package model

import (
	_ "embed"
	"fmt"

	"github.com/couchcryptid/career-scoring-engine/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed corpus.yaml
var corpusYAML []byte

// Individual is a reference chart with a known career.
type Individual struct {
	Name         string                             `yaml:"name" json:"name"`
	BirthDate    string                             `yaml:"birth_date" json:"birth_date"`
	Career       domain.Career                      `yaml:"career" json:"career"`
	Achievements string                             `yaml:"achievements" json:"achievements"`
	Placements   map[domain.Planet]domain.Placement `yaml:"placements" json:"placements"`
}

// FeatureSet normalizes the individual's placements.
func (i Individual) FeatureSet() domain.FeatureSet {
	return domain.NormalizeNested(i.Placements)
}

// SeedCorpus parses the embedded reference individuals.
func SeedCorpus() ([]Individual, error) {
	return ParseCorpus(corpusYAML)
}

// ParseCorpus decodes a YAML list of individuals and rejects entries whose
// career is outside the vocabulary or whose placements are out of range.
func ParseCorpus(data []byte) ([]Individual, error) {
	var people []Individual
	if err := yaml.Unmarshal(data, &people); err != nil {
		return nil, fmt.Errorf("decode corpus: %w", err)
	}
	for _, p := range people {
		if !domain.IsKnownCareer(p.Career) {
			return nil, fmt.Errorf("corpus entry %q: unknown career %q", p.Name, p.Career)
		}
		if err := domain.Validate(domain.NestedChart(p.Placements)); err != nil {
			return nil, fmt.Errorf("corpus entry %q: %w", p.Name, err)
		}
	}
	return people, nil
}
