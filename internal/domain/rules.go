package domain

// SignificatorTableVersion identifies the rule weights below. Any change to
// a weight, house set, or multiplier requires a new version.
const SignificatorTableVersion = "v1"

// CareerWeight is a fixed score increment for one career.
type CareerWeight struct {
	Career Career
	Weight float64
}

// ElementBonus scales a rule's weights when the planet's sign has Element.
type ElementBonus struct {
	Element Element
	Factor  float64
}

// HouseRule fires when Planet occupies any of Houses.
type HouseRule struct {
	Planet  Planet
	Houses  []int
	Weights []CareerWeight
	Bonus   *ElementBonus
}

// ConjunctionRule fires when both planets occupy the same house.
type ConjunctionRule struct {
	A, B    Planet
	Weights []CareerWeight
}

// SignRule fires when Planet occupies Sign (exaltation).
type SignRule struct {
	Planet  Planet
	Sign    int
	Weights []CareerWeight
}

// SignificatorTable is the closed, ordered set of career rules.
type SignificatorTable struct {
	Version      string
	HouseRules   []HouseRule
	Conjunctions []ConjunctionRule
	SignRules    []SignRule
}

// DefaultTable returns the v1 significator table. The returned value shares
// backing arrays with the package table and must be treated as read-only.
func DefaultTable() SignificatorTable {
	return tableV1
}

var tableV1 = SignificatorTable{
	Version: SignificatorTableVersion,
	HouseRules: []HouseRule{
		{Planet: Sun, Houses: []int{10}, Weights: []CareerWeight{{Management, 3}, {PoliticsReform, 3}, {BusinessFinance, 2}}, Bonus: &ElementBonus{Fire, 1.2}},
		{Planet: Sun, Houses: []int{1, 9}, Weights: []CareerWeight{{PoliticsReform, 2}, {Spirituality, 1}, {Law, 1}}},
		{Planet: Sun, Houses: []int{6}, Weights: []CareerWeight{{Medical, 2}, {MilitaryDefense, 1}}},
		{Planet: Moon, Houses: []int{4}, Weights: []CareerWeight{{RealEstate, 2}, {Hospitality, 2}, {Agriculture, 1}}, Bonus: &ElementBonus{Water, 1.3}},
		{Planet: Moon, Houses: []int{10}, Weights: []CareerWeight{{Media, 2}, {Hospitality, 1}, {Medical, 1}}},
		{Planet: Moon, Houses: []int{5, 7}, Weights: []CareerWeight{{ArtsCreative, 2}, {MusicPerformance, 1}}},
		{Planet: Mars, Houses: []int{10}, Weights: []CareerWeight{{Engineering, 3}, {MilitaryDefense, 3}, {Sports, 2}}, Bonus: &ElementBonus{Fire, 1.3}},
		{Planet: Mars, Houses: []int{3, 6}, Weights: []CareerWeight{{Sports, 2}, {MilitaryDefense, 2}, {Medical, 1}}},
		{Planet: Mars, Houses: []int{4}, Weights: []CareerWeight{{RealEstate, 2}, {Engineering, 1}}},
		{Planet: Mercury, Houses: []int{3}, Weights: []CareerWeight{{IT, 3}, {Engineering, 2}, {Media, 2}}, Bonus: &ElementBonus{Air, 1.2}},
		{Planet: Mercury, Houses: []int{10}, Weights: []CareerWeight{{BusinessFinance, 3}, {IT, 2}, {Media, 1}}, Bonus: &ElementBonus{Earth, 1.2}},
		{Planet: Mercury, Houses: []int{5, 9}, Weights: []CareerWeight{{WritingLiterature, 2}, {Education, 2}, {PhysicsScience, 1}}},
		{Planet: Mercury, Houses: []int{2, 11}, Weights: []CareerWeight{{BusinessFinance, 2}}},
		{Planet: Jupiter, Houses: []int{9}, Weights: []CareerWeight{{Education, 3}, {Law, 2}, {Spirituality, 2}}, Bonus: &ElementBonus{Fire, 1.2}},
		{Planet: Jupiter, Houses: []int{5}, Weights: []CareerWeight{{Education, 2}, {Research, 1}, {Law, 1}}},
		{Planet: Jupiter, Houses: []int{10}, Weights: []CareerWeight{{Management, 2}, {Law, 2}, {BusinessFinance, 1}}},
		{Planet: Jupiter, Houses: []int{2, 11}, Weights: []CareerWeight{{BusinessFinance, 2}}},
		{Planet: Venus, Houses: []int{5}, Weights: []CareerWeight{{ArtsCreative, 3}, {MusicPerformance, 3}, {Media, 1}}, Bonus: &ElementBonus{Air, 1.1}},
		{Planet: Venus, Houses: []int{7, 12}, Weights: []CareerWeight{{Hospitality, 2}, {ArtsCreative, 1}}},
		{Planet: Venus, Houses: []int{10}, Weights: []CareerWeight{{ArtsCreative, 2}, {Media, 2}, {MusicPerformance, 1}}},
		{Planet: Saturn, Houses: []int{10}, Weights: []CareerWeight{{Engineering, 2}, {Agriculture, 2}, {PoliticsReform, 1}}, Bonus: &ElementBonus{Earth, 1.4}},
		{Planet: Saturn, Houses: []int{6, 8}, Weights: []CareerWeight{{Research, 2}, {Medical, 2}, {PhysicsScience, 1}}},
		{Planet: Saturn, Houses: []int{11}, Weights: []CareerWeight{{PoliticsReform, 2}, {TechEntrepreneur, 1}}},
		{Planet: Rahu, Houses: []int{10}, Weights: []CareerWeight{{PoliticsReform, 2}, {TechEntrepreneur, 2}, {Media, 1}}},
		{Planet: Rahu, Houses: []int{3, 6, 11}, Weights: []CareerWeight{{TechEntrepreneur, 2}, {IT, 1}}},
		{Planet: Ketu, Houses: []int{9, 12}, Weights: []CareerWeight{{Spirituality, 2}, {Research, 1}}},
	},
	Conjunctions: []ConjunctionRule{
		{A: Sun, B: Mercury, Weights: []CareerWeight{{BusinessFinance, 2}, {IT, 1}, {Management, 1}}},
		{A: Moon, B: Jupiter, Weights: []CareerWeight{{Education, 1}, {Law, 1}, {Management, 1}}},
		{A: Mars, B: Saturn, Weights: []CareerWeight{{Engineering, 2}, {MilitaryDefense, 1}}},
		{A: Mercury, B: Venus, Weights: []CareerWeight{{WritingLiterature, 2}, {ArtsCreative, 1}}},
		{A: Mars, B: Jupiter, Weights: []CareerWeight{{Law, 1}, {Sports, 1}, {Management, 1}}},
		{A: Jupiter, B: Venus, Weights: []CareerWeight{{ArtsCreative, 1}, {Hospitality, 1}}},
		{A: Moon, B: Venus, Weights: []CareerWeight{{MusicPerformance, 2}, {ArtsCreative, 1}}},
		{A: Saturn, B: Jupiter, Weights: []CareerWeight{{Research, 2}, {PhysicsScience, 1}}},
		{A: Sun, B: Mars, Weights: []CareerWeight{{MilitaryDefense, 2}, {PoliticsReform, 1}, {Sports, 1}}},
		{A: Mercury, B: Jupiter, Weights: []CareerWeight{{Education, 1}, {Research, 1}, {WritingLiterature, 1}}},
		{A: Moon, B: Mercury, Weights: []CareerWeight{{Media, 2}, {WritingLiterature, 1}}},
		{A: Mercury, B: Saturn, Weights: []CareerWeight{{IT, 2}, {Research, 1}, {PhysicsScience, 1}}},
		{A: Rahu, B: Mercury, Weights: []CareerWeight{{IT, 2}, {TechEntrepreneur, 2}}},
		{A: Rahu, B: Sun, Weights: []CareerWeight{{PoliticsReform, 1}, {Media, 1}}},
	},
	SignRules: []SignRule{
		{Planet: Sun, Sign: 0, Weights: []CareerWeight{{PoliticsReform, 1}, {Management, 1}}},
		{Planet: Moon, Sign: 1, Weights: []CareerWeight{{Hospitality, 1}, {Agriculture, 1}}},
		{Planet: Mars, Sign: 9, Weights: []CareerWeight{{Engineering, 1}, {MilitaryDefense, 1}}},
		{Planet: Mercury, Sign: 5, Weights: []CareerWeight{{IT, 1}, {BusinessFinance, 1}}},
		{Planet: Jupiter, Sign: 3, Weights: []CareerWeight{{Education, 1}, {Spirituality, 1}}},
		{Planet: Venus, Sign: 11, Weights: []CareerWeight{{MusicPerformance, 1}, {ArtsCreative, 1}}},
		{Planet: Saturn, Sign: 6, Weights: []CareerWeight{{Law, 1}, {PoliticsReform, 1}}},
	},
}

// RuleScores maps every career to its unnormalised rule score.
type RuleScores map[Career]float64

// Max returns the largest score, or 0 for an empty map.
func (s RuleScores) Max() float64 {
	m := 0.0
	for _, v := range s {
		if v > m {
			m = v
		}
	}
	return m
}

// RuleScorer applies a SignificatorTable to feature sets. It holds no mutable
// state and is safe for concurrent use.
type RuleScorer struct {
	table SignificatorTable
	order []Career
}

// NewRuleScorer builds a scorer over table. Careers referenced by the table but
// absent from the base vocabulary are appended to the career order in the
// order the table first references them.
func NewRuleScorer(table SignificatorTable) *RuleScorer {
	order := append([]Career(nil), Careers...)
	seen := make(map[Career]bool, len(order))
	for _, c := range order {
		seen[c] = true
	}
	visit := func(ws []CareerWeight) {
		for _, w := range ws {
			if !seen[w.Career] {
				seen[w.Career] = true
				order = append(order, w.Career)
			}
		}
	}
	for _, r := range table.HouseRules {
		visit(r.Weights)
	}
	for _, r := range table.Conjunctions {
		visit(r.Weights)
	}
	for _, r := range table.SignRules {
		visit(r.Weights)
	}
	return &RuleScorer{table: table, order: order}
}

// Version returns the table version the scorer applies.
func (s *RuleScorer) Version() string {
	return s.table.Version
}

// Careers returns the scorer's career order: the vocabulary, then extensions.
func (s *RuleScorer) Careers() []Career {
	return append([]Career(nil), s.order...)
}

// Score applies every rule unconditionally and cumulatively. Every career in
// the scorer's order is present in the result, zero when no rule fired.
func (s *RuleScorer) Score(fs FeatureSet) RuleScores {
	scores := make(RuleScores, len(s.order))
	for _, c := range s.order {
		scores[c] = 0
	}

	for _, r := range s.table.HouseRules {
		pl, ok := fs.Placement(r.Planet)
		if !ok || !containsHouse(r.Houses, pl.House) {
			continue
		}
		factor := 1.0
		if r.Bonus != nil && ElementOf(pl.Sign) == r.Bonus.Element {
			factor = r.Bonus.Factor
		}
		addWeights(scores, r.Weights, factor)
	}

	for _, r := range s.table.Conjunctions {
		a, okA := fs.Placement(r.A)
		b, okB := fs.Placement(r.B)
		if !okA || !okB || a.House != b.House {
			continue
		}
		addWeights(scores, r.Weights, 1)
	}

	for _, r := range s.table.SignRules {
		pl, ok := fs.Placement(r.Planet)
		if !ok || pl.Sign != r.Sign {
			continue
		}
		addWeights(scores, r.Weights, 1)
	}

	return scores
}

func addWeights(scores RuleScores, weights []CareerWeight, factor float64) {
	for _, w := range weights {
		if _, ok := scores[w.Career]; !ok {
			scores[w.Career] = 0
		}
		scores[w.Career] += w.Weight * factor
	}
}

func containsHouse(houses []int, house int) bool {
	for _, h := range houses {
		if h == house {
			return true
		}
	}
	return false
}
