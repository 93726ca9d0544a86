package domain

import "sort"

// Blend weights of the combined score. They are fixed constants of the
// significator table version, not tunable parameters.
const (
	ModelWeight = 0.6
	RuleWeight  = 0.4

	// TopN is the length of the ranked recommendation list.
	TopN = 3
)

// CareerScore is the per-career record of one prediction.
type CareerScore struct {
	Career        Career  `json:"career"`
	RuleScore     float64 `json:"rule_score"`
	ModelScore    float64 `json:"model_score"`
	CombinedScore float64 `json:"combined_score"`
}

// Ranking is the ordered outcome of combining rule and model scores.
type Ranking struct {
	Primary    Career
	Combined   map[Career]float64
	Ranked     []CareerScore // every career, best first
	Degenerate bool          // all combined scores were zero
}

// Top returns up to n leading records.
func (r Ranking) Top(n int) []CareerScore {
	if n > len(r.Ranked) {
		n = len(r.Ranked)
	}
	return append([]CareerScore(nil), r.Ranked[:n]...)
}

// NormalizeRuleScores divides every score by the maximum. An all-zero vector
// carries no rule signal and normalises to zero everywhere.
func NormalizeRuleScores(order []Career, rule RuleScores) map[Career]float64 {
	maxScore := rule.Max()
	out := make(map[Career]float64, len(order))
	for _, c := range order {
		if maxScore == 0 {
			out[c] = 0
			continue
		}
		out[c] = rule[c] / maxScore
	}
	return out
}

// CombineScore blends a model probability with a normalised rule score.
func CombineScore(modelScore, normalizedRule float64) float64 {
	return ModelWeight*modelScore + RuleWeight*normalizedRule
}

// Rank combines per-career scores and sorts them best first. Ties keep the
// order of the order slice, so identical inputs always rank identically.
// When every combined score is zero the declared order is returned unchanged
// and the ranking is flagged degenerate.
func Rank(order []Career, rule RuleScores, model map[Career]float64) Ranking {
	normalized := NormalizeRuleScores(order, rule)

	records := make([]CareerScore, 0, len(order))
	combined := make(map[Career]float64, len(order))
	allZero := true
	for _, c := range order {
		score := CombineScore(model[c], normalized[c])
		combined[c] = score
		if score != 0 {
			allZero = false
		}
		records = append(records, CareerScore{
			Career:        c,
			RuleScore:     rule[c],
			ModelScore:    model[c],
			CombinedScore: score,
		})
	}

	if !allZero {
		sort.SliceStable(records, func(i, j int) bool {
			return records[i].CombinedScore > records[j].CombinedScore
		})
	}

	r := Ranking{
		Combined:   combined,
		Ranked:     records,
		Degenerate: allZero,
	}
	if len(records) > 0 {
		r.Primary = records[0].Career
	}
	return r
}
