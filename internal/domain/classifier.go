package domain

import "errors"

// ErrModelUnavailable means the statistical classifier is missing or could
// not score a feature set. Callers degrade to FloorProbabilities.
var ErrModelUnavailable = errors.New("model unavailable")

// FloorProbability stands in for careers the classifier cannot score.
const FloorProbability = 0.1

// FloorProbabilities assigns FloorProbability to every career in order.
func FloorProbabilities(order []Career) map[Career]float64 {
	out := make(map[Career]float64, len(order))
	for _, c := range order {
		out[c] = FloorProbability
	}
	return out
}
