package pipeline_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/couchcryptid/career-scoring-engine/internal/domain"
	"github.com/couchcryptid/career-scoring-engine/internal/model"
	"github.com/couchcryptid/career-scoring-engine/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPredictionTransformer_SeedCorpus streams every reference chart through
// the transformer, the way genmock output is replayed against the service.
func TestPredictionTransformer_SeedCorpus(t *testing.T) {
	corpus, err := model.SeedCorpus()
	require.NoError(t, err)

	transformer := pipeline.NewTransformer(testEngine(), discardLogger())

	for i, ind := range corpus {
		t.Run(ind.Name, func(t *testing.T) {
			id := fmt.Sprintf("corpus-%d", i+1)
			raw := rawEventFromIndividual(t, id, ind)

			scored, err := transformer.Transform(context.Background(), raw)
			require.NoError(t, err)
			out := scored.Event
			assert.Equal(t, []byte(id), out.Key)
			assert.NotEmpty(t, out.Headers["primary_career"])
			assert.NotEmpty(t, out.Headers["processed_at"])

			var event domain.PredictionEvent
			require.NoError(t, json.Unmarshal(out.Value, &event))
			assert.Equal(t, id, event.RequestID)
			assert.True(t, domain.IsKnownCareer(event.PrimaryCareer))
			require.Len(t, event.Ranked, domain.TopN)
			assert.Equal(t, event.PrimaryCareer, event.Ranked[0].Career)
			for j := 1; j < len(event.Ranked); j++ {
				assert.GreaterOrEqual(t, event.Ranked[j-1].CombinedScore, event.Ranked[j].CombinedScore)
			}
		})
	}
}

func rawEventFromIndividual(t *testing.T, id string, ind model.Individual) domain.RawEvent {
	t.Helper()
	payload, err := json.Marshal(domain.ChartRequest{ID: id, Placements: domain.NestedChart(ind.Placements)})
	require.NoError(t, err)

	return domain.RawEvent{
		Key:   []byte(id),
		Value: payload,
		Topic: "chart-requests",
	}
}
