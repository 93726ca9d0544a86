package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/career-scoring-engine/internal/domain"
)

// Predictor scores one chart request.
type Predictor interface {
	PredictRequest(ctx context.Context, req domain.ChartRequest) (domain.Prediction, domain.Origin, error)
}

// PredictionTransformer implements Transformer by decoding a chart request,
// predicting it, and serializing the result as a PredictionEvent. Birth data
// is resolved under ctx, so its deadline caps position source retries.
type PredictionTransformer struct {
	predictor Predictor
	logger    *slog.Logger
}

// NewTransformer creates a PredictionTransformer around the engine.
func NewTransformer(predictor Predictor, logger *slog.Logger) *PredictionTransformer {
	return &PredictionTransformer{
		predictor: predictor,
		logger:    logger,
	}
}

func (t *PredictionTransformer) Transform(ctx context.Context, raw domain.RawEvent) (Scored, error) {
	req, err := domain.ParseChartRequest(raw)
	if err != nil {
		return Scored{}, err
	}

	p, origin, err := t.predictor.PredictRequest(ctx, req)
	if err != nil {
		return Scored{}, err
	}
	if p.ModelDegraded {
		t.logger.Debug("streamed prediction used floor probabilities", "request_id", req.ID)
	}

	out, err := domain.SerializePredictionEvent(domain.NewPredictionEvent(req.ID, p, origin))
	if err != nil {
		return Scored{}, err
	}
	return Scored{Event: out, PositionSource: origin, ModelDegraded: p.ModelDegraded}, nil
}
