// Package engine ties the career scoring pieces together: validation,
// normalization, rule and model scoring, ranking, and position resolution.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/couchcryptid/career-scoring-engine/internal/domain"
	"github.com/couchcryptid/career-scoring-engine/internal/observability"
	"github.com/google/uuid"
)

// RuleScorer scores a feature set against the significator table.
type RuleScorer interface {
	Score(fs domain.FeatureSet) domain.RuleScores
	Careers() []domain.Career
	Version() string
}

// Classifier returns per-career probabilities for a feature set.
type Classifier interface {
	Probabilities(fs domain.FeatureSet) (map[domain.Career]float64, error)
}

// Engine scores charts. It holds no per-request state and is safe for
// concurrent use as long as its collaborators are.
type Engine struct {
	rules   RuleScorer
	model   Classifier
	source  domain.PositionSource
	metrics *observability.Metrics
	logger  *slog.Logger
}

// New creates an Engine. A nil model degrades every prediction to floor
// probabilities; a nil source resolves every birth to the approximation.
func New(rules RuleScorer, model Classifier, source domain.PositionSource, metrics *observability.Metrics, logger *slog.Logger) *Engine {
	return &Engine{
		rules:   rules,
		model:   model,
		source:  source,
		metrics: metrics,
		logger:  logger,
	}
}

// Careers returns the vocabulary in declared order.
func (e *Engine) Careers() []domain.Career { return e.rules.Careers() }

// TableVersion returns the significator table version in use.
func (e *Engine) TableVersion() string { return e.rules.Version() }

// Predict validates the chart before any scoring, then normalizes and ranks
// it. Only a *domain.ValidationError is returned.
func (e *Engine) Predict(ctx context.Context, in domain.ChartInput) (domain.Prediction, error) {
	if err := domain.Validate(in); err != nil {
		e.metrics.Predictions.WithLabelValues("invalid").Inc()
		return domain.Prediction{}, err
	}
	return e.PredictFeatures(ctx, domain.Normalize(in)), nil
}

// PredictFeatures ranks an already normalized feature set.
func (e *Engine) PredictFeatures(_ context.Context, fs domain.FeatureSet) domain.Prediction {
	start := time.Now()
	order := e.rules.Careers()

	rule := e.rules.Score(fs)
	probs, degraded := e.probabilities(fs, order)

	ranking := domain.Rank(order, rule, probs)
	if ranking.Degenerate {
		e.metrics.DegenerateRankings.Inc()
		e.logger.Warn("all combined scores are zero, returning declared career order",
			"primary", ranking.Primary,
		)
	}

	e.metrics.Predictions.WithLabelValues("success").Inc()
	e.metrics.PredictionDuration.Observe(time.Since(start).Seconds())

	return domain.Prediction{
		ID:            uuid.NewString(),
		Primary:       ranking.Primary,
		Combined:      ranking.Combined,
		Top:           ranking.Top(domain.TopN),
		Records:       ranking.Ranked,
		Degenerate:    ranking.Degenerate,
		ModelDegraded: degraded,
		TableVersion:  e.rules.Version(),
	}
}

// probabilities asks the model and falls back to the floor for every career
// when it cannot answer. The floor map is built fresh, so the shared model is
// never written to.
func (e *Engine) probabilities(fs domain.FeatureSet, order []domain.Career) (map[domain.Career]float64, bool) {
	if e.model == nil {
		return e.degrade(order, domain.ErrModelUnavailable), true
	}
	probs, err := e.model.Probabilities(fs)
	if err != nil {
		if !errors.Is(err, domain.ErrModelUnavailable) {
			e.logger.Error("unexpected classifier error", "error", err)
		}
		return e.degrade(order, err), true
	}
	return probs, false
}

func (e *Engine) degrade(order []domain.Career, cause error) map[domain.Career]float64 {
	e.metrics.ModelDegraded.Inc()
	e.logger.Warn("model unavailable, using floor probabilities", "error", cause)
	return domain.FloorProbabilities(order)
}

// ResolvePositions resolves positions for a birth moment and place. It never
// fails; a fallback is reported through the returned Resolution.
func (e *Engine) ResolvePositions(ctx context.Context, birth domain.BirthData) domain.Resolution {
	res := domain.ResolvePositions(ctx, birth, e.source, e.logger)
	if res.Origin == domain.OriginFallback {
		e.metrics.SourceFallbacks.Inc()
	}
	return res
}

// PredictBirth resolves positions for birth data and predicts from them.
func (e *Engine) PredictBirth(ctx context.Context, birth domain.BirthData) (domain.Prediction, domain.Resolution) {
	res := e.ResolvePositions(ctx, birth)
	return e.PredictFeatures(ctx, res.Positions.FeatureSet()), res
}

// PredictRequest dispatches a chart request to the matching entry point.
// Birth data is parsed and validated like any chart variant.
func (e *Engine) PredictRequest(ctx context.Context, req domain.ChartRequest) (domain.Prediction, domain.Origin, error) {
	if chart := req.Chart(); chart != nil {
		p, err := e.Predict(ctx, chart)
		return p, "", err
	}
	if req.Birth == nil {
		e.metrics.Predictions.WithLabelValues("invalid").Inc()
		return domain.Prediction{}, "", &domain.ValidationError{Field: "chart", Reason: "one of placements, flat or birth is required"}
	}
	birth, err := req.Birth.Parse()
	if err != nil {
		e.metrics.Predictions.WithLabelValues("invalid").Inc()
		return domain.Prediction{}, "", err
	}
	p, res := e.PredictBirth(ctx, birth)
	return p, res.Origin, nil
}

// CheckReadiness reports whether predictions can be served at full fidelity.
func (e *Engine) CheckReadiness(_ context.Context) error {
	if e.model == nil {
		return domain.ErrModelUnavailable
	}
	return nil
}
