package engine

import (
	"log/slog"
	"time"

	"github.com/couchcryptid/career-scoring-engine/internal/config"
	"github.com/couchcryptid/career-scoring-engine/internal/domain"
	"github.com/couchcryptid/career-scoring-engine/internal/model"
	"github.com/couchcryptid/career-scoring-engine/internal/observability"
)

// FromConfig trains the model once and wires it with the v1 significator
// table. A model that fails to train is logged and left out, so the engine
// still serves floor-probability predictions.
func FromConfig(cfg *config.Config, source domain.PositionSource, metrics *observability.Metrics, logger *slog.Logger) *Engine {
	rules := domain.NewRuleScorer(domain.DefaultTable())

	start := time.Now()
	m, err := model.Build(rules, model.Options{
		Seed:             cfg.ModelSeed,
		SyntheticSamples: cfg.ModelSyntheticSamples,
		Trees:            cfg.ModelTrees,
	})
	if err != nil {
		logger.Warn("model training failed, predictions will use floor probabilities", "error", err)
		return New(rules, nil, source, metrics, logger)
	}

	logger.Info("model trained",
		"samples", m.SampleCount(),
		"trees", cfg.ModelTrees,
		"seed", cfg.ModelSeed,
		"table_version", rules.Version(),
		"duration", time.Since(start),
	)
	return New(rules, m, source, metrics, logger)
}
