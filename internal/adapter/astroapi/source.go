package astroapi

import (
	"log/slog"

	"github.com/couchcryptid/career-scoring-engine/internal/config"
	"github.com/couchcryptid/career-scoring-engine/internal/domain"
	"github.com/couchcryptid/career-scoring-engine/internal/observability"
	"github.com/jonboulle/clockwork"
)

// NewSource builds the configured position source: a cached API client, or
// nil when no API key is set so resolution goes straight to the approximation.
func NewSource(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) domain.PositionSource {
	if !cfg.SourceEnabled() {
		metrics.SourceEnabled.Set(0)
		logger.Info("position source disabled, using local approximation")
		return nil
	}
	metrics.SourceEnabled.Set(1)

	settings := DefaultSettings()
	client := NewClient(Options{
		APIKey:      cfg.AstroAPIKey,
		BaseURL:     cfg.AstroAPIBaseURL,
		Timeout:     cfg.AstroAPITimeout,
		MaxAttempts: cfg.AstroAPIMaxAttempts,
		RetryDelay:  cfg.AstroAPIRetryDelay,
		MaxJitter:   cfg.AstroAPIMaxJitter,
		Settings:    settings,
	}, metrics, logger)

	clock := clockwork.NewRealClock()
	var store Store
	switch cfg.CacheBackend {
	case config.CacheBackendMemory:
		store = NewMemoryStore(cfg.CacheMaxEntries, cfg.CacheTTL, clock)
	default:
		store = NewFileStore(cfg.CacheDir, cfg.CacheTTL, clock)
	}

	logger.Info("position source enabled",
		"base_url", cfg.AstroAPIBaseURL,
		"cache_backend", cfg.CacheBackend,
		"cache_ttl", cfg.CacheTTL,
	)
	return NewCachedSource(client, store, settings, metrics, logger)
}
