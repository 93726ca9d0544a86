package astroapi

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/career-scoring-engine/internal/domain"
	"github.com/couchcryptid/career-scoring-engine/internal/observability"
)

// CachedSource wraps a PositionSource with a content-addressed Store. Only
// successful fetches are cached, so failures are retried on the next call.
type CachedSource struct {
	inner    domain.PositionSource
	store    Store
	settings Settings
	metrics  *observability.Metrics
	logger   *slog.Logger
}

// NewCachedSource creates a cache decorator around a position source.
// settings must match the ones inner sends, since they are part of the key.
func NewCachedSource(inner domain.PositionSource, store Store, settings Settings, metrics *observability.Metrics, logger *slog.Logger) *CachedSource {
	return &CachedSource{
		inner:    inner,
		store:    store,
		settings: settings,
		metrics:  metrics,
		logger:   logger,
	}
}

func (c *CachedSource) FetchPlanets(ctx context.Context, birth domain.BirthData) ([]domain.RawPlanet, error) {
	key := CacheKey(planetsEndpoint, birth, c.settings)

	lookup := c.store.Get(key)
	switch lookup.Status {
	case Hit:
		var planets []domain.RawPlanet
		err := json.Unmarshal(lookup.Payload, &planets)
		if err == nil {
			c.metrics.SourceCache.WithLabelValues(Hit.String()).Inc()
			return planets, nil
		}
		lookup = Lookup{Status: Corrupt, Err: fmt.Errorf("decode cached planets: %w", err)}
	case Miss:
		c.metrics.SourceCache.WithLabelValues(Miss.String()).Inc()
	}
	if lookup.Status == Corrupt {
		c.metrics.SourceCache.WithLabelValues(Corrupt.String()).Inc()
		c.logger.Warn("corrupt position cache entry, refetching", "key", key, "error", lookup.Err)
	}

	planets, err := c.inner.FetchPlanets(ctx, birth)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(planets)
	if err != nil {
		c.logger.Warn("encode planets for cache", "key", key, "error", err)
		return planets, nil
	}
	if err := c.store.Put(key, payload); err != nil {
		c.logger.Warn("write position cache entry", "key", key, "error", err)
	}
	return planets, nil
}

// CacheKey is the hex SHA-256 of the endpoint and every request parameter.
func CacheKey(endpoint string, birth domain.BirthData, s Settings) string {
	m := birth.Moment
	raw := fmt.Sprintf("%s|%04d-%02d-%02d|%02d:%02d:%02d|%.6f|%.6f|%g|%s|%s",
		endpoint,
		m.Year(), int(m.Month()), m.Day(),
		m.Hour(), m.Minute(), m.Second(),
		birth.Latitude, birth.Longitude,
		s.Timezone, s.ObservationPoint, s.Ayanamsha,
	)
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
