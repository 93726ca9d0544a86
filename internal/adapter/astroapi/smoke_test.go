//go:build astroapi

package astroapi

import (
	"context"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/couchcryptid/career-scoring-engine/internal/domain"
	"github.com/couchcryptid/career-scoring-engine/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests hit the real Free Astrology API and require ASTRO_API_KEY.
// Run with: go test -tags=astroapi ./internal/adapter/astroapi/ -v -count=1

func smokeClient(t *testing.T) *Client {
	t.Helper()
	key := os.Getenv("ASTRO_API_KEY")
	if key == "" {
		t.Fatal("ASTRO_API_KEY must be set to run smoke tests")
	}
	return &Client{
		apiKey:      key,
		httpClient:  &http.Client{Timeout: 15 * time.Second},
		baseURL:     "https://json.freeastrologyapi.com",
		maxAttempts: 3,
		retryDelay:  2 * time.Second,
		maxJitter:   2 * time.Second,
		settings:    DefaultSettings(),
		clock:       clockwork.NewRealClock(),
		jitter:      func() float64 { return 0.5 },
		metrics:     observability.NewMetricsForTesting(),
		logger:      testLogger(),
	}
}

func TestSmoke_FetchPlanets(t *testing.T) {
	c := smokeClient(t)

	planets, err := c.FetchPlanets(context.Background(), testBirth())
	require.NoError(t, err)

	positions := domain.PositionsFromRaw(planets)
	assert.True(t, positions.HasCore())
	for p, pos := range positions.Planets {
		assert.GreaterOrEqual(t, pos.Longitude, 0.0, p)
		assert.Less(t, pos.Longitude, 360.0, p)
	}
}

func TestSmoke_CachedSource(t *testing.T) {
	c := smokeClient(t)
	cached := NewCachedSource(c, NewFileStore(t.TempDir(), time.Hour, clockwork.NewRealClock()),
		c.Settings(), observability.NewMetricsForTesting(), testLogger())

	first, err := cached.FetchPlanets(context.Background(), testBirth())
	require.NoError(t, err)

	second, err := cached.FetchPlanets(context.Background(), testBirth())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
