package astroapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/couchcryptid/career-scoring-engine/internal/domain"
	"github.com/couchcryptid/career-scoring-engine/internal/observability"
	"github.com/jonboulle/clockwork"
)

const planetsEndpoint = "planets"

var (
	errRateLimited    = errors.New("rate limited")
	errInvalidPayload = errors.New("invalid payload")
)

// Settings are the chart calculation parameters sent with every request.
// They are part of the cache key.
type Settings struct {
	ObservationPoint string
	Ayanamsha        string
	Timezone         float64 // hours east of UTC for the birth wall-clock time
}

// DefaultSettings returns topocentric Lahiri settings at IST.
func DefaultSettings() Settings {
	return Settings{ObservationPoint: "topocentric", Ayanamsha: "lahiri", Timezone: 5.5}
}

// Options configures a Client.
type Options struct {
	APIKey      string
	BaseURL     string
	Timeout     time.Duration
	MaxAttempts int
	RetryDelay  time.Duration
	MaxJitter   time.Duration
	Settings    Settings
}

// Client implements domain.PositionSource against the Free Astrology API
// planets endpoint.
type Client struct {
	apiKey      string
	httpClient  *http.Client
	baseURL     string
	maxAttempts int
	retryDelay  time.Duration
	maxJitter   time.Duration
	settings    Settings
	clock       clockwork.Clock
	jitter      func() float64
	metrics     *observability.Metrics
	logger      *slog.Logger
}

// NewClient creates a position source client. An empty API key yields a
// client whose every fetch fails with domain.ErrSourceUnavailable.
func NewClient(opts Options, metrics *observability.Metrics, logger *slog.Logger) *Client {
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	return &Client{
		apiKey: opts.APIKey,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		maxAttempts: opts.MaxAttempts,
		retryDelay:  opts.RetryDelay,
		maxJitter:   opts.MaxJitter,
		settings:    opts.Settings,
		clock:       clockwork.NewRealClock(),
		jitter:      rand.Float64, //nolint:gosec // jitter only
		metrics:     metrics,
		logger:      logger,
	}
}

// Settings returns the calculation settings sent with each request.
func (c *Client) Settings() Settings { return c.settings }

// FetchPlanets requests planetary positions for the birth moment. Rate-limit
// responses are retried with exponential backoff plus jitter; other failures
// with plain exponential backoff. The returned list always has an Ascendant.
func (c *Client) FetchPlanets(ctx context.Context, birth domain.BirthData) ([]domain.RawPlanet, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: no API key configured", domain.ErrSourceUnavailable)
	}

	body, err := json.Marshal(newPlanetsRequest(birth, c.settings))
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		planets, err := c.doRequest(ctx, body)
		if err == nil {
			c.metrics.SourceRequests.WithLabelValues("success").Inc()
			return withAscendant(planets, birth), nil
		}
		lastErr = err
		c.metrics.SourceRequests.WithLabelValues(outcomeOf(err)).Inc()

		if attempt == c.maxAttempts-1 || ctx.Err() != nil {
			break
		}
		delay := backoffDelay(c.retryDelay, attempt, errors.Is(err, errRateLimited), c.maxJitter, c.jitter)
		c.logger.Warn("position source request failed, retrying",
			"attempt", attempt+1,
			"max_attempts", c.maxAttempts,
			"delay", delay,
			"error", err,
		)
		if !c.sleep(ctx, delay) {
			lastErr = ctx.Err()
			break
		}
	}
	return nil, fmt.Errorf("%w: %w", domain.ErrSourceUnavailable, lastErr)
}

func (c *Client) doRequest(ctx context.Context, body []byte) ([]domain.RawPlanet, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+planetsEndpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)

	start := c.clock.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.SourceAPIDuration.Observe(c.clock.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("planets request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("%w: status %d", errRateLimited, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("position API error: status %d: %s", resp.StatusCode, msg)
	}

	var pr planetsResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", errInvalidPayload, err)
	}
	if pr.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: statusCode %d", errInvalidPayload, pr.StatusCode)
	}
	return pr.planets()
}

// sleep waits for d on the client clock. It returns false if ctx ends first.
func (c *Client) sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := c.clock.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.Chan():
		return true
	}
}

// backoffDelay is base*2^attempt, plus uniform(0, maxJitter) after a
// rate-limit response.
func backoffDelay(base time.Duration, attempt int, rateLimited bool, maxJitter time.Duration, jitter func() float64) time.Duration {
	d := base * time.Duration(1<<attempt)
	if rateLimited && maxJitter > 0 {
		d += time.Duration(jitter() * float64(maxJitter))
	}
	return d
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, errRateLimited):
		return "rate_limited"
	case errors.Is(err, errInvalidPayload):
		return "invalid_payload"
	default:
		return "error"
	}
}

// withAscendant appends an approximate Ascendant when the source omitted one.
func withAscendant(planets []domain.RawPlanet, birth domain.BirthData) []domain.RawPlanet {
	for _, p := range planets {
		if strings.EqualFold(p.Name, string(domain.Ascendant)) {
			return planets
		}
	}
	return append(planets, domain.AscendantEntry(birth, domain.ApproximateAscendant(birth)))
}

// Free Astrology API request and response types.

type planetsRequest struct {
	Year      int             `json:"year"`
	Month     int             `json:"month"`
	Date      int             `json:"date"`
	Hours     int             `json:"hours"`
	Minutes   int             `json:"minutes"`
	Seconds   int             `json:"seconds"`
	Latitude  float64         `json:"latitude"`
	Longitude float64         `json:"longitude"`
	Timezone  float64         `json:"timezone"`
	Settings  requestSettings `json:"settings"`
}

type requestSettings struct {
	ObservationPoint string `json:"observation_point"`
	Ayanamsha        string `json:"ayanamsha"`
}

func newPlanetsRequest(b domain.BirthData, s Settings) planetsRequest {
	m := b.Moment
	return planetsRequest{
		Year:      m.Year(),
		Month:     int(m.Month()),
		Date:      m.Day(),
		Hours:     m.Hour(),
		Minutes:   m.Minute(),
		Seconds:   m.Second(),
		Latitude:  b.Latitude,
		Longitude: b.Longitude,
		Timezone:  s.Timezone,
		Settings: requestSettings{
			ObservationPoint: s.ObservationPoint,
			Ayanamsha:        s.Ayanamsha,
		},
	}
}

type planetsResponse struct {
	StatusCode int           `json:"statusCode"`
	Output     []planetEntry `json:"output"`
}

// planetEntry uses pointers so missing fields can be told apart from zeros.
type planetEntry struct {
	Name      *string  `json:"name"`
	Longitude *float64 `json:"longitude"`
	Latitude  *float64 `json:"latitude"`
	Speed     *float64 `json:"speed"`
	House     *float64 `json:"house"`
	Sign      *float64 `json:"sign"`
}

func (r planetsResponse) planets() ([]domain.RawPlanet, error) {
	if len(r.Output) == 0 {
		return nil, fmt.Errorf("%w: empty output", errInvalidPayload)
	}
	out := make([]domain.RawPlanet, 0, len(r.Output))
	for i, e := range r.Output {
		if e.Name == nil || e.Longitude == nil || e.Latitude == nil ||
			e.Speed == nil || e.House == nil || e.Sign == nil {
			return nil, fmt.Errorf("%w: entry %d is missing required fields", errInvalidPayload, i)
		}
		out = append(out, domain.RawPlanet{
			Name:      *e.Name,
			Longitude: *e.Longitude,
			Latitude:  *e.Latitude,
			Speed:     *e.Speed,
			House:     int(*e.House),
			Sign:      int(*e.Sign),
		})
	}
	return out, nil
}
