package domain

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	planets []RawPlanet
	err     error
	calls   int
}

func (s *stubSource) FetchPlanets(_ context.Context, _ BirthData) ([]RawPlanet, error) {
	s.calls++
	return s.planets, s.err
}

func testBirth() BirthData {
	return BirthData{Moment: time.Date(1990, 7, 14, 10, 30, 0, 0, time.UTC), Latitude: 28.61, Longitude: 77.2}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestResolvePositions_NilSourceFallsBack(t *testing.T) {
	res := ResolvePositions(context.Background(), testBirth(), nil, discardLogger())

	assert.Equal(t, OriginFallback, res.Origin)
	assert.ErrorIs(t, res.Cause, ErrSourceUnavailable)
	assert.True(t, res.Positions.HasCore())
}

func TestResolvePositions_SourceErrorFallsBack(t *testing.T) {
	src := &stubSource{err: errors.New("connection refused")}

	res := ResolvePositions(context.Background(), testBirth(), src, discardLogger())

	assert.Equal(t, 1, src.calls)
	assert.Equal(t, OriginFallback, res.Origin)
	assert.EqualError(t, res.Cause, "connection refused")
	assert.Equal(t, PositionsFromRaw(ApproximatePositions(testBirth())), res.Positions)
}

func TestResolvePositions_IncompleteChartFallsBack(t *testing.T) {
	src := &stubSource{planets: []RawPlanet{{Name: "Sun", Longitude: 10}, {Name: "Ascendant", Longitude: 0}}}

	res := ResolvePositions(context.Background(), testBirth(), src, discardLogger())

	assert.Equal(t, OriginFallback, res.Origin)
	assert.ErrorIs(t, res.Cause, ErrSourceUnavailable)
}

func TestResolvePositions_SourceSuccess(t *testing.T) {
	raw := []RawPlanet{{Name: "Ascendant", Longitude: 95}}
	for i, p := range CorePlanets {
		raw = append(raw, RawPlanet{Name: string(p), Longitude: float64(i * 40)})
	}
	src := &stubSource{planets: raw}

	res := ResolvePositions(context.Background(), testBirth(), src, discardLogger())

	require.Equal(t, OriginSource, res.Origin)
	assert.NoError(t, res.Cause)
	assert.Equal(t, 3, res.Positions.AscendantSign)
	// Saturn at 240° is Sagittarius, the 6th from Cancer.
	assert.Equal(t, 6, res.Positions.Planets[Saturn].House)
	assert.Equal(t, 8, res.Positions.Planets[Saturn].Sign)
}
