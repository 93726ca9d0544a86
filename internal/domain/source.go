package domain

import (
	"context"
	"errors"
	"log/slog"
)

// ErrSourceUnavailable means the position source could not produce a usable
// payload. Callers recover by falling back to ApproximatePositions.
var ErrSourceUnavailable = errors.New("position source unavailable")

// PositionSource fetches raw planetary longitudes for a birth moment and place.
type PositionSource interface {
	FetchPlanets(ctx context.Context, birth BirthData) ([]RawPlanet, error)
}

// Origin records where resolved positions came from.
type Origin string

const (
	OriginSource   Origin = "source"
	OriginFallback Origin = "fallback"
)

// Resolution is the outcome of resolving positions. Positions is always
// complete; Cause is set when the fallback was taken.
type Resolution struct {
	Positions Positions
	Origin    Origin
	Cause     error
}

// ResolvePositions asks the source for positions and falls back to the local
// approximation when the source is nil, fails, or returns an incomplete chart.
// It never fails (graceful degradation).
func ResolvePositions(ctx context.Context, birth BirthData, source PositionSource, logger *slog.Logger) Resolution {
	if source == nil {
		return fallbackResolution(birth, ErrSourceUnavailable)
	}

	raw, err := source.FetchPlanets(ctx, birth)
	if err != nil {
		logger.Warn("position source failed, using approximation",
			"moment", birth.Moment,
			"lat", birth.Latitude,
			"lon", birth.Longitude,
			"error", err,
		)
		return fallbackResolution(birth, err)
	}

	positions := PositionsFromRaw(raw)
	if !positions.HasCore() {
		logger.Warn("position source returned incomplete chart, using approximation",
			"moment", birth.Moment,
			"entries", len(raw),
		)
		return fallbackResolution(birth, ErrSourceUnavailable)
	}

	return Resolution{Positions: positions, Origin: OriginSource}
}

func fallbackResolution(birth BirthData, cause error) Resolution {
	return Resolution{
		Positions: PositionsFromRaw(ApproximatePositions(birth)),
		Origin:    OriginFallback,
		Cause:     cause,
	}
}
