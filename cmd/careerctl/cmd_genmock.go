package main

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/career-scoring-engine/internal/domain"
	"github.com/couchcryptid/career-scoring-engine/internal/model"
	"github.com/spf13/cobra"
)

var genmockFlags struct {
	out        string
	count      int
	seed       int64
	birthRatio float64
}

var genmockCmd = &cobra.Command{
	Use:   "genmock",
	Short: "Write synthetic chart requests for replaying against the prediction stream",
	RunE:  runGenmock,
}

func init() {
	f := genmockCmd.Flags()
	f.StringVarP(&genmockFlags.out, "out", "o", "-", "output file, - for stdout")
	f.IntVar(&genmockFlags.count, "count", 100, "number of requests")
	f.Int64Var(&genmockFlags.seed, "seed", 1, "random seed")
	f.Float64Var(&genmockFlags.birthRatio, "birth-ratio", 0.25, "share of requests carrying birth data instead of placements")
}

func runGenmock(cmd *cobra.Command, _ []string) error {
	if genmockFlags.count < 1 {
		return fmt.Errorf("--count must be positive")
	}
	if genmockFlags.birthRatio < 0 || genmockFlags.birthRatio > 1 {
		return fmt.Errorf("--birth-ratio must be between 0 and 1")
	}

	rng := rand.New(rand.NewSource(genmockFlags.seed)) //nolint:gosec // reproducible fixtures
	reqs := generateRequests(rng, genmockFlags.count, genmockFlags.birthRatio)

	if genmockFlags.out == "-" {
		return writeJSON(cmd.OutOrStdout(), reqs)
	}
	if err := os.MkdirAll(filepath.Dir(genmockFlags.out), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(genmockFlags.out)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer f.Close()
	if err := writeJSON(f, reqs); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d chart requests to %s\n", len(reqs), genmockFlags.out)
	return nil
}

var mockEpoch = time.Date(1940, time.January, 1, 0, 0, 0, 0, time.UTC)

// generateRequests builds count valid chart requests. The output depends only
// on the rng state.
func generateRequests(rng *rand.Rand, count int, birthRatio float64) []domain.ChartRequest {
	reqs := make([]domain.ChartRequest, 0, count)
	for i := 0; i < count; i++ {
		req := domain.ChartRequest{ID: fmt.Sprintf("mock-%04d", i+1)}
		if rng.Float64() < birthRatio {
			req.Birth = randomBirth(rng)
		} else {
			req.Placements = domain.NestedChart(model.RandomChart(rng).Placements())
		}
		reqs = append(reqs, req)
	}
	return reqs
}

func randomBirth(rng *rand.Rand) *domain.BirthRequest {
	moment := mockEpoch.Add(time.Duration(rng.Int63n(int64(65 * 365 * 24 * time.Hour))))
	return &domain.BirthRequest{
		Date:      moment.Format(time.DateOnly),
		Time:      moment.Format("15:04"),
		Latitude:  roundTo(rng.Float64()*120-60, 4),
		Longitude: roundTo(rng.Float64()*360-180, 4),
	}
}

func roundTo(v float64, places int) float64 {
	scale := 1.0
	for i := 0; i < places; i++ {
		scale *= 10
	}
	return float64(int64(v*scale)) / scale
}
