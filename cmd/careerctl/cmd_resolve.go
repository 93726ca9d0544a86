package main

import (
	"github.com/couchcryptid/career-scoring-engine/internal/adapter/astroapi"
	"github.com/couchcryptid/career-scoring-engine/internal/domain"
	"github.com/spf13/cobra"
)

var resolveFlags struct {
	date string
	time string
	lat  float64
	lon  float64
}

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve planetary positions for a birth moment and place",
	RunE:  runResolve,
}

func init() {
	f := resolveCmd.Flags()
	f.StringVar(&resolveFlags.date, "date", "", "birth date, YYYY-MM-DD (required)")
	f.StringVar(&resolveFlags.time, "time", "", "local birth time, HH:MM[:SS] (required)")
	f.Float64Var(&resolveFlags.lat, "lat", 0, "latitude in degrees")
	f.Float64Var(&resolveFlags.lon, "lon", 0, "longitude in degrees")

	_ = resolveCmd.MarkFlagRequired("date")
	_ = resolveCmd.MarkFlagRequired("time")
}

type resolveOutput struct {
	domain.Positions
	Source domain.Origin `json:"source"`
	Cause  string        `json:"fallback_cause,omitempty"`
}

func runResolve(cmd *cobra.Command, _ []string) error {
	birth, err := domain.ParseBirthData(resolveFlags.date, resolveFlags.time, resolveFlags.lat, resolveFlags.lon)
	if err != nil {
		return err
	}

	cfg, logger, metrics, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	source := astroapi.NewSource(cfg, metrics, logger)

	res := domain.ResolvePositions(cmd.Context(), birth, source, logger)
	out := resolveOutput{Positions: res.Positions, Source: res.Origin}
	if res.Cause != nil {
		out.Cause = res.Cause.Error()
	}
	return writeJSON(cmd.OutOrStdout(), out)
}
