package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/couchcryptid/career-scoring-engine/internal/adapter/astroapi"
	"github.com/couchcryptid/career-scoring-engine/internal/domain"
	"github.com/couchcryptid/career-scoring-engine/internal/engine"
	"github.com/spf13/cobra"
)

var predictFlags struct {
	houses map[string]int
	signs  map[string]int
	file   string
}

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Rank careers for a chart given as flags or a JSON request file",
	Long: "Rank careers for a chart. Placements come from --house/--sign pairs, or\n" +
		"--file names a JSON chart request ({\"placements\"|\"flat\"|\"birth\": ...}).\n" +
		"Planets left out default to house 1, Aries.",
	RunE: runPredict,
}

func init() {
	f := predictCmd.Flags()
	f.StringToIntVar(&predictFlags.houses, "house", nil, "planet=house pairs, e.g. Sun=10")
	f.StringToIntVar(&predictFlags.signs, "sign", nil, "planet=sign pairs (0=Aries .. 11=Pisces)")
	f.StringVarP(&predictFlags.file, "file", "f", "", "JSON chart request file")
	predictCmd.MarkFlagsMutuallyExclusive("file", "house")
	predictCmd.MarkFlagsMutuallyExclusive("file", "sign")
}

type predictOutput struct {
	domain.Prediction
	PositionSource domain.Origin `json:"position_source,omitempty"`
}

func runPredict(cmd *cobra.Command, _ []string) error {
	req, err := predictRequest()
	if err != nil {
		return err
	}

	cfg, logger, metrics, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	eng := engine.FromConfig(cfg, astroapi.NewSource(cfg, metrics, logger), metrics, logger)

	p, origin, err := eng.PredictRequest(cmd.Context(), req)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), predictOutput{Prediction: p, PositionSource: origin})
}

func predictRequest() (domain.ChartRequest, error) {
	if predictFlags.file != "" {
		data, err := os.ReadFile(predictFlags.file)
		if err != nil {
			return domain.ChartRequest{}, fmt.Errorf("read chart request: %w", err)
		}
		var req domain.ChartRequest
		if err := json.Unmarshal(data, &req); err != nil {
			return domain.ChartRequest{}, fmt.Errorf("decode chart request: %w", err)
		}
		return req, nil
	}

	chart, err := chartFromFlags(predictFlags.houses, predictFlags.signs)
	if err != nil {
		return domain.ChartRequest{}, err
	}
	return domain.ChartRequest{Placements: chart}, nil
}

// chartFromFlags merges house and sign pairs into a nested chart. Unknown
// planet names are rejected rather than silently dropped.
func chartFromFlags(houses, signs map[string]int) (domain.NestedChart, error) {
	names := make(map[string]bool, len(houses)+len(signs))
	for name := range houses {
		names[name] = true
	}
	for name := range signs {
		names[name] = true
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no placements given: use --house/--sign or --file")
	}

	sorted := make([]string, 0, len(names))
	for name := range names {
		sorted = append(sorted, name)
	}
	sort.Strings(sorted)

	chart := make(domain.NestedChart, len(sorted))
	for _, name := range sorted {
		planet, ok := domain.ParsePlanet(name)
		if !ok || planet == domain.Ascendant {
			return nil, fmt.Errorf("unknown planet %q", name)
		}
		pl := domain.Placement{House: domain.DefaultHouse, Sign: domain.DefaultSign}
		if h, ok := houses[name]; ok {
			pl.House = h
		}
		if s, ok := signs[name]; ok {
			pl.Sign = s
		}
		chart[planet] = pl
	}
	return chart, nil
}
