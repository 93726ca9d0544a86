package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/couchcryptid/career-scoring-engine/internal/config"
	"github.com/couchcryptid/career-scoring-engine/internal/observability"
	"github.com/spf13/cobra"
)

// loadEnv reads configuration and builds a stderr logger plus unregistered
// metrics, since the CLI never serves /metrics.
func loadEnv(cmd *cobra.Command) (*config.Config, *slog.Logger, *observability.Metrics, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, observability.NewCLILogger(cfg, cmd.ErrOrStderr()), observability.NewMetricsForTesting(), nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
