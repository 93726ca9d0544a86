package observability

import (
	"io"
	"log/slog"
	"strings"

	"github.com/couchcryptid/career-scoring-engine/internal/config"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

// NewLogger builds the process logger from LOG_LEVEL and LOG_FORMAT and
// installs it as the slog default.
func NewLogger(cfg *config.Config) *slog.Logger {
	return sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
}

// NewCLILogger writes text logs to w, keeping stdout free for command output.
// Only warnings and errors are shown unless LOG_LEVEL is debug.
func NewCLILogger(cfg *config.Config, w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if strings.EqualFold(cfg.LogLevel, "debug") {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
