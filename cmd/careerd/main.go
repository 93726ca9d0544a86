package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/career-scoring-engine/internal/adapter/astroapi"
	httpadapter "github.com/couchcryptid/career-scoring-engine/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/career-scoring-engine/internal/adapter/kafka"
	"github.com/couchcryptid/career-scoring-engine/internal/config"
	"github.com/couchcryptid/career-scoring-engine/internal/engine"
	"github.com/couchcryptid/career-scoring-engine/internal/observability"
	"github.com/couchcryptid/career-scoring-engine/internal/pipeline"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	source := astroapi.NewSource(cfg, metrics, logger)
	eng := engine.FromConfig(cfg, source, metrics, logger)

	srv := httpadapter.NewServer(cfg.HTTPAddr, eng, eng, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	var closers []func() error
	if cfg.KafkaEnabled {
		reader := kafkaadapter.NewReader(cfg, logger)
		writer := kafkaadapter.NewWriter(cfg, logger)
		closers = append(closers, reader.Close, writer.Close)

		p := pipeline.New(reader, pipeline.NewTransformer(eng, logger), writer, logger, metrics, pipeline.Options{
			BatchSize:      cfg.BatchSize,
			RequestTimeout: cfg.StreamRequestTimeout,
		})
		g.Go(func() error { return p.Run(gctx) })
		logger.Info("prediction stream enabled",
			"source_topic", cfg.KafkaSourceTopic,
			"sink_topic", cfg.KafkaSinkTopic,
		)
	} else {
		logger.Info("prediction stream disabled")
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown error", "error", err)
		}
		return nil
	})

	err = g.Wait()
	for _, closeFn := range closers {
		if cerr := closeFn(); cerr != nil {
			logger.Error("kafka close error", "error", cerr)
		}
	}
	if err != nil {
		logger.Error("service stopped with error", "error", err)
		stop()
		os.Exit(1) //nolint:gocritic // stop already called
	}
	logger.Info("shutdown complete")
}
