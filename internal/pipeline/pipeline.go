package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/career-scoring-engine/internal/domain"
	"github.com/couchcryptid/career-scoring-engine/internal/observability"
	sharedretry "github.com/couchcryptid/storm-data-shared/retry"
)

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// BatchExtractor reads up to batchSize chart requests from the source.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawEvent, error)
}

// Transformer predicts one chart request.
type Transformer interface {
	Transform(ctx context.Context, raw domain.RawEvent) (Scored, error)
}

// BatchLoader publishes prediction events to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, events []domain.OutputEvent) error
}

// Scored is a serialized prediction plus how it was produced.
type Scored struct {
	Event          domain.OutputEvent
	PositionSource domain.Origin // empty when the request carried placements
	ModelDegraded  bool
}

// Options tunes the stream.
type Options struct {
	BatchSize int
	// RequestTimeout bounds each Transform call. Zero leaves requests bound
	// only by the Run context.
	RequestTimeout time.Duration
}

// Pipeline feeds streamed chart requests through the engine. Each request is
// still predicted synchronously; the stream only decides what arrives.
type Pipeline struct {
	extractor   BatchExtractor
	transformer Transformer
	loader      BatchLoader
	logger      *slog.Logger
	metrics     *observability.Metrics
	opts        Options
	published   atomic.Bool
}

// New creates a Pipeline with the given stages and observability.
func New(e BatchExtractor, t Transformer, l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, opts Options) *Pipeline {
	return &Pipeline{
		extractor:   e,
		transformer: t,
		loader:      l,
		logger:      logger,
		metrics:     metrics,
		opts:        opts,
	}
}

// CheckReadiness returns nil once the pipeline has published a prediction.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.published.Load() {
		return errors.New("pipeline has not published any predictions yet")
	}
	return nil
}

// Run consumes chart requests until ctx is cancelled. A failed extract or
// publish waits before the next batch, doubling the wait up to maxBackoff;
// any completed batch resets it.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("prediction stream started",
		"batch_size", p.opts.BatchSize,
		"request_timeout", p.opts.RequestTimeout,
	)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	wait := initialBackoff
	for ctx.Err() == nil {
		err := p.runBatch(ctx)
		if err == nil {
			wait = initialBackoff
			continue
		}
		if ctx.Err() != nil {
			break
		}
		p.logger.Error("prediction batch failed", "error", err, "retry_in", wait)
		if !sharedretry.SleepWithContext(ctx, wait) {
			break
		}
		wait = sharedretry.NextBackoff(wait, maxBackoff)
	}

	p.logger.Info("prediction stream stopping", "reason", ctx.Err())
	return nil
}

// runBatch extracts, predicts, publishes and commits one batch. Offsets of
// published predictions are committed only after the sink accepted them.
func (p *Pipeline) runBatch(ctx context.Context) error {
	start := time.Now()

	batch, err := p.extractor.ExtractBatch(ctx, p.opts.BatchSize)
	if err != nil {
		return fmt.Errorf("extract batch: %w", err)
	}
	if len(batch) == 0 {
		return nil
	}
	p.metrics.MessagesConsumed.Add(float64(len(batch)))
	p.metrics.BatchSize.Observe(float64(len(batch)))

	scored, accepted := p.predictBatch(ctx, batch)
	if len(scored) == 0 {
		return nil
	}

	events := make([]domain.OutputEvent, len(scored))
	for i, s := range scored {
		events[i] = s.Event
	}
	if err := p.loader.LoadBatch(ctx, events); err != nil {
		return fmt.Errorf("publish %d predictions: %w", len(events), err)
	}

	p.recordPublished(scored)
	for _, raw := range accepted {
		p.commit(ctx, raw)
	}
	p.metrics.BatchProcessingDuration.Observe(time.Since(start).Seconds())
	p.published.Store(true)
	return nil
}

// predictBatch scores every request in the batch. Rejected requests are
// committed right away so they are not redelivered.
func (p *Pipeline) predictBatch(ctx context.Context, batch []domain.RawEvent) ([]Scored, []domain.RawEvent) {
	scored := make([]Scored, 0, len(batch))
	accepted := make([]domain.RawEvent, 0, len(batch))

	for _, raw := range batch {
		s, err := p.predictOne(ctx, raw)
		if err != nil {
			p.logger.Warn("chart request rejected, skipping message",
				"error", err,
				"key", string(raw.Key),
				"partition", raw.Partition,
				"offset", raw.Offset,
			)
			p.metrics.TransformErrors.Inc()
			p.commit(ctx, raw)
			continue
		}
		scored = append(scored, s)
		accepted = append(accepted, raw)
	}
	return scored, accepted
}

// predictOne runs Transform under the per-request deadline. Position
// resolution degrades to the fallback when the deadline expires, so a slow
// source costs at most RequestTimeout per request.
func (p *Pipeline) predictOne(ctx context.Context, raw domain.RawEvent) (Scored, error) {
	if p.opts.RequestTimeout <= 0 {
		return p.transformer.Transform(ctx, raw)
	}

	reqCtx, cancel := context.WithTimeout(ctx, p.opts.RequestTimeout)
	defer cancel()

	s, err := p.transformer.Transform(reqCtx, raw)
	if ctx.Err() == nil && errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
		p.metrics.RequestDeadlines.Inc()
		p.logger.Warn("chart request ran past its deadline",
			"key", string(raw.Key),
			"timeout", p.opts.RequestTimeout,
			"position_source", s.PositionSource,
		)
	}
	return s, err
}

func (p *Pipeline) recordPublished(scored []Scored) {
	p.metrics.MessagesProduced.Add(float64(len(scored)))
	for _, s := range scored {
		p.metrics.PredictionsPublished.
			WithLabelValues(sourceLabel(s.PositionSource), strconv.FormatBool(s.ModelDegraded)).
			Inc()
	}
}

// sourceLabel names where a prediction's placements came from.
func sourceLabel(o domain.Origin) string {
	if o == "" {
		return "supplied"
	}
	return string(o)
}

func (p *Pipeline) commit(ctx context.Context, raw domain.RawEvent) {
	if raw.Commit == nil {
		return
	}
	if err := raw.Commit(ctx); err != nil {
		p.logger.Warn("commit offset failed", "error", err,
			"topic", raw.Topic, "partition", raw.Partition, "offset", raw.Offset)
	}
}
