//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/couchcryptid/career-scoring-engine/internal/adapter/kafka"
	"github.com/couchcryptid/career-scoring-engine/internal/config"
	"github.com/couchcryptid/career-scoring-engine/internal/domain"
	"github.com/couchcryptid/career-scoring-engine/internal/engine"
	"github.com/couchcryptid/career-scoring-engine/internal/model"
	"github.com/couchcryptid/career-scoring-engine/internal/observability"
	"github.com/couchcryptid/career-scoring-engine/internal/pipeline"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

const (
	testSourceTopic = "test-chart-requests"
	testSinkTopic   = "test-career-recommendations"
)

// publishedPrediction holds a deserialized message read from the sink topic.
type publishedPrediction struct {
	Event   domain.PredictionEvent
	Key     string
	Headers map[string]string
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("career-test"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)

	ctrlConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer ctrlConn.Close()

	require.NoError(t, ctrlConn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

func testConfig(broker, group string) *config.Config {
	return &config.Config{
		KafkaBrokers:       []string{broker},
		KafkaSourceTopic:   testSourceTopic,
		KafkaSinkTopic:     testSinkTopic,
		KafkaGroupID:       fmt.Sprintf("%s-%d", group, time.Now().UnixNano()),
		BatchFlushInterval: 2 * time.Second,

		StreamRequestTimeout: 5 * time.Second,
	}
}

func newEngine(t *testing.T) *engine.Engine {
	t.Helper()
	rules := domain.NewRuleScorer(domain.DefaultTable())
	m, err := model.Build(rules, model.Options{Seed: 42, SyntheticSamples: 300, Trees: 10})
	require.NoError(t, err)
	return engine.New(rules, m, nil, observability.NewMetricsForTesting(), discardLogger())
}

func chartMessage(t *testing.T, id string, chart domain.NestedChart) kafkago.Message {
	t.Helper()
	payload, err := json.Marshal(domain.ChartRequest{ID: id, Placements: chart})
	require.NoError(t, err)
	return kafkago.Message{Key: []byte(id), Value: payload}
}

// readPrediction reads a single message from the sink consumer and deserializes it.
func readPrediction(ctx context.Context, t *testing.T, consumer *kafkago.Reader) publishedPrediction {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from sink topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var event domain.PredictionEvent
	require.NoError(t, json.Unmarshal(msg.Value, &event), "unmarshal sink message")

	return publishedPrediction{Event: event, Key: string(msg.Key), Headers: headers}
}

func sinkConsumer(t *testing.T, broker string) *kafkago.Reader {
	t.Helper()
	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSinkTopic,
		GroupID:     fmt.Sprintf("test-sink-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })
	return consumer
}

// TestKafkaReaderWriter round-trips one chart request through the adapters.
func TestKafkaReaderWriter(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)
	cfg := testConfig(broker, "test-reader")

	producer := &kafkago.Writer{Addr: kafkago.TCP(broker), Topic: testSourceTopic}
	t.Cleanup(func() { _ = producer.Close() })

	msg := chartMessage(t, "req-1", domain.NestedChart{
		domain.Sun:     {House: 10, Sign: 0},
		domain.Mercury: {House: 3, Sign: 0},
	})
	require.NoError(t, producer.WriteMessages(ctx, msg))

	// Retry because the consumer group may need time to rebalance.
	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })

	var batch []domain.RawEvent
	for len(batch) == 0 {
		var err error
		batch, err = reader.ExtractBatch(ctx, 1)
		require.NoError(t, err)
	}
	require.Len(t, batch, 1)
	raw := batch[0]
	assert.Equal(t, []byte("req-1"), raw.Key)
	assert.Equal(t, msg.Value, raw.Value)
	assert.Equal(t, testSourceTopic, raw.Topic)
	require.NotNil(t, raw.Commit, "commit callback should be set")
	require.NoError(t, raw.Commit(ctx))

	scored, err := pipeline.NewTransformer(newEngine(t), discardLogger()).Transform(ctx, raw)
	require.NoError(t, err)
	out := scored.Event

	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })
	require.NoError(t, writer.LoadBatch(ctx, []domain.OutputEvent{out}))

	got := readPrediction(ctx, t, sinkConsumer(t, broker))
	assert.Equal(t, "req-1", got.Key)
	assert.Equal(t, "req-1", got.Event.RequestID)
	assert.Equal(t, string(got.Event.PrimaryCareer), got.Headers["primary_career"])
	_, err = time.Parse(time.RFC3339, got.Headers["processed_at"])
	assert.NoError(t, err, "processed_at should be valid RFC3339")
	assert.Contains(t, []domain.Career{
		domain.Management, domain.IT, domain.Engineering, domain.BusinessFinance, domain.PoliticsReform,
	}, got.Event.PrimaryCareer)
}

// TestPipelineEndToEnd streams the seed corpus through the full pipeline.
func TestPipelineEndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)
	cfg := testConfig(broker, "test-pipeline")

	corpus, err := model.SeedCorpus()
	require.NoError(t, err)

	producer := &kafkago.Writer{Addr: kafkago.TCP(broker), Topic: testSourceTopic}
	t.Cleanup(func() { _ = producer.Close() })

	msgs := make([]kafkago.Message, 0, len(corpus))
	for i, ind := range corpus {
		msgs = append(msgs, chartMessage(t, fmt.Sprintf("corpus-%d", i), domain.NestedChart(ind.Placements)))
	}
	require.NoError(t, producer.WriteMessages(ctx, msgs...))

	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	metrics := observability.NewMetricsForTesting()
	p := pipeline.New(reader, pipeline.NewTransformer(newEngine(t), discardLogger()), writer, discardLogger(), metrics,
		pipeline.Options{BatchSize: 50, RequestTimeout: cfg.StreamRequestTimeout})

	pipelineCtx, pipelineCancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(pipelineCtx) }()

	consumer := sinkConsumer(t, broker)
	seen := make(map[string]bool, len(corpus))
	for len(seen) < len(corpus) {
		got := readPrediction(ctx, t, consumer)
		seen[got.Event.RequestID] = true

		assert.Equal(t, got.Key, got.Event.RequestID)
		assert.True(t, domain.IsKnownCareer(got.Event.PrimaryCareer))
		assert.Len(t, got.Event.Ranked, domain.TopN)
		assert.Contains(t, got.Headers, "processed_at")
	}

	pipelineCancel()
	require.NoError(t, <-errCh)
	assert.NoError(t, p.CheckReadiness(ctx))
}

// TestPipelineTransformError verifies that invalid requests are skipped and
// the pipeline keeps processing valid ones.
func TestPipelineTransformError(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)
	cfg := testConfig(broker, "test-poison")

	producer := &kafkago.Writer{Addr: kafkago.TCP(broker), Topic: testSourceTopic}
	t.Cleanup(func() { _ = producer.Close() })

	require.NoError(t, producer.WriteMessages(ctx,
		kafkago.Message{Key: []byte("bad-json"), Value: []byte("not-json{{{")},
		chartMessage(t, "bad-house", domain.NestedChart{domain.Mars: {House: 13, Sign: 0}}),
		chartMessage(t, "good", domain.NestedChart{domain.Sun: {House: 10, Sign: 0}}),
	))

	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	metrics := observability.NewMetricsForTesting()
	p := pipeline.New(reader, pipeline.NewTransformer(newEngine(t), discardLogger()), writer, discardLogger(), metrics,
		pipeline.Options{BatchSize: 50, RequestTimeout: cfg.StreamRequestTimeout})

	pipelineCtx, pipelineCancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(pipelineCtx) }()

	consumer := sinkConsumer(t, broker)
	got := readPrediction(ctx, t, consumer)
	assert.Equal(t, "good", got.Event.RequestID)

	readCtx, readCancel := context.WithTimeout(ctx, 5*time.Second)
	_, err := consumer.ReadMessage(readCtx)
	readCancel()
	assert.Error(t, err, "expected no second message on sink topic")

	pipelineCancel()
	require.NoError(t, <-errCh)
}
