package kafka

import (
	"testing"
	"time"

	"github.com/couchcryptid/career-scoring-engine/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
)

func TestMapMessageToRawEvent(t *testing.T) {
	now := time.Now()
	msg := kafkago.Message{
		Key:       []byte("req-1"),
		Value:     []byte(`{"id":"req-1"}`),
		Topic:     "chart-requests",
		Partition: 2,
		Offset:    42,
		Time:      now,
		Headers: []kafkago.Header{
			{Key: "source", Value: []byte("careerctl")},
		},
	}

	raw := mapMessageToRawEvent(msg)

	assert.Equal(t, []byte("req-1"), raw.Key)
	assert.JSONEq(t, `{"id":"req-1"}`, string(raw.Value))
	assert.Equal(t, "chart-requests", raw.Topic)
	assert.Equal(t, 2, raw.Partition)
	assert.Equal(t, int64(42), raw.Offset)
	assert.Equal(t, now, raw.Timestamp)
	assert.Equal(t, "careerctl", raw.Headers["source"])
	assert.Nil(t, raw.Commit)
}

func TestMapOutputEventToMessage(t *testing.T) {
	event := domain.OutputEvent{
		Key:   []byte("req-1"),
		Value: []byte(`{"primary_career":"IT"}`),
		Headers: map[string]string{
			"processed_at":   "2024-04-26T15:10:00Z",
			"primary_career": "IT",
		},
	}

	msg := mapOutputEventToMessage(event)

	assert.Equal(t, []byte("req-1"), msg.Key)
	assert.Equal(t, event.Value, msg.Value)
	assert.Len(t, msg.Headers, 2)
	assert.Equal(t, "primary_career", msg.Headers[0].Key)
	assert.Equal(t, []byte("IT"), msg.Headers[0].Value)
	assert.Equal(t, "processed_at", msg.Headers[1].Key)
}

func TestMapOutputEventToMessage_NoHeaders(t *testing.T) {
	msg := mapOutputEventToMessage(domain.OutputEvent{Key: []byte("k"), Value: []byte("{}")})
	assert.Empty(t, msg.Headers)
}
