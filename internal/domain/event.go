package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// RawEvent represents an unprocessed message from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// OutputEvent is the serialized form destined for the sink topic.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// BirthRequest is birth data as submitted by clients, before parsing.
type BirthRequest struct {
	Date      string  `json:"date"` // YYYY-MM-DD
	Time      string  `json:"time"` // HH:MM or HH:MM:SS, local
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Parse validates and converts the request.
func (b BirthRequest) Parse() (BirthData, error) {
	return ParseBirthData(b.Date, b.Time, b.Latitude, b.Longitude)
}

// ChartRequest asks for a prediction. Exactly one of Placements, Flat, or
// Birth is expected; when several are set Placements wins, then Flat.
type ChartRequest struct {
	ID         string        `json:"id,omitempty"`
	Placements NestedChart   `json:"placements,omitempty"`
	Flat       FlatChart     `json:"flat,omitempty"`
	Birth      *BirthRequest `json:"birth,omitempty"`
}

// Chart returns the placement variant carried by the request, or nil when
// the request only carries birth data.
func (r ChartRequest) Chart() ChartInput {
	switch {
	case len(r.Placements) > 0:
		return r.Placements
	case len(r.Flat) > 0:
		return r.Flat
	default:
		return nil
	}
}

// Prediction is the response of one predict call.
type Prediction struct {
	ID            string             `json:"prediction_id"`
	Primary       Career             `json:"primary_career"`
	Combined      map[Career]float64 `json:"combined_scores"`
	Top           []CareerScore      `json:"ranked_top3"`
	Records       []CareerScore      `json:"records"`
	Degenerate    bool               `json:"degenerate"`
	ModelDegraded bool               `json:"model_degraded"`
	TableVersion  string             `json:"table_version"`
}

// PredictionEvent is the sink-topic payload of a streamed prediction.
type PredictionEvent struct {
	ID             string             `json:"id"`
	RequestID      string             `json:"request_id"`
	PrimaryCareer  Career             `json:"primary_career"`
	CombinedScores map[Career]float64 `json:"combined_scores"`
	Ranked         []CareerScore      `json:"ranked"`
	PositionSource Origin             `json:"position_source,omitempty"`
	ProcessedAt    time.Time          `json:"processed_at"`
}

// ParseChartRequest decodes a streamed chart request. A request without an
// ID takes the message key.
func ParseChartRequest(raw RawEvent) (ChartRequest, error) {
	var req ChartRequest
	if err := json.Unmarshal(raw.Value, &req); err != nil {
		return ChartRequest{}, fmt.Errorf("unmarshal chart request: %w", err)
	}
	if req.ID == "" {
		req.ID = string(raw.Key)
	}
	return req, nil
}

// NewPredictionEvent stamps a prediction for the sink topic.
func NewPredictionEvent(requestID string, p Prediction, origin Origin) PredictionEvent {
	return PredictionEvent{
		ID:             p.ID,
		RequestID:      requestID,
		PrimaryCareer:  p.Primary,
		CombinedScores: p.Combined,
		Ranked:         p.Top,
		PositionSource: origin,
		ProcessedAt:    Now(),
	}
}

// SerializePredictionEvent marshals a prediction event keyed by request ID.
func SerializePredictionEvent(e PredictionEvent) (OutputEvent, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return OutputEvent{}, fmt.Errorf("marshal prediction event: %w", err)
	}
	headers := map[string]string{
		"primary_career": string(e.PrimaryCareer),
		"processed_at":   e.ProcessedAt.Format(time.RFC3339),
	}
	if e.PositionSource != "" {
		headers["position_source"] = string(e.PositionSource)
	}
	return OutputEvent{
		Key:     []byte(e.RequestID),
		Value:   data,
		Headers: headers,
	}, nil
}
