package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/couchcryptid/career-scoring-engine/internal/domain"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error  string        `json:"error"`
	Planet domain.Planet `json:"planet,omitempty"`
	Field  string        `json:"field,omitempty"`
}

type predictResponse struct {
	domain.Prediction
	PositionSource domain.Origin `json:"position_source,omitempty"`
}

type positionsResponse struct {
	domain.Positions
	Source domain.Origin `json:"source"`
}

type careersResponse struct {
	Careers      []domain.Career `json:"careers"`
	TableVersion string          `json:"table_version"`
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req domain.ChartRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.ID == "" {
		req.ID = requestID(r.Context())
	}

	p, origin, err := s.predictor.PredictRequest(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Debug("prediction served",
		"request_id", req.ID,
		"prediction_id", p.ID,
		"primary", p.Primary,
		"model_degraded", p.ModelDegraded,
	)
	sharedobs.WriteJSON(w, http.StatusOK, predictResponse{Prediction: p, PositionSource: origin})
}

func (s *Server) handlePositions(w http.ResponseWriter, r *http.Request) {
	var req domain.BirthRequest
	if !s.decode(w, r, &req) {
		return
	}
	birth, err := req.Parse()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	res := s.predictor.ResolvePositions(r.Context(), birth)
	sharedobs.WriteJSON(w, http.StatusOK, positionsResponse{Positions: res.Positions, Source: res.Origin})
}

func (s *Server) handleCareers(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, careersResponse{
		Careers:      s.predictor.Careers(),
		TableVersion: s.predictor.TableVersion(),
	})
}

// decode reads a JSON body into v. It writes a 400 and returns false when the
// body is not valid JSON.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		sharedobs.WriteJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("malformed request body: %v", err)})
		return false
	}
	return true
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		sharedobs.WriteJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:  verr.Error(),
			Planet: verr.Planet,
			Field:  verr.Field,
		})
		return
	}
	s.logger.Error("request failed", "path", r.URL.Path, "request_id", requestID(r.Context()), "error", err)
	sharedobs.WriteJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
}
