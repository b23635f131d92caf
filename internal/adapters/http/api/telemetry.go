package api

import (
	"context"
	"net/http"

	service "github.com/okian/prepscore/internal/app"
)

// TelemetryDependencies defines the ingestion operations.
type TelemetryDependencies interface {
	RecordSession(ctx context.Context, sub service.SessionSubmission) (service.SessionResult, error)
	RecordGame(ctx context.Context, sub service.GameSubmission) (service.GameResult, error)
}

// TelemetryHandler ingests practice sessions and mini-game rounds.
type TelemetryHandler struct {
	deps TelemetryDependencies
}

// NewTelemetryHandler creates a new telemetry handler.
func NewTelemetryHandler(deps TelemetryDependencies) *TelemetryHandler {
	return &TelemetryHandler{deps: deps}
}

// HandlePostSession handles POST /sessions. A replayed session_id answers
// 200 with duplicate=true; a new session answers 201.
func (h *TelemetryHandler) HandlePostSession(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_session"
	if !allow(w, r, op, http.MethodPost) {
		return
	}
	var sub service.SessionSubmission
	if err := decodeBody(w, r, op, &sub, false); err != nil {
		writeServiceError(w, err)
		return
	}
	res, err := h.deps.RecordSession(r.Context(), sub)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, createdOrOK(res.Duplicate), res)
}

// HandlePostGame handles POST /games.
func (h *TelemetryHandler) HandlePostGame(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_game"
	if !allow(w, r, op, http.MethodPost) {
		return
	}
	var sub service.GameSubmission
	if err := decodeBody(w, r, op, &sub, false); err != nil {
		writeServiceError(w, err)
		return
	}
	res, err := h.deps.RecordGame(r.Context(), sub)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, createdOrOK(res.Duplicate), res)
}

func createdOrOK(duplicate bool) int {
	if duplicate {
		return http.StatusOK
	}
	return http.StatusCreated
}
