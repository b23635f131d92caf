// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/okian/prepscore/internal/adapters/mq/worker"
	service "github.com/okian/prepscore/internal/app"
	"github.com/okian/prepscore/internal/domain/model"
	"github.com/okian/prepscore/internal/domain/types"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	StatsProvider

	// Simulator access.
	Ping(ctx context.Context) error
	Predict(ctx context.Context, opts *model.PredictOptions) (model.PredictionResult, error)
	Simulate(ctx context.Context, req model.Request) (model.Response, error)

	// Telemetry ingestion.
	RecordSession(ctx context.Context, sub service.SessionSubmission) (service.SessionResult, error)
	RecordGame(ctx context.Context, sub service.GameSubmission) (service.GameResult, error)

	// Read operations expose the candidate state.
	Mastery(ctx context.Context) []types.SubjectMastery
	Profile(ctx context.Context) types.ProfileView
	BlindSpots(ctx context.Context) []types.BlindSpot
	Reset(ctx context.Context) error
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	simulatorHandler *SimulatorHandler
	telemetryHandler *TelemetryHandler
	stateHandler     *StateHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(deps),
		simulatorHandler: NewSimulatorHandler(deps),
		telemetryHandler: NewTelemetryHandler(deps),
		stateHandler:     NewStateHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/ping", MetricsMiddleware(s.simulatorHandler.HandlePing, "ping"))
	mux.HandleFunc("/simulator", MetricsMiddleware(s.simulatorHandler.HandleMessage, "simulator"))
	mux.HandleFunc("/predict", MetricsMiddleware(s.simulatorHandler.HandlePredict, "predict"))
	mux.HandleFunc("/sessions", MetricsMiddleware(s.telemetryHandler.HandlePostSession, "sessions"))
	mux.HandleFunc("/games", MetricsMiddleware(s.telemetryHandler.HandlePostGame, "games"))
	mux.HandleFunc("/mastery", MetricsMiddleware(s.stateHandler.HandleMastery, "mastery"))
	mux.HandleFunc("/profile", MetricsMiddleware(s.stateHandler.HandleProfile, "profile"))
	mux.HandleFunc("/blindspots", MetricsMiddleware(s.stateHandler.HandleBlindSpots, "blindspots"))
	mux.HandleFunc("/reset", MetricsMiddleware(s.stateHandler.HandleReset, "reset"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError maps service and simulator errors to HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalid), errors.Is(err, ErrBadRequest):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, service.ErrNotStarted), errors.Is(err, worker.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, "unavailable", err)
	case errors.Is(err, worker.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, "simulator_timeout", err)
	case errors.Is(err, worker.ErrSimulator), errors.Is(err, worker.ErrUnexpectedAck):
		writeError(w, http.StatusBadGateway, "simulator_error", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}

// allow writes 405 and returns false when r does not use method.
func allow(w http.ResponseWriter, r *http.Request, op, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", NewKind(op, ErrMethodNotAllowed))
	return false
}

// decodeBody reads a JSON body into v. An empty body leaves v untouched
// when optional is set.
func decodeBody(w http.ResponseWriter, r *http.Request, op string, v any, optional bool) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if optional && errors.Is(err, io.EOF) {
			return nil
		}
		return WrapKind(op, ErrBadRequest, fmt.Errorf("decode body: %w", err))
	}
	return nil
}
