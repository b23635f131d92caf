package api

import (
	"context"
	"net/http"

	"github.com/okian/prepscore/internal/domain/model"
)

// SimulatorDependencies defines the simulator operations the handlers need.
type SimulatorDependencies interface {
	Ping(ctx context.Context) error
	Predict(ctx context.Context, opts *model.PredictOptions) (model.PredictionResult, error)
	Simulate(ctx context.Context, req model.Request) (model.Response, error)
}

// SimulatorHandler exposes the prediction simulator.
type SimulatorHandler struct {
	deps SimulatorDependencies
}

// NewSimulatorHandler creates a new simulator handler.
func NewSimulatorHandler(deps SimulatorDependencies) *SimulatorHandler {
	return &SimulatorHandler{deps: deps}
}

type pingResponse struct {
	Status string `json:"status"`
}

// HandlePing handles GET /ping: 200 when the workers answer, 504 otherwise.
func (h *SimulatorHandler) HandlePing(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, "api.ping", http.MethodGet) {
		return
	}
	if err := h.deps.Ping(r.Context()); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pingResponse{Status: string(model.StatusPong)})
}

// HandlePredict handles POST /predict. The body carries optional overrides
// (run_count, weights, seed); the snapshot is built from the stored state.
func (h *SimulatorHandler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	const op = "api.predict"
	if !allow(w, r, op, http.MethodPost) {
		return
	}
	var opts model.PredictOptions
	if err := decodeBody(w, r, op, &opts, true); err != nil {
		writeServiceError(w, err)
		return
	}
	res, err := h.deps.Predict(r.Context(), &opts)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleMessage handles POST /simulator: a raw request message in, the
// simulator's response message out. ERROR responses are still delivered with 200.
func (h *SimulatorHandler) HandleMessage(w http.ResponseWriter, r *http.Request) {
	const op = "api.simulator"
	if !allow(w, r, op, http.MethodPost) {
		return
	}
	var req model.Request
	if err := decodeBody(w, r, op, &req, false); err != nil {
		writeServiceError(w, err)
		return
	}
	resp, err := h.deps.Simulate(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
