package api

import (
	"context"
	"net/http"

	"github.com/okian/prepscore/internal/domain/types"
)

// StateDependencies defines the read and reset operations over candidate state.
type StateDependencies interface {
	Mastery(ctx context.Context) []types.SubjectMastery
	Profile(ctx context.Context) types.ProfileView
	BlindSpots(ctx context.Context) []types.BlindSpot
	Reset(ctx context.Context) error
}

// StateHandler exposes the candidate state.
type StateHandler struct {
	deps StateDependencies
}

// NewStateHandler creates a new state handler.
func NewStateHandler(deps StateDependencies) *StateHandler {
	return &StateHandler{deps: deps}
}

// HandleMastery handles GET /mastery.
func (h *StateHandler) HandleMastery(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, "api.mastery", http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Mastery(r.Context()))
}

// HandleProfile handles GET /profile.
func (h *StateHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, "api.profile", http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Profile(r.Context()))
}

// HandleBlindSpots handles GET /blindspots.
func (h *StateHandler) HandleBlindSpots(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, "api.blindspots", http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, h.deps.BlindSpots(r.Context()))
}

// HandleReset handles POST /reset.
func (h *StateHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, "api.reset", http.MethodPost) {
		return
	}
	if err := h.deps.Reset(r.Context()); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
