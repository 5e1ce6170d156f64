// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"

	service "github.com/scooplab/custard/internal/app"
	"github.com/scooplab/custard/internal/scheduler"
)

// HarvestDependencies defines the interface for manual harvest triggers.
type HarvestDependencies interface {
	RunHarvestTick(ctx context.Context) (scheduler.TickResult, error)
}

// HarvestHandler handles manual harvest tick requests.
type HarvestHandler struct {
	deps HarvestDependencies
}

// NewHarvestHandler creates a new harvest handler.
func NewHarvestHandler(deps HarvestDependencies) *HarvestHandler {
	return &HarvestHandler{deps: deps}
}

// HandleRunHarvest handles POST /api/v1/harvest/run requests. The tick runs
// synchronously and the response reports what it did.
func (h *HarvestHandler) HandleRunHarvest(w http.ResponseWriter, r *http.Request) {
	const op = "api.run_harvest"
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", NewKind(op, ErrMethodNotAllowed))
		return
	}
	res, err := h.deps.RunHarvestTick(r.Context())
	if err != nil {
		if errors.Is(err, service.ErrNotStarted) {
			writeError(w, http.StatusServiceUnavailable, "not_started", WrapKind(op, ErrNotStarted, err))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}
