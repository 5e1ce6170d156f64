// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/scooplab/custard/internal/adapters/repository"
	"github.com/scooplab/custard/internal/domain/model"
)

// StoreDependencies defines the interface for store index lookups.
type StoreDependencies interface {
	StoreInfo(ctx context.Context, slug string) (model.StoreInfo, error)
}

// StoresHandler handles store index requests.
type StoresHandler struct {
	deps StoreDependencies
}

// NewStoresHandler creates a new stores handler.
func NewStoresHandler(deps StoreDependencies) *StoresHandler {
	return &StoresHandler{deps: deps}
}

// HandleGetStore handles GET /api/v1/stores/{slug} requests.
func (h *StoresHandler) HandleGetStore(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_store"
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", NewKind(op, ErrMethodNotAllowed))
		return
	}
	// Extract path parameter after /stores/
	slug := strings.TrimPrefix(r.URL.Path, "/api/v1/stores/")
	if slug == "" || strings.Contains(slug, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	info, err := h.deps.StoreInfo(r.Context(), slug)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, info)
}
