// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/scooplab/custard/internal/domain/model"
	"github.com/scooplab/custard/internal/domain/rank"
	"github.com/scooplab/custard/internal/domain/types"
	"github.com/scooplab/custard/internal/scheduler"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Leaderboard builds the windowed leaderboard; it never fails, falling
	// back to the seed dataset instead.
	Leaderboard(ctx context.Context, opts rank.Options) types.LeaderboardResult

	// StoreInfo resolves a store slug to its indexed fields.
	StoreInfo(ctx context.Context, slug string) (model.StoreInfo, error)

	// RunHarvestTick runs one scheduler tick outside the cron cadence.
	RunHarvestTick(ctx context.Context) (scheduler.TickResult, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	leaderboardHandler *LeaderboardHandler
	storesHandler      *StoresHandler
	harvestHandler     *HarvestHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		leaderboardHandler: NewLeaderboardHandler(deps),
		storesHandler:      NewStoresHandler(deps),
		harvestHandler:     NewHarvestHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/api/v1/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/api/v1/harvest/run", MetricsMiddleware(s.harvestHandler.HandleRunHarvest, "harvest_run"))
	mux.HandleFunc("/api/v1/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("/api/v1/stores/", MetricsMiddleware(s.storesHandler.HandleGetStore, "stores"))
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
