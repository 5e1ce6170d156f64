// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/scooplab/custard/internal/domain/rank"
	"github.com/scooplab/custard/internal/domain/types"
)

// leaderboardPath is the route this handler owns.
const leaderboardPath = "/api/v1/leaderboard"

// leaderboardMaxAge is the client cache lifetime in seconds. The underlying
// window moves slowly, so a 15 minute cache is safe.
const leaderboardMaxAge = 900

// LeaderboardDependencies defines the interface for leaderboard reads.
type LeaderboardDependencies interface {
	Leaderboard(ctx context.Context, opts rank.Options) types.LeaderboardResult
}

// LeaderboardHandler handles leaderboard requests.
type LeaderboardHandler struct {
	deps LeaderboardDependencies
}

// NewLeaderboardHandler creates a new leaderboard handler.
func NewLeaderboardHandler(deps LeaderboardDependencies) *LeaderboardHandler {
	return &LeaderboardHandler{deps: deps}
}

// Handle serves GET /api/v1/leaderboard?days&limit&states requests. It
// reports whether it owned the request, so a composed router can fall
// through to the next handler on a path miss.
func (h *LeaderboardHandler) Handle(w http.ResponseWriter, r *http.Request) bool {
	const op = "api.get_leaderboard"
	if r.URL.Path != leaderboardPath {
		return false
	}
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", NewKind(op, ErrMethodNotAllowed))
		return true
	}

	q := r.URL.Query()
	opts := rank.Options{
		WindowDays: intParam(q.Get("days")),
		Limit:      intParam(q.Get("limit")),
		States:     statesParam(q.Get("states")),
	}

	result := h.deps.Leaderboard(r.Context(), opts)

	w.Header().Set("Cache-Control", "public, max-age="+strconv.Itoa(leaderboardMaxAge))
	writeJSON(w, http.StatusOK, result)
	return true
}

// HandleGetLeaderboard adapts Handle to http.HandlerFunc for mux routing.
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	if !h.Handle(w, r) {
		http.NotFound(w, r)
	}
}

// intParam parses a positive integer query value. Anything unparseable
// falls through to 0, letting the aggregation defaults apply.
func intParam(raw string) int {
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0
	}
	return n
}

// statesParam splits a comma separated states filter, dropping blanks.
func statesParam(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
