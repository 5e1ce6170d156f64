// Package types contains common types used across the application
package types

// RankedEntry represents one ranked flavor within a location group
type RankedEntry struct {
	Flavor string `json:"flavor"`
	Count  int    `json:"count"`
	Rank   int    `json:"rank"`
}

// Leaderboard source tags.
const (
	SourceLive = "live"
	SourceSeed = "metrics_seed"
)

// NationalGroup is the sentinel location group covering every store.
const NationalGroup = "national"

// LeaderboardResult is the response shape of the leaderboard endpoint.
type LeaderboardResult struct {
	Source         string                   `json:"source"`
	WindowDays     int                      `json:"window_days"`
	StatesReturned []string                 `json:"states_returned"`
	StateLeaders   map[string][]RankedEntry `json:"state_leaders"`
}
