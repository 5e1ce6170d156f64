// Package rank turns raw flavor occurrence rows into ranked leaderboards
// grouped by state, plus a national group covering every store.
package rank

import (
	"sort"

	"github.com/scooplab/custard/internal/domain/model"
	"github.com/scooplab/custard/internal/domain/types"
)

// Default aggregation configuration constants.
const (
	DefaultWindowDays = 30
	DefaultLimit      = 5
	MaxWindowDays     = 365
	MaxLimit          = 50
)

// Options controls one leaderboard build.
type Options struct {
	// WindowDays is the trailing window the rows were fetched for.
	WindowDays int
	// Limit truncates each group to its top-N entries.
	Limit int
	// States optionally restricts which state groups appear in the result.
	// The national group is unaffected.
	States []string
}

// WithDefaults clamps the options into their supported ranges.
func (o Options) WithDefaults() Options {
	if o.WindowDays <= 0 {
		o.WindowDays = DefaultWindowDays
	}
	if o.WindowDays > MaxWindowDays {
		o.WindowDays = MaxWindowDays
	}
	if o.Limit <= 0 {
		o.Limit = DefaultLimit
	}
	if o.Limit > MaxLimit {
		o.Limit = MaxLimit
	}
	return o
}

// group accumulates counts for one location group in encounter order.
type group struct {
	order  []string       // flavor keys in first-seen order
	counts map[string]int // flavor key -> summed count
}

func newGroup() *group {
	return &group{counts: make(map[string]int)}
}

func (g *group) add(flavor string, count int) {
	if _, ok := g.counts[flavor]; !ok {
		g.order = append(g.order, flavor)
	}
	g.counts[flavor] += count
}

// Build aggregates occurrence rows into ranked top-N lists per state plus
// the national group. stateBySlug joins each slug to its state; slugs with
// no resolvable state are excluded from per-state grouping but still count
// toward national. Ranking is descending by summed count with stable
// tie-break on first encounter order. The result is tagged as live data.
func Build(rows []model.OccurrenceRow, stateBySlug map[string]string, opts Options) types.LeaderboardResult {
	opts = opts.WithDefaults()

	display := make(map[string]string) // flavor key -> first-seen display name
	groups := map[string]*group{
		types.NationalGroup: newGroup(),
	}

	for _, row := range rows {
		if row.Flavor == "" || row.Count <= 0 {
			continue
		}
		if _, ok := display[row.Flavor]; !ok && row.DisplayName != "" {
			display[row.Flavor] = row.DisplayName
		}

		groups[types.NationalGroup].add(row.Flavor, row.Count)

		state := stateBySlug[row.Slug]
		if state == "" {
			continue
		}
		g, ok := groups[state]
		if !ok {
			g = newGroup()
			groups[state] = g
		}
		g.add(row.Flavor, row.Count)
	}

	allowed := allowSet(opts.States)

	leaders := make(map[string][]types.RankedEntry, len(groups))
	states := make([]string, 0, len(groups))
	for key, g := range groups {
		if key != types.NationalGroup {
			if allowed != nil {
				if _, ok := allowed[key]; !ok {
					continue
				}
			}
			states = append(states, key)
		}
		leaders[key] = g.ranked(display, opts.Limit)
	}
	sort.Strings(states)

	return types.LeaderboardResult{
		Source:         types.SourceLive,
		WindowDays:     opts.WindowDays,
		StatesReturned: states,
		StateLeaders:   leaders,
	}
}

// ranked orders the group's flavors by count descending, ties keeping first
// encounter order, and truncates to limit.
func (g *group) ranked(display map[string]string, limit int) []types.RankedEntry {
	keys := make([]string, len(g.order))
	copy(keys, g.order)
	sort.SliceStable(keys, func(i, j int) bool {
		return g.counts[keys[i]] > g.counts[keys[j]]
	})

	if len(keys) > limit {
		keys = keys[:limit]
	}

	entries := make([]types.RankedEntry, 0, len(keys))
	for i, key := range keys {
		name := display[key]
		if name == "" {
			name = key
		}
		entries = append(entries, types.RankedEntry{
			Flavor: name,
			Count:  g.counts[key],
			Rank:   i + 1,
		})
	}
	return entries
}

func allowSet(states []string) map[string]struct{} {
	if len(states) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(states))
	for _, s := range states {
		if s != "" {
			set[s] = struct{}{}
		}
	}
	if len(set) == 0 {
		return nil
	}
	return set
}
