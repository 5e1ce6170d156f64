package rank

import "github.com/scooplab/custard/internal/domain/types"

// seedFlavors is the compiled-in national fallback dataset. Counts are
// relative weights from historical appearance frequency, not live data.
var seedFlavors = []types.RankedEntry{
	{Flavor: "Turtle", Count: 96},
	{Flavor: "Caramel Cashew", Count: 88},
	{Flavor: "Mint Explosion", Count: 74},
	{Flavor: "Chocolate Covered Strawberry", Count: 67},
	{Flavor: "Butter Pecan", Count: 59},
	{Flavor: "Lemon Berry Layer Cake", Count: 52},
	{Flavor: "Devil's Food Cake", Count: 48},
	{Flavor: "Andes Mint Avalanche", Count: 41},
}

// Seed returns the static fallback leaderboard served when the live
// aggregation path is unavailable. The national group is always populated
// so the endpoint never returns an empty body.
func Seed(opts Options) types.LeaderboardResult {
	opts = opts.WithDefaults()

	national := make([]types.RankedEntry, 0, opts.Limit)
	for i, e := range seedFlavors {
		if i >= opts.Limit {
			break
		}
		e.Rank = i + 1
		national = append(national, e)
	}

	return types.LeaderboardResult{
		Source:         types.SourceSeed,
		WindowDays:     opts.WindowDays,
		StatesReturned: []string{},
		StateLeaders: map[string][]types.RankedEntry{
			types.NationalGroup: national,
		},
	}
}
