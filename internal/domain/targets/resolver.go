// Package targets resolves the set of store slugs the harvest scheduler
// visits each cycle.
package targets

import (
	"context"
	"sort"

	"github.com/scooplab/custard/pkg/logger"
)

// ForecastSource lists slugs that have an active forecast record.
type ForecastSource interface {
	ForecastSlugs(ctx context.Context) ([]string, error)
}

// SubscriptionSource lists slugs that have an active alert subscription.
type SubscriptionSource interface {
	SubscriptionSlugs(ctx context.Context) ([]string, error)
}

// Resolve merges both slug sources into one sorted, deduplicated target set.
// A failing source contributes nothing; it never fails the resolution. Both
// sources empty or failing yields an empty set, which is a valid
// nothing-to-do state rather than an error.
func Resolve(ctx context.Context, forecasts ForecastSource, subscriptions SubscriptionSource, log logger.Logger) []string {
	seen := make(map[string]struct{})

	if forecasts != nil {
		slugs, err := forecasts.ForecastSlugs(ctx)
		if err != nil {
			log.Warn(ctx, "forecast slug listing failed, continuing without", logger.Error(err))
		}
		for _, s := range slugs {
			if s != "" {
				seen[s] = struct{}{}
			}
		}
	}

	if subscriptions != nil {
		slugs, err := subscriptions.SubscriptionSlugs(ctx)
		if err != nil {
			log.Warn(ctx, "subscription slug listing failed, continuing without", logger.Error(err))
		}
		for _, s := range slugs {
			if s != "" {
				seen[s] = struct{}{}
			}
		}
	}

	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
