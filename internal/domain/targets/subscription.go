package targets

import (
	"context"

	"github.com/scooplab/custard/pkg/logger"
)

// SubscriptionIndexReader reads a materialized index of subscribed slugs in
// one blob lookup.
type SubscriptionIndexReader interface {
	IndexedSlugs(ctx context.Context) ([]string, error)
}

// SubscriptionScanReader enumerates subscription records one by one. Slower
// than the index, but always derivable from the source of truth.
type SubscriptionScanReader interface {
	ScanSlugs(ctx context.Context) ([]string, error)
}

// fallbackSubscriptionSource prefers the materialized index and falls back
// to the itemized scan when the index is absent or unreadable. A failure of
// the scan itself yields an empty set, never an error.
type fallbackSubscriptionSource struct {
	index SubscriptionIndexReader
	scan  SubscriptionScanReader
	log   logger.Logger
}

// NewSubscriptionSource combines the two read strategies into one
// SubscriptionSource. Either reader may be nil.
func NewSubscriptionSource(index SubscriptionIndexReader, scan SubscriptionScanReader, log logger.Logger) SubscriptionSource {
	return &fallbackSubscriptionSource{index: index, scan: scan, log: log}
}

func (s *fallbackSubscriptionSource) SubscriptionSlugs(ctx context.Context) ([]string, error) {
	if s.index != nil {
		slugs, err := s.index.IndexedSlugs(ctx)
		if err == nil && slugs != nil {
			return slugs, nil
		}
		if err != nil {
			s.log.Debug(ctx, "subscription index unavailable, falling back to scan", logger.Error(err))
		}
	}

	if s.scan == nil {
		return nil, nil
	}
	slugs, err := s.scan.ScanSlugs(ctx)
	if err != nil {
		s.log.Warn(ctx, "subscription scan failed, treating as empty", logger.Error(err))
		return nil, nil
	}
	return slugs, nil
}
