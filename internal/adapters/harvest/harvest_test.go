package harvest_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/scooplab/custard/internal/adapters/harvest"
	"github.com/scooplab/custard/internal/adapters/repository"
	"github.com/scooplab/custard/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeFetcher struct {
	flavors map[string][]model.Flavor
	err     error
}

func (f *fakeFetcher) Fetch(_ context.Context, slug string) ([]model.Flavor, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.flavors[slug], nil
}

func TestHarvester(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2026, 8, 26, 11, 0, 0, 0, time.UTC)

	Convey("Given a harvester over an in-memory snapshot store", t, func() {
		mem := repository.NewMemory()
		fetcher := &fakeFetcher{flavors: map[string][]model.Flavor{
			"mt-horeb": {{Name: "turtle", Title: "Turtle", Date: "2026-08-26"}},
		}}
		h := harvest.New(fetcher, mem,
			harvest.WithClock(func() time.Time { return fixed }),
			harvest.WithRateLimit(1000, 1000),
		)

		Convey("When harvesting a target", func() {
			err := h.Harvest(ctx, "mt-horeb")

			Convey("Then the snapshot is stored for the capture day", func() {
				So(err, ShouldBeNil)
				snap, ok := mem.Snapshot(ctx, "mt-horeb", "2026-08-26")
				So(ok, ShouldBeTrue)
				So(snap.ID, ShouldNotBeEmpty)
				So(snap.Flavors, ShouldHaveLength, 1)
			})
		})

		Convey("When the fetch fails", func() {
			So(h.Harvest(ctx, "mt-horeb"), ShouldBeNil)
			fetcher.err = errors.New("upstream down")

			err := h.Harvest(ctx, "mt-horeb")

			Convey("Then the error surfaces and the previous snapshot survives", func() {
				So(err, ShouldNotBeNil)
				_, ok := mem.Snapshot(ctx, "mt-horeb", "2026-08-26")
				So(ok, ShouldBeTrue)
			})
		})
	})
}

type countingRunner struct {
	failOn   map[string]bool
	inFlight atomic.Int32
	peak     atomic.Int32
	total    atomic.Int32
}

func (r *countingRunner) Harvest(_ context.Context, slug string) error {
	cur := r.inFlight.Add(1)
	defer r.inFlight.Add(-1)
	for {
		p := r.peak.Load()
		if cur <= p || r.peak.CompareAndSwap(p, cur) {
			break
		}
	}
	time.Sleep(time.Millisecond)
	r.total.Add(1)
	if r.failOn[slug] {
		return errors.New("boom")
	}
	return nil
}

func TestPool(t *testing.T) {
	ctx := context.Background()

	Convey("Given a harvest pool", t, func() {
		Convey("When part of the batch fails", func() {
			runner := &countingRunner{failOn: map[string]bool{"bravo": true, "delta": true}}
			pool := harvest.NewPool(runner, harvest.WithPoolSize(2))

			failed := pool.HarvestBatch(ctx, []string{"alpha", "bravo", "charlie", "delta", "echo"})

			Convey("Then failures are reported and the rest complete", func() {
				So(failed, ShouldHaveLength, 2)
				So(failed, ShouldContain, "bravo")
				So(failed, ShouldContain, "delta")
				So(runner.total.Load(), ShouldEqual, 5)
			})

			Convey("And concurrency never exceeded the pool size", func() {
				So(runner.peak.Load(), ShouldBeLessThanOrEqualTo, 2)
			})
		})

		Convey("When the batch is empty", func() {
			pool := harvest.NewPool(&countingRunner{})
			So(pool.HarvestBatch(ctx, nil), ShouldBeEmpty)
		})
	})
}

func TestHTTPFetcher(t *testing.T) {
	ctx := context.Background()

	Convey("Given the upstream flavor API", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("slug") != "mt-horeb" {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"flavors": []map[string]string{
					{"title": "Caramel Cashew", "date": "2026-08-26"},
					{"title": "", "date": "2026-08-27"},
				},
			})
		}))
		defer srv.Close()

		fetcher := harvest.NewHTTPFetcher(srv.URL, srv.Client())

		Convey("When fetching a known slug", func() {
			flavors, err := fetcher.Fetch(ctx, "mt-horeb")

			Convey("Then titles are normalized and blanks dropped", func() {
				So(err, ShouldBeNil)
				So(flavors, ShouldHaveLength, 1)
				So(flavors[0].Name, ShouldEqual, "caramel-cashew")
				So(flavors[0].Title, ShouldEqual, "Caramel Cashew")
			})
		})

		Convey("When the upstream answers non-200", func() {
			_, err := fetcher.Fetch(ctx, "nowhere")
			So(err, ShouldNotBeNil)
		})
	})
}
