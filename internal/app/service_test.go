package service_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/scooplab/custard/internal/adapters/repository"
	service "github.com/scooplab/custard/internal/app"
	"github.com/scooplab/custard/internal/domain/model"
	"github.com/scooplab/custard/internal/domain/rank"
	"github.com/scooplab/custard/internal/domain/types"
	"github.com/scooplab/custard/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

// brokenOccurrences fails every windowed read.
type brokenOccurrences struct {
	*repository.Memory
}

func (b *brokenOccurrences) RowsSince(_ context.Context, _ int) ([]model.OccurrenceRow, error) {
	return nil, errors.New("backend down")
}

func flavorServer() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"flavors":[{"title":"Turtle","date":"2026-08-26"}]}`))
	}))
}

func TestServiceLifecycle(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service on the in-memory repository", t, func() {
		srv := flavorServer()
		defer srv.Close()

		mem := repository.NewMemory()
		So(mem.PutForecast(ctx, "wi-madison"), ShouldBeNil)
		So(mem.PutStoreInfo(ctx, model.StoreInfo{
			Slug: "wi-madison", Name: "Madison", City: "Madison", State: "WI",
		}), ShouldBeNil)

		svc := service.New(
			service.WithBackend(mem),
			service.WithLogger(logger.Nop()),
			service.WithHarvestBaseURL(srv.URL),
			service.WithBatchSize(2),
			service.WithTickInterval(time.Hour),
		)

		Convey("When started", func() {
			So(svc.Start(ctx), ShouldBeNil)
			defer svc.Stop()

			Convey("Then a second Start is a no-op", func() {
				So(svc.Start(ctx), ShouldBeNil)
			})

			Convey("Then a manual tick harvests the forecast target", func() {
				res, err := svc.RunHarvestTick(ctx)

				So(err, ShouldBeNil)
				So(res.Batch, ShouldResemble, []string{"wi-madison"})
				So(res.Failed, ShouldBeEmpty)
				So(res.NextCursor, ShouldEqual, 0)

				Convey("And the leaderboard serves the live data", func() {
					lb := svc.Leaderboard(ctx, rank.Options{})

					So(lb.Source, ShouldEqual, types.SourceLive)
					So(lb.WindowDays, ShouldEqual, rank.DefaultWindowDays)
					So(lb.StateLeaders[types.NationalGroup], ShouldHaveLength, 1)
					So(lb.StateLeaders[types.NationalGroup][0].Flavor, ShouldEqual, "Turtle")
					So(lb.StateLeaders["WI"][0].Count, ShouldEqual, 1)
				})
			})

			Convey("Then indexed store info is served", func() {
				info, err := svc.StoreInfo(ctx, "wi-madison")

				So(err, ShouldBeNil)
				So(info.State, ShouldEqual, "WI")
			})

			Convey("Then stats report the running job", func() {
				stats := svc.GetStats()

				So(stats["started"], ShouldBeTrue)
				So(stats["batchSize"], ShouldEqual, 2)
			})
		})

		Convey("When not started", func() {
			Convey("Then manual ticks are refused", func() {
				_, err := svc.RunHarvestTick(ctx)

				So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			})
		})
	})
}

func TestLeaderboardFallback(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service without a repository", t, func() {
		svc := service.New(service.WithLogger(logger.Nop()))

		Convey("Then the leaderboard falls back to the seed dataset", func() {
			lb := svc.Leaderboard(ctx, rank.Options{})

			So(lb.Source, ShouldEqual, types.SourceSeed)
			So(lb.StateLeaders[types.NationalGroup], ShouldNotBeEmpty)
		})
	})

	Convey("Given a repository whose windowed reads fail", t, func() {
		svc := service.New(
			service.WithBackend(&brokenOccurrences{Memory: repository.NewMemory()}),
			service.WithLogger(logger.Nop()),
			service.WithTickInterval(time.Hour),
		)
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("Then the leaderboard falls back to the seed dataset", func() {
			lb := svc.Leaderboard(ctx, rank.Options{})

			So(lb.Source, ShouldEqual, types.SourceSeed)
			So(lb.WindowDays, ShouldEqual, rank.DefaultWindowDays)
		})

		Convey("And request options are still clamped", func() {
			lb := svc.Leaderboard(ctx, rank.Options{WindowDays: 9999, Limit: 9999})

			So(lb.WindowDays, ShouldEqual, rank.MaxWindowDays)
		})
	})
}
