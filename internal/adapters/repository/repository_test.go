package repository_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/scooplab/custard/internal/adapters/repository"
	"github.com/scooplab/custard/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func openTestDB(t *testing.T) *repository.DB {
	t.Helper()
	db, err := repository.Open(filepath.Join(t.TempDir(), "custard.sqlite"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestCursorStore(t *testing.T) {
	ctx := context.Background()

	Convey("Given the SQLite cursor store", t, func() {
		db := openTestDB(t)

		Convey("When no cursor was ever written", func() {
			So(db.Cursor(ctx, "fotd-harvest"), ShouldEqual, 0)
		})

		Convey("When writing then reading back", func() {
			for _, v := range []int{0, 1, 7, 1234} {
				db.SetCursor(ctx, "fotd-harvest", v)
				So(db.Cursor(ctx, "fotd-harvest"), ShouldEqual, v)
			}
		})

		Convey("When jobs share the table", func() {
			db.SetCursor(ctx, "job-a", 3)
			db.SetCursor(ctx, "job-b", 9)
			So(db.Cursor(ctx, "job-a"), ShouldEqual, 3)
			So(db.Cursor(ctx, "job-b"), ShouldEqual, 9)
		})

		Convey("When the handle is nil", func() {
			var nilDB *repository.DB
			So(nilDB.Cursor(ctx, "fotd-harvest"), ShouldEqual, 0)
			So(func() { nilDB.SetCursor(ctx, "fotd-harvest", 4) }, ShouldNotPanic)
		})
	})

	Convey("Given the in-memory cursor store", t, func() {
		mem := repository.NewMemory()

		Convey("Then round-trips behave like the SQLite store", func() {
			So(mem.Cursor(ctx, "fotd-harvest"), ShouldEqual, 0)
			mem.SetCursor(ctx, "fotd-harvest", 42)
			So(mem.Cursor(ctx, "fotd-harvest"), ShouldEqual, 42)
			mem.SetCursor(ctx, "fotd-harvest", -5)
			So(mem.Cursor(ctx, "fotd-harvest"), ShouldEqual, 0)
		})
	})
}

func TestTargetSources(t *testing.T) {
	ctx := context.Background()

	Convey("Given the SQLite target sources", t, func() {
		db := openTestDB(t)

		Convey("When forecasts are recorded", func() {
			So(db.PutForecast(ctx, "mt-horeb"), ShouldBeNil)
			So(db.PutForecast(ctx, "madison-todd-drive"), ShouldBeNil)
			So(db.PutForecast(ctx, "mt-horeb"), ShouldBeNil) // upsert

			slugs, err := db.ForecastSlugs(ctx)
			So(err, ShouldBeNil)
			So(len(slugs), ShouldEqual, 2)
		})

		Convey("When the subscription index is absent", func() {
			_, err := db.IndexedSlugs(ctx)
			So(err, ShouldNotBeNil)
		})

		Convey("When the subscription index is materialized", func() {
			So(db.PutSubscriptionIndex(ctx, []string{"alpha", "bravo"}), ShouldBeNil)

			slugs, err := db.IndexedSlugs(ctx)
			So(err, ShouldBeNil)
			So(slugs, ShouldResemble, []string{"alpha", "bravo"})
		})

		Convey("When itemized subscriptions are scanned", func() {
			So(db.PutSubscription(ctx, "charlie"), ShouldBeNil)
			So(db.PutSubscription(ctx, "charlie"), ShouldBeNil)
			So(db.PutSubscription(ctx, "delta"), ShouldBeNil)

			slugs, err := db.ScanSlugs(ctx)
			So(err, ShouldBeNil)
			So(len(slugs), ShouldEqual, 2) // DISTINCT
		})
	})
}

func TestSnapshotsAndOccurrences(t *testing.T) {
	ctx := context.Background()
	today := time.Now().UTC().Format("2006-01-02")

	Convey("Given the SQLite snapshot store", t, func() {
		db := openTestDB(t)

		snap := model.Snapshot{
			ID:   "11111111-1111-1111-1111-111111111111",
			Slug: "mt-horeb",
			Day:  today,
			Flavors: []model.Flavor{
				{Name: "turtle", Title: "Turtle", Date: today},
				{Name: "caramel-cashew", Title: "Caramel Cashew", Date: today},
			},
			CapturedAt: time.Now(),
		}

		Convey("When storing the same snapshot twice", func() {
			So(db.PutSnapshot(ctx, snap), ShouldBeNil)
			So(db.PutSnapshot(ctx, snap), ShouldBeNil)

			rows, err := db.RowsSince(ctx, 7)
			So(err, ShouldBeNil)

			Convey("Then occurrence counts stay deduplicated per (slug, flavor, day)", func() {
				So(len(rows), ShouldEqual, 2)
				for _, r := range rows {
					So(r.Count, ShouldEqual, 1)
				}
			})
		})

		Convey("When rows fall outside the window", func() {
			old := snap
			old.Day = time.Now().UTC().AddDate(0, 0, -60).Format("2006-01-02")
			old.Flavors = []model.Flavor{{Name: "old-flavor", Title: "Old Flavor", Date: old.Day}}
			So(db.PutSnapshot(ctx, old), ShouldBeNil)

			rows, err := db.RowsSince(ctx, 7)
			So(err, ShouldBeNil)

			Convey("Then they are excluded", func() {
				for _, r := range rows {
					So(r.Flavor, ShouldNotEqual, "old-flavor")
				}
			})
		})
	})

	Convey("Given the in-memory snapshot store", t, func() {
		mem := repository.NewMemory()

		snap := model.Snapshot{
			ID:         "22222222-2222-2222-2222-222222222222",
			Slug:       "mt-horeb",
			Day:        today,
			Flavors:    []model.Flavor{{Name: "turtle", Title: "Turtle", Date: today}},
			CapturedAt: time.Now(),
		}

		Convey("When re-harvesting the same day", func() {
			So(mem.PutSnapshot(ctx, snap), ShouldBeNil)
			So(mem.PutSnapshot(ctx, snap), ShouldBeNil)

			rows, err := mem.RowsSince(ctx, 7)
			So(err, ShouldBeNil)

			Convey("Then counts stay deduplicated like the SQLite store", func() {
				So(len(rows), ShouldEqual, 1)
				So(rows[0].Count, ShouldEqual, 1)
			})
		})

		Convey("When the flavor appears on a second day", func() {
			So(mem.PutSnapshot(ctx, snap), ShouldBeNil)

			next := snap
			next.Day = time.Now().UTC().AddDate(0, 0, 1).Format("2006-01-02")
			next.Flavors = []model.Flavor{{Name: "turtle", Title: "Turtle", Date: next.Day}}
			So(mem.PutSnapshot(ctx, next), ShouldBeNil)

			rows, err := mem.RowsSince(ctx, 7)
			So(err, ShouldBeNil)

			Convey("Then each day counts once", func() {
				So(len(rows), ShouldEqual, 1)
				So(rows[0].Count, ShouldEqual, 2)
			})
		})
	})
}

func TestStoreIndex(t *testing.T) {
	ctx := context.Background()

	Convey("Given the SQLite store index", t, func() {
		db := openTestDB(t)

		So(db.PutStoreInfo(ctx, model.StoreInfo{Slug: "mt-horeb", Name: "Mt. Horeb", City: "Mount Horeb", State: "WI"}), ShouldBeNil)
		So(db.PutStoreInfo(ctx, model.StoreInfo{Slug: "mystery", Name: "Mystery"}), ShouldBeNil)

		Convey("When looking up a known slug", func() {
			info, err := db.Info(ctx, "mt-horeb")
			So(err, ShouldBeNil)
			So(info.State, ShouldEqual, "WI")
		})

		Convey("When looking up an unknown slug", func() {
			_, err := db.Info(ctx, "nowhere")
			So(err, ShouldEqual, repository.ErrNotFound)
		})

		Convey("When mapping states", func() {
			states, err := db.StatesBySlug(ctx)
			So(err, ShouldBeNil)

			Convey("Then stateless stores are omitted", func() {
				So(states, ShouldResemble, map[string]string{"mt-horeb": "WI"})
			})
		})
	})
}

func TestOpen(t *testing.T) {
	Convey("Given the repository opener", t, func() {
		Convey("When the path is empty", func() {
			_, err := repository.Open("")
			So(err, ShouldEqual, repository.ErrUnconfigured)
		})

		Convey("When options are applied", func() {
			db, err := repository.Open(
				filepath.Join(t.TempDir(), "opts.sqlite"),
				repository.WithQueryTimeout(time.Second),
				repository.WithBusyTimeout(time.Second),
			)
			So(err, ShouldBeNil)
			So(db.Close(), ShouldBeNil)
		})
	})
}
