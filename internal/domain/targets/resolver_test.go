package targets_test

import (
	"context"
	"errors"
	"testing"

	"github.com/scooplab/custard/internal/domain/targets"
	"github.com/scooplab/custard/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeForecasts struct {
	slugs []string
	err   error
}

func (f *fakeForecasts) ForecastSlugs(_ context.Context) ([]string, error) {
	return f.slugs, f.err
}

type fakeSubscriptions struct {
	slugs []string
	err   error
}

func (f *fakeSubscriptions) SubscriptionSlugs(_ context.Context) ([]string, error) {
	return f.slugs, f.err
}

type fakeIndex struct {
	slugs []string
	err   error
}

func (f *fakeIndex) IndexedSlugs(_ context.Context) ([]string, error) { return f.slugs, f.err }

type fakeScan struct {
	slugs []string
	err   error
	calls int
}

func (f *fakeScan) ScanSlugs(_ context.Context) ([]string, error) {
	f.calls++
	return f.slugs, f.err
}

func TestResolve(t *testing.T) {
	ctx := context.Background()
	log := logger.Nop()

	Convey("Given forecast and subscription slug sources", t, func() {
		Convey("When only forecasts contribute", func() {
			got := targets.Resolve(ctx,
				&fakeForecasts{slugs: []string{"mt-horeb", "madison-todd-drive"}},
				&fakeSubscriptions{},
				log)

			Convey("Then the output is the sorted forecast set", func() {
				So(got, ShouldResemble, []string{"madison-todd-drive", "mt-horeb"})
			})
		})

		Convey("When both sources overlap", func() {
			got := targets.Resolve(ctx,
				&fakeForecasts{slugs: []string{"bravo", "alpha"}},
				&fakeSubscriptions{slugs: []string{"charlie", "alpha"}},
				log)

			Convey("Then the output is the sorted deduplicated union", func() {
				So(got, ShouldResemble, []string{"alpha", "bravo", "charlie"})
			})
		})

		Convey("When one source fails", func() {
			got := targets.Resolve(ctx,
				&fakeForecasts{err: errors.New("scan timeout")},
				&fakeSubscriptions{slugs: []string{"echo"}},
				log)

			Convey("Then the other source still contributes", func() {
				So(got, ShouldResemble, []string{"echo"})
			})
		})

		Convey("When both sources are empty", func() {
			got := targets.Resolve(ctx, &fakeForecasts{}, &fakeSubscriptions{}, log)

			Convey("Then the result is an empty, non-nil style set", func() {
				So(got, ShouldBeEmpty)
			})
		})

		Convey("When called twice with unchanged sources", func() {
			f := &fakeForecasts{slugs: []string{"zulu", "alpha", "mike"}}
			s := &fakeSubscriptions{slugs: []string{"mike", "bravo"}}

			first := targets.Resolve(ctx, f, s, log)
			second := targets.Resolve(ctx, f, s, log)

			Convey("Then the outputs are identical and identically ordered", func() {
				So(second, ShouldResemble, first)
			})
		})

		Convey("When sources emit blank slugs", func() {
			got := targets.Resolve(ctx,
				&fakeForecasts{slugs: []string{"", "alpha"}},
				&fakeSubscriptions{slugs: []string{""}},
				log)

			Convey("Then blanks are dropped", func() {
				So(got, ShouldResemble, []string{"alpha"})
			})
		})
	})
}

func TestSubscriptionSource(t *testing.T) {
	ctx := context.Background()
	log := logger.Nop()

	Convey("Given the two-strategy subscription source", t, func() {
		Convey("When the materialized index is readable", func() {
			scan := &fakeScan{slugs: []string{"should-not-be-used"}}
			src := targets.NewSubscriptionSource(&fakeIndex{slugs: []string{"alpha", "bravo"}}, scan, log)

			got, err := src.SubscriptionSlugs(ctx)

			Convey("Then the index wins and the scan is never touched", func() {
				So(err, ShouldBeNil)
				So(got, ShouldResemble, []string{"alpha", "bravo"})
				So(scan.calls, ShouldEqual, 0)
			})
		})

		Convey("When the index is corrupt", func() {
			src := targets.NewSubscriptionSource(
				&fakeIndex{err: errors.New("bad blob")},
				&fakeScan{slugs: []string{"charlie"}},
				log)

			got, err := src.SubscriptionSlugs(ctx)

			Convey("Then the itemized scan takes over", func() {
				So(err, ShouldBeNil)
				So(got, ShouldResemble, []string{"charlie"})
			})
		})

		Convey("When the index is absent entirely", func() {
			src := targets.NewSubscriptionSource(nil, &fakeScan{slugs: []string{"delta"}}, log)

			got, err := src.SubscriptionSlugs(ctx)

			So(err, ShouldBeNil)
			So(got, ShouldResemble, []string{"delta"})
		})

		Convey("When the scan itself fails", func() {
			src := targets.NewSubscriptionSource(nil, &fakeScan{err: errors.New("listing failed")}, log)

			got, err := src.SubscriptionSlugs(ctx)

			Convey("Then the result is empty, not an error", func() {
				So(err, ShouldBeNil)
				So(got, ShouldBeEmpty)
			})
		})

		Convey("When both strategies are nil", func() {
			src := targets.NewSubscriptionSource(nil, nil, log)

			got, err := src.SubscriptionSlugs(ctx)

			So(err, ShouldBeNil)
			So(got, ShouldBeEmpty)
		})
	})
}
