package app_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	statefile "github.com/okian/duelrank/internal/adapters/statefile"
	app "github.com/okian/duelrank/internal/app"
	"github.com/okian/duelrank/internal/domain/model"
	"github.com/okian/duelrank/internal/domain/pairing"
	"github.com/okian/duelrank/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	_ = logger.SetLevelString("error")
	os.Exit(m.Run())
}

func TestSession_Judging(t *testing.T) {
	Convey("Given a session with two registered items", t, func() {
		ctx := context.Background()
		s := app.New(app.WithKFactor(16), app.WithInitialRating(1400))
		s.RegisterItems(ctx, []string{"a.jpg", "b.jpg"})

		Convey("When a wins against b", func() {
			j := s.JudgeWin(ctx, "a.jpg", "b.jpg")

			Convey("Then ratings move by the ELO update", func() {
				So(s.Rating(ctx, "a.jpg"), ShouldAlmostEqual, 1408.0, 1e-9)
				So(s.Rating(ctx, "b.jpg"), ShouldAlmostEqual, 1392.0, 1e-9)
			})

			Convey("And the judgment is recorded with an id", func() {
				So(j.ID, ShouldNotBeBlank)
				So(j.Outcome, ShouldEqual, model.OutcomeWin)
				So(s.Judgments(ctx), ShouldHaveLength, 1)
				So(s.TotalComparisons(ctx), ShouldEqual, 1)
			})
		})

		Convey("When they draw at equal ratings", func() {
			s.JudgeDraw(ctx, "a.jpg", "b.jpg")

			Convey("Then ratings are unchanged but counts advance", func() {
				So(s.Rating(ctx, "a.jpg"), ShouldAlmostEqual, 1400.0, 1e-9)
				So(s.ComparisonCount(ctx, "a.jpg"), ShouldEqual, 1)
				So(s.ComparisonCount(ctx, "b.jpg"), ShouldEqual, 1)
			})
		})
	})
}

func TestSession_SnapshotCadence(t *testing.T) {
	Convey("Given a session snapshotting every 2 judgments", t, func() {
		ctx := context.Background()
		s := app.New(app.WithSnapshotEvery(2))
		s.RegisterItems(ctx, []string{"a", "b", "c"})

		Convey("When judgments accumulate", func() {
			s.JudgeWin(ctx, "a", "b")
			So(s.Diagnostics(ctx).Snapshots, ShouldEqual, 0)

			s.JudgeWin(ctx, "a", "c")
			So(s.Diagnostics(ctx).Snapshots, ShouldEqual, 1)

			s.JudgeWin(ctx, "b", "c")
			s.JudgeDraw(ctx, "a", "b")

			Convey("Then every second judgment records a snapshot", func() {
				d := s.Diagnostics(ctx)
				So(d.Snapshots, ShouldEqual, 2)
				So(d.TotalComparisons, ShouldEqual, 4)

				Convey("And deltas appear once two snapshots exist", func() {
					So(d.MaxDelta, ShouldNotBeNil)
					So(d.AvgDelta, ShouldNotBeNil)
					So(*d.MaxDelta, ShouldBeGreaterThan, 0.0)
				})
			})
		})

		Convey("When forcing a snapshot out of cadence", func() {
			s.Snapshot(ctx)

			Convey("Then the history grows immediately", func() {
				So(s.Diagnostics(ctx).Snapshots, ShouldEqual, 1)
			})
		})
	})
}

func TestSession_Rankings(t *testing.T) {
	Convey("Given a session with judged items", t, func() {
		ctx := context.Background()
		s := app.New()
		s.RegisterItems(ctx, []string{"a", "b", "c"})
		s.JudgeWin(ctx, "a", "b")
		s.JudgeWin(ctx, "a", "c")
		s.JudgeWin(ctx, "b", "c")

		Convey("When reading the ranking table", func() {
			entries := s.Rankings(ctx, 0)

			Convey("Then entries order by rating descending with ranks assigned", func() {
				So(entries, ShouldHaveLength, 3)
				So(entries[0].Item, ShouldEqual, "a")
				So(entries[0].Rank, ShouldEqual, 1)
				So(entries[1].Rating, ShouldBeGreaterThanOrEqualTo, entries[2].Rating)
			})

			Convey("And a positive limit truncates the table", func() {
				So(s.Rankings(ctx, 2), ShouldHaveLength, 2)
			})
		})

		Convey("When looking up a single item", func() {
			e, ok := s.Rank(ctx, "a")
			So(ok, ShouldBeTrue)
			So(e.Rank, ShouldEqual, 1)
			So(e.Comparisons, ShouldEqual, 2)

			Convey("And an unknown item reports not found", func() {
				_, ok := s.Rank(ctx, "ghost")
				So(ok, ShouldBeFalse)
			})
		})
	})
}

func TestSession_NextPair(t *testing.T) {
	Convey("Given a session with a seeded selector", t, func() {
		ctx := context.Background()
		s := app.New(app.WithPairSeed(7))

		Convey("When fewer than two items are registered", func() {
			_, _, err := s.NextPair(ctx)

			Convey("Then selection fails", func() {
				So(err, ShouldWrap, pairing.ErrNotEnoughItems)
			})
		})

		Convey("When enough items exist", func() {
			s.RegisterItems(ctx, []string{"a", "b", "c"})
			a, b, err := s.NextPair(ctx)

			Convey("Then a distinct registered pair comes back", func() {
				So(err, ShouldBeNil)
				So(a, ShouldNotEqual, b)
				So([]string{"a", "b", "c"}, ShouldContain, a)
				So([]string{"a", "b", "c"}, ShouldContain, b)
			})
		})
	})
}

func TestSession_SetParameters(t *testing.T) {
	Convey("Given a session with an uncompared item", t, func() {
		ctx := context.Background()
		s := app.New(app.WithInitialRating(1400))
		s.RegisterItems(ctx, []string{"idle"})

		Convey("When parameters change", func() {
			s.SetParameters(ctx, 32, 1500)

			Convey("Then the idle item tracks the new default", func() {
				So(s.Rating(ctx, "idle"), ShouldEqual, 1500.0)
				So(s.GetStats()["kFactor"], ShouldEqual, 32.0)
			})
		})
	})
}

func TestSession_StateRoundTrip(t *testing.T) {
	Convey("Given a session bound to a state file", t, func() {
		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "elo_scores.json")
		repo := statefile.NewFileRepository(path)

		s := app.New(app.WithStateRepository(repo), app.WithKFactor(16))
		s.RegisterItems(ctx, []string{"a", "b"})
		s.JudgeWin(ctx, "a", "b")
		s.JudgeWin(ctx, "a", "b")

		Convey("When saving and restoring into a fresh session", func() {
			So(s.SaveState(ctx, "/photos"), ShouldBeNil)

			fresh := app.New(app.WithStateRepository(repo))
			So(fresh.RestoreState(ctx), ShouldBeNil)

			Convey("Then ratings, counts, and totals carry over", func() {
				So(fresh.Rating(ctx, "a"), ShouldAlmostEqual, s.Rating(ctx, "a"), 1e-9)
				So(fresh.Rating(ctx, "b"), ShouldAlmostEqual, s.Rating(ctx, "b"), 1e-9)
				So(fresh.ComparisonCount(ctx, "a"), ShouldEqual, 2)
				So(fresh.TotalComparisons(ctx), ShouldEqual, 2)
			})
		})

		Convey("When restoring with no state file present", func() {
			fresh := app.New(app.WithStateRepository(statefile.NewFileRepository(filepath.Join(t.TempDir(), "none.json"))))
			err := fresh.RestoreState(ctx)

			Convey("Then the error is the repository's not-found kind", func() {
				So(err, ShouldWrap, statefile.ErrNotFound)
			})
		})
	})
}
