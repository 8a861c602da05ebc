package statefile_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	statefile "github.com/okian/duelrank/internal/adapters/statefile"
	. "github.com/smartystreets/goconvey/convey"
)

func TestFileRepository_RoundTrip(t *testing.T) {
	Convey("Given a repository on a temp file", t, func() {
		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "elo_scores.json")
		repo := statefile.NewFileRepository(path)

		Convey("When saving and reloading a full state", func() {
			in := statefile.State{
				Directory:       "/photos/shoot-1",
				KFactor:         16,
				InitialRating:   1400,
				ComparisonCount: 42,
				Scores: map[string]float64{
					"/photos/shoot-1/a.jpg": 1438.25,
					"/photos/shoot-1/b.jpg": 1361.75,
				},
				ImageComparisonCounts: map[string]int{
					"/photos/shoot-1/a.jpg": 21,
					"/photos/shoot-1/b.jpg": 21,
				},
			}
			So(repo.Save(ctx, in), ShouldBeNil)
			out, err := repo.Load(ctx)

			Convey("Then every field round-trips", func() {
				So(err, ShouldBeNil)
				So(out, ShouldResemble, in)
			})
		})

		Convey("When the counts field is absent (older files)", func() {
			raw := `{"k_factor": 20, "initial_rating": 1400, "comparison_count": 3, "scores": {"a.jpg": 1405.5}}`
			So(os.WriteFile(path, []byte(raw), 0o644), ShouldBeNil)

			out, err := repo.Load(ctx)

			Convey("Then loading succeeds with empty counts", func() {
				So(err, ShouldBeNil)
				So(out.KFactor, ShouldEqual, 20.0)
				So(out.Scores["a.jpg"], ShouldEqual, 1405.5)
				So(out.ImageComparisonCounts, ShouldNotBeNil)
				So(out.ImageComparisonCounts, ShouldBeEmpty)
			})
		})

		Convey("When no file exists", func() {
			_, err := repo.Load(ctx)

			Convey("Then the error is ErrNotFound", func() {
				So(err, ShouldWrap, statefile.ErrNotFound)
			})
		})

		Convey("When the file holds malformed JSON", func() {
			So(os.WriteFile(path, []byte("{nope"), 0o644), ShouldBeNil)

			_, err := repo.Load(ctx)

			Convey("Then the error is ErrDecode", func() {
				So(err, ShouldWrap, statefile.ErrDecode)
			})
		})

		Convey("When the scores field is missing", func() {
			So(os.WriteFile(path, []byte(`{"k_factor": 16}`), 0o644), ShouldBeNil)

			_, err := repo.Load(ctx)

			Convey("Then loading fails rather than inventing an empty store", func() {
				So(err, ShouldWrap, statefile.ErrDecode)
			})
		})

		Convey("When saving over an existing file", func() {
			first := statefile.State{KFactor: 16, InitialRating: 1400, Scores: map[string]float64{"a": 1}}
			second := statefile.State{KFactor: 24, InitialRating: 1500, Scores: map[string]float64{"b": 2}}
			So(repo.Save(ctx, first), ShouldBeNil)
			So(repo.Save(ctx, second), ShouldBeNil)

			out, err := repo.Load(ctx)

			Convey("Then the replacement wins and no temp files remain", func() {
				So(err, ShouldBeNil)
				So(out.KFactor, ShouldEqual, 24.0)

				entries, readErr := os.ReadDir(filepath.Dir(path))
				So(readErr, ShouldBeNil)
				So(entries, ShouldHaveLength, 1)
			})
		})
	})
}
