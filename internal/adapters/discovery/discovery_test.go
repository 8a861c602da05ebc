package discovery_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	discovery "github.com/okian/duelrank/internal/adapters/discovery"
	. "github.com/smartystreets/goconvey/convey"
)

func TestScanner_Scan(t *testing.T) {
	Convey("Given a directory with mixed content", t, func() {
		ctx := context.Background()
		dir := t.TempDir()

		files := []string{"b.jpg", "a.PNG", "notes.txt", "c.jpeg", "elo_scores.json"}
		for _, name := range files {
			So(os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644), ShouldBeNil)
		}
		So(os.Mkdir(filepath.Join(dir, "nested.jpg"), 0o755), ShouldBeNil) // a directory, not an image

		Convey("When scanning with the default extensions", func() {
			scanner := discovery.NewScanner()
			paths, err := scanner.Scan(ctx, dir)

			Convey("Then only image files match, case-insensitively, sorted", func() {
				So(err, ShouldBeNil)
				So(paths, ShouldResemble, []string{
					filepath.Join(dir, "a.PNG"),
					filepath.Join(dir, "b.jpg"),
					filepath.Join(dir, "c.jpeg"),
				})
			})
		})

		Convey("When scanning with a custom extension set", func() {
			scanner := discovery.NewScanner(discovery.WithExtensions([]string{"jpeg", ".TXT"}))
			paths, err := scanner.Scan(ctx, dir)

			Convey("Then extensions normalize to dotted lower case", func() {
				So(err, ShouldBeNil)
				So(paths, ShouldResemble, []string{
					filepath.Join(dir, "c.jpeg"),
					filepath.Join(dir, "notes.txt"),
				})
			})
		})

		Convey("When the directory does not exist", func() {
			scanner := discovery.NewScanner()
			_, err := scanner.Scan(ctx, filepath.Join(dir, "missing"))

			Convey("Then the error wraps ErrScan", func() {
				So(err, ShouldWrap, discovery.ErrScan)
			})
		})
	})
}
