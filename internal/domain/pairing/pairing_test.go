package pairing_test

import (
	"testing"

	pairing "github.com/okian/duelrank/internal/domain/pairing"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSelector_Next(t *testing.T) {
	Convey("Given a seeded selector", t, func() {
		s := pairing.New(pairing.WithSeed(42))
		keys := []string{"a", "b", "c", "d", "e"}

		Convey("When drawing many pairs", func() {
			seen := make(map[string]int)
			for i := 0; i < 500; i++ {
				a, b, err := s.Next(keys)
				So(err, ShouldBeNil)
				So(a, ShouldNotEqual, b)
				seen[a]++
				seen[b]++
			}

			Convey("Then every key eventually participates", func() {
				So(seen, ShouldHaveLength, len(keys))
			})
		})

		Convey("When two selectors share a seed", func() {
			other := pairing.New(pairing.WithSeed(42))
			fresh := pairing.New(pairing.WithSeed(42))

			Convey("Then they draw the same sequence", func() {
				for i := 0; i < 20; i++ {
					a1, b1, err1 := other.Next(keys)
					a2, b2, err2 := fresh.Next(keys)
					So(err1, ShouldBeNil)
					So(err2, ShouldBeNil)
					So(a1, ShouldEqual, a2)
					So(b1, ShouldEqual, b2)
				}
			})
		})
	})

	Convey("Given fewer than two keys", t, func() {
		s := pairing.New(pairing.WithSeed(1))

		Convey("Then selection fails with ErrNotEnoughItems", func() {
			_, _, err := s.Next(nil)
			So(err, ShouldWrap, pairing.ErrNotEnoughItems)

			_, _, err = s.Next([]string{"only"})
			So(err, ShouldWrap, pairing.ErrNotEnoughItems)
		})
	})
}
