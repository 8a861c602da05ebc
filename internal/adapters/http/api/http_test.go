package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	api "github.com/okian/duelrank/internal/adapters/http/api"
	"github.com/okian/duelrank/internal/domain/types"
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

// stubDeps serves a fixed ranking table from memory.
type stubDeps struct {
	entries []types.Entry
	diag    types.Diagnostics
}

func (s *stubDeps) Rankings(_ context.Context, n int) []types.Entry {
	if n > 0 && n < len(s.entries) {
		return s.entries[:n]
	}
	return s.entries
}

func (s *stubDeps) Rank(_ context.Context, key string) (types.Entry, bool) {
	for _, e := range s.entries {
		if e.Item == key {
			return e, true
		}
	}
	return types.Entry{}, false
}

func (s *stubDeps) Diagnostics(_ context.Context) types.Diagnostics {
	return s.diag
}

type stubStats struct{}

func (stubStats) GetStats() map[string]interface{} {
	return map[string]interface{}{"items": 2}
}

func newTestServer() *httptest.Server {
	maxDelta := 0.75
	deps := &stubDeps{
		entries: []types.Entry{
			{Rank: 1, Item: "a.jpg", Rating: 1408, Comparisons: 3},
			{Rank: 2, Item: "b.jpg", Rating: 1392, Comparisons: 3},
		},
		diag: types.Diagnostics{
			Items:            2,
			TotalComparisons: 3,
			Snapshots:        4,
			MaxDelta:         &maxDelta,
			ConvergedByDelta: true,
		},
	}

	mux := http.NewServeMux()
	api.NewServer(deps, stubStats{}, 100).Register(context.Background(), mux)
	return httptest.NewServer(mux)
}

func TestRankingsEndpoint(t *testing.T) {
	Convey("Given a diagnostics server", t, func() {
		srv := newTestServer()
		Reset(srv.Close)

		Convey("When requesting rankings without a limit", func() {
			resp, err := http.Get(srv.URL + "/rankings")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then the full table comes back as JSON", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(resp.Header.Get("Content-Type"), ShouldContainSubstring, "application/json")

				var entries []types.Entry
				So(json.NewDecoder(resp.Body).Decode(&entries), ShouldBeNil)
				So(entries, ShouldHaveLength, 2)
				So(entries[0].Item, ShouldEqual, "a.jpg")
			})
		})

		Convey("When requesting rankings with limit=1", func() {
			resp, err := http.Get(srv.URL + "/rankings?limit=1")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			var entries []types.Entry
			So(json.NewDecoder(resp.Body).Decode(&entries), ShouldBeNil)
			So(entries, ShouldHaveLength, 1)
		})

		Convey("When the limit is not a positive integer", func() {
			for _, q := range []string{"limit=zero", "limit=0", "limit=-3"} {
				resp, err := http.Get(srv.URL + "/rankings?" + q)
				So(err, ShouldBeNil)
				So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
				resp.Body.Close()
			}
		})

		Convey("When the limit exceeds the configured cap", func() {
			resp, err := http.Get(srv.URL + "/rankings?limit=101")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)

			var body struct {
				Code string `json:"code"`
			}
			So(json.NewDecoder(resp.Body).Decode(&body), ShouldBeNil)
			So(body.Code, ShouldEqual, "limit_exceeded")
		})
	})
}

func TestRankEndpoint(t *testing.T) {
	Convey("Given a diagnostics server", t, func() {
		srv := newTestServer()
		Reset(srv.Close)

		Convey("When requesting a known item", func() {
			resp, err := http.Get(srv.URL + "/rank?item=b.jpg")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			So(resp.StatusCode, ShouldEqual, http.StatusOK)

			var entry types.Entry
			So(json.NewDecoder(resp.Body).Decode(&entry), ShouldBeNil)
			So(entry.Rank, ShouldEqual, 2)
			So(entry.Rating, ShouldEqual, 1392.0)
		})

		Convey("When requesting an unknown item", func() {
			resp, err := http.Get(srv.URL + "/rank?item=ghost.jpg")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
		})

		Convey("When the item parameter is missing", func() {
			resp, err := http.Get(srv.URL + "/rank")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestConvergenceEndpoint(t *testing.T) {
	Convey("Given a diagnostics server", t, func() {
		srv := newTestServer()
		Reset(srv.Close)

		Convey("When requesting convergence diagnostics", func() {
			resp, err := http.Get(srv.URL + "/convergence")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			So(resp.StatusCode, ShouldEqual, http.StatusOK)

			var d types.Diagnostics
			So(json.NewDecoder(resp.Body).Decode(&d), ShouldBeNil)
			So(d.Snapshots, ShouldEqual, 4)
			So(d.ConvergedByDelta, ShouldBeTrue)
			So(d.MaxDelta, ShouldNotBeNil)
			So(*d.MaxDelta, ShouldEqual, 0.75)
		})

		Convey("When using a non-GET method", func() {
			resp, err := http.Post(srv.URL+"/convergence", "application/json", nil)
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestStatsAndHealthEndpoints(t *testing.T) {
	Convey("Given a diagnostics server", t, func() {
		srv := newTestServer()
		Reset(srv.Close)

		Convey("When requesting stats", func() {
			resp, err := http.Get(srv.URL + "/stats")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			So(resp.StatusCode, ShouldEqual, http.StatusOK)

			var stats map[string]interface{}
			So(json.NewDecoder(resp.Body).Decode(&stats), ShouldBeNil)
			So(stats["items"], ShouldEqual, 2.0)
		})

		Convey("When requesting the health endpoint", func() {
			resp, err := http.Get(srv.URL + "/healthz")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			So(resp.StatusCode, ShouldEqual, http.StatusOK)
		})
	})
}
