// Package api declares HTTP contracts and route registration helpers for the
// read-only diagnostics server. Judging never happens over the network; these
// routes only expose rankings and convergence state.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/duelrank/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Rankings returns up to n entries ordered by rating descending.
	Rankings(ctx context.Context, n int) []types.Entry
	// Rank returns the entry for one item; ok is false for unknown keys.
	Rank(ctx context.Context, key string) (types.Entry, bool)
	// Diagnostics reports the convergence state.
	Diagnostics(ctx context.Context) types.Diagnostics
}

// Server wires HTTP routes for the diagnostics API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	rankingsHandler    *RankingsHandler
	rankHandler        *RankHandler
	convergenceHandler *ConvergenceHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxLimit int) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		rankingsHandler:    NewRankingsHandler(deps, maxLimit),
		rankHandler:        NewRankHandler(deps),
		convergenceHandler: NewConvergenceHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/rankings", MetricsMiddleware(s.rankingsHandler.HandleGetRankings, "rankings"))
	mux.HandleFunc("/rank", MetricsMiddleware(s.rankHandler.HandleGetRank, "rank"))
	mux.HandleFunc("/convergence", MetricsMiddleware(s.convergenceHandler.HandleGetConvergence, "convergence"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
