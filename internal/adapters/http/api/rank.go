// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/okian/duelrank/internal/domain/types"
)

// RankDependencies defines the interface for single-item rank reads.
type RankDependencies interface {
	Rank(ctx context.Context, key string) (types.Entry, bool)
}

// RankHandler handles single-item rank requests.
type RankHandler struct {
	deps RankDependencies
}

// NewRankHandler creates a new rank handler.
func NewRankHandler(deps RankDependencies) *RankHandler {
	return &RankHandler{deps: deps}
}

// HandleGetRank handles GET /rank?item=KEY requests. Item keys are opaque
// strings (typically file paths), so they travel as a query parameter rather
// than a path segment.
func (h *RankHandler) HandleGetRank(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_rank"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	key := r.URL.Query().Get("item")
	if key == "" {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: missing item: %w", op, ErrBadRequest))
		return
	}
	entry, ok := h.deps.Rank(r.Context(), key)
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", fmt.Errorf("%s: %w", op, ErrNotFound))
		return
	}
	writeJSON(w, http.StatusOK, entry)
}
