// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/okian/duelrank/internal/domain/types"
)

// ConvergenceDependencies defines the interface for convergence reads.
type ConvergenceDependencies interface {
	Diagnostics(ctx context.Context) types.Diagnostics
}

// ConvergenceHandler handles convergence diagnostics requests.
type ConvergenceHandler struct {
	deps ConvergenceDependencies
}

// NewConvergenceHandler creates a new convergence handler.
func NewConvergenceHandler(deps ConvergenceDependencies) *ConvergenceHandler {
	return &ConvergenceHandler{deps: deps}
}

// HandleGetConvergence handles GET /convergence requests.
func (h *ConvergenceHandler) HandleGetConvergence(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Diagnostics(r.Context()))
}
