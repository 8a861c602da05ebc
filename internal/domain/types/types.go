// Package types contains common types used across the application
package types

// Entry represents one row of the ranking table.
type Entry struct {
	Rank        int     `json:"rank"`
	Item        string  `json:"item"`
	Rating      float64 `json:"rating"`
	Comparisons int     `json:"comparisons"`
}

// Diagnostics reports the convergence state of a judging session.
type Diagnostics struct {
	Items            int      `json:"items"`
	TotalComparisons int      `json:"total_comparisons"`
	Snapshots        int      `json:"snapshots"`
	MaxDelta         *float64 `json:"max_delta,omitempty"`
	AvgDelta         *float64 `json:"avg_delta,omitempty"`
	RankStability    *float64 `json:"rank_stability,omitempty"`
	ConvergedByDelta bool     `json:"converged_by_delta"`
	ConvergedByRank  bool     `json:"converged_by_rank"`
}
