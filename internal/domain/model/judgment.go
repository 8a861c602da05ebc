// Package model contains domain models passed between layers.
package model

import "time"

// Outcome classifies a judged pair.
type Outcome string

// Judgment outcomes.
const (
	OutcomeWin  Outcome = "win"
	OutcomeDraw Outcome = "draw"
)

// Judgment records one human decision over a pair of items. For a draw the
// Winner/Loser fields carry the pair in presentation order; the outcome is
// what distinguishes the cases.
type Judgment struct {
	ID      string    // unique id, assigned by the session
	Winner  string    // preferred item key (or first of the pair on a draw)
	Loser   string    // other item key
	Outcome Outcome   // win or draw
	At      time.Time // when the judgment was applied
}
