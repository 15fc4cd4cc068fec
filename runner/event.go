// Package runner evaluates the relations of parsed schemas and reports the
// results through pluggable handlers and formatters.
package runner

import (
	"time"

	"github.com/rlch/nfcheck/fd"
)

// Action represents the type of relation event.
type Action string

// Action constants for relation events.
const (
	ActionRun   Action = "run"
	ActionPass  Action = "passed"
	ActionFail  Action = "failed"
	ActionSkip  Action = "skipped"
	ActionError Action = "error"
)

// IsTerminal returns true if this action ends a relation.
func (a Action) IsTerminal() bool {
	return a == ActionPass || a == ActionFail || a == ActionSkip || a == ActionError
}

// Event represents a single relation event emitted during a run.
type Event struct {
	Time     time.Time     // When the event occurred
	Action   Action        // What happened
	File     string        // Source file path
	Relation string        // Relation name
	Index    int           // Position of the relation in the run
	Line     int           // Line of the relation header
	Elapsed  time.Duration // Time taken (for terminal events)
	Error    error         // Error details (for ActionError)

	// Report is set on ActionPass and ActionFail.
	Report *fd.Report

	// Assertion is the expression that did not hold (for ActionFail).
	Assertion string
}
