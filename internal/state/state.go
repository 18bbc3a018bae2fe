// Package state is the local run journal: one row per extraction run,
// one row per document that failed to parse. The scheduler reads it
// between phases to decide whether a run needs attention.
package state

import "time"

// RunStatus is the lifecycle state of one extraction run.
type RunStatus string

const (
	RunStatusRunning RunStatus = "running"
	RunStatusSuccess RunStatus = "success"
	RunStatusFailed  RunStatus = "failed"
)

// Run records one invocation of the extraction phase for a retailer.
type Run struct {
	ID          string
	Retailer    string
	Status      RunStatus
	StartedAt   time.Time
	CompletedAt *time.Time
	Error       *string
}

// ParseError records one document unit that could not be parsed during
// a run. The run itself continues past these.
type ParseError struct {
	ID        string
	RunID     string
	FileName  string
	SheetName string
	Message   string
	CreatedAt time.Time
}
