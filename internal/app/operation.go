package app

import "time"

// Operation tracks one CLI command or server session. Commands that change
// the log mark it mutated, which is what triggers an automatic backup on Close.
type Operation struct {
	ID      string // UTC start time, also written to every log line
	Name    string
	Mutated bool
	Errors  int
}

// NewOperation creates an operation started at now.
func NewOperation(name string, now time.Time) *Operation {
	return &Operation{
		ID:   now.UTC().Format("20060102T150405Z"),
		Name: name,
	}
}

// record updates the operation after a call. Only successful mutations count.
func (op *Operation) record(mutating bool, err error) {
	if err != nil {
		op.Errors++
		return
	}
	if mutating {
		op.Mutated = true
	}
}

// Status is "success" or "error", for the closing log line.
func (op *Operation) Status() string {
	if op.Errors > 0 {
		return "error"
	}
	return "success"
}
