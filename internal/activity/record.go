// Package activity builds the activity table from the form export and
// derives the grouped views shown on the dashboard: equality filters, the
// latest record per (line, machine) and the history of one machine.
package activity

import (
	"time"
)

// Record is one normalized activity submission.
type Record struct {
	// Timestamp is zero when the source cell was blank or unparsable.
	Timestamp    time.Time `json:"timestamp"`
	Line         string    `json:"line"`
	Machine      string    `json:"machine"`
	Activity     string    `json:"activity"`
	Description  string    `json:"description"`
	Date         string    `json:"date,omitempty"`
	DocumentLink string    `json:"document_link,omitempty"`
}

// HasTimestamp reports whether the record carries a parsed timestamp.
func (r Record) HasTimestamp() bool {
	return !r.Timestamp.IsZero()
}

// Key returns the record's group key.
func (r Record) Key() Key {
	return Key{Line: r.Line, Machine: r.Machine}
}

// Key identifies one physical asset: a machine on a production line.
type Key struct {
	Line    string `json:"line"`
	Machine string `json:"machine"`
}

func (k Key) String() string {
	return k.Line + " | " + k.Machine
}
