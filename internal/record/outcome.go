// Package record defines the pull-iteration protocol between operators: the
// outcome of an advance step, batch schemas, value vector containers and the
// RecordBatch capability set every operator exposes.
package record

import "fmt"

// Outcome is the result of advancing a RecordBatch.
type Outcome uint8

const (
	// OutcomeNotYet is the state before the first Next call.
	OutcomeNotYet Outcome = iota
	// OutcomeOK means rows are available and the schema is unchanged.
	OutcomeOK
	// OutcomeOKNewSchema means rows are available under a new schema.
	OutcomeOKNewSchema
	// OutcomeNone means the batch is exhausted; Next must not be called again.
	OutcomeNone
)

var outcomeNames = [...]string{
	OutcomeNotYet:      "NOT_YET",
	OutcomeOK:          "OK",
	OutcomeOKNewSchema: "OK_NEW_SCHEMA",
	OutcomeNone:        "NONE",
}

func (o Outcome) String() string {
	if int(o) < len(outcomeNames) {
		return outcomeNames[o]
	}
	return fmt.Sprintf("Outcome(%d)", uint8(o))
}

// IsReadable reports whether data-access operations are permitted after a
// Next call returned o.
func (o Outcome) IsReadable() bool {
	return o == OutcomeOK || o == OutcomeOKNewSchema
}

// IsTerminal reports whether o ends the iteration.
func (o Outcome) IsTerminal() bool {
	return o == OutcomeNone
}

// CanAdvance reports whether Next may be called in state o.
func (o Outcome) CanAdvance() bool {
	return !o.IsTerminal()
}
