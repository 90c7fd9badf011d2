package validate

import (
	"errors"
	"fmt"

	"github.com/harshithgowdakt/batchguard/internal/record"
)

// Operation names reported in violations.
const (
	OpNext             = "Next"
	OpSchema           = "Schema"
	OpRecordCount      = "RecordCount"
	OpValueVectorID    = "ValueVectorID"
	OpVectorByID       = "VectorByID"
	OpVectors          = "Vectors"
	OpSelectionVector2 = "SelectionVector2"
	OpSelectionVector4 = "SelectionVector4"
	OpWritableBatch    = "WritableBatch"
)

// ErrProtocolViolation matches every *ProtocolViolation under errors.Is.
var ErrProtocolViolation = errors.New("iterator protocol violation")

// ProtocolViolation reports an operation invoked in a state that does not
// permit it. It indicates miswired operators and is never retried.
type ProtocolViolation struct {
	Op    string
	State record.Outcome
}

func (e *ProtocolViolation) Error() string {
	if e.Op == OpNext {
		return fmt.Sprintf("%s: %s invoked after exhaustion; the input previously returned %s and must not be advanced again",
			ErrProtocolViolation, e.Op, e.State)
	}
	return fmt.Sprintf("%s: batch data read operation %s invoked in state %s; reads are only valid in state %s or %s",
		ErrProtocolViolation, e.Op, e.State, record.OutcomeOK, record.OutcomeOKNewSchema)
}

func (e *ProtocolViolation) Is(target error) bool {
	return target == ErrProtocolViolation
}

// AsViolation extracts a violation from a recovered panic value.
func AsViolation(r any) (*ProtocolViolation, bool) {
	err, ok := r.(error)
	if !ok {
		return nil, false
	}
	var pv *ProtocolViolation
	if errors.As(err, &pv) {
		return pv, true
	}
	return nil, false
}
