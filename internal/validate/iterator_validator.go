// Package validate guards the pull-iteration protocol between operators.
package validate

import (
	"iter"

	"github.com/rs/zerolog"

	"github.com/harshithgowdakt/batchguard/internal/ops"
	"github.com/harshithgowdakt/batchguard/internal/record"
	"github.com/harshithgowdakt/batchguard/internal/record/selection"
	"github.com/harshithgowdakt/batchguard/internal/types"
)

// IteratorValidator wraps a RecordBatch and panics with a *ProtocolViolation
// when its consumer reads data outside OK/OK_NEW_SCHEMA or advances past
// NONE. Every call is otherwise forwarded unchanged.
type IteratorValidator struct {
	incoming record.RecordBatch
	state    record.Outcome
	log      zerolog.Logger
}

var _ record.RecordBatch = (*IteratorValidator)(nil)

// NewIteratorValidator wraps incoming. The validator owns incoming for the
// rest of its life and tears it down through Cleanup.
func NewIteratorValidator(incoming record.RecordBatch, log zerolog.Logger) *IteratorValidator {
	return &IteratorValidator{
		incoming: incoming,
		state:    record.OutcomeNotYet,
		log:      log,
	}
}

func (v *IteratorValidator) violate(op string) {
	err := &ProtocolViolation{Op: op, State: v.state}
	v.log.Error().Str("op", op).Stringer("state", v.state).Msg(err.Error())
	panic(err)
}

func (v *IteratorValidator) validateReadState(op string) {
	if !v.state.IsReadable() {
		v.violate(op)
	}
}

func (v *IteratorValidator) Next() (record.Outcome, error) {
	if !v.state.CanAdvance() {
		v.violate(OpNext)
	}
	out, err := v.incoming.Next()
	v.log.Trace().Stringer("from", v.state).Stringer("to", out).Msg("next")
	v.state = out
	return out, err
}

func (v *IteratorValidator) Schema() *record.BatchSchema {
	v.validateReadState(OpSchema)
	return v.incoming.Schema()
}

func (v *IteratorValidator) RecordCount() int {
	v.validateReadState(OpRecordCount)
	return v.incoming.RecordCount()
}

func (v *IteratorValidator) ValueVectorID(path record.SchemaPath) (record.TypedFieldID, bool) {
	v.validateReadState(OpValueVectorID)
	return v.incoming.ValueVectorID(path)
}

func (v *IteratorValidator) VectorByID(id int, dt types.DataType) (*record.VectorWrapper, error) {
	v.validateReadState(OpVectorByID)
	return v.incoming.VectorByID(id, dt)
}

func (v *IteratorValidator) Vectors() iter.Seq[*record.VectorWrapper] {
	v.validateReadState(OpVectors)
	return v.incoming.Vectors()
}

func (v *IteratorValidator) SelectionVector2() *selection.SelectionVector2 {
	v.validateReadState(OpSelectionVector2)
	return v.incoming.SelectionVector2()
}

func (v *IteratorValidator) SelectionVector4() *selection.SelectionVector4 {
	v.validateReadState(OpSelectionVector4)
	return v.incoming.SelectionVector4()
}

func (v *IteratorValidator) WritableBatch() *record.WritableBatch {
	v.validateReadState(OpWritableBatch)
	return v.incoming.WritableBatch()
}

func (v *IteratorValidator) Context() *ops.FragmentContext {
	return v.incoming.Context()
}

func (v *IteratorValidator) Kill() {
	v.incoming.Kill()
}

func (v *IteratorValidator) Cleanup() {
	v.incoming.Cleanup()
}
