package record

import (
	"iter"

	"github.com/harshithgowdakt/batchguard/internal/ops"
	"github.com/harshithgowdakt/batchguard/internal/record/selection"
	"github.com/harshithgowdakt/batchguard/internal/types"
)

// RecordBatch is the pull-iteration capability set of an operator. A consumer
// calls Next and, while the returned Outcome is readable, inspects the
// current batch through the read methods. Context, Kill and Cleanup are valid
// at any time.
//
// A RecordBatch is driven by exactly one goroutine.
type RecordBatch interface {
	// Next advances to the next batch. When err is non-nil the consumer must
	// stop iterating.
	Next() (Outcome, error)

	Schema() *BatchSchema
	RecordCount() int
	ValueVectorID(path SchemaPath) (TypedFieldID, bool)
	VectorByID(id int, dt types.DataType) (*VectorWrapper, error)
	// Vectors is valid until the next call to Next.
	Vectors() iter.Seq[*VectorWrapper]
	// SelectionVector2 returns nil unless the schema mode is SVModeTwoByte.
	SelectionVector2() *selection.SelectionVector2
	// SelectionVector4 returns nil unless the schema mode is SVModeFourByte.
	SelectionVector4() *selection.SelectionVector4
	WritableBatch() *WritableBatch

	Context() *ops.FragmentContext

	// Kill asks the batch to stop producing; the next Next should return
	// OutcomeNone. Kill is idempotent.
	Kill()
	// Cleanup releases the batch's resources and those of its inputs.
	// Cleanup is idempotent.
	Cleanup()
}
