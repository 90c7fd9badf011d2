// Package physical implements the operators of a fragment. Every operator is
// a record.RecordBatch pulling from its input the same way its consumer pulls
// from it.
package physical

import (
	"iter"

	"github.com/rs/zerolog"

	"github.com/harshithgowdakt/batchguard/internal/ops"
	"github.com/harshithgowdakt/batchguard/internal/record"
	"github.com/harshithgowdakt/batchguard/internal/record/selection"
	"github.com/harshithgowdakt/batchguard/internal/types"
)

// baseBatch serves the read operations from the operator's own container.
// Operators exposing selection vectors override the SV accessors and
// WritableBatch.
type baseBatch struct {
	ctx       *ops.FragmentContext
	container *record.VectorContainer
	log       zerolog.Logger
	killed    bool
	cleaned   bool
}

func newBaseBatch(ctx *ops.FragmentContext, name string) baseBatch {
	return baseBatch{
		ctx:       ctx,
		container: record.NewVectorContainer(),
		log:       ctx.OperatorLogger(name),
	}
}

func (b *baseBatch) Schema() *record.BatchSchema { return b.container.Schema() }
func (b *baseBatch) RecordCount() int            { return b.container.RecordCount() }

func (b *baseBatch) ValueVectorID(path record.SchemaPath) (record.TypedFieldID, bool) {
	return b.container.ValueVectorID(path)
}

func (b *baseBatch) VectorByID(id int, dt types.DataType) (*record.VectorWrapper, error) {
	return b.container.VectorByID(id, dt)
}

func (b *baseBatch) Vectors() iter.Seq[*record.VectorWrapper] { return b.container.Vectors() }

func (b *baseBatch) SelectionVector2() *selection.SelectionVector2 { return nil }
func (b *baseBatch) SelectionVector4() *selection.SelectionVector4 { return nil }

func (b *baseBatch) WritableBatch() *record.WritableBatch {
	return record.NewWritableBatch(b.container, nil)
}

func (b *baseBatch) Context() *ops.FragmentContext { return b.ctx }

// singleInputBatch adds Kill/Cleanup propagation to one input.
type singleInputBatch struct {
	baseBatch
	incoming record.RecordBatch
}

func newSingleInputBatch(ctx *ops.FragmentContext, name string, incoming record.RecordBatch) singleInputBatch {
	return singleInputBatch{baseBatch: newBaseBatch(ctx, name), incoming: incoming}
}

func (b *singleInputBatch) Kill() {
	if b.killed {
		return
	}
	b.killed = true
	b.incoming.Kill()
}

func (b *singleInputBatch) Cleanup() {
	if b.cleaned {
		return
	}
	b.cleaned = true
	b.container.Clear()
	b.incoming.Cleanup()
}

// transferVectors points the container at the incoming batch's vectors
// without copying them.
func (b *singleInputBatch) transferVectors(mode record.SelectionVectorMode) {
	b.container.Clear()
	for w := range b.incoming.Vectors() {
		b.container.AddWrapper(w)
	}
	b.container.BuildSchema(mode)
}

// schemaChange remembers whether a schema change still has to be
// reported to the consumer.
type schemaChange struct {
	pending bool
}

func (t *schemaChange) mark() { t.pending = true }

// outcome returns OK_NEW_SCHEMA once after each mark, OK otherwise.
func (t *schemaChange) outcome() record.Outcome {
	if t.pending {
		t.pending = false
		return record.OutcomeOKNewSchema
	}
	return record.OutcomeOK
}
