package physical

import (
	"fmt"

	"github.com/harshithgowdakt/batchguard/internal/column"
	"github.com/harshithgowdakt/batchguard/internal/ops"
	"github.com/harshithgowdakt/batchguard/internal/record"
	"github.com/harshithgowdakt/batchguard/internal/record/selection"
)

// RemoverBatch copies the selected rows of its input into plain vectors so
// that consumers never see a selection vector. A hyper batch is emitted in
// chunks of at most selection.MaxBatchRows rows, the first carrying the
// input's outcome and the rest OK.
type RemoverBatch struct {
	singleInputBatch
	sv4Pos, sv4End int
}

// NewRemoverBatch creates a selection vector remover over incoming.
func NewRemoverBatch(ctx *ops.FragmentContext, incoming record.RecordBatch) *RemoverBatch {
	return &RemoverBatch{singleInputBatch: newSingleInputBatch(ctx, "remover", incoming)}
}

func (r *RemoverBatch) Next() (record.Outcome, error) {
	if r.sv4Pos < r.sv4End {
		if r.killed {
			r.sv4Pos = r.sv4End
			return record.OutcomeNone, nil
		}
		return record.OutcomeOK, r.copyHyperChunk()
	}

	out, err := r.incoming.Next()
	if err != nil || !out.IsReadable() {
		return out, err
	}

	switch mode := r.incoming.Schema().SVMode; mode {
	case record.SVModeNone, record.SVModeTwoByte:
		r.container.Clear()
		for w := range r.incoming.Vectors() {
			col := w.Value()
			if mode == record.SVModeTwoByte {
				col = col.Gather(r.incoming.SelectionVector2().Indexes())
			}
			r.container.Add(w.Field().Name, col)
		}
		r.container.BuildSchema(record.SVModeNone)
		r.container.SetRecordCount(r.incoming.RecordCount())
	case record.SVModeFourByte:
		r.sv4Pos, r.sv4End = 0, r.incoming.SelectionVector4().Count()
		if err := r.copyHyperChunk(); err != nil {
			return record.OutcomeNone, err
		}
	default:
		return record.OutcomeNone, fmt.Errorf("remover: unsupported selection vector mode %s", mode)
	}
	return out, nil
}

// copyHyperChunk copies the next chunk of SV4-addressed rows.
func (r *RemoverBatch) copyHyperChunk() error {
	sv4 := r.incoming.SelectionVector4()
	if sv4.Count() != r.sv4End {
		return fmt.Errorf("remover: input selection vector changed from %d to %d rows", r.sv4End, sv4.Count())
	}
	from, to := r.sv4Pos, min(r.sv4Pos+selection.MaxBatchRows, r.sv4End)

	r.container.Clear()
	for w := range r.incoming.Vectors() {
		vectors := w.Values()
		out := column.NewColumnWithCapacity(w.Field().Type, to-from)
		for i := from; i < to; i++ {
			out.Append(vectors[sv4.BatchIndex(i)].Value(sv4.RecordIndex(i)))
		}
		r.container.Add(w.Field().Name, out)
	}
	r.container.BuildSchema(record.SVModeNone)
	r.container.SetRecordCount(to - from)
	r.sv4Pos = to
	return nil
}
