package physical

import (
	"fmt"

	"github.com/harshithgowdakt/batchguard/internal/column"
	"github.com/harshithgowdakt/batchguard/internal/ops"
	"github.com/harshithgowdakt/batchguard/internal/record"
	"github.com/harshithgowdakt/batchguard/internal/record/selection"
)

// ValuesBatch emits in-memory blocks, one per Next.
type ValuesBatch struct {
	baseBatch
	blocks []*column.Block
	pos    int
}

// NewValuesBatch creates a source over blocks.
func NewValuesBatch(ctx *ops.FragmentContext, blocks []*column.Block) *ValuesBatch {
	return &ValuesBatch{
		baseBatch: newBaseBatch(ctx, "values"),
		blocks:    blocks,
	}
}

func (v *ValuesBatch) Next() (record.Outcome, error) {
	if v.killed || v.pos >= len(v.blocks) {
		return record.OutcomeNone, nil
	}
	block := v.blocks[v.pos]
	v.pos++
	if err := block.Validate(); err != nil {
		return record.OutcomeNone, fmt.Errorf("values block %d: %w", v.pos-1, err)
	}
	if n := block.NumRows(); n > selection.MaxBatchRows {
		return record.OutcomeNone, fmt.Errorf("values block %d: %d rows exceeds %d", v.pos-1, n, selection.MaxBatchRows)
	}

	prev := v.container.Schema()
	v.container.LoadBlock(block)
	schema := v.container.BuildSchema(record.SVModeNone)
	if prev != nil && prev.Equals(schema) {
		return record.OutcomeOK, nil
	}
	v.log.Debug().Stringer("schema", schema).Msg("new schema")
	return record.OutcomeOKNewSchema, nil
}

func (v *ValuesBatch) Kill() { v.killed = true }

func (v *ValuesBatch) Cleanup() {
	v.container.Clear()
	v.blocks = nil
}
