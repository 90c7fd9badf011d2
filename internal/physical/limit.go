package physical

import (
	"fmt"

	"github.com/harshithgowdakt/batchguard/internal/ops"
	"github.com/harshithgowdakt/batchguard/internal/record"
	"github.com/harshithgowdakt/batchguard/internal/record/selection"
)

// LimitBatch skips Offset rows and passes at most Count rows, selecting them
// with a SelectionVector2. Once Count rows have been passed it kills its
// input and never advances it again.
type LimitBatch struct {
	singleInputBatch
	offset, count    int
	skipped, emitted int
	sv2              *selection.SelectionVector2
	change           schemaChange
	done             bool
}

// NewLimitBatch creates a limit over incoming.
func NewLimitBatch(ctx *ops.FragmentContext, incoming record.RecordBatch, offset, count int) *LimitBatch {
	return &LimitBatch{
		singleInputBatch: newSingleInputBatch(ctx, "limit", incoming),
		offset:           offset,
		count:            count,
		sv2:              selection.NewSelectionVector2(0),
	}
}

func (l *LimitBatch) Next() (record.Outcome, error) {
	if !l.done && l.emitted >= l.count {
		l.finish()
	}
	if l.done {
		return record.OutcomeNone, nil
	}

	for {
		out, err := l.incoming.Next()
		if err != nil {
			return out, err
		}
		switch out {
		case record.OutcomeNone:
			l.done = true
			return out, nil
		case record.OutcomeOKNewSchema:
			if mode := l.incoming.Schema().SVMode; mode == record.SVModeFourByte {
				return record.OutcomeNone, fmt.Errorf("limit: input selection vector mode %s not supported", mode)
			}
			l.change.mark()
		case record.OutcomeOK:
		default:
			return record.OutcomeNone, fmt.Errorf("limit: unexpected outcome %s", out)
		}

		l.selectRows()
		if l.sv2.Count() > 0 {
			return l.change.outcome(), nil
		}
	}
}

func (l *LimitBatch) selectRows() {
	n := l.incoming.RecordCount()
	l.sv2 = selection.NewSelectionVector2(n)
	if in := l.incoming.SelectionVector2(); in != nil {
		for i := 0; i < in.Count(); i++ {
			l.sv2.Append(in.Index(i))
		}
	} else {
		for i := 0; i < n; i++ {
			l.sv2.Append(i)
		}
	}

	skip := min(l.offset-l.skipped, l.sv2.Count())
	take := min(l.count-l.emitted, l.sv2.Count()-skip)
	l.sv2.Truncate(skip, skip+take)
	l.skipped += skip
	l.emitted += take

	l.transferVectors(record.SVModeTwoByte)
	l.container.SetRecordCount(l.sv2.Count())
}

// finish stops the input early; its remaining rows are not needed.
func (l *LimitBatch) finish() {
	l.done = true
	l.log.Debug().Int("rows", l.emitted).Msg("limit reached, killing input")
	l.incoming.Kill()
}

func (l *LimitBatch) SelectionVector2() *selection.SelectionVector2 { return l.sv2 }

func (l *LimitBatch) WritableBatch() *record.WritableBatch {
	return record.NewWritableBatch(l.container, l.sv2)
}
