package physical

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/harshithgowdakt/batchguard/internal/ops"
	"github.com/harshithgowdakt/batchguard/internal/record"
	"github.com/harshithgowdakt/batchguard/internal/record/selection"
	"github.com/harshithgowdakt/batchguard/internal/types"
)

// CompareOp is a comparison operator.
type CompareOp uint8

const (
	OpEq CompareOp = iota
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
)

var compareOpSymbols = map[string]CompareOp{
	"=": OpEq, "==": OpEq, "!=": OpNe, "<>": OpNe,
	"<": OpLt, "<=": OpLe, ">": OpGt, ">=": OpGe,
}

// ParseCompareOp converts a symbol such as ">=" to a CompareOp.
func ParseCompareOp(s string) (CompareOp, error) {
	op, ok := compareOpSymbols[s]
	if !ok {
		return 0, fmt.Errorf("unknown comparison operator: %s", s)
	}
	return op, nil
}

// ParseComparison parses "column op literal", e.g. "score >= 50" or
// "tag = 't3'". Unquoted literals are read as an integer, then a float, and
// otherwise kept as a string.
func ParseComparison(expr string) (Comparison, error) {
	parts := strings.Fields(expr)
	if len(parts) != 3 {
		return Comparison{}, fmt.Errorf("comparison %q: want \"column op literal\"", expr)
	}
	op, err := ParseCompareOp(parts[1])
	if err != nil {
		return Comparison{}, err
	}
	return Comparison{Column: parts[0], Op: op, Value: parseLiteral(parts[2])}, nil
}

func parseLiteral(s string) types.Value {
	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		return s[1 : len(s)-1]
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

func (op CompareOp) holds(cmp int) bool {
	switch op {
	case OpEq:
		return cmp == 0
	case OpNe:
		return cmp != 0
	case OpLt:
		return cmp < 0
	case OpLe:
		return cmp <= 0
	case OpGt:
		return cmp > 0
	case OpGe:
		return cmp >= 0
	}
	return false
}

// Comparison is the predicate `Column Op Value`.
type Comparison struct {
	Column string
	Op     CompareOp
	Value  types.Value
}

// FilterBatch exposes its input's vectors unchanged together with a
// SelectionVector2 of the rows matching the predicate. Batches without
// matches are skipped.
type FilterBatch struct {
	singleInputBatch
	pred   Comparison
	sv2    *selection.SelectionVector2
	change schemaChange

	fieldID  int
	dt       types.DataType
	constant types.Value
	asFloat  bool
}

// NewFilterBatch creates a filter over incoming.
func NewFilterBatch(ctx *ops.FragmentContext, incoming record.RecordBatch, pred Comparison) *FilterBatch {
	return &FilterBatch{
		singleInputBatch: newSingleInputBatch(ctx, "filter", incoming),
		pred:             pred,
		sv2:              selection.NewSelectionVector2(0),
	}
}

func (f *FilterBatch) Next() (record.Outcome, error) {
	for {
		out, err := f.incoming.Next()
		if err != nil {
			return out, err
		}
		switch out {
		case record.OutcomeNone:
			return out, nil
		case record.OutcomeOKNewSchema:
			if err := f.setup(); err != nil {
				return record.OutcomeNone, err
			}
			f.change.mark()
		case record.OutcomeOK:
		default:
			return record.OutcomeNone, fmt.Errorf("filter: unexpected outcome %s", out)
		}

		if err := f.evaluate(); err != nil {
			return record.OutcomeNone, err
		}
		if f.sv2.Count() > 0 {
			return f.change.outcome(), nil
		}
	}
}

func (f *FilterBatch) setup() error {
	if mode := f.incoming.Schema().SVMode; mode != record.SVModeNone {
		return fmt.Errorf("filter: input selection vector mode %s not supported", mode)
	}
	id, ok := f.incoming.ValueVectorID(record.SchemaPath(f.pred.Column))
	if !ok {
		return fmt.Errorf("filter: column not found: %s", f.pred.Column)
	}
	f.fieldID, f.dt, f.asFloat = id.FieldID, id.Type, false
	constant, err := types.Coerce(id.Type, f.pred.Value)
	if errors.Is(err, types.ErrInexact) {
		// 3.7 against an integer vector, or 300 against UInt8.
		constant, err = types.Coerce(types.TypeFloat64, f.pred.Value)
		f.asFloat = true
	}
	if err != nil {
		return fmt.Errorf("filter: %w", err)
	}
	f.constant = constant
	return nil
}

func (f *FilterBatch) evaluate() error {
	w, err := f.incoming.VectorByID(f.fieldID, f.dt)
	if err != nil {
		return fmt.Errorf("filter: %w", err)
	}
	col := w.Value()
	n := f.incoming.RecordCount()
	if n > selection.MaxBatchRows {
		return fmt.Errorf("filter: batch of %d rows exceeds %d", n, selection.MaxBatchRows)
	}

	compare := func(i int) int { return types.CompareValues(f.dt, col.Value(i), f.constant) }
	if f.asFloat {
		compare = func(i int) int {
			v, _ := types.ToFloat64(f.dt, col.Value(i))
			return types.CompareValues(types.TypeFloat64, v, f.constant)
		}
	}

	f.sv2 = selection.NewSelectionVector2(n)
	for i := 0; i < n; i++ {
		if f.pred.Op.holds(compare(i)) {
			f.sv2.Append(i)
		}
	}

	f.transferVectors(record.SVModeTwoByte)
	f.container.SetRecordCount(f.sv2.Count())
	return nil
}

func (f *FilterBatch) SelectionVector2() *selection.SelectionVector2 { return f.sv2 }

func (f *FilterBatch) WritableBatch() *record.WritableBatch {
	return record.NewWritableBatch(f.container, f.sv2)
}
