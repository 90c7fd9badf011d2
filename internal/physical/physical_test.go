package physical_test

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/harshithgowdakt/batchguard/internal/column"
	"github.com/harshithgowdakt/batchguard/internal/config"
	"github.com/harshithgowdakt/batchguard/internal/logger"
	"github.com/harshithgowdakt/batchguard/internal/ops"
	"github.com/harshithgowdakt/batchguard/internal/physical"
	"github.com/harshithgowdakt/batchguard/internal/record"
	"github.com/harshithgowdakt/batchguard/internal/record/selection"
	"github.com/harshithgowdakt/batchguard/internal/validate"
)

func newTestContext(t *testing.T, validating bool) *ops.FragmentContext {
	t.Helper()
	cfg := config.Default()
	cfg.Exec.Debug.ValidateIterators = validating
	return ops.NewFragmentContext(ops.FragmentHandle{QueryID: uuid.New()}, cfg, logger.Nop())
}

func block(ids []int64, names []string) *column.Block {
	return column.NewBlock(
		[]string{"id", "name"},
		[]column.Column{
			&column.Int64Column{Data: ids},
			&column.StringColumn{Data: names},
		},
	)
}

// drain pulls b to exhaustion and materializes every batch.
func drain(t *testing.T, b record.RecordBatch) ([]record.Outcome, []*column.Block) {
	t.Helper()
	var outcomes []record.Outcome
	var blocks []*column.Block
	for {
		out, err := b.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		outcomes = append(outcomes, out)
		if !out.IsReadable() {
			return outcomes, blocks
		}
		blk, err := b.WritableBatch().Materialize()
		if err != nil {
			t.Fatalf("Materialize: %v", err)
		}
		blocks = append(blocks, blk)
	}
}

func int64s(blocks []*column.Block, col int) []int64 {
	var out []int64
	for _, b := range blocks {
		out = append(out, b.Columns[col].(*column.Int64Column).Data...)
	}
	return out
}

func equalInt64s(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestValuesOutcomes(t *testing.T) {
	ctx := newTestContext(t, false)
	other := column.NewBlock([]string{"x"}, []column.Column{&column.Float64Column{Data: []float64{1.5}}})
	v := physical.NewValuesBatch(ctx, []*column.Block{
		block([]int64{1}, []string{"a"}),
		block([]int64{2}, []string{"b"}),
		other,
	})

	outcomes, _ := drain(t, v)
	want := []record.Outcome{record.OutcomeOKNewSchema, record.OutcomeOK, record.OutcomeOKNewSchema, record.OutcomeNone}
	if len(outcomes) != len(want) {
		t.Fatalf("got outcomes %v, want %v", outcomes, want)
	}
	for i := range want {
		if outcomes[i] != want[i] {
			t.Fatalf("outcome %d: got %s, want %s", i, outcomes[i], want[i])
		}
	}
}

func TestValuesKill(t *testing.T) {
	ctx := newTestContext(t, false)
	v := physical.NewValuesBatch(ctx, []*column.Block{block([]int64{1}, []string{"a"})})
	v.Kill()
	if out, _ := v.Next(); out != record.OutcomeNone {
		t.Fatalf("expected NONE after Kill, got %s", out)
	}
}

func TestFilterSkipsEmptyBatches(t *testing.T) {
	ctx := newTestContext(t, false)
	src := physical.NewValuesBatch(ctx, []*column.Block{
		block([]int64{1, 2}, []string{"a", "b"}),
		block([]int64{5, 6, 7}, []string{"e", "f", "g"}),
	})
	f := physical.NewFilterBatch(ctx, src, physical.Comparison{Column: "id", Op: physical.OpGe, Value: 6})

	outcomes, blocks := drain(t, f)
	if len(outcomes) != 2 || outcomes[0] != record.OutcomeOKNewSchema {
		t.Fatalf("unexpected outcomes %v", outcomes)
	}
	if got := int64s(blocks, 0); !equalInt64s(got, []int64{6, 7}) {
		t.Fatalf("got ids %v", got)
	}
}

func TestFilterUnknownColumn(t *testing.T) {
	ctx := newTestContext(t, false)
	src := physical.NewValuesBatch(ctx, []*column.Block{block([]int64{1}, []string{"a"})})
	f := physical.NewFilterBatch(ctx, src, physical.Comparison{Column: "nope", Op: physical.OpEq, Value: 1})
	if _, err := f.Next(); err == nil {
		t.Fatal("expected error for unknown column")
	}
}

func TestParseCompareOp(t *testing.T) {
	if op, err := physical.ParseCompareOp("<>"); err != nil || op != physical.OpNe {
		t.Fatalf("got %v, %v", op, err)
	}
	if _, err := physical.ParseCompareOp("~"); err == nil {
		t.Fatal("expected error")
	}
}

func TestLimitKillsInputWhenSatisfied(t *testing.T) {
	ctx := newTestContext(t, true)
	src := &countingBatch{RecordBatch: physical.NewValuesBatch(ctx, []*column.Block{
		block([]int64{1, 2, 3}, []string{"a", "b", "c"}),
		block([]int64{4, 5, 6}, []string{"d", "e", "f"}),
		block([]int64{7, 8, 9}, []string{"g", "h", "i"}),
	})}
	guarded := validate.NewIteratorValidator(src, logger.Nop())
	l := physical.NewLimitBatch(ctx, guarded, 2, 3)

	outcomes, blocks := drain(t, l)
	if got := int64s(blocks, 0); !equalInt64s(got, []int64{3, 4, 5}) {
		t.Fatalf("got ids %v", got)
	}
	if outcomes[len(outcomes)-1] != record.OutcomeNone {
		t.Fatalf("expected NONE last, got %v", outcomes)
	}
	if src.nexts != 2 || src.kills != 1 {
		t.Fatalf("input advanced %d times and killed %d times", src.nexts, src.kills)
	}
	// Further pulls must not reach the input again.
	if out, _ := l.Next(); out != record.OutcomeNone || src.nexts != 2 {
		t.Fatalf("limit advanced its input after completion")
	}
}

func TestLimitZero(t *testing.T) {
	ctx := newTestContext(t, false)
	src := &countingBatch{RecordBatch: physical.NewValuesBatch(ctx, []*column.Block{block([]int64{1}, []string{"a"})})}
	l := physical.NewLimitBatch(ctx, src, 0, 0)
	if out, _ := l.Next(); out != record.OutcomeNone {
		t.Fatalf("got %s", out)
	}
	if src.nexts != 0 || src.kills != 1 {
		t.Fatalf("nexts=%d kills=%d", src.nexts, src.kills)
	}
}

func TestSortEmitsHyperBatch(t *testing.T) {
	ctx := newTestContext(t, false)
	src := physical.NewValuesBatch(ctx, []*column.Block{
		block([]int64{5, 1, 9}, []string{"e", "a", "i"}),
		block([]int64{3, 7}, []string{"c", "g"}),
	})
	s := physical.NewSortBatch(ctx, src, []physical.SortKey{{Column: "id", Desc: true}})

	out, err := s.Next()
	if err != nil || out != record.OutcomeOKNewSchema {
		t.Fatalf("got %s, %v", out, err)
	}
	if s.Schema().SVMode != record.SVModeFourByte || s.RecordCount() != 5 {
		t.Fatalf("unexpected schema %s count %d", s.Schema(), s.RecordCount())
	}
	if _, err := s.WritableBatch().Encode(nil); !errors.Is(err, record.ErrHyperBatch) {
		t.Fatalf("expected ErrHyperBatch, got %v", err)
	}
	if out, _ := s.Next(); out != record.OutcomeNone {
		t.Fatalf("expected NONE, got %s", out)
	}
}

func TestChainWithValidators(t *testing.T) {
	for _, validating := range []bool{false, true} {
		ctx := newTestContext(t, validating)
		c := physical.NewCreator(ctx)
		top, err := c.BuildChain([]physical.OperatorSpec{
			physical.ValuesSpec{Blocks: []*column.Block{
				block([]int64{4, 8, 1}, []string{"d", "h", "a"}),
				block([]int64{6, 2, 9}, []string{"f", "b", "i"}),
			}},
			physical.FilterSpec{Predicate: physical.Comparison{Column: "id", Op: physical.OpGt, Value: 1}},
			physical.SortSpec{Keys: []physical.SortKey{{Column: "id"}}},
			physical.RemoverSpec{},
			physical.LimitSpec{Offset: 1, Count: 3},
			physical.ProjectSpec{Items: []physical.ProjectItem{{Column: "name", Alias: "label"}, {Column: "id"}}},
		})
		if err != nil {
			t.Fatal(err)
		}
		if _, ok := top.(*validate.IteratorValidator); ok != validating {
			t.Fatalf("validating=%v but top is %T", validating, top)
		}

		_, blocks := drain(t, top)
		if got := int64s(blocks, 1); !equalInt64s(got, []int64{4, 6, 8}) {
			t.Fatalf("validating=%v: got ids %v", validating, got)
		}
		if blocks[0].ColumnNames[0] != "label" {
			t.Fatalf("expected renamed column, got %v", blocks[0].ColumnNames)
		}
		top.Cleanup()
	}
}

func TestMiswiredOperatorIsCaught(t *testing.T) {
	ctx := newTestContext(t, true)
	c := physical.NewCreator(ctx)
	top, err := c.BuildChain([]physical.OperatorSpec{
		physical.ValuesSpec{Blocks: []*column.Block{block([]int64{1}, []string{"a"})}},
		eagerSpec{},
	})
	if err != nil {
		t.Fatal(err)
	}

	defer func() {
		v, ok := validate.AsViolation(recover())
		if !ok {
			t.Fatal("expected a protocol violation")
		}
		if v.Op != validate.OpRecordCount || v.State != record.OutcomeNotYet {
			t.Fatalf("unexpected violation %v", v)
		}
	}()
	top.Next()
}

func TestScreenEncodesBatches(t *testing.T) {
	ctx := newTestContext(t, true)
	sink := physical.NewBufferSink()
	root, err := physical.NewCreator(ctx).BuildRoot([]physical.OperatorSpec{
		physical.ValuesSpec{Blocks: []*column.Block{
			block([]int64{1, 2}, []string{"a", "b"}),
			block([]int64{3}, []string{"c"}),
		}},
		physical.FilterSpec{Predicate: physical.Comparison{Column: "name", Op: physical.OpNe, Value: "b"}},
	}, sink)
	if err != nil {
		t.Fatal(err)
	}
	defer root.Cleanup()

	for {
		more, err := root.Next()
		if err != nil {
			t.Fatal(err)
		}
		if !more {
			break
		}
	}

	stats := root.Stats()
	if stats.Batches != 2 || stats.Rows != 2 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if frames := sink.Frames(ctx.Handle()); len(frames) != 2 {
		t.Fatalf("got %d frames", len(frames))
	}
	blocks, err := sink.Blocks(ctx.Handle())
	if err != nil {
		t.Fatal(err)
	}
	if got := int64s(blocks, 0); !equalInt64s(got, []int64{1, 3}) {
		t.Fatalf("decoded ids %v", got)
	}
}

func TestBuildChainErrors(t *testing.T) {
	c := physical.NewCreator(newTestContext(t, false))
	if _, err := c.BuildChain(nil); err == nil {
		t.Fatal("expected error for empty chain")
	}
	if _, err := c.BuildChain([]physical.OperatorSpec{
		physical.ValuesSpec{},
		physical.LimitSpec{Count: -1},
	}); err == nil {
		t.Fatal("expected error for negative limit")
	}
}

// countingBatch counts Next and Kill calls reaching the wrapped batch.
type countingBatch struct {
	record.RecordBatch
	nexts, kills int
}

func (c *countingBatch) Next() (record.Outcome, error) {
	c.nexts++
	return c.RecordBatch.Next()
}

func (c *countingBatch) Kill() {
	c.kills++
	c.RecordBatch.Kill()
}

// eagerBatch reads its input before advancing it.
type eagerBatch struct {
	record.RecordBatch
}

func (e eagerBatch) Next() (record.Outcome, error) {
	_ = e.RecordBatch.RecordCount()
	return e.RecordBatch.Next()
}

type eagerSpec struct{}

func (eagerSpec) Name() string { return "eager" }
func (eagerSpec) Create(_ *ops.FragmentContext, incoming record.RecordBatch) (record.RecordBatch, error) {
	return eagerBatch{RecordBatch: incoming}, nil
}

func filterIDs(t *testing.T, ids []int64, pred physical.Comparison) []int64 {
	t.Helper()
	ctx := newTestContext(t, true)
	names := make([]string, len(ids))
	src := physical.NewValuesBatch(ctx, []*column.Block{block(ids, names)})
	f := physical.NewFilterBatch(ctx, validate.NewIteratorValidator(src, logger.Nop()), pred)
	_, blocks := drain(t, f)
	return int64s(blocks, 0)
}

func TestFilterConstantsCompareExactly(t *testing.T) {
	tests := []struct {
		name string
		ids  []int64
		pred physical.Comparison
		want []int64
	}{
		{"fractional", []int64{2, 3, 4}, physical.Comparison{Column: "id", Op: physical.OpGe, Value: 3.7}, []int64{4}},
		{"fractional eq", []int64{3, 4}, physical.Comparison{Column: "id", Op: physical.OpEq, Value: 3.5}, nil},
		{"integral float", []int64{2, 3, 4}, physical.Comparison{Column: "id", Op: physical.OpLt, Value: 3.0}, []int64{2}},
		{"beyond 2^53", []int64{9007199254740992, 9007199254740993}, physical.Comparison{Column: "id", Op: physical.OpEq, Value: int64(9007199254740993)}, []int64{9007199254740993}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := filterIDs(t, tt.ids, tt.pred); !equalInt64s(got, tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilterOutOfRangeConstant(t *testing.T) {
	ctx := newTestContext(t, false)
	src := physical.NewValuesBatch(ctx, []*column.Block{
		column.NewBlock([]string{"flag"}, []column.Column{&column.UInt8Column{Data: []uint8{0, 200, 255}}}),
	})
	f := physical.NewFilterBatch(ctx, src, physical.Comparison{Column: "flag", Op: physical.OpLt, Value: 300})
	out, err := f.Next()
	if err != nil || out != record.OutcomeOKNewSchema || f.RecordCount() != 3 {
		t.Fatalf("got %s, %v with %d rows", out, err, f.RecordCount())
	}
}

func TestValuesRejectsOversizedBlock(t *testing.T) {
	ctx := newTestContext(t, false)
	n := selection.MaxBatchRows + 1
	v := physical.NewValuesBatch(ctx, []*column.Block{block(make([]int64, n), make([]string, n))})
	if _, err := v.Next(); err == nil {
		t.Fatal("expected error for a block larger than a selection vector can address")
	}
}

func TestRemoverSplitsLargeHyperBatches(t *testing.T) {
	const rows = 40000
	blocks := make([]*column.Block, 2)
	for b := range blocks {
		ids := make([]int64, rows)
		for i := range ids {
			ids[i] = int64(b*rows + i)
		}
		blocks[b] = block(ids, make([]string, rows))
	}

	ctx := newTestContext(t, true)
	top, err := physical.NewCreator(ctx).BuildChain([]physical.OperatorSpec{
		physical.ValuesSpec{Blocks: blocks},
		physical.SortSpec{Keys: []physical.SortKey{{Column: "id"}}},
		physical.RemoverSpec{},
		physical.FilterSpec{Predicate: physical.Comparison{Column: "id", Op: physical.OpGe, Value: 0}},
	})
	if err != nil {
		t.Fatal(err)
	}
	defer top.Cleanup()

	outcomes, out := drain(t, top)
	if len(out) != 2 || out[0].NumRows() != selection.MaxBatchRows || out[1].NumRows() != 2*rows-selection.MaxBatchRows {
		t.Fatalf("unexpected batches: %d", len(out))
	}
	if outcomes[0] != record.OutcomeOKNewSchema || outcomes[1] != record.OutcomeOK {
		t.Fatalf("unexpected outcomes %v", outcomes)
	}
	ids := int64s(out, 0)
	for i, id := range ids {
		if id != int64(i) {
			t.Fatalf("row %d: got id %d", i, id)
		}
	}
}

func TestBuildChainRequiresSourceFirst(t *testing.T) {
	c := physical.NewCreator(newTestContext(t, false))
	for _, spec := range []physical.OperatorSpec{
		physical.RemoverSpec{},
		physical.FilterSpec{Predicate: physical.Comparison{Column: "id", Op: physical.OpEq, Value: 1}},
		physical.LimitSpec{Count: 1},
		physical.SortSpec{Keys: []physical.SortKey{{Column: "id"}}},
		physical.ProjectSpec{Items: []physical.ProjectItem{{Column: "id"}}},
	} {
		if _, err := c.BuildChain([]physical.OperatorSpec{spec}); err == nil {
			t.Fatalf("%s without an input should be rejected", spec.Name())
		}
	}
}

func TestParseComparison(t *testing.T) {
	tests := []struct {
		expr string
		want physical.Comparison
	}{
		{"score >= 50", physical.Comparison{Column: "score", Op: physical.OpGe, Value: int64(50)}},
		{"score < 2.5", physical.Comparison{Column: "score", Op: physical.OpLt, Value: 2.5}},
		{"tag <> t3", physical.Comparison{Column: "tag", Op: physical.OpNe, Value: "t3"}},
		{"tag = '42'", physical.Comparison{Column: "tag", Op: physical.OpEq, Value: "42"}},
	}
	for _, tt := range tests {
		got, err := physical.ParseComparison(tt.expr)
		if err != nil {
			t.Fatalf("%q: %v", tt.expr, err)
		}
		if got != tt.want {
			t.Fatalf("%q: got %+v, want %+v", tt.expr, got, tt.want)
		}
	}

	for _, bad := range []string{"", "score >=", "score ~ 1", "a = b c"} {
		if _, err := physical.ParseComparison(bad); err == nil {
			t.Fatalf("%q: expected error", bad)
		}
	}
}
