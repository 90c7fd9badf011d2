package physical

import (
	"errors"
	"fmt"

	"github.com/harshithgowdakt/batchguard/internal/column"
	"github.com/harshithgowdakt/batchguard/internal/ops"
	"github.com/harshithgowdakt/batchguard/internal/record"
	"github.com/harshithgowdakt/batchguard/internal/validate"
)

// OperatorSpec describes one operator of a linear chain. Create receives the
// already built input, or nil for a source.
type OperatorSpec interface {
	Name() string
	Create(ctx *ops.FragmentContext, incoming record.RecordBatch) (record.RecordBatch, error)
}

func requireInput(s OperatorSpec, incoming record.RecordBatch) error {
	if incoming == nil {
		return fmt.Errorf("%s: operator needs an input", s.Name())
	}
	return nil
}

type ValuesSpec struct{ Blocks []*column.Block }

func (ValuesSpec) Name() string { return "values" }
func (s ValuesSpec) Create(ctx *ops.FragmentContext, incoming record.RecordBatch) (record.RecordBatch, error) {
	if incoming != nil {
		return nil, errors.New("values: source operator cannot have an input")
	}
	return NewValuesBatch(ctx, s.Blocks), nil
}

type FilterSpec struct{ Predicate Comparison }

func (FilterSpec) Name() string { return "filter" }
func (s FilterSpec) Create(ctx *ops.FragmentContext, incoming record.RecordBatch) (record.RecordBatch, error) {
	if err := requireInput(s, incoming); err != nil {
		return nil, err
	}
	return NewFilterBatch(ctx, incoming, s.Predicate), nil
}

type ProjectSpec struct{ Items []ProjectItem }

func (ProjectSpec) Name() string { return "project" }
func (s ProjectSpec) Create(ctx *ops.FragmentContext, incoming record.RecordBatch) (record.RecordBatch, error) {
	if err := requireInput(s, incoming); err != nil {
		return nil, err
	}
	if len(s.Items) == 0 {
		return nil, errors.New("project: no columns")
	}
	return NewProjectBatch(ctx, incoming, s.Items), nil
}

type LimitSpec struct{ Offset, Count int }

func (LimitSpec) Name() string { return "limit" }
func (s LimitSpec) Create(ctx *ops.FragmentContext, incoming record.RecordBatch) (record.RecordBatch, error) {
	if err := requireInput(s, incoming); err != nil {
		return nil, err
	}
	if s.Offset < 0 || s.Count < 0 {
		return nil, fmt.Errorf("limit: negative offset %d or count %d", s.Offset, s.Count)
	}
	return NewLimitBatch(ctx, incoming, s.Offset, s.Count), nil
}

type SortSpec struct{ Keys []SortKey }

func (SortSpec) Name() string { return "sort" }
func (s SortSpec) Create(ctx *ops.FragmentContext, incoming record.RecordBatch) (record.RecordBatch, error) {
	if err := requireInput(s, incoming); err != nil {
		return nil, err
	}
	if len(s.Keys) == 0 {
		return nil, errors.New("sort: no keys")
	}
	return NewSortBatch(ctx, incoming, s.Keys), nil
}

type RemoverSpec struct{}

func (RemoverSpec) Name() string { return "remover" }
func (s RemoverSpec) Create(ctx *ops.FragmentContext, incoming record.RecordBatch) (record.RecordBatch, error) {
	if err := requireInput(s, incoming); err != nil {
		return nil, err
	}
	return NewRemoverBatch(ctx, incoming), nil
}

// Creator builds operator chains for one fragment. With
// exec.debug.validate_iterators set, every operator's output is wrapped in an
// IteratorValidator before its consumer is created.
type Creator struct {
	ctx      *ops.FragmentContext
	injector *validate.Injector
}

func NewCreator(ctx *ops.FragmentContext) *Creator {
	enabled := ctx.Config().Exec.Debug.ValidateIterators
	return &Creator{
		ctx:      ctx,
		injector: validate.NewInjector(enabled, ctx.Logger()),
	}
}

// Validating reports whether built chains carry validators.
func (c *Creator) Validating() bool { return c.injector.Enabled() }

// BuildChain creates specs in order, each pulling from the previous one.
// The first spec must be a source.
func (c *Creator) BuildChain(specs []OperatorSpec) (record.RecordBatch, error) {
	if len(specs) == 0 {
		return nil, errors.New("empty operator chain")
	}
	var current record.RecordBatch
	for i, spec := range specs {
		b, err := spec.Create(c.ctx, current)
		if err != nil {
			if current != nil {
				current.Cleanup()
			}
			return nil, fmt.Errorf("operator %d (%s): %w", i, spec.Name(), err)
		}
		current = c.injector.Wrap(spec.Name(), b)
	}
	lg := c.ctx.Logger()
	lg.Debug().
		Int("operators", len(specs)).
		Bool("validating", c.Validating()).
		Msg("built operator chain")
	return current, nil
}

// BuildRoot builds the chain and puts a ScreenRoot on top of it.
func (c *Creator) BuildRoot(specs []OperatorSpec, sink Sink) (*ScreenRoot, error) {
	top, err := c.BuildChain(specs)
	if err != nil {
		return nil, err
	}
	root, err := NewScreenRoot(c.ctx, top, sink)
	if err != nil {
		top.Cleanup()
		return nil, err
	}
	return root, nil
}
