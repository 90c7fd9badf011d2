package fragment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/harshithgowdakt/batchguard/internal/config"
	"github.com/harshithgowdakt/batchguard/internal/logger"
	"github.com/harshithgowdakt/batchguard/internal/ops"
	"github.com/harshithgowdakt/batchguard/internal/physical"
)

// Plan is the operator chain of one fragment, source first.
type Plan struct {
	MajorID int
	MinorID int
	Specs   []physical.OperatorSpec
}

// Result reports how one fragment ended.
type Result struct {
	Handle ops.FragmentHandle
	Stats  physical.ScreenStats
	Err    error
}

// Runner executes the fragments of a query concurrently. The first failing
// fragment cancels the others.
type Runner struct {
	cfg  *config.Config
	log  zerolog.Logger
	sink physical.Sink
}

func NewRunner(cfg *config.Config, log zerolog.Logger, sink physical.Sink) *Runner {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Runner{cfg: cfg, log: log, sink: sink}
}

// Run executes plans under a new query id. Results are in plan order; the
// returned error is the first fragment failure.
func (r *Runner) Run(ctx context.Context, plans []Plan) (uuid.UUID, []Result, error) {
	queryID := uuid.New()
	results := make([]Result, len(plans))

	g, gctx := errgroup.WithContext(ctx)
	if n := r.cfg.Exec.Parallelism; n > 0 {
		g.SetLimit(n)
	}

	r.log.Info().
		Str(logger.FieldQueryID, queryID.String()).
		Int("fragments", len(plans)).
		Bool("validate_iterators", r.cfg.Exec.Debug.ValidateIterators).
		Msg("running query")

	for i, plan := range plans {
		handle := ops.FragmentHandle{QueryID: queryID, MajorID: plan.MajorID, MinorID: plan.MinorID}
		results[i].Handle = handle
		g.Go(func() error {
			stats, err := r.runFragment(gctx, handle, plan)
			results[i].Stats = stats
			results[i].Err = err
			return err
		})
	}

	err := g.Wait()
	return queryID, results, err
}

func (r *Runner) runFragment(ctx context.Context, handle ops.FragmentHandle, plan Plan) (physical.ScreenStats, error) {
	fctx := ops.NewFragmentContext(handle, r.cfg, r.log)
	root, err := physical.NewCreator(fctx).BuildRoot(plan.Specs, r.sink)
	if err != nil {
		fctx.Fail(err)
		return physical.ScreenStats{}, fmt.Errorf("fragment %s: %w", handle, err)
	}
	err = NewExecutor(fctx, root).Run(ctx)
	// The first recorded failure wins over whatever cleanup reported later.
	if fctx.Failed() {
		err = fctx.FailureCause()
	}
	if err != nil {
		return root.Stats(), fmt.Errorf("fragment %s: %w", handle, err)
	}
	return root.Stats(), nil
}
