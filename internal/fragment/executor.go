// Package fragment runs fragments: one operator tree per fragment, each on
// its own goroutine.
package fragment

import (
	"context"
	"fmt"

	"github.com/harshithgowdakt/batchguard/internal/ops"
	"github.com/harshithgowdakt/batchguard/internal/physical"
	"github.com/harshithgowdakt/batchguard/internal/validate"
)

// Executor drives one fragment's root until it is exhausted, fails or is
// cancelled. The tree is always cleaned up when Run returns.
type Executor struct {
	fctx *ops.FragmentContext
	root physical.RootExec
}

func NewExecutor(fctx *ops.FragmentContext, root physical.RootExec) *Executor {
	return &Executor{fctx: fctx, root: root}
}

// Run pulls batches through the root on the calling goroutine. Panics raised
// by operators, protocol violations included, fail the fragment and are
// returned as its error.
func (e *Executor) Run(ctx context.Context) (err error) {
	log := e.fctx.Logger()
	log.Debug().Msg("fragment started")

	defer func() {
		if r := recover(); r != nil {
			if v, ok := validate.AsViolation(r); ok {
				err = v
			} else {
				err = fmt.Errorf("fragment %s panicked: %v", e.fctx.Handle(), r)
			}
			e.fctx.Fail(err)
		}
		e.cleanup()
		if err == nil {
			log.Debug().Msg("fragment finished")
		}
	}()

	for {
		if cerr := ctx.Err(); cerr != nil {
			log.Info().Err(cerr).Msg("fragment cancelled")
			e.root.Kill()
			e.fctx.Fail(cerr)
			return cerr
		}
		more, err := e.root.Next()
		if err != nil {
			e.fctx.Fail(err)
			return err
		}
		if !more {
			return nil
		}
	}
}

// cleanup must not let a panic in an operator's Cleanup escape Run.
func (e *Executor) cleanup() {
	defer func() {
		if r := recover(); r != nil {
			lg := e.fctx.Logger()
			lg.Error().Interface("panic", r).Msg("cleanup panicked")
		}
	}()
	e.root.Cleanup()
}
