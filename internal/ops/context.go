// Package ops holds per-fragment execution state shared by every operator
// in one fragment's tree.
package ops

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/harshithgowdakt/batchguard/internal/config"
	"github.com/harshithgowdakt/batchguard/internal/logger"
)

// FragmentHandle identifies one fragment of one query.
type FragmentHandle struct {
	QueryID uuid.UUID
	MajorID int
	MinorID int
}

func (h FragmentHandle) String() string {
	return fmt.Sprintf("%s:%d:%d", h.QueryID, h.MajorID, h.MinorID)
}

// FragmentContext is owned by the goroutine executing the fragment. It is not
// safe for concurrent use.
type FragmentContext struct {
	handle  FragmentHandle
	cfg     *config.Config
	log     zerolog.Logger
	failure error
}

// NewFragmentContext creates a context whose logger carries the fragment's
// identity.
func NewFragmentContext(handle FragmentHandle, cfg *config.Config, log zerolog.Logger) *FragmentContext {
	if cfg == nil {
		cfg = config.Default()
	}
	return &FragmentContext{
		handle: handle,
		cfg:    cfg,
		log: log.With().
			Str(logger.FieldQueryID, handle.QueryID.String()).
			Str(logger.FieldFragment, fmt.Sprintf("%d:%d", handle.MajorID, handle.MinorID)).
			Logger(),
	}
}

func (c *FragmentContext) Handle() FragmentHandle { return c.handle }
func (c *FragmentContext) Config() *config.Config { return c.cfg }
func (c *FragmentContext) Logger() zerolog.Logger { return c.log }

// OperatorLogger returns the fragment logger tagged with an operator name.
func (c *FragmentContext) OperatorLogger(name string) zerolog.Logger {
	return c.log.With().Str(logger.FieldOperator, name).Logger()
}

// Fail records the first failure of the fragment. Later calls are ignored.
func (c *FragmentContext) Fail(err error) {
	if err == nil || c.failure != nil {
		return
	}
	c.failure = err
	c.log.Error().Err(err).Msg("fragment failed")
}

// Failed reports whether Fail has been called.
func (c *FragmentContext) Failed() bool { return c.failure != nil }

// FailureCause returns the error passed to the first Fail call.
func (c *FragmentContext) FailureCause() error { return c.failure }
