package ops

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/harshithgowdakt/batchguard/internal/logger"
)

func TestFailKeepsFirstCause(t *testing.T) {
	ctx := NewFragmentContext(FragmentHandle{QueryID: uuid.New(), MajorID: 1}, nil, logger.Nop())
	if ctx.Failed() {
		t.Fatal("new context should not be failed")
	}

	first := errors.New("first")
	ctx.Fail(first)
	ctx.Fail(errors.New("second"))

	if !ctx.Failed() || ctx.FailureCause() != first {
		t.Fatalf("expected first cause, got %v", ctx.FailureCause())
	}
	if ctx.Config() == nil {
		t.Fatal("nil config should fall back to defaults")
	}
}
