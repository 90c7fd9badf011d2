package validate

import (
	"github.com/rs/zerolog"

	"github.com/harshithgowdakt/batchguard/internal/logger"
	"github.com/harshithgowdakt/batchguard/internal/record"
)

// Injector wraps operator outputs in validators when enabled. A disabled
// injector returns batches untouched.
type Injector struct {
	enabled bool
	log     zerolog.Logger
}

// NewInjector creates an injector; log is narrowed per wrapped operator.
func NewInjector(enabled bool, log zerolog.Logger) *Injector {
	return &Injector{enabled: enabled, log: log}
}

// Enabled reports whether Wrap inserts validators.
func (i *Injector) Enabled() bool { return i.enabled }

// Wrap returns b guarded by a validator, or b itself when disabled.
func (i *Injector) Wrap(operator string, b record.RecordBatch) record.RecordBatch {
	if !i.enabled {
		return b
	}
	if _, ok := b.(*IteratorValidator); ok {
		return b
	}
	return NewIteratorValidator(b, i.log.With().Str(logger.FieldOperator, operator).Logger())
}
