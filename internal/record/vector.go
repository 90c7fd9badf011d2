package record

import (
	"fmt"

	"github.com/harshithgowdakt/batchguard/internal/column"
	"github.com/harshithgowdakt/batchguard/internal/types"
)

// TypedFieldID locates a vector inside a batch.
type TypedFieldID struct {
	Type    types.DataType
	FieldID int
	Hyper   bool
}

// VectorWrapper exposes one field of a batch. A hyper wrapper holds one
// vector per batch of a hyper batch and is addressed through a
// SelectionVector4.
type VectorWrapper struct {
	field   MaterializedField
	vectors []column.Column
	hyper   bool
}

// NewVectorWrapper wraps a single vector.
func NewVectorWrapper(name string, col column.Column) *VectorWrapper {
	return &VectorWrapper{
		field:   MaterializedField{Name: name, Type: col.DataType()},
		vectors: []column.Column{col},
	}
}

// NewHyperVectorWrapper wraps one vector per batch.
func NewHyperVectorWrapper(field MaterializedField, cols []column.Column) *VectorWrapper {
	return &VectorWrapper{field: field, vectors: cols, hyper: true}
}

func (w *VectorWrapper) Field() MaterializedField { return w.field }
func (w *VectorWrapper) IsHyper() bool            { return w.hyper }

// Value returns the vector of a non-hyper wrapper.
func (w *VectorWrapper) Value() column.Column {
	if w.hyper {
		panic(fmt.Sprintf("vector %s is a hyper vector; use Values", w.field.Name))
	}
	return w.vectors[0]
}

// Values returns all vectors of the wrapper.
func (w *VectorWrapper) Values() []column.Column { return w.vectors }

// Renamed returns a wrapper sharing the same vectors under a new name.
func (w *VectorWrapper) Renamed(name string) *VectorWrapper {
	return &VectorWrapper{
		field:   MaterializedField{Name: name, Type: w.field.Type},
		vectors: w.vectors,
		hyper:   w.hyper,
	}
}
