package record

import (
	"fmt"
	"iter"

	"github.com/harshithgowdakt/batchguard/internal/column"
	"github.com/harshithgowdakt/batchguard/internal/types"
)

// VectorContainer is the ordered set of vectors an operator exposes for its
// current batch.
type VectorContainer struct {
	wrappers    []*VectorWrapper
	schema      *BatchSchema
	recordCount int
}

// NewVectorContainer returns an empty container.
func NewVectorContainer() *VectorContainer {
	return &VectorContainer{}
}

// Add appends a vector and invalidates the schema.
func (c *VectorContainer) Add(name string, col column.Column) *VectorWrapper {
	w := NewVectorWrapper(name, col)
	c.AddWrapper(w)
	return w
}

// AddWrapper appends an existing wrapper and invalidates the schema.
func (c *VectorContainer) AddWrapper(w *VectorWrapper) {
	c.wrappers = append(c.wrappers, w)
	c.schema = nil
}

// LoadBlock replaces the container's vectors with the columns of b.
func (c *VectorContainer) LoadBlock(b *column.Block) {
	c.Clear()
	for i, col := range b.Columns {
		c.Add(b.ColumnNames[i], col)
	}
	c.recordCount = b.NumRows()
}

// BuildSchema derives the schema from the current vectors.
func (c *VectorContainer) BuildSchema(mode SelectionVectorMode) *BatchSchema {
	sb := NewSchemaBuilder().SetSelectionVectorMode(mode)
	for _, w := range c.wrappers {
		sb.AddField(w.field.Name, w.field.Type)
	}
	c.schema = sb.Build()
	return c.schema
}

// Schema returns the last built schema, or nil if vectors changed since.
func (c *VectorContainer) Schema() *BatchSchema { return c.schema }

func (c *VectorContainer) SetRecordCount(n int) { c.recordCount = n }
func (c *VectorContainer) RecordCount() int     { return c.recordCount }

// ValueVectorID looks up a field by path.
func (c *VectorContainer) ValueVectorID(path SchemaPath) (TypedFieldID, bool) {
	for i, w := range c.wrappers {
		if path.Matches(w.field.Name) {
			return TypedFieldID{Type: w.field.Type, FieldID: i, Hyper: w.hyper}, true
		}
	}
	return TypedFieldID{}, false
}

// VectorByID returns the wrapper at id, checking its type.
func (c *VectorContainer) VectorByID(id int, dt types.DataType) (*VectorWrapper, error) {
	if id < 0 || id >= len(c.wrappers) {
		return nil, fmt.Errorf("field id %d out of range [0, %d)", id, len(c.wrappers))
	}
	w := c.wrappers[id]
	if w.field.Type != dt {
		return nil, fmt.Errorf("field %s has type %s, requested %s", w.field.Name, w.field.Type.Name(), dt.Name())
	}
	return w, nil
}

// Vectors iterates the wrappers in field order.
func (c *VectorContainer) Vectors() iter.Seq[*VectorWrapper] {
	wrappers := c.wrappers
	return func(yield func(*VectorWrapper) bool) {
		for _, w := range wrappers {
			if !yield(w) {
				return
			}
		}
	}
}

// Clear drops all vectors.
func (c *VectorContainer) Clear() {
	c.wrappers = nil
	c.schema = nil
	c.recordCount = 0
}
