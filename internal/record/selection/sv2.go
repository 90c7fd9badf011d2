// Package selection implements selection vectors: index lists that select
// and reorder rows of a batch without copying its vectors.
package selection

import "fmt"

// MaxBatchRows is the largest batch a SelectionVector2 can address.
const MaxBatchRows = 1 << 16

// SelectionVector2 selects rows of a single batch by 16-bit row index.
type SelectionVector2 struct {
	indexes []uint16
}

// NewSelectionVector2 creates an empty vector with room for capacity rows.
func NewSelectionVector2(capacity int) *SelectionVector2 {
	return &SelectionVector2{indexes: make([]uint16, 0, capacity)}
}

// Append selects row.
func (sv *SelectionVector2) Append(row int) {
	if row < 0 || row >= MaxBatchRows {
		panic(fmt.Sprintf("selection vector 2 row index %d out of range", row))
	}
	sv.indexes = append(sv.indexes, uint16(row))
}

// Count returns the number of selected rows.
func (sv *SelectionVector2) Count() int { return len(sv.indexes) }

// Index returns the row selected at position i.
func (sv *SelectionVector2) Index(i int) int { return int(sv.indexes[i]) }

// Indexes returns the selected rows as ints, in selection order.
func (sv *SelectionVector2) Indexes() []int {
	out := make([]int, len(sv.indexes))
	for i, idx := range sv.indexes {
		out[i] = int(idx)
	}
	return out
}

// Raw exposes the underlying index slice.
func (sv *SelectionVector2) Raw() []uint16 { return sv.indexes }

// Truncate keeps positions [from, to).
func (sv *SelectionVector2) Truncate(from, to int) {
	sv.indexes = sv.indexes[from:to]
}
