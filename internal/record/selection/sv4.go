package selection

import "fmt"

// SelectionVector4 selects rows across the batches of a hyper batch. Each
// entry packs the batch index in the high 16 bits and the row in the low 16.
type SelectionVector4 struct {
	entries []uint32
}

// NewSelectionVector4 creates an empty vector with room for capacity rows.
func NewSelectionVector4(capacity int) *SelectionVector4 {
	return &SelectionVector4{entries: make([]uint32, 0, capacity)}
}

// Compose packs a (batch, row) pair.
func Compose(batch, row int) uint32 {
	if batch < 0 || batch >= MaxBatchRows || row < 0 || row >= MaxBatchRows {
		panic(fmt.Sprintf("selection vector 4 address (%d, %d) out of range", batch, row))
	}
	return uint32(batch)<<16 | uint32(row)
}

// Append selects row of batch.
func (sv *SelectionVector4) Append(batch, row int) {
	sv.entries = append(sv.entries, Compose(batch, row))
}

// Count returns the number of selected rows.
func (sv *SelectionVector4) Count() int { return len(sv.entries) }

// BatchIndex returns the batch addressed at position i.
func (sv *SelectionVector4) BatchIndex(i int) int { return int(sv.entries[i] >> 16) }

// RecordIndex returns the row addressed at position i.
func (sv *SelectionVector4) RecordIndex(i int) int { return int(sv.entries[i] & 0xffff) }

// Entries exposes the packed entries so callers can reorder them in place.
func (sv *SelectionVector4) Entries() []uint32 { return sv.entries }
