package column

import "fmt"

// Block is a chunk of columnar data with named columns, all the same length.
// Blocks are what sources hand to the record layer; operators see them only
// through value vectors.
type Block struct {
	ColumnNames []string
	Columns     []Column
}

// NewBlock creates a block from parallel slices of names and columns.
func NewBlock(names []string, cols []Column) *Block {
	return &Block{ColumnNames: names, Columns: cols}
}

// NumRows returns the number of rows in the block.
func (b *Block) NumRows() int {
	if len(b.Columns) == 0 {
		return 0
	}
	return b.Columns[0].Len()
}

// Validate checks that names and columns line up and all columns have the
// same length.
func (b *Block) Validate() error {
	if len(b.ColumnNames) != len(b.Columns) {
		return fmt.Errorf("block has %d names for %d columns", len(b.ColumnNames), len(b.Columns))
	}
	n := b.NumRows()
	for i, c := range b.Columns {
		if c.Len() != n {
			return fmt.Errorf("column %s has %d rows, expected %d", b.ColumnNames[i], c.Len(), n)
		}
	}
	return nil
}
