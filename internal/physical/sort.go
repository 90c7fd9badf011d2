package physical

import (
	"fmt"
	"slices"

	"github.com/harshithgowdakt/batchguard/internal/column"
	"github.com/harshithgowdakt/batchguard/internal/ops"
	"github.com/harshithgowdakt/batchguard/internal/record"
	"github.com/harshithgowdakt/batchguard/internal/record/selection"
	"github.com/harshithgowdakt/batchguard/internal/types"
)

// SortKey orders by Column, descending when Desc is set.
type SortKey struct {
	Column string
	Desc   bool
}

// SortBatch drains its input into a hyper batch and emits it once, ordered
// by a SelectionVector4. Rows are not copied except to drop an input
// SelectionVector2.
type SortBatch struct {
	singleInputBatch
	keys []SortKey
	sv4  *selection.SelectionVector4
	done bool
}

// NewSortBatch creates a sort over incoming.
func NewSortBatch(ctx *ops.FragmentContext, incoming record.RecordBatch, keys []SortKey) *SortBatch {
	return &SortBatch{
		singleInputBatch: newSingleInputBatch(ctx, "sort", incoming),
		keys:             keys,
		sv4:              selection.NewSelectionVector4(0),
	}
}

func (s *SortBatch) Next() (record.Outcome, error) {
	if s.done {
		return record.OutcomeNone, nil
	}
	s.done = true

	var (
		fields  []record.MaterializedField
		batches [][]column.Column // [field][batch]
		total   int
	)
	for {
		out, err := s.incoming.Next()
		if err != nil {
			return out, err
		}
		if out == record.OutcomeNone {
			break
		}
		if fields == nil && out != record.OutcomeOKNewSchema {
			return record.OutcomeNone, fmt.Errorf("sort: %s before first schema", out)
		}
		if out == record.OutcomeOKNewSchema {
			schema := s.incoming.Schema()
			if fields != nil && !sameFields(fields, schema.Fields) {
				return record.OutcomeNone, fmt.Errorf("sort: schema change from %v to %s not supported", fields, schema)
			}
			if fields == nil {
				fields = slices.Clone(schema.Fields)
				batches = make([][]column.Column, len(fields))
			}
		}

		cols, err := s.materialize()
		if err != nil {
			return record.OutcomeNone, err
		}
		if len(batches) > 0 && len(batches[0]) >= selection.MaxBatchRows {
			return record.OutcomeNone, fmt.Errorf("sort: more than %d input batches", selection.MaxBatchRows)
		}
		for i, c := range cols {
			batches[i] = append(batches[i], c)
		}
		total += s.incoming.RecordCount()
	}

	if total == 0 {
		return record.OutcomeNone, nil
	}

	s.container.Clear()
	for i, f := range fields {
		s.container.AddWrapper(record.NewHyperVectorWrapper(f, batches[i]))
	}
	if err := s.order(batches, fields, total); err != nil {
		return record.OutcomeNone, err
	}
	s.container.BuildSchema(record.SVModeFourByte)
	s.container.SetRecordCount(total)
	return record.OutcomeOKNewSchema, nil
}

// materialize returns the current input batch's vectors, gathering the rows
// of an input SelectionVector2.
func (s *SortBatch) materialize() ([]column.Column, error) {
	mode := s.incoming.Schema().SVMode
	if mode == record.SVModeFourByte {
		return nil, fmt.Errorf("sort: input selection vector mode %s not supported", mode)
	}
	var rows []int
	if mode == record.SVModeTwoByte {
		rows = s.incoming.SelectionVector2().Indexes()
	}

	var cols []column.Column
	for w := range s.incoming.Vectors() {
		if rows != nil {
			cols = append(cols, w.Value().Gather(rows))
		} else {
			cols = append(cols, w.Value())
		}
	}
	return cols, nil
}

func (s *SortBatch) order(batches [][]column.Column, fields []record.MaterializedField, total int) error {
	type key struct {
		field int
		dt    types.DataType
		desc  bool
	}
	keys := make([]key, len(s.keys))
	for i, k := range s.keys {
		idx := slices.IndexFunc(fields, func(f record.MaterializedField) bool {
			return record.SchemaPath(k.Column).Matches(f.Name)
		})
		if idx < 0 {
			return fmt.Errorf("sort: column not found: %s", k.Column)
		}
		keys[i] = key{field: idx, dt: fields[idx].Type, desc: k.Desc}
	}

	s.sv4 = selection.NewSelectionVector4(total)
	for b, c := range batches[0] {
		for r := 0; r < c.Len(); r++ {
			s.sv4.Append(b, r)
		}
	}

	slices.SortStableFunc(s.sv4.Entries(), func(a, z uint32) int {
		for _, k := range keys {
			va := batches[k.field][a>>16].Value(int(a & 0xffff))
			vz := batches[k.field][z>>16].Value(int(z & 0xffff))
			if cmp := types.CompareValues(k.dt, va, vz); cmp != 0 {
				if k.desc {
					return -cmp
				}
				return cmp
			}
		}
		return 0
	})
	return nil
}

func (s *SortBatch) SelectionVector4() *selection.SelectionVector4 { return s.sv4 }

func sameFields(a, b []record.MaterializedField) bool {
	return (&record.BatchSchema{Fields: a}).Equals(&record.BatchSchema{Fields: b})
}
