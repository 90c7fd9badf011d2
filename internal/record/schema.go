package record

import (
	"fmt"
	"strings"

	"github.com/harshithgowdakt/batchguard/internal/types"
)

// SchemaPath names a top-level field. Matching is case-insensitive.
type SchemaPath string

// Matches reports whether p names the same field as name.
func (p SchemaPath) Matches(name string) bool {
	return strings.EqualFold(string(p), name)
}

// MaterializedField is a named, typed field of a batch.
type MaterializedField struct {
	Name string
	Type types.DataType
}

func (f MaterializedField) String() string {
	return fmt.Sprintf("%s(%s)", f.Name, f.Type.Name())
}

// SelectionVectorMode tells consumers how rows of a batch are addressed.
type SelectionVectorMode uint8

const (
	SVModeNone SelectionVectorMode = iota
	SVModeTwoByte
	SVModeFourByte
)

func (m SelectionVectorMode) String() string {
	switch m {
	case SVModeNone:
		return "NONE"
	case SVModeTwoByte:
		return "TWO_BYTE"
	case SVModeFourByte:
		return "FOUR_BYTE"
	default:
		return fmt.Sprintf("SelectionVectorMode(%d)", uint8(m))
	}
}

// BatchSchema describes the fields of a batch and its selection vector mode.
type BatchSchema struct {
	Fields []MaterializedField
	SVMode SelectionVectorMode
}

// Field returns the index of the field matching path.
func (s *BatchSchema) Field(path SchemaPath) (int, bool) {
	for i, f := range s.Fields {
		if path.Matches(f.Name) {
			return i, true
		}
	}
	return -1, false
}

// Equals compares field names, types and selection vector mode.
func (s *BatchSchema) Equals(other *BatchSchema) bool {
	if s == nil || other == nil {
		return s == other
	}
	if s.SVMode != other.SVMode || len(s.Fields) != len(other.Fields) {
		return false
	}
	for i, f := range s.Fields {
		o := other.Fields[i]
		if f.Type != o.Type || !strings.EqualFold(f.Name, o.Name) {
			return false
		}
	}
	return true
}

func (s *BatchSchema) String() string {
	parts := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		parts[i] = f.String()
	}
	return fmt.Sprintf("BatchSchema[%s, sv=%s]", strings.Join(parts, ", "), s.SVMode)
}

// SchemaBuilder accumulates fields for a BatchSchema.
type SchemaBuilder struct {
	fields []MaterializedField
	mode   SelectionVectorMode
}

// NewSchemaBuilder returns an empty builder.
func NewSchemaBuilder() *SchemaBuilder { return &SchemaBuilder{} }

// AddField appends a field.
func (b *SchemaBuilder) AddField(name string, dt types.DataType) *SchemaBuilder {
	b.fields = append(b.fields, MaterializedField{Name: name, Type: dt})
	return b
}

// SetSelectionVectorMode sets the mode of the built schema.
func (b *SchemaBuilder) SetSelectionVectorMode(mode SelectionVectorMode) *SchemaBuilder {
	b.mode = mode
	return b
}

// Build returns the schema.
func (b *SchemaBuilder) Build() *BatchSchema {
	fields := make([]MaterializedField, len(b.fields))
	copy(fields, b.fields)
	return &BatchSchema{Fields: fields, SVMode: b.mode}
}
