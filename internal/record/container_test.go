package record

import (
	"testing"

	"github.com/harshithgowdakt/batchguard/internal/column"
	"github.com/harshithgowdakt/batchguard/internal/types"
)

func testBlock() *column.Block {
	return column.NewBlock(
		[]string{"id", "name"},
		[]column.Column{
			&column.Int64Column{Data: []int64{1, 2, 3}},
			&column.StringColumn{Data: []string{"a", "b", "c"}},
		},
	)
}

func TestContainerLookups(t *testing.T) {
	c := NewVectorContainer()
	c.LoadBlock(testBlock())
	schema := c.BuildSchema(SVModeNone)

	if c.RecordCount() != 3 || len(schema.Fields) != 2 {
		t.Fatalf("unexpected container: count=%d schema=%s", c.RecordCount(), schema)
	}

	id, ok := c.ValueVectorID("NAME")
	if !ok || id.FieldID != 1 || id.Type != types.TypeString {
		t.Fatalf("unexpected field id: %+v ok=%v", id, ok)
	}
	if _, ok := c.ValueVectorID("missing"); ok {
		t.Fatal("expected missing field lookup to fail")
	}

	w, err := c.VectorByID(0, types.TypeInt64)
	if err != nil {
		t.Fatal(err)
	}
	if w != c.wrappers[0] {
		t.Fatal("VectorByID should return the stored wrapper")
	}
	if _, err := c.VectorByID(0, types.TypeString); err == nil {
		t.Fatal("expected type mismatch error")
	}
	if _, err := c.VectorByID(5, types.TypeInt64); err == nil {
		t.Fatal("expected out of range error")
	}

	var names []string
	for w := range c.Vectors() {
		names = append(names, w.Field().Name)
	}
	if len(names) != 2 || names[0] != "id" || names[1] != "name" {
		t.Fatalf("unexpected vector order: %v", names)
	}
}

func TestSchemaEquals(t *testing.T) {
	a := NewSchemaBuilder().AddField("id", types.TypeInt64).Build()
	b := NewSchemaBuilder().AddField("ID", types.TypeInt64).Build()
	c := NewSchemaBuilder().AddField("id", types.TypeInt64).SetSelectionVectorMode(SVModeTwoByte).Build()
	d := NewSchemaBuilder().AddField("id", types.TypeInt32).Build()

	if !a.Equals(b) {
		t.Fatal("field names should compare case-insensitively")
	}
	if a.Equals(c) || a.Equals(d) || a.Equals(nil) {
		t.Fatal("schemas with different mode or type should differ")
	}
}
