package physical

import (
	"fmt"

	"github.com/harshithgowdakt/batchguard/internal/ops"
	"github.com/harshithgowdakt/batchguard/internal/record"
	"github.com/harshithgowdakt/batchguard/internal/record/selection"
)

// ProjectItem selects Column, optionally renamed to Alias.
type ProjectItem struct {
	Column string
	Alias  string
}

func (p ProjectItem) outputName() string {
	if p.Alias != "" {
		return p.Alias
	}
	return p.Column
}

// ProjectBatch selects and renames columns by transferring the input's
// vectors. Input selection vectors are passed through.
type ProjectBatch struct {
	singleInputBatch
	items []ProjectItem
	ids   []record.TypedFieldID
}

// NewProjectBatch creates a projection over incoming.
func NewProjectBatch(ctx *ops.FragmentContext, incoming record.RecordBatch, items []ProjectItem) *ProjectBatch {
	return &ProjectBatch{
		singleInputBatch: newSingleInputBatch(ctx, "project", incoming),
		items:            items,
	}
}

func (p *ProjectBatch) Next() (record.Outcome, error) {
	out, err := p.incoming.Next()
	if err != nil || !out.IsReadable() {
		return out, err
	}
	if out == record.OutcomeOKNewSchema {
		if err := p.resolve(); err != nil {
			return record.OutcomeNone, err
		}
	}

	p.container.Clear()
	for i, item := range p.items {
		w, err := p.incoming.VectorByID(p.ids[i].FieldID, p.ids[i].Type)
		if err != nil {
			return record.OutcomeNone, fmt.Errorf("project: %w", err)
		}
		p.container.AddWrapper(w.Renamed(item.outputName()))
	}
	p.container.BuildSchema(p.incoming.Schema().SVMode)
	p.container.SetRecordCount(p.incoming.RecordCount())
	return out, nil
}

func (p *ProjectBatch) resolve() error {
	p.ids = p.ids[:0]
	for _, item := range p.items {
		id, ok := p.incoming.ValueVectorID(record.SchemaPath(item.Column))
		if !ok {
			return fmt.Errorf("project: column not found: %s", item.Column)
		}
		p.ids = append(p.ids, id)
	}
	return nil
}

func (p *ProjectBatch) SelectionVector2() *selection.SelectionVector2 {
	if p.container.Schema().SVMode != record.SVModeTwoByte {
		return nil
	}
	return p.incoming.SelectionVector2()
}

func (p *ProjectBatch) SelectionVector4() *selection.SelectionVector4 {
	if p.container.Schema().SVMode != record.SVModeFourByte {
		return nil
	}
	return p.incoming.SelectionVector4()
}

func (p *ProjectBatch) WritableBatch() *record.WritableBatch {
	return record.NewWritableBatch(p.container, p.SelectionVector2())
}
