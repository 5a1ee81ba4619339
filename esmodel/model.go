package esmodel

import (
	"context"
	"fmt"

	"github.com/esmodel/esmodel/schema"
	"github.com/esmodel/esmodel/types"
)

// Model binds a compiled schema to an index/type pair on the registry's
// engine. Models are obtained from Registry.Register or Registry.Model
// and are safe for concurrent use; all per-request state lives in the
// Query, Document and ResultSet values they hand out.
type Model struct {
	name     string
	index    string
	docType  string
	schema   *schema.Schema
	registry *Registry
}

func (m *Model) Name() string           { return m.name }
func (m *Model) Index() string          { return m.index }
func (m *Model) DocType() string        { return m.docType }
func (m *Model) Schema() *schema.Schema { return m.schema }

// New constructs a fresh document owned by the caller. Declared defaults
// are applied to the current field map; the original snapshot is left
// empty so the first Save always writes.
func (m *Model) New(fields map[string]interface{}) *Document {
	current := make(map[string]interface{}, len(fields))
	for _, name := range m.schema.PropNames() {
		prop, _ := m.schema.Prop(name)
		if prop.Default != nil {
			current[name] = deepCopyValue(prop.Default)
		}
	}
	for k, v := range fields {
		current[k] = deepCopyValue(v)
	}
	return &Document{model: m, current: current}
}

// hydrate wraps one raw hit into a Document. The original snapshot and
// the current field map start as independent deep copies of the source,
// so later Sets never reach back into the snapshot.
func (m *Model) hydrate(hit types.Hit) *Document {
	return &Document{
		model:    m,
		id:       hit.ID,
		version:  hit.Version,
		original: deepCopyFields(hit.Source),
		current:  deepCopyFields(hit.Source),
	}
}

// Find starts a query over this model's index. A nil criteria means
// match all. The returned builder performs no I/O until Exec.
func (m *Model) Find(criteria map[string]interface{}) *Query {
	return &Query{model: m, criteria: criteria}
}

// FindOne is Find constrained to a single-document result: Exec resolves
// to the first hit or nil, never a collection.
func (m *Model) FindOne(criteria map[string]interface{}) *Query {
	q := m.Find(criteria)
	q.opts.forceSingle = true
	return q
}

// FindByID is shorthand for FindOne on a scalar id criteria.
func (m *Model) FindByID(id string) *Query {
	return m.FindOne(map[string]interface{}{"id": id})
}

// Count starts a count-only query: Exec resolves to an integer total,
// never a collection, regardless of lean or populate settings.
func (m *Model) Count(criteria map[string]interface{}) *Query {
	q := m.Find(criteria)
	q.opts.countOnly = true
	return q
}

// Static invokes a schema-declared static method by name.
func (m *Model) Static(name string, args ...interface{}) (interface{}, error) {
	st, ok := m.schema.Static(name)
	if !ok {
		return nil, fmt.Errorf("model %s has no static %q", m.name, name)
	}
	return st(args...)
}

// fetchByIDs runs the multi-get path for this model. Ids are always a
// flat slice here; callers coerce scalar ids into one-element slices.
func (m *Model) fetchByIDs(ctx context.Context, ids []string) ([]types.Hit, error) {
	return m.registry.engine.MultiGet(ctx, m.index, m.docType, ids)
}

// defaultSelection returns the field selection implied by the schema when
// the caller did not select explicitly: nil (full source) unless some
// properties are hidden, in which case all non-hidden properties.
func (m *Model) defaultSelection() []string {
	var hidden bool
	for _, name := range m.schema.PropNames() {
		if prop, _ := m.schema.Prop(name); prop.Hidden {
			hidden = true
			break
		}
	}
	if !hidden {
		return nil
	}
	var fields []string
	for _, name := range m.schema.PropNames() {
		if prop, _ := m.schema.Prop(name); !prop.Hidden {
			fields = append(fields, name)
		}
	}
	return fields
}
