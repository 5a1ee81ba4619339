package esmodel

import (
	"context"
	"fmt"

	"github.com/esmodel/esmodel/schema"
	"github.com/esmodel/esmodel/types"
)

// Document is the in-memory representation of one record backed by an
// index in the remote engine. Field values live in a current map behind
// Get/Set accessors; the original snapshot captured at load time never
// mutates and is the baseline for change tracking.
//
// The mutating verbs (Save, Update, Remove, Populate) are builders: they
// enqueue the operation and return the document for chaining. Exec
// replays the queue sequentially against the engine. A document is owned
// by whichever Query or ResultSet produced it, or by the caller that
// constructed it via Model.New; it is not safe for concurrent use.
type Document struct {
	model    *Model
	id       string
	version  int64
	original map[string]interface{}
	current  map[string]interface{}
	queue    callQueue
}

// ID returns the engine-assigned id, or "" for a document never saved.
func (d *Document) ID() string { return d.id }

// Version returns the optimistic concurrency token from the last load or
// successful write.
func (d *Document) Version() int64 { return d.version }

// Model returns the model this document belongs to.
func (d *Document) Model() *Model { return d.model }

// Get returns a field value. Virtual getters take precedence over stored
// fields; an absent field yields nil.
func (d *Document) Get(field string) interface{} {
	if v, ok := d.model.schema.Virtual(field); ok {
		return v.Get(d)
	}
	return d.current[field]
}

// Set writes a field value into the current map. Virtual setters take
// precedence; a virtual without a setter makes Set a no-op for that name.
// The original snapshot is never touched.
func (d *Document) Set(field string, value interface{}) {
	if v, ok := d.model.schema.Virtual(field); ok {
		if v.Set != nil {
			v.Set(d, value)
		}
		return
	}
	d.current[field] = value
}

// Fields returns a copy of the current field map.
func (d *Document) Fields() map[string]interface{} {
	return deepCopyFields(d.current)
}

// Call invokes a schema-declared instance method by name.
func (d *Document) Call(name string, args ...interface{}) (interface{}, error) {
	m, ok := d.model.schema.Method(name)
	if !ok {
		return nil, fmt.Errorf("model %s has no method %q", d.model.name, name)
	}
	return m(d, args...)
}

// Save enqueues a save and returns the document for chaining.
func (d *Document) Save() *Document {
	d.queue.enqueue("save", d.saveNow)
	return d
}

// Update enqueues a partial update with the given data.
func (d *Document) Update(data map[string]interface{}) *Document {
	d.queue.enqueue("update", func(ctx context.Context) error {
		return d.updateNow(ctx, data)
	})
	return d
}

// Remove enqueues a delete by id.
func (d *Document) Remove() *Document {
	d.queue.enqueue("remove", d.removeNow)
	return d
}

// Populate enqueues reference resolution along the given dotted path.
func (d *Document) Populate(path string) *Document {
	d.queue.enqueue("populate", func(ctx context.Context) error {
		return d.populateNow(ctx, path)
	})
	return d
}

// Exec replays the queued operations strictly in enqueue order. The
// first error aborts the replay; remaining operations are not started.
func (d *Document) Exec(ctx context.Context) error {
	return d.queue.replay(ctx)
}

// Validate checks every schema-declared property against its declared
// type and required flag, in property-name order. The first violation is
// returned as a *types.ValidationError; absence of optional properties is
// not an error. A populated reference (a Document where an id used to
// be) satisfies its declaration.
func (d *Document) Validate() error {
	s := d.model.schema
	for _, name := range s.PropNames() {
		prop, _ := s.Prop(name)
		value, present := d.current[name]
		if !present || value == nil {
			if prop.Required {
				return &types.ValidationError{Model: d.model.name, Property: name, Reason: "required property is absent"}
			}
			continue
		}
		if prop.Ref != "" && isPopulatedValue(value) {
			continue
		}
		if reason := schema.CheckValue(prop.Type, value); reason != "" {
			return &types.ValidationError{Model: d.model.name, Property: name, Reason: reason}
		}
	}
	return nil
}

// saveNow short-circuits when nothing changed, otherwise validates and
// indexes the full current field map (not a delta). The engine-assigned
// id and version are adopted on success; the original snapshot is not.
func (d *Document) saveNow(ctx context.Context) error {
	if !d.HasChanged() {
		return nil
	}
	if err := d.Validate(); err != nil {
		return err
	}
	body := serializeFields(d.current)
	res, err := d.model.registry.engine.Index(ctx, d.model.index, d.model.docType, d.id, body)
	if err != nil {
		return err
	}
	d.id = res.ID
	d.version = res.Version
	return nil
}

// updateNow merges data onto the current fields and issues a partial
// update carrying only the changed fields and the document's version
// token. A version collision surfaces as *types.VersionConflictError and
// is never retried here.
func (d *Document) updateNow(ctx context.Context, data map[string]interface{}) error {
	if d.id == "" {
		return &types.MissingIdentifierError{Op: "update"}
	}
	for k, v := range data {
		d.current[k] = deepCopyValue(v)
	}
	changes := d.Diff()
	if len(changes) == 0 {
		return nil
	}
	if err := d.Validate(); err != nil {
		return err
	}
	partial := make(map[string]interface{}, len(changes))
	for _, c := range changes {
		partial[c.Field] = serializeValue(c.After)
	}
	res, err := d.model.registry.engine.Update(ctx, d.model.index, d.model.docType, d.id, d.version, partial)
	if err != nil {
		return err
	}
	d.version = res.Version
	return nil
}

// removeNow deletes by the index/type/id triple.
func (d *Document) removeNow(ctx context.Context) error {
	if d.id == "" {
		return &types.MissingIdentifierError{Op: "remove"}
	}
	return d.model.registry.engine.Delete(ctx, d.model.index, d.model.docType, d.id)
}

// deepCopyFields deep-copies a field map so snapshots and working copies
// never alias nested maps or slices.
func deepCopyFields(fields map[string]interface{}) map[string]interface{} {
	if fields == nil {
		return map[string]interface{}{}
	}
	out := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v interface{}) interface{} {
	switch typed := v.(type) {
	case map[string]interface{}:
		return deepCopyFields(typed)
	case []interface{}:
		out := make([]interface{}, len(typed))
		for i, e := range typed {
			out[i] = deepCopyValue(e)
		}
		return out
	case []string:
		out := make([]string, len(typed))
		copy(out, typed)
		return out
	default:
		return v
	}
}

// serializeFields prepares a field map for the wire: populated references
// collapse back to their stored ids so the index never receives expanded
// documents.
func serializeFields(fields map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		out[k] = serializeValue(v)
	}
	return out
}

func serializeValue(v interface{}) interface{} {
	switch typed := v.(type) {
	case *Document:
		return typed.id
	case map[string]interface{}:
		return serializeFields(typed)
	case []interface{}:
		out := make([]interface{}, len(typed))
		for i, e := range typed {
			out[i] = serializeValue(e)
		}
		return out
	default:
		return deepCopyValue(v)
	}
}

// isPopulatedValue reports whether a reference field currently holds
// fetched documents rather than ids.
func isPopulatedValue(v interface{}) bool {
	switch typed := v.(type) {
	case *Document:
		return true
	case []interface{}:
		for _, e := range typed {
			if _, ok := e.(*Document); ok {
				return true
			}
		}
	}
	return false
}
