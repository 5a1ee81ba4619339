package esmodel

import (
	"reflect"
	"sort"
)

// FieldChange records one field-level difference between a document's
// original snapshot and its current values.
type FieldChange struct {
	Field  string
	Before interface{} // nil when the field was absent from the snapshot
	After  interface{} // nil when the field was removed
}

// diffFields computes the ordered change set between two field maps.
// Order is by field name so the result is deterministic regardless of map
// iteration. Value comparison is deep: nested maps and slices count as
// changed only when their contents differ.
func diffFields(original, current map[string]interface{}) []FieldChange {
	seen := make(map[string]bool, len(original)+len(current))
	fields := make([]string, 0, len(original)+len(current))
	for f := range original {
		if !seen[f] {
			seen[f] = true
			fields = append(fields, f)
		}
	}
	for f := range current {
		if !seen[f] {
			seen[f] = true
			fields = append(fields, f)
		}
	}
	sort.Strings(fields)

	var changes []FieldChange
	for _, f := range fields {
		before, inOriginal := original[f]
		after, inCurrent := current[f]
		if inOriginal && inCurrent && reflect.DeepEqual(before, after) {
			continue
		}
		if !inOriginal && !inCurrent {
			continue
		}
		changes = append(changes, FieldChange{Field: f, Before: before, After: after})
	}
	return changes
}

// Diff returns the ordered field-level changes between this document's
// original snapshot and its current values. Current values are compared
// in their wire form, so a populated reference that still points at the
// id in the snapshot does not count as a change. A document constructed
// fresh via Model.New has an empty snapshot, so every field it carries
// counts as changed until it is first written and reloaded.
func (d *Document) Diff() []FieldChange {
	return diffFields(d.original, serializeFields(d.current))
}

// HasChanged reports whether Diff would return any changes.
func (d *Document) HasChanged() bool {
	return len(d.Diff()) > 0
}
