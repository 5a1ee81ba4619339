// Package engine provides concrete implementations of the types.Engine
// contract: an HTTP client for a remote search engine and a thread-safe
// in-memory engine for tests and dry runs.
package engine

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/esmodel/esmodel/types"
)

// record is one stored document with its version token.
type record struct {
	id      string
	version int64
	fields  map[string]interface{}
	seq     int64 // insertion order, the tiebreak for unsorted searches
}

// Memory is an in-memory engine. Matching is exact-equality per field (a
// simplification of analyzed full-text matching), sort supports strings,
// numbers and RFC3339 dates, and ids are assigned with uuid when the
// caller indexes without one.
type Memory struct {
	mu      sync.RWMutex
	buckets map[string]map[string]*record
	seq     int64
}

// NewMemory creates an empty in-memory engine.
func NewMemory() *Memory {
	return &Memory{buckets: make(map[string]map[string]*record)}
}

func bucketKey(index, docType string) string {
	return index + "/" + docType
}

func (m *Memory) bucket(index, docType string) map[string]*record {
	key := bucketKey(index, docType)
	if m.buckets[key] == nil {
		m.buckets[key] = make(map[string]*record)
	}
	return m.buckets[key]
}

// Index writes the full body, assigning a uuid when id is empty.
func (m *Memory) Index(ctx context.Context, index, docType, id string, body map[string]interface{}) (types.WriteResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	bucket := m.bucket(index, docType)
	if id == "" {
		id = uuid.NewString()
	}
	rec, exists := bucket[id]
	if !exists {
		m.seq++
		rec = &record{id: id, seq: m.seq}
		bucket[id] = rec
	}
	rec.version++
	rec.fields = copyFields(body)
	return types.WriteResult{ID: id, Version: rec.version}, nil
}

// Update merges a partial document, failing on a stale version token.
func (m *Memory) Update(ctx context.Context, index, docType, id string, version int64, doc map[string]interface{}) (types.WriteResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, exists := m.bucket(index, docType)[id]
	if !exists {
		return types.WriteResult{}, &types.NotFoundError{Index: index, ID: id}
	}
	if rec.version != version {
		return types.WriteResult{}, &types.VersionConflictError{Index: index, ID: id, Version: version}
	}
	for k, v := range doc {
		rec.fields[k] = copyValue(v)
	}
	rec.version++
	return types.WriteResult{ID: id, Version: rec.version}, nil
}

// Delete removes by id. Deleting a missing id is not an error, matching
// common engine behavior.
func (m *Memory) Delete(ctx context.Context, index, docType, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.bucket(index, docType), id)
	return nil
}

// Search filters, sorts, and windows the bucket. A nil or empty match
// matches all. Total reports the matched count before From/Size
// windowing; Size 0 means no cap.
func (m *Memory) Search(ctx context.Context, index, docType string, req types.SearchRequest) (types.SearchResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []*record
	for _, rec := range m.bucket(index, docType) {
		if matches(rec.fields, req.Match) {
			matched = append(matched, rec)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		for _, clause := range req.Sort {
			c := compareValues(matched[i].fields[clause.Field], matched[j].fields[clause.Field])
			if c == 0 {
				continue
			}
			if clause.Descending {
				return c > 0
			}
			return c < 0
		}
		return matched[i].seq < matched[j].seq
	})

	total := int64(len(matched))
	if req.From > 0 {
		if req.From >= len(matched) {
			matched = nil
		} else {
			matched = matched[req.From:]
		}
	}
	if req.Size > 0 && req.Size < len(matched) {
		matched = matched[:req.Size]
	}

	hits := make([]types.Hit, len(matched))
	for i, rec := range matched {
		hits[i] = types.Hit{
			ID:      rec.id,
			Version: rec.version,
			Score:   1,
			Source:  selectFields(rec.fields, req.Fields),
		}
	}
	return types.SearchResult{Hits: hits, Total: total}, nil
}

// MultiGet returns the found documents in request order; missing ids are
// simply absent from the result.
func (m *Memory) MultiGet(ctx context.Context, index, docType string, ids []string) ([]types.Hit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	bucket := m.bucket(index, docType)
	var hits []types.Hit
	for _, id := range ids {
		rec, exists := bucket[id]
		if !exists {
			continue
		}
		hits = append(hits, types.Hit{
			ID:      rec.id,
			Version: rec.version,
			Source:  copyFields(rec.fields),
		})
	}
	return hits, nil
}

func matches(fields, match map[string]interface{}) bool {
	for k, want := range match {
		if !valueEqual(fields[k], want) {
			return false
		}
	}
	return true
}

func valueEqual(have, want interface{}) bool {
	if hn, hok := asNumber(have); hok {
		wn, wok := asNumber(want)
		return wok && hn == wn
	}
	if hs, ok := have.(string); ok {
		ws, wok := want.(string)
		return wok && strings.EqualFold(hs, ws)
	}
	return have == want
}

// compareValues orders two field values: numbers numerically, strings
// (including RFC3339 dates) lexically, everything else as incomparable.
func compareValues(a, b interface{}) int {
	if an, aok := asNumber(a); aok {
		bn, bok := asNumber(b)
		if !bok {
			return 0
		}
		switch {
		case an < bn:
			return -1
		case an > bn:
			return 1
		}
		return 0
	}
	as, aok := asString(a)
	bs, bok := asString(b)
	if aok && bok {
		return strings.Compare(as, bs)
	}
	return 0
}

func asNumber(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func asString(v interface{}) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case time.Time:
		return s.Format(time.RFC3339), true
	}
	return "", false
}

func selectFields(fields map[string]interface{}, selection []string) map[string]interface{} {
	if len(selection) == 0 {
		return copyFields(fields)
	}
	out := make(map[string]interface{}, len(selection))
	for _, f := range selection {
		if v, ok := fields[f]; ok {
			out[f] = copyValue(v)
		}
	}
	return out
}

func copyFields(fields map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v interface{}) interface{} {
	switch typed := v.(type) {
	case map[string]interface{}:
		return copyFields(typed)
	case []interface{}:
		out := make([]interface{}, len(typed))
		for i, e := range typed {
			out[i] = copyValue(e)
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
