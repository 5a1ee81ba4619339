package testutil

import (
	"context"
	"sync"

	"github.com/esmodel/esmodel/types"
)

// EngineCall records one engine invocation for later inspection.
type EngineCall struct {
	Op     string // "index", "update", "delete", "search", "multiget"
	Index  string
	ID     string
	IDs    []string
	Body   map[string]interface{}
	Search types.SearchRequest
}

// RecordingEngine wraps an engine and records every call, optionally
// injecting a failure. Tests use it to assert how many requests an
// operation issued and what they carried.
type RecordingEngine struct {
	Inner types.Engine

	mu    sync.Mutex
	calls []EngineCall

	// Fail, when set, is returned by every subsequent call instead of
	// delegating to Inner.
	Fail error
	// FailOp restricts Fail to one operation name; empty fails all.
	FailOp string
}

// NewRecordingEngine wraps inner.
func NewRecordingEngine(inner types.Engine) *RecordingEngine {
	return &RecordingEngine{Inner: inner}
}

// Calls returns a snapshot of the recorded calls in invocation order.
func (r *RecordingEngine) Calls() []EngineCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]EngineCall(nil), r.calls...)
}

// CallsTo returns only the recorded calls for one operation.
func (r *RecordingEngine) CallsTo(op string) []EngineCall {
	var out []EngineCall
	for _, c := range r.Calls() {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// Reset clears the recorded calls.
func (r *RecordingEngine) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}

func (r *RecordingEngine) record(c EngineCall) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, c)
	if r.Fail != nil && (r.FailOp == "" || r.FailOp == c.Op) {
		return r.Fail
	}
	return nil
}

func (r *RecordingEngine) Index(ctx context.Context, index, docType, id string, body map[string]interface{}) (types.WriteResult, error) {
	if err := r.record(EngineCall{Op: "index", Index: index, ID: id, Body: body}); err != nil {
		return types.WriteResult{}, err
	}
	return r.Inner.Index(ctx, index, docType, id, body)
}

func (r *RecordingEngine) Update(ctx context.Context, index, docType, id string, version int64, doc map[string]interface{}) (types.WriteResult, error) {
	if err := r.record(EngineCall{Op: "update", Index: index, ID: id, Body: doc}); err != nil {
		return types.WriteResult{}, err
	}
	return r.Inner.Update(ctx, index, docType, id, version, doc)
}

func (r *RecordingEngine) Delete(ctx context.Context, index, docType, id string) error {
	if err := r.record(EngineCall{Op: "delete", Index: index, ID: id}); err != nil {
		return err
	}
	return r.Inner.Delete(ctx, index, docType, id)
}

func (r *RecordingEngine) Search(ctx context.Context, index, docType string, req types.SearchRequest) (types.SearchResult, error) {
	if err := r.record(EngineCall{Op: "search", Index: index, Search: req}); err != nil {
		return types.SearchResult{}, err
	}
	return r.Inner.Search(ctx, index, docType, req)
}

func (r *RecordingEngine) MultiGet(ctx context.Context, index, docType string, ids []string) ([]types.Hit, error) {
	if err := r.record(EngineCall{Op: "multiget", Index: index, IDs: ids}); err != nil {
		return nil, err
	}
	return r.Inner.MultiGet(ctx, index, docType, ids)
}
