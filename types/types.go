// Package types holds the value types and interfaces shared between the
// esmodel core, the engine clients, and callers. It has no dependencies on
// the rest of the module so that engine implementations can be written
// against it in isolation.
package types

import "context"

// Hit is one raw record returned by a search or multi-get request.
type Hit struct {
	ID      string                 // engine-assigned document id
	Version int64                  // optimistic concurrency token
	Score   float64                // relevance score (0 for multi-get)
	Source  map[string]interface{} // stored field values
}

// SortClause represents a single sort entry in request order.
type SortClause struct {
	Field      string
	Descending bool
}

// SearchRequest is the translated form of a query builder's accumulated
// state, ready to be sent to the engine.
type SearchRequest struct {
	From   int
	Size   int
	Fields []string // field selection; empty means full source
	// Match holds the match criteria. A nil or empty map means match all.
	Match map[string]interface{}
	Sort  []SortClause
}

// SearchResult carries the hits and the total hit count reported by the
// engine. Total may exceed len(Hits) when From/Size windowing applies.
type SearchResult struct {
	Hits  []Hit
	Total int64
}

// WriteResult reports the id and version assigned by the engine after an
// index or update request.
type WriteResult struct {
	ID      string
	Version int64
}

// Engine is the transport-level client contract the core consumes. All
// durable state lives behind this interface; implementations talk to a
// remote search engine (or an in-memory stand-in for tests).
//
// Every method returns at most one of (result, error). Implementations
// must map transport failures to *ConnectionError and version collisions
// on Update to *VersionConflictError so the core can surface them
// unchanged. MultiGet returns only the hits that were found, in request
// order; deciding whether a missing id is an error is the caller's job.
type Engine interface {
	// Index writes the full document body. An empty id asks the engine to
	// assign one; the assigned id and new version are returned.
	Index(ctx context.Context, index, docType, id string, body map[string]interface{}) (WriteResult, error)

	// Update applies a partial document keyed by id, guarded by the given
	// version token.
	Update(ctx context.Context, index, docType, id string, version int64, doc map[string]interface{}) (WriteResult, error)

	// Delete removes the document with the given id.
	Delete(ctx context.Context, index, docType, id string) error

	// Search executes a match query and returns hits in engine order.
	Search(ctx context.Context, index, docType string, req SearchRequest) (SearchResult, error)

	// MultiGet fetches documents by id, preserving request order.
	MultiGet(ctx context.Context, index, docType string, ids []string) ([]Hit, error)
}
