package esmodel

import (
	"context"
	"fmt"

	"github.com/esmodel/esmodel/types"
)

// queryOptions is the builder state accumulated by the chain methods. It
// is snapshotted conceptually at Exec: the translation reads it once and
// the request is built from that read.
type queryOptions struct {
	skip        int
	limit       int
	fields      []string
	sort        []types.SortClause
	lean        bool
	populate    string
	countOnly   bool
	forceSingle bool
}

// Query accumulates search options and a match criteria, then translates
// them into one engine request on Exec. Chain methods mutate exactly one
// option and return the builder; none of them perform I/O.
type Query struct {
	model    *Model
	criteria map[string]interface{}
	opts     queryOptions
}

// Sort appends a sort clause. direction accepts "asc", "desc",
// "descending", -1, 1, or a bool (true = descending); anything else
// sorts ascending.
func (q *Query) Sort(field string, direction interface{}) *Query {
	q.opts.sort = append(q.opts.sort, types.SortClause{
		Field:      field,
		Descending: descending(direction),
	})
	return q
}

// Limit caps the number of hits requested. Zero leaves the engine's
// default page size in effect.
func (q *Query) Limit(n int) *Query {
	q.opts.limit = n
	return q
}

// Skip offsets into the hit window.
func (q *Query) Skip(n int) *Query {
	q.opts.skip = n
	return q
}

// Select restricts the fields fetched for each hit. Without it, the
// schema's non-hidden properties are fetched.
func (q *Query) Select(fields ...string) *Query {
	q.opts.fields = fields
	return q
}

// Lean makes Exec return raw hits without Document wrapping. Requesting
// population overrides lean, since populate needs documents to mutate.
func (q *Query) Lean() *Query {
	q.opts.lean = true
	return q
}

// Populate asks for reference resolution along the dotted path after the
// hits come back.
func (q *Query) Populate(path string) *Query {
	q.opts.populate = path
	return q
}

// Count collapses the result to the total hit count.
func (q *Query) Count() *Query {
	q.opts.countOnly = true
	return q
}

// Result is the shape-collapsed outcome of a query: exactly one of the
// count, single-document, collection, or lean forms is meaningful,
// reported by IsCount / Single.
type Result struct {
	// IsCount is set for count queries; Count holds the total.
	IsCount bool
	Count   int64

	// Single is set when the criteria's id was a scalar string or the
	// query was built by FindOne; Doc is the first hit or nil.
	Single bool
	Doc    *Document

	// Set holds the wrapped collection for non-lean, non-count queries.
	Set *ResultSet

	// Hits holds the untouched raw hits in lean mode.
	Hits []types.Hit
	// Hit is the first raw hit (or nil) for single lean queries.
	Hit *types.Hit
}

// Exec translates the accumulated state into an engine request and
// collapses the response. Criteria with an id field take the multi-get
// path; everything else becomes a search request. A nil criteria matches
// all documents. Transport and engine errors are forwarded without retry.
func (q *Query) Exec(ctx context.Context) (*Result, error) {
	opts := q.opts

	idValue, hasID := criteriaID(q.criteria)
	single := opts.forceSingle
	if _, isScalar := idValue.(string); isScalar {
		single = true
	}

	var hits []types.Hit
	var total int64
	var err error

	if hasID {
		var ids []string
		ids, err = coerceIDs(idValue)
		if err != nil {
			return nil, err
		}
		hits, err = q.model.fetchByIDs(ctx, ids)
		total = int64(len(hits))
	} else {
		req := types.SearchRequest{
			From:   opts.skip,
			Size:   opts.limit,
			Fields: opts.fields,
			Match:  q.criteria,
			Sort:   opts.sort,
		}
		if req.Fields == nil {
			req.Fields = q.model.defaultSelection()
		}
		var res types.SearchResult
		res, err = q.model.registry.engine.Search(ctx, q.model.index, q.model.docType, req)
		hits, total = res.Hits, res.Total
	}
	if err != nil {
		return nil, err
	}

	// Count collapses first and is never single, regardless of how the
	// criteria looked.
	if opts.countOnly {
		return &Result{IsCount: true, Count: total}, nil
	}

	// Lean mode bypasses Document wrapping entirely, unless population
	// was requested, which needs documents to mutate.
	if opts.lean && opts.populate == "" {
		res := &Result{Hits: hits, Single: single}
		if single && len(hits) > 0 {
			res.Hit = &hits[0]
		}
		return res, nil
	}

	set := newResultSet(q.model, hits)
	if opts.populate != "" {
		if err := set.populateAll(ctx, opts.populate); err != nil {
			return nil, err
		}
	}

	res := &Result{Set: set, Single: single}
	if single {
		res.Set = nil
		if set.Len() > 0 {
			res.Doc = set.At(0)
		}
	}
	return res, nil
}

// One executes the query in single mode and returns the first document,
// or nil when nothing matched. Lean is cleared: One always hands back a
// hydrated document.
func (q *Query) One(ctx context.Context) (*Document, error) {
	q.opts.forceSingle = true
	q.opts.countOnly = false
	q.opts.lean = false
	res, err := q.Exec(ctx)
	if err != nil {
		return nil, err
	}
	return res.Doc, nil
}

// All executes the query and returns the full result set.
func (q *Query) All(ctx context.Context) (*ResultSet, error) {
	q.opts.forceSingle = false
	q.opts.countOnly = false
	q.opts.lean = false
	res, err := q.Exec(ctx)
	if err != nil {
		return nil, err
	}
	return res.Set, nil
}

// Total executes the query in count mode and returns the hit total.
func (q *Query) Total(ctx context.Context) (int64, error) {
	q.opts.countOnly = true
	res, err := q.Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.Count, nil
}

// criteriaID extracts the id field from the match criteria.
func criteriaID(criteria map[string]interface{}) (interface{}, bool) {
	if criteria == nil {
		return nil, false
	}
	v, ok := criteria["id"]
	return v, ok
}

// coerceIDs normalizes the criteria's id field into a flat slice of ids:
// a bare scalar id becomes a one-element slice. This is the single
// multi-get encoding used everywhere.
func coerceIDs(v interface{}) ([]string, error) {
	switch typed := v.(type) {
	case string:
		return []string{typed}, nil
	case []string:
		return append([]string(nil), typed...), nil
	case []interface{}:
		ids := make([]string, len(typed))
		for i, e := range typed {
			s, ok := e.(string)
			if !ok {
				return nil, fmt.Errorf("id criteria element %d is %T, want string", i, e)
			}
			ids[i] = s
		}
		return ids, nil
	default:
		return nil, fmt.Errorf("id criteria is %T, want string or sequence of strings", v)
	}
}

// descending normalizes a sort direction: "desc", "descending" and -1
// mean descending, everything else ascending.
func descending(direction interface{}) bool {
	switch d := direction.(type) {
	case string:
		return d == "desc" || d == "descending"
	case int:
		return d == -1
	case int64:
		return d == -1
	case float64:
		return d == -1
	case bool:
		return d
	default:
		return false
	}
}
