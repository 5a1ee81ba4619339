package esmodel

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/esmodel/esmodel/types"
)

// batchConcurrency bounds the fan-out of batch verbs and populate
// recursion. Within a batch, completion order is not guaranteed; only
// that the aggregate result is observed exactly once.
const batchConcurrency = 4

// ResultSet is an ordered collection of documents built from raw hits;
// order is engine hit order and the length is fixed at construction. It
// exposes the same queued verbs as Document, applied to every member
// with bounded concurrency.
type ResultSet struct {
	model *Model
	docs  []*Document
	queue callQueue
}

func newResultSet(model *Model, hits []types.Hit) *ResultSet {
	docs := make([]*Document, len(hits))
	for i, hit := range hits {
		docs[i] = model.hydrate(hit)
	}
	return &ResultSet{model: model, docs: docs}
}

// Len returns the number of documents.
func (rs *ResultSet) Len() int { return len(rs.docs) }

// At returns the i-th document in hit order.
func (rs *ResultSet) At(i int) *Document { return rs.docs[i] }

// Docs returns the underlying documents in hit order.
func (rs *ResultSet) Docs() []*Document { return rs.docs }

// Save enqueues a save of every member.
func (rs *ResultSet) Save() *ResultSet {
	rs.queue.enqueue("save", func(ctx context.Context) error {
		return rs.each(ctx, func(ctx context.Context, d *Document) error {
			return d.saveNow(ctx)
		})
	})
	return rs
}

// Update enqueues a partial update of every member with the same data.
func (rs *ResultSet) Update(data map[string]interface{}) *ResultSet {
	rs.queue.enqueue("update", func(ctx context.Context) error {
		return rs.each(ctx, func(ctx context.Context, d *Document) error {
			return d.updateNow(ctx, data)
		})
	})
	return rs
}

// Remove enqueues a delete of every member.
func (rs *ResultSet) Remove() *ResultSet {
	rs.queue.enqueue("remove", func(ctx context.Context) error {
		return rs.each(ctx, func(ctx context.Context, d *Document) error {
			return d.removeNow(ctx)
		})
	})
	return rs
}

// Populate enqueues reference resolution on every member.
func (rs *ResultSet) Populate(path string) *ResultSet {
	rs.queue.enqueue("populate", func(ctx context.Context) error {
		return rs.populateAll(ctx, path)
	})
	return rs
}

// Exec replays the queued batch verbs in enqueue order; each verb
// completes across all members before the next starts.
func (rs *ResultSet) Exec(ctx context.Context) error {
	return rs.queue.replay(ctx)
}

func (rs *ResultSet) populateAll(ctx context.Context, path string) error {
	return rs.each(ctx, func(ctx context.Context, d *Document) error {
		return d.populateNow(ctx, path)
	})
}

// each applies fn to every member with at most batchConcurrency in
// flight. The first error wins: members already dispatched run to
// completion, but no further members are started once the group context
// is cancelled.
func (rs *ResultSet) each(ctx context.Context, fn func(ctx context.Context, d *Document) error) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(batchConcurrency)
	for _, d := range rs.docs {
		d := d
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil // an earlier member already failed
			}
			return fn(ctx, d)
		})
	}
	return g.Wait()
}
