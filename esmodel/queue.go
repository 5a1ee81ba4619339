package esmodel

import "context"

// deferredCall is one recorded operation: a name (kept for inspection and
// error reporting) and the closure that performs it.
type deferredCall struct {
	name string
	call func(ctx context.Context) error
}

// callQueue records operations for later replay. Document, Query and
// ResultSet each compose one: their builder verbs enqueue and return the
// receiver, and Exec replays.
//
// Replay is strictly sequential: call i+1 starts only after call i has
// returned, and the first error aborts the replay with the remaining
// calls never started. A queue is single-use; replay consumes it, and
// enqueueing after a terminal Exec is not supported.
type callQueue struct {
	calls []deferredCall
}

func (q *callQueue) enqueue(name string, call func(ctx context.Context) error) {
	q.calls = append(q.calls, deferredCall{name: name, call: call})
}

func (q *callQueue) replay(ctx context.Context) error {
	calls := q.calls
	q.calls = nil
	for _, c := range calls {
		if err := c.call(ctx); err != nil {
			return err
		}
	}
	return nil
}

// pending returns the names of the queued calls in enqueue order.
func (q *callQueue) pending() []string {
	names := make([]string, len(q.calls))
	for i, c := range q.calls {
		names[i] = c.name
	}
	return names
}
