package esmodel_test

import (
	"context"
	"errors"
	"testing"

	"github.com/esmodel/esmodel/testutil"
)

func TestResultSetPreservesHitOrder(t *testing.T) {
	u := testutil.NewUniverse(t)

	set, err := u.Post.Find(nil).Sort("date", "asc").All(context.Background())
	testutil.AssertNoError(t, err, "find all")
	testutil.AssertSetLen(t, set, 3)
	wantIDs := []string{u.FirstPost, u.Draft, u.SecondPost}
	for i, doc := range set.Docs() {
		if doc.ID() != wantIDs[i] {
			t.Errorf("position %d holds %s, want %s", i, doc.ID(), wantIDs[i])
		}
	}
}

func TestBatchUpdateTouchesEveryMember(t *testing.T) {
	u := testutil.NewUniverse(t)
	ctx := context.Background()

	set, err := u.Post.Find(nil).All(ctx)
	testutil.AssertNoError(t, err, "find all")
	testutil.AssertSetLen(t, set, 3)

	u.Recorder.Reset()
	err = set.Update(map[string]interface{}{"published": false}).Exec(ctx)
	testutil.AssertNoError(t, err, "batch update")

	if updates := u.Recorder.CallsTo("update"); len(updates) != 2 {
		// The draft was already unpublished, so its update is a no-op.
		t.Errorf("expected 2 update requests, got %d", len(updates))
	}

	remaining, err := u.Post.Find(map[string]interface{}{"published": true}).Total(ctx)
	testutil.AssertNoError(t, err, "recount published")
	if remaining != 0 {
		t.Errorf("%d posts still published after batch update", remaining)
	}
}

func TestBatchRemoveEmptiesTheSet(t *testing.T) {
	u := testutil.NewUniverse(t)
	ctx := context.Background()

	set, err := u.Comment.Find(nil).All(ctx)
	testutil.AssertNoError(t, err, "find comments")
	testutil.AssertSetLen(t, set, 2)

	testutil.AssertNoError(t, set.Remove().Exec(ctx), "batch remove")

	left, err := u.Comment.Find(nil).Total(ctx)
	testutil.AssertNoError(t, err, "recount comments")
	if left != 0 {
		t.Errorf("%d comments left after batch remove", left)
	}
}

func TestBatchErrorSurfacesOnce(t *testing.T) {
	u := testutil.NewUniverse(t)
	ctx := context.Background()

	set, err := u.Post.Find(nil).All(ctx)
	testutil.AssertNoError(t, err, "find all")

	boom := errors.New("engine down")
	u.Recorder.Fail = boom
	u.Recorder.FailOp = "update"

	err = set.Update(map[string]interface{}{"body": "edited"}).Exec(ctx)
	if !errors.Is(err, boom) {
		t.Fatalf("batch error = %v, want the injected failure", err)
	}
}

func TestBatchVerbsReplayInEnqueueOrder(t *testing.T) {
	u := testutil.NewUniverse(t)
	ctx := context.Background()

	set, err := u.Post.Find(map[string]interface{}{"id": []interface{}{u.FirstPost}}).All(ctx)
	testutil.AssertNoError(t, err, "find one-element set")

	u.Recorder.Reset()
	err = set.Populate("author").Update(map[string]interface{}{"body": "edited"}).Exec(ctx)
	testutil.AssertNoError(t, err, "chained batch exec")

	calls := u.Recorder.Calls()
	if len(calls) != 2 || calls[0].Op != "multiget" || calls[1].Op != "update" {
		t.Fatalf("call order = %+v, want populate's multiget then update", calls)
	}
	// The populated author must not leak into the partial update.
	if _, present := calls[1].Body["author"]; present {
		t.Errorf("update body carried the populated author: %+v", calls[1].Body)
	}
}
