// Package testutil provides the shared test fixture and assertion
// helpers used across the module's test suites.
package testutil

import (
	"context"
	"testing"

	"github.com/esmodel/esmodel/engine"
	"github.com/esmodel/esmodel/esmodel"
	"github.com/esmodel/esmodel/schema"
)

// Universe is a seeded registry over an in-memory engine: a small blog
// domain with users, posts and comments wired together by references.
// Tests address the seeded documents by name instead of re-creating
// their own world each time.
type Universe struct {
	Engine   *engine.Memory
	Recorder *RecordingEngine
	Registry *esmodel.Registry

	User    *esmodel.Model
	Post    *esmodel.Model
	Comment *esmodel.Model

	// Seeded ids.
	Alice      string // user
	Bob        string // user
	FirstPost  string // post by Alice, commented twice
	SecondPost string // post by Bob, no comments
	Draft      string // post by Alice, not published
	NiceOne    string // comment by Bob on FirstPost
	MeToo      string // comment by Alice on FirstPost
}

// UserSchema returns the fixture's user schema definition.
func UserSchema() *schema.Schema {
	return schema.MustCompile(schema.Definition{
		Props: map[string]schema.Prop{
			"name":  {Type: schema.TypeString, Required: true},
			"email": {Type: schema.TypeString},
			"karma": {Type: schema.TypeNumber, Default: 0},
		},
	})
}

// PostSchema returns the fixture's post schema definition, including the
// references populate resolves: author (single user id), comments (list
// of comment ids) and the nested comments.author declared as a dotted
// property.
func PostSchema() *schema.Schema {
	return schema.MustCompile(schema.Definition{
		Props: map[string]schema.Prop{
			"title":           {Type: schema.TypeString, Required: true},
			"body":            {Type: schema.TypeString},
			"published":       {Type: schema.TypeBool, Default: false},
			"date":            {Type: schema.TypeDate},
			"author":          {Type: schema.TypeString, Ref: "User"},
			"comments":        {Type: schema.TypeArray, Ref: "Comment"},
			"comments.author": {Type: schema.TypeString, Ref: "User"},
		},
	})
}

// CommentSchema returns the fixture's comment schema definition.
func CommentSchema() *schema.Schema {
	return schema.MustCompile(schema.Definition{
		Props: map[string]schema.Prop{
			"text":   {Type: schema.TypeString, Required: true},
			"author": {Type: schema.TypeString, Ref: "User"},
		},
	})
}

// NewUniverse builds and seeds the fixture. It fails the test on any
// setup error so test bodies stay free of fixture plumbing.
func NewUniverse(t *testing.T) *Universe {
	t.Helper()
	ctx := context.Background()

	// The registry talks through the recorder so tests can count and
	// inspect requests; seeding below goes straight to memory and stays
	// out of the recording.
	mem := engine.NewMemory()
	rec := NewRecordingEngine(mem)
	reg := esmodel.New(rec)

	u := &Universe{Engine: mem, Recorder: rec, Registry: reg}
	u.User = reg.MustRegister("User", UserSchema())
	u.Post = reg.MustRegister("Post", PostSchema())
	u.Comment = reg.MustRegister("Comment", CommentSchema())

	u.Alice = u.seed(t, ctx, "user", map[string]interface{}{
		"name": "Alice", "email": "alice@example.com", "karma": 12,
	})
	u.Bob = u.seed(t, ctx, "user", map[string]interface{}{
		"name": "Bob", "email": "bob@example.com", "karma": 3,
	})

	u.NiceOne = u.seed(t, ctx, "comment", map[string]interface{}{
		"text": "nice one", "author": u.Bob,
	})
	u.MeToo = u.seed(t, ctx, "comment", map[string]interface{}{
		"text": "me too", "author": u.Alice,
	})

	u.FirstPost = u.seed(t, ctx, "post", map[string]interface{}{
		"title":     "First Post",
		"body":      "hello world",
		"published": true,
		"date":      "2024-01-02T00:00:00Z",
		"author":    u.Alice,
		"comments":  []interface{}{u.NiceOne, u.MeToo},
	})
	u.SecondPost = u.seed(t, ctx, "post", map[string]interface{}{
		"title":     "Second Post",
		"body":      "more words",
		"published": true,
		"date":      "2024-03-04T00:00:00Z",
		"author":    u.Bob,
	})
	u.Draft = u.seed(t, ctx, "post", map[string]interface{}{
		"title":     "Draft",
		"body":      "unfinished",
		"published": false,
		"date":      "2024-02-01T00:00:00Z",
		"author":    u.Alice,
	})

	return u
}

func (u *Universe) seed(t *testing.T, ctx context.Context, docType string, fields map[string]interface{}) string {
	t.Helper()
	res, err := u.Engine.Index(ctx, docType, docType, "", fields)
	if err != nil {
		t.Fatalf("failed to seed %s document: %v", docType, err)
	}
	return res.ID
}
