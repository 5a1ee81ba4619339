package main

import (
	"context"
	"strings"
	"testing"

	"github.com/esmodel/esmodel/engine"
	"github.com/esmodel/esmodel/esmodel"
	"github.com/esmodel/esmodel/testutil"
)

func queryResult(t *testing.T, q *esmodel.Query) *esmodel.Result {
	t.Helper()
	res, err := q.Exec(context.Background())
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	return res
}

func TestPrintResultShapes(t *testing.T) {
	mem := engine.NewMemory()
	reg := esmodel.New(mem)
	post := reg.MustRegister("Post", testutil.PostSchema())

	seeded, err := mem.Index(context.Background(), "post", "post", "",
		map[string]interface{}{"title": "Hello", "published": true})
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	cases := []struct {
		name  string
		query *esmodel.Query
		want  string
	}{
		{"count", post.Count(nil), "1\n"},
		{"single document", post.FindByID(seeded.ID), `"title": "Hello"`},
		{"single miss", post.FindByID("no-such-id"), "null\n"},
		{"collection", post.Find(nil), `"title": "Hello"`},
		{"lean hits", post.Find(nil).Lean(), `"Source"`},
		{"lean zero hits", post.Find(map[string]interface{}{"published": false}).Lean(), "[]\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var out strings.Builder
			if err := printResult(&out, queryResult(t, tc.query)); err != nil {
				t.Fatalf("print failed: %v", err)
			}
			if !strings.Contains(out.String(), tc.want) {
				t.Errorf("output %q does not contain %q", out.String(), tc.want)
			}
		})
	}
}
