package engine

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/esmodel/esmodel/types"
)

// captureServer records the last request's method, path and decoded JSON
// body, and replies with a fixed status and payload.
type captureServer struct {
	*httptest.Server
	method string
	path   string
	query  string
	body   map[string]interface{}
}

func newCaptureServer(t *testing.T, status int, reply string) *captureServer {
	t.Helper()
	cs := &captureServer{}
	cs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cs.method = r.Method
		cs.path = r.URL.Path
		cs.query = r.URL.RawQuery
		cs.body = nil
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&cs.body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(cs.Close)
	return cs
}

func TestHTTPIndexWithoutIDPosts(t *testing.T) {
	srv := newCaptureServer(t, http.StatusCreated, `{"_id":"abc","_version":1}`)
	h := NewHTTP(srv.URL)

	res, err := h.Index(context.Background(), "post", "post", "", map[string]interface{}{"title": "a"})
	if err != nil {
		t.Fatal(err)
	}
	if srv.method != http.MethodPost || srv.path != "/post/post" {
		t.Errorf("request was %s %s, want POST /post/post", srv.method, srv.path)
	}
	if res.ID != "abc" || res.Version != 1 {
		t.Errorf("result = %+v", res)
	}
}

func TestHTTPIndexWithIDPuts(t *testing.T) {
	srv := newCaptureServer(t, http.StatusOK, `{"_id":"abc","_version":2}`)
	h := NewHTTP(srv.URL)

	_, err := h.Index(context.Background(), "post", "post", "abc", map[string]interface{}{"title": "a"})
	if err != nil {
		t.Fatal(err)
	}
	if srv.method != http.MethodPut || srv.path != "/post/post/abc" {
		t.Errorf("request was %s %s, want PUT /post/post/abc", srv.method, srv.path)
	}
}

func TestHTTPUpdateCarriesVersionAndDocWrapper(t *testing.T) {
	srv := newCaptureServer(t, http.StatusOK, `{"_id":"abc","_version":3}`)
	h := NewHTTP(srv.URL)

	res, err := h.Update(context.Background(), "post", "post", "abc", 2, map[string]interface{}{"body": "x"})
	if err != nil {
		t.Fatal(err)
	}
	if srv.path != "/post/post/abc/_update" || srv.query != "version=2" {
		t.Errorf("request was %s?%s", srv.path, srv.query)
	}
	want := map[string]interface{}{"doc": map[string]interface{}{"body": "x"}}
	if diff := cmp.Diff(want, srv.body); diff != "" {
		t.Errorf("body mismatch (-want +got):\n%s", diff)
	}
	if res.Version != 3 {
		t.Errorf("version = %d, want 3", res.Version)
	}
}

func TestHTTPUpdateConflictAndNotFound(t *testing.T) {
	t.Run("conflict", func(t *testing.T) {
		srv := newCaptureServer(t, http.StatusConflict, `{}`)
		h := NewHTTP(srv.URL)

		_, err := h.Update(context.Background(), "post", "post", "abc", 2, map[string]interface{}{"a": 1})
		var conflict *types.VersionConflictError
		if !errors.As(err, &conflict) {
			t.Fatalf("error = %v, want version conflict", err)
		}
		if conflict.ID != "abc" || conflict.Version != 2 {
			t.Errorf("conflict = %+v", conflict)
		}
	})
	t.Run("not found", func(t *testing.T) {
		srv := newCaptureServer(t, http.StatusNotFound, `{}`)
		h := NewHTTP(srv.URL)

		_, err := h.Update(context.Background(), "post", "post", "abc", 2, map[string]interface{}{"a": 1})
		var notFound *types.NotFoundError
		if !errors.As(err, &notFound) {
			t.Fatalf("error = %v, want not found", err)
		}
	})
}

func TestHTTPDeleteTreats404AsSuccess(t *testing.T) {
	srv := newCaptureServer(t, http.StatusNotFound, `{}`)
	h := NewHTTP(srv.URL)

	if err := h.Delete(context.Background(), "post", "post", "gone"); err != nil {
		t.Errorf("delete of missing id: %v", err)
	}
	if srv.method != http.MethodDelete || srv.path != "/post/post/gone" {
		t.Errorf("request was %s %s", srv.method, srv.path)
	}
}

func TestHTTPSearchBuildsQueryDSL(t *testing.T) {
	srv := newCaptureServer(t, http.StatusOK,
		`{"hits":{"total":{"value":2},"hits":[
			{"_id":"a","_version":1,"_score":1.5,"_source":{"title":"x"}},
			{"_id":"b","_version":4,"_score":1.0,"_source":{"title":"y"}}
		]}}`)
	h := NewHTTP(srv.URL)

	res, err := h.Search(context.Background(), "post", "post", types.SearchRequest{
		From:   5,
		Size:   10,
		Fields: []string{"title"},
		Match:  map[string]interface{}{"published": true},
		Sort:   []types.SortClause{{Field: "date", Descending: true}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if srv.path != "/post/post/_search" {
		t.Errorf("path = %s", srv.path)
	}

	// JSON numbers decode as float64 on the way back.
	want := map[string]interface{}{
		"from":    float64(5),
		"size":    float64(10),
		"_source": []interface{}{"title"},
		"query":   map[string]interface{}{"match": map[string]interface{}{"published": true}},
		"sort": []interface{}{
			map[string]interface{}{"date": map[string]interface{}{"order": "desc"}},
		},
	}
	if diff := cmp.Diff(want, srv.body); diff != "" {
		t.Errorf("request body mismatch (-want +got):\n%s", diff)
	}

	if res.Total != 2 || len(res.Hits) != 2 {
		t.Fatalf("total=%d hits=%d", res.Total, len(res.Hits))
	}
	if res.Hits[0].ID != "a" || res.Hits[0].Version != 1 || res.Hits[0].Score != 1.5 {
		t.Errorf("first hit = %+v", res.Hits[0])
	}
}

func TestHTTPSearchEmptyCriteriaMatchesAll(t *testing.T) {
	srv := newCaptureServer(t, http.StatusOK, `{"hits":{"total":0,"hits":[]}}`)
	h := NewHTTP(srv.URL)

	res, err := h.Search(context.Background(), "post", "post", types.SearchRequest{})
	if err != nil {
		t.Fatal(err)
	}
	query := srv.body["query"].(map[string]interface{})
	if _, ok := query["match_all"]; !ok {
		t.Errorf("query = %v, want match_all", query)
	}
	// Bare-integer total encoding also parses.
	if res.Total != 0 {
		t.Errorf("total = %d", res.Total)
	}
}

func TestHTTPSearchParsesBareIntegerTotal(t *testing.T) {
	srv := newCaptureServer(t, http.StatusOK, `{"hits":{"total":7,"hits":[]}}`)
	h := NewHTTP(srv.URL)

	res, err := h.Search(context.Background(), "post", "post", types.SearchRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if res.Total != 7 {
		t.Errorf("total = %d, want 7", res.Total)
	}
}

func TestHTTPMultiGetSkipsMissing(t *testing.T) {
	srv := newCaptureServer(t, http.StatusOK,
		`{"docs":[
			{"_id":"a","_version":1,"found":true,"_source":{"n":1}},
			{"_id":"missing","found":false},
			{"_id":"b","_version":2,"found":true,"_source":{"n":2}}
		]}`)
	h := NewHTTP(srv.URL)

	hits, err := h.MultiGet(context.Background(), "post", "post", []string{"a", "missing", "b"})
	if err != nil {
		t.Fatal(err)
	}
	if srv.path != "/post/post/_mget" {
		t.Errorf("path = %s", srv.path)
	}
	want := []interface{}{"a", "missing", "b"}
	if diff := cmp.Diff(want, srv.body["ids"]); diff != "" {
		t.Errorf("ids mismatch (-want +got):\n%s", diff)
	}
	if len(hits) != 2 || hits[0].ID != "a" || hits[1].ID != "b" {
		t.Errorf("hits = %+v, want found docs in request order", hits)
	}
}

func TestHTTPTransportFailureIsConnectionError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close() // nothing listening anymore

	h := NewHTTP(url)
	_, err := h.Search(context.Background(), "post", "post", types.SearchRequest{})
	var conn *types.ConnectionError
	if !errors.As(err, &conn) {
		t.Fatalf("error = %v, want connection error", err)
	}
	if conn.Op != "search" {
		t.Errorf("op = %s, want search", conn.Op)
	}
}

func TestHTTPEngineErrorCarriesStatus(t *testing.T) {
	srv := newCaptureServer(t, http.StatusInternalServerError, `{"error":"boom"}`)
	h := NewHTTP(srv.URL)

	_, err := h.Search(context.Background(), "post", "post", types.SearchRequest{})
	if err == nil {
		t.Fatal("expected an error on a 500 response")
	}
	var conn *types.ConnectionError
	if errors.As(err, &conn) {
		t.Errorf("engine-level failure misclassified as connection error: %v", err)
	}
}
