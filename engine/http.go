package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/esmodel/esmodel/types"
)

// HTTP implements types.Engine against an Elasticsearch-compatible REST
// API. It maps transport failures to *types.ConnectionError and update
// collisions (409) to *types.VersionConflictError; it never retries.
type HTTP struct {
	client *resty.Client
}

// HTTPOption configures the HTTP engine at construction time.
type HTTPOption func(*HTTP)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) HTTPOption {
	return func(h *HTTP) { h.client.SetTimeout(d) }
}

// WithBasicAuth sets basic-auth credentials on every request.
func WithBasicAuth(user, password string) HTTPOption {
	return func(h *HTTP) { h.client.SetBasicAuth(user, password) }
}

// NewHTTP creates an engine client for the given base URL, e.g.
// "http://localhost:9200".
func NewHTTP(baseURL string, opts ...HTTPOption) *HTTP {
	h := &HTTP{
		client: resty.New().
			SetBaseURL(baseURL).
			SetHeader("Content-Type", "application/json"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

type writeResponse struct {
	ID      string `json:"_id"`
	Version int64  `json:"_version"`
}

type hitJSON struct {
	ID      string                 `json:"_id"`
	Version int64                  `json:"_version"`
	Score   float64                `json:"_score"`
	Source  map[string]interface{} `json:"_source"`
	Found   bool                   `json:"found"`
}

type searchResponse struct {
	Hits struct {
		Total json.RawMessage `json:"total"`
		Hits  []hitJSON       `json:"hits"`
	} `json:"hits"`
}

type mgetResponse struct {
	Docs []hitJSON `json:"docs"`
}

// Index writes the full document body. Without an id the engine assigns
// one (POST); with an id the write is an upsert (PUT).
func (h *HTTP) Index(ctx context.Context, index, docType, id string, body map[string]interface{}) (types.WriteResult, error) {
	var out writeResponse
	req := h.client.R().SetContext(ctx).SetBody(body).SetResult(&out)

	var resp *resty.Response
	var err error
	if id == "" {
		resp, err = req.Post(fmt.Sprintf("/%s/%s", index, docType))
	} else {
		resp, err = req.Put(fmt.Sprintf("/%s/%s/%s", index, docType, id))
	}
	if err != nil {
		return types.WriteResult{}, &types.ConnectionError{Op: "index", Err: err}
	}
	if resp.IsError() {
		return types.WriteResult{}, engineError("index", resp)
	}
	return types.WriteResult{ID: out.ID, Version: out.Version}, nil
}

// Update applies a partial document guarded by the version token.
func (h *HTTP) Update(ctx context.Context, index, docType, id string, version int64, doc map[string]interface{}) (types.WriteResult, error) {
	var out writeResponse
	resp, err := h.client.R().
		SetContext(ctx).
		SetQueryParam("version", fmt.Sprintf("%d", version)).
		SetBody(map[string]interface{}{"doc": doc}).
		SetResult(&out).
		Post(fmt.Sprintf("/%s/%s/%s/_update", index, docType, id))
	if err != nil {
		return types.WriteResult{}, &types.ConnectionError{Op: "update", Err: err}
	}
	switch resp.StatusCode() {
	case http.StatusConflict:
		return types.WriteResult{}, &types.VersionConflictError{Index: index, ID: id, Version: version}
	case http.StatusNotFound:
		return types.WriteResult{}, &types.NotFoundError{Index: index, ID: id}
	}
	if resp.IsError() {
		return types.WriteResult{}, engineError("update", resp)
	}
	return types.WriteResult{ID: id, Version: out.Version}, nil
}

// Delete removes by id. A 404 is treated as success: the document is
// gone either way.
func (h *HTTP) Delete(ctx context.Context, index, docType, id string) error {
	resp, err := h.client.R().
		SetContext(ctx).
		Delete(fmt.Sprintf("/%s/%s/%s", index, docType, id))
	if err != nil {
		return &types.ConnectionError{Op: "delete", Err: err}
	}
	if resp.IsError() && resp.StatusCode() != http.StatusNotFound {
		return engineError("delete", resp)
	}
	return nil
}

// Search translates the request into the engine's query DSL and returns
// hits in engine order.
func (h *HTTP) Search(ctx context.Context, index, docType string, req types.SearchRequest) (types.SearchResult, error) {
	body := map[string]interface{}{
		"from": req.From,
	}
	if req.Size > 0 {
		body["size"] = req.Size
	}
	if len(req.Fields) > 0 {
		body["_source"] = req.Fields
	}
	if len(req.Match) > 0 {
		body["query"] = map[string]interface{}{"match": req.Match}
	} else {
		body["query"] = map[string]interface{}{"match_all": map[string]interface{}{}}
	}
	if len(req.Sort) > 0 {
		clauses := make([]interface{}, len(req.Sort))
		for i, clause := range req.Sort {
			order := "asc"
			if clause.Descending {
				order = "desc"
			}
			clauses[i] = map[string]interface{}{clause.Field: map[string]interface{}{"order": order}}
		}
		body["sort"] = clauses
	}

	var out searchResponse
	resp, err := h.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&out).
		Post(fmt.Sprintf("/%s/%s/_search", index, docType))
	if err != nil {
		return types.SearchResult{}, &types.ConnectionError{Op: "search", Err: err}
	}
	if resp.IsError() {
		return types.SearchResult{}, engineError("search", resp)
	}

	hits := make([]types.Hit, len(out.Hits.Hits))
	for i, hj := range out.Hits.Hits {
		hits[i] = types.Hit{ID: hj.ID, Version: hj.Version, Score: hj.Score, Source: hj.Source}
	}
	return types.SearchResult{Hits: hits, Total: parseTotal(out.Hits.Total)}, nil
}

// MultiGet fetches documents by id; only found documents are returned,
// in request order.
func (h *HTTP) MultiGet(ctx context.Context, index, docType string, ids []string) ([]types.Hit, error) {
	var out mgetResponse
	resp, err := h.client.R().
		SetContext(ctx).
		SetBody(map[string]interface{}{"ids": ids}).
		SetResult(&out).
		Post(fmt.Sprintf("/%s/%s/_mget", index, docType))
	if err != nil {
		return nil, &types.ConnectionError{Op: "multi-get", Err: err}
	}
	if resp.IsError() {
		return nil, engineError("multi-get", resp)
	}

	var hits []types.Hit
	for _, doc := range out.Docs {
		if !doc.Found {
			continue
		}
		hits = append(hits, types.Hit{ID: doc.ID, Version: doc.Version, Source: doc.Source})
	}
	return hits, nil
}

// parseTotal accepts both the bare-integer and the {"value": n} total
// encodings that different engine versions produce.
func parseTotal(raw json.RawMessage) int64 {
	if len(raw) == 0 {
		return 0
	}
	var n int64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}
	var obj struct {
		Value int64 `json:"value"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.Value
	}
	return 0
}

func engineError(op string, resp *resty.Response) error {
	return fmt.Errorf("engine %s returned %s: %s", op, resp.Status(), resp.String())
}
