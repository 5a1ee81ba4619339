package esmodel

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/esmodel/esmodel/types"
)

// populateNow resolves references along a dotted path, mutating the
// current field map in place: stored ids (or lists of ids) are replaced
// with the fetched documents. Whether a string is a foreign id is decided
// by the schema, not the value: only properties declaring a ref resolve;
// any other string is a scalar.
func (d *Document) populateNow(ctx context.Context, path string) error {
	if path == "" {
		return nil
	}
	p := &populator{registry: d.model.registry}
	return p.resolve(ctx, d.model, "", d.current, strings.Split(path, "."))
}

// populator walks path segments recursively. Descending into a plain
// sub-object keeps the owning model and extends a dotted prefix, so
// nested references are declared as dotted properties on the owning
// schema (e.g. "comments.author"). Crossing a reference switches to the
// referenced model with a fresh prefix.
type populator struct {
	registry *Registry
}

func (p *populator) resolve(ctx context.Context, model *Model, prefix string, fields map[string]interface{}, segs []string) error {
	if len(segs) == 0 {
		return nil
	}
	seg, rest := segs[0], segs[1:]
	value, present := fields[seg]
	if !present || value == nil {
		return nil
	}

	refModel, err := p.refModelFor(model, prefix, seg)
	if err != nil {
		return err
	}

	switch typed := value.(type) {
	case string:
		if refModel == nil {
			return nil // scalar, nothing to resolve
		}
		doc, err := p.fetchOne(ctx, refModel, typed)
		if err != nil {
			return err // field is left unmodified on fetch failure
		}
		if err := p.resolve(ctx, refModel, "", doc.current, rest); err != nil {
			return err
		}
		fields[seg] = doc
		return nil

	case []string:
		if refModel == nil {
			return nil
		}
		docs, err := p.fetchMany(ctx, refModel, typed, rest)
		if err != nil {
			return err
		}
		fields[seg] = docs
		return nil

	case []interface{}:
		if len(typed) == 0 {
			return nil
		}
		if _, isID := typed[0].(string); isID && refModel != nil {
			ids := make([]string, len(typed))
			for i, e := range typed {
				s, ok := e.(string)
				if !ok {
					return fmt.Errorf("reference list element %d on %s is %T, want string id", i, seg, e)
				}
				ids[i] = s
			}
			docs, err := p.fetchMany(ctx, refModel, ids, rest)
			if err != nil {
				return err
			}
			fields[seg] = docs
			return nil
		}
		// Already-expanded sub-documents: recurse into each element with
		// the remaining path, up to batchConcurrency at a time.
		return p.resolveElements(ctx, model, joinPrefix(prefix, seg), typed, rest)

	case map[string]interface{}:
		return p.resolve(ctx, model, joinPrefix(prefix, seg), typed, rest)

	case *Document:
		return p.resolve(ctx, typed.model, "", typed.current, rest)

	default:
		// Scalar, non-reference value: no resolution needed here and
		// nothing deeper to descend into.
		return nil
	}
}

// refModelFor returns the model a segment's references point at, looking
// up the property first under its dotted prefix, then bare.
func (p *populator) refModelFor(model *Model, prefix, seg string) (*Model, error) {
	name := joinPrefix(prefix, seg)
	prop, ok := model.schema.Prop(name)
	if !ok && name != seg {
		prop, ok = model.schema.Prop(seg)
	}
	if !ok || prop.Ref == "" {
		return nil, nil
	}
	return p.registry.Model(prop.Ref)
}

// fetchOne fetches a single foreign id; a missing document is a
// *types.NotFoundError.
func (p *populator) fetchOne(ctx context.Context, refModel *Model, id string) (*Document, error) {
	hits, err := refModel.fetchByIDs(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return nil, &types.NotFoundError{Index: refModel.index, ID: id}
	}
	return refModel.hydrate(hits[0]), nil
}

// fetchMany fetches a list of foreign ids in one multi-get, rebuilds the
// result in request order, and recurses the remaining path into each
// fetched document. Order and length match the original id list; a
// missing id aborts.
func (p *populator) fetchMany(ctx context.Context, refModel *Model, ids []string, rest []string) ([]interface{}, error) {
	hits, err := refModel.fetchByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]types.Hit, len(hits))
	for _, hit := range hits {
		byID[hit.ID] = hit
	}

	docs := make([]interface{}, len(ids))
	for i, id := range ids {
		hit, found := byID[id]
		if !found {
			return nil, &types.NotFoundError{Index: refModel.index, ID: id}
		}
		docs[i] = refModel.hydrate(hit)
	}

	if len(rest) > 0 {
		if err := p.resolveElements(ctx, refModel, "", docs, rest); err != nil {
			return nil, err
		}
	}
	return docs, nil
}

// resolveElements recurses into a slice of expanded elements with the
// remaining path, at most batchConcurrency elements in flight. The first
// failure aborts further dispatch and surfaces.
func (p *populator) resolveElements(ctx context.Context, model *Model, prefix string, elems []interface{}, rest []string) error {
	if len(rest) == 0 {
		return nil
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(batchConcurrency)
	for _, elem := range elems {
		elem := elem
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			switch e := elem.(type) {
			case map[string]interface{}:
				return p.resolve(ctx, model, prefix, e, rest)
			case *Document:
				return p.resolve(ctx, e.model, "", e.current, rest)
			default:
				return nil
			}
		})
	}
	return g.Wait()
}

func joinPrefix(prefix, seg string) string {
	if prefix == "" {
		return seg
	}
	return prefix + "." + seg
}
