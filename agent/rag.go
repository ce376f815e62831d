package agent

import (
	"context"

	"github.com/govmesh/govmesh/core"
	"github.com/govmesh/govmesh/knowledge"
)

const defaultSearchLimit = 5

// NewRAGAgent builds the retrieval agent. Empty search results are a normal
// outcome, not an error. Writes are only available when the searcher also
// implements knowledge.Writer.
func NewRAGAgent(id string, sender Sender, searcher knowledge.Searcher, optFns ...func(o *Options)) *Runtime {
	r := NewRuntime(id, CapabilityRAG, sender, optFns...)

	search := func(ctx context.Context, query string, limit int) ([]knowledge.Snippet, error) {
		if limit <= 0 {
			limit = defaultSearchLimit
		}
		hits, err := searcher.Search(ctx, query, limit)
		if err != nil {
			return nil, core.WrapError(core.KindInternal, err, "knowledge search failed")
		}
		return hits, nil
	}

	r.Handle(ActionSearchKnowledge, func(ctx context.Context, env core.Envelope) (core.Response, error) {
		p, err := payloadAs[SearchPayload](env)
		if err != nil {
			return core.Response{}, err
		}
		hits, err := search(ctx, p.Query, p.Limit)
		if err != nil {
			return core.Response{}, err
		}
		return core.OK(hits), nil
	})

	r.Handle(ActionSemanticSearch, func(ctx context.Context, env core.Envelope) (core.Response, error) {
		p, err := payloadAs[SemanticSearchPayload](env)
		if err != nil {
			return core.Response{}, err
		}
		hits, err := search(ctx, p.Query, p.Limit)
		if err != nil {
			return core.Response{}, err
		}
		filtered := make([]knowledge.Snippet, 0, len(hits))
		for _, h := range hits {
			if h.Score >= p.Threshold {
				filtered = append(filtered, h)
			}
		}
		return core.OK(filtered), nil
	})

	r.Handle(ActionStoreKnowledge, func(_ context.Context, env core.Envelope) (core.Response, error) {
		p, err := payloadAs[StoreKnowledgePayload](env)
		if err != nil {
			return core.Response{}, err
		}
		if p.Content == "" {
			return core.Response{}, core.NewError(core.KindInvalidParameters, "content must not be empty")
		}
		w, ok := searcher.(knowledge.Writer)
		if !ok {
			return core.Response{}, core.NewError(core.KindInvalidParameters, "knowledge store is read-only")
		}
		w.Add(p.ID, p.Content)
		return core.OK(map[string]string{"id": p.ID}), nil
	})

	return r
}
