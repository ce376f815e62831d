// Package knowledge provides the retrieval boundary used to enrich
// validation and explanation with contextual snippets. The in-memory store
// ranks documents by keyword overlap; callers must tolerate empty results.
package knowledge

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// Snippet is one ranked search hit. Score is in [0,1].
type Snippet struct {
	ID      string  `json:"id"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// Searcher is the retrieval contract. Implementations return at most limit
// snippets ranked best-first; no match is an empty slice, not an error.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]Snippet, error)
}

// Writer is implemented by stores that accept new documents at runtime.
type Writer interface {
	Add(id, content string)
}

type document struct {
	id      string
	content string
	words   map[string]struct{}
}

// InMemoryStore is a process-local Searcher scoring documents by the share
// of query words they contain. Safe for concurrent use.
type InMemoryStore struct {
	mu   sync.RWMutex
	docs []document
}

// NewInMemoryStore creates an empty store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

// Add indexes a document. Later additions with the same id are kept as
// separate documents; ids are caller-owned labels, not keys.
func (s *InMemoryStore) Add(id, content string) {
	words := make(map[string]struct{})
	for _, w := range tokenize(content) {
		words[w] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = append(s.docs, document{id: id, content: content, words: words})
}

// Search implements Searcher. The score of a document is the fraction of
// distinct query words it contains; zero-score documents are omitted. Ties
// keep insertion order so results are stable.
func (s *InMemoryStore) Search(ctx context.Context, query string, limit int) ([]Snippet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	queryWords := tokenize(query)
	if len(queryWords) == 0 || limit <= 0 {
		return []Snippet{}, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	hits := make([]Snippet, 0)
	for _, doc := range s.docs {
		matched := 0
		for _, w := range queryWords {
			if _, ok := doc.words[w]; ok {
				matched++
			}
		}
		if matched == 0 {
			continue
		}
		hits = append(hits, Snippet{
			ID:      doc.id,
			Content: doc.content,
			Score:   float64(matched) / float64(len(queryWords)),
		})
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	})

	seen := make(map[string]struct{}, len(fields))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}
