package knowledge

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededStore() *InMemoryStore {
	s := NewInMemoryStore()
	s.Add("kyc-1", "KYC requires identity documents and address proof")
	s.Add("risk-1", "High value transactions require enhanced monitoring")
	s.Add("schema-1", "Schema migrations should include rollback steps")
	return s
}

func TestSearchRanksByOverlap(t *testing.T) {
	hits, err := seededStore().Search(context.Background(), "identity documents", 5)

	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, "kyc-1", hits[0].ID)
	assert.Equal(t, 1.0, hits[0].Score)
}

func TestSearchPartialMatchScoresFraction(t *testing.T) {
	hits, err := seededStore().Search(context.Background(), "documents rollback", 5)

	require.NoError(t, err)
	require.Len(t, hits, 2)
	for _, h := range hits {
		assert.InDelta(t, 0.5, h.Score, 1e-9)
	}
}

func TestSearchEmptyResults(t *testing.T) {
	hits, err := seededStore().Search(context.Background(), "unrelated topic entirely", 5)

	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestSearchHonorsLimit(t *testing.T) {
	s := seededStore()

	hits, err := s.Search(context.Background(), "documents rollback", 1)

	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestSearchEmptyQuery(t *testing.T) {
	hits, err := seededStore().Search(context.Background(), "   ", 5)

	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestSearchCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := seededStore().Search(ctx, "documents", 5)

	assert.Error(t, err)
}
