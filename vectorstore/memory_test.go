package vectorstore

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/HuaTug/LLM/documents"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// keywordEmbedder maps text onto a fixed keyword vocabulary.
type keywordEmbedder struct {
	vocab []string
	err   error
}

func (e keywordEmbedder) Embeddings(_ context.Context, inputs []string) ([][]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, len(inputs))
	for i, in := range inputs {
		v := make([]float32, len(e.vocab))
		lower := strings.ToLower(in)
		for j, w := range e.vocab {
			v[j] = float32(strings.Count(lower, w))
		}
		out[i] = v
	}
	return out, nil
}

var vocab = []string{"stock", "cloud", "product", "feedback", "ai"}

func TestMemoryStoreSimilaritySearch(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(keywordEmbedder{vocab: vocab})

	require.NoError(t, store.AddDocuments(ctx, []documents.Document{
		{PageContent: "Stock market update: stock prices rose"},
		{PageContent: "Cloud computing market growth"},
		{PageContent: "User feedback on the product"},
	}))
	assert.Equal(t, 3, store.Len())

	hits, err := store.SimilaritySearch(ctx, "how did the stock market do", 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Contains(t, hits[0].Document.PageContent, "Stock market")
	assert.GreaterOrEqual(t, hits[0].Score, hits[1].Score)
}

func TestMemoryStoreKLargerThanCorpus(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(keywordEmbedder{vocab: vocab})
	require.NoError(t, store.AddDocuments(ctx, []documents.Document{{PageContent: "cloud"}}))

	hits, err := store.SimilaritySearch(ctx, "cloud", 3)
	require.NoError(t, err)
	assert.Len(t, hits, 1)

	_, err = store.SimilaritySearch(ctx, "cloud", 0)
	assert.Error(t, err)
}

func TestMemoryStoreReset(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(keywordEmbedder{vocab: vocab})
	require.NoError(t, store.AddDocuments(ctx, []documents.Document{{PageContent: "ai"}}))
	require.NoError(t, store.Reset(ctx))
	assert.Equal(t, 0, store.Len())

	hits, err := store.SimilaritySearch(ctx, "ai", 3)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestMemoryStoreEmbedderError(t *testing.T) {
	boom := errors.New("quota exceeded")
	store := NewMemoryStore(keywordEmbedder{vocab: vocab, err: boom})

	err := store.AddDocuments(context.Background(), []documents.Document{{PageContent: "x"}})
	assert.ErrorIs(t, err, boom)
}

func TestRetrieverInvoke(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(keywordEmbedder{vocab: vocab})
	require.NoError(t, store.AddDocuments(ctx, []documents.Document{
		{PageContent: "ai ai"}, {PageContent: "cloud"}, {PageContent: "product"}, {PageContent: "feedback"},
	}))

	r := NewRetriever(store, 0)
	assert.Equal(t, DefaultTopK, r.K)

	docs, err := r.Invoke(ctx, "ai")
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "ai ai", docs[0].PageContent)
}

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, cosine([]float32{1, 2}, []float32{2, 4}), 1e-6)
	assert.InDelta(t, 0.0, cosine([]float32{1, 0}, []float32{0, 1}), 1e-6)
	assert.Equal(t, float32(0), cosine([]float32{0, 0}, []float32{1, 1}))
}
