package vectorstore

import (
	"context"

	"github.com/HuaTug/LLM/documents"
)

// DefaultTopK is the number of documents returned by a Retriever by default.
const DefaultTopK = 3

// Retriever runs similarity searches against a Store with a fixed k.
type Retriever struct {
	Store Store
	K     int
}

// NewRetriever wraps store; k <= 0 uses DefaultTopK.
func NewRetriever(store Store, k int) *Retriever {
	if k <= 0 {
		k = DefaultTopK
	}
	return &Retriever{Store: store, K: k}
}

// Invoke returns the documents most relevant to query.
func (r *Retriever) Invoke(ctx context.Context, query string) ([]documents.Document, error) {
	hits, err := r.Store.SimilaritySearch(ctx, query, r.K)
	if err != nil {
		return nil, err
	}

	docs := make([]documents.Document, len(hits))
	for i, h := range hits {
		docs[i] = h.Document
	}
	return docs, nil
}
