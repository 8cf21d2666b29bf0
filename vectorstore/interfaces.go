package vectorstore

import (
	"context"

	"github.com/HuaTug/LLM/documents"
)

// Embedder generates embedding vectors, one per input string.
// llms.OpenAIModel and llms.OllamaModel satisfy it.
type Embedder interface {
	Embeddings(ctx context.Context, inputs []string) ([][]float32, error)
}

// ScoredDocument is a search hit. Higher scores are more similar.
type ScoredDocument struct {
	Document documents.Document
	Score    float32
}

// Store is a vector store that indexes documents by embedding.
//
// Implementations:
//   - MemoryStore: in-process, cosine similarity
//   - MilvusStore: Milvus collection with an HNSW index
type Store interface {
	// AddDocuments embeds and stores the documents.
	AddDocuments(ctx context.Context, docs []documents.Document) error

	// SimilaritySearch returns up to k documents most similar to query.
	SimilaritySearch(ctx context.Context, query string, k int) ([]ScoredDocument, error)

	// Reset removes every stored document.
	Reset(ctx context.Context) error
}
