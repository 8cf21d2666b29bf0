package vectorstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/HuaTug/LLM/documents"
	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
)

const (
	milvusFieldID        = "id"
	milvusFieldContent   = "content"
	milvusFieldMetadata  = "metadata"
	milvusFieldEmbedding = "embedding"
)

// MilvusStore is a Store backed by a Milvus collection.
// Documents are stored as (content, metadata JSON, embedding) rows and
// searched with an HNSW index using L2 distance.
type MilvusStore struct {
	milvusClient   client.Client
	embedder       Embedder
	collectionName string
	embeddingDim   int
}

// MilvusConfig holds configuration for MilvusStore.
type MilvusConfig struct {
	// MilvusClient is the Milvus client instance.
	// If nil, a new client will be created using Address and Port.
	MilvusClient client.Client

	// Address is the Milvus server address (used if MilvusClient is nil).
	Address string

	// Port is the Milvus server port (used if MilvusClient is nil).
	Port int

	// CollectionName defaults to "latest_messages".
	CollectionName string

	// EmbeddingDim is the dimension of embedding vectors.
	// Common values: 1536 (text-embedding-ada-002), 768, etc.
	EmbeddingDim int

	// Embedder is the embedding model.
	Embedder Embedder
}

// NewMilvusStore connects to Milvus and makes sure the collection exists.
//
// Example:
//
//	store, err := vectorstore.NewMilvusStore(ctx, vectorstore.MilvusConfig{
//	    Address:      "localhost",
//	    Port:         19530,
//	    EmbeddingDim: 1536,
//	    Embedder:     embeddingModel,
//	})
func NewMilvusStore(ctx context.Context, cfg MilvusConfig) (*MilvusStore, error) {
	if cfg.EmbeddingDim <= 0 {
		return nil, fmt.Errorf("embedding dimension must be specified")
	}
	if cfg.Embedder == nil {
		return nil, fmt.Errorf("embedder must be provided")
	}

	milvusClient := cfg.MilvusClient
	if milvusClient == nil {
		address := cfg.Address
		if address == "" {
			address = "localhost"
		}
		port := cfg.Port
		if port == 0 {
			port = 19530
		}

		var err error
		milvusClient, err = client.NewDefaultGrpcClient(ctx, fmt.Sprintf("%s:%d", address, port))
		if err != nil {
			return nil, fmt.Errorf("failed to create Milvus client: %w", err)
		}
	}

	collectionName := cfg.CollectionName
	if collectionName == "" {
		collectionName = "latest_messages"
	}

	store := &MilvusStore{
		milvusClient:   milvusClient,
		embedder:       cfg.Embedder,
		collectionName: collectionName,
		embeddingDim:   cfg.EmbeddingDim,
	}

	if err := store.ensureCollection(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure collection: %w", err)
	}

	return store, nil
}

func (s *MilvusStore) schema() *entity.Schema {
	return &entity.Schema{
		CollectionName: s.collectionName,
		Description:    "Latest message chunks for retrieval",
		AutoID:         true,
		Fields: []*entity.Field{
			{
				Name:       milvusFieldID,
				DataType:   entity.FieldTypeInt64,
				PrimaryKey: true,
				AutoID:     true,
			},
			{
				Name:     milvusFieldContent,
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "65535",
				},
			},
			{
				Name:     milvusFieldMetadata,
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "4096",
				},
			},
			{
				Name:     milvusFieldEmbedding,
				DataType: entity.FieldTypeFloatVector,
				TypeParams: map[string]string{
					"dim": fmt.Sprintf("%d", s.embeddingDim),
				},
			},
		},
	}
}

// ensureCollection creates, indexes and loads the collection if it doesn't exist.
func (s *MilvusStore) ensureCollection(ctx context.Context) error {
	exists, err := s.milvusClient.HasCollection(ctx, s.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}
	if exists {
		return nil
	}

	if err := s.milvusClient.CreateCollection(ctx, s.schema(), entity.DefaultShardNumber); err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	index, err := entity.NewIndexHNSW(entity.L2, 16, 200)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	if err := s.milvusClient.CreateIndex(ctx, s.collectionName, milvusFieldEmbedding, index, false); err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	if err := s.milvusClient.LoadCollection(ctx, s.collectionName, false); err != nil {
		return fmt.Errorf("failed to load collection: %w", err)
	}

	return nil
}

// AddDocuments embeds and inserts the documents, then flushes so they are searchable.
func (s *MilvusStore) AddDocuments(ctx context.Context, docs []documents.Document) error {
	if len(docs) == 0 {
		return nil
	}

	contents := make([]string, len(docs))
	metadata := make([]string, len(docs))
	for i, d := range docs {
		contents[i] = d.PageContent
		raw, err := json.Marshal(d.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal metadata: %w", err)
		}
		metadata[i] = string(raw)
	}

	embeddings, err := s.embedder.Embeddings(ctx, contents)
	if err != nil {
		return fmt.Errorf("failed to generate embeddings: %w", err)
	}
	if len(embeddings) != len(docs) {
		return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(docs), len(embeddings))
	}

	insertData := []entity.Column{
		entity.NewColumnVarChar(milvusFieldContent, contents),
		entity.NewColumnVarChar(milvusFieldMetadata, metadata),
		entity.NewColumnFloatVector(milvusFieldEmbedding, s.embeddingDim, embeddings),
	}

	if _, err := s.milvusClient.Insert(ctx, s.collectionName, "", insertData...); err != nil {
		return fmt.Errorf("failed to insert into Milvus: %w", err)
	}

	if err := s.milvusClient.Flush(ctx, s.collectionName, false); err != nil {
		return fmt.Errorf("failed to flush collection: %w", err)
	}

	return nil
}

// SimilaritySearch returns the k nearest chunks. Scores are negated L2
// distances so that higher still means more similar.
func (s *MilvusStore) SimilaritySearch(ctx context.Context, query string, k int) ([]ScoredDocument, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}

	embeddings, err := s.embedder.Embeddings(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to generate query embedding: %w", err)
	}
	if len(embeddings) == 0 || len(embeddings[0]) == 0 {
		return nil, fmt.Errorf("empty embedding generated")
	}

	searchParam, err := entity.NewIndexHNSWSearchParam(64)
	if err != nil {
		return nil, fmt.Errorf("failed to create search param: %w", err)
	}

	results, err := s.milvusClient.Search(
		ctx,
		s.collectionName,
		[]string{},
		"",
		[]string{milvusFieldContent, milvusFieldMetadata},
		[]entity.Vector{entity.FloatVector(embeddings[0])},
		milvusFieldEmbedding,
		entity.L2,
		k,
		searchParam,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search Milvus: %w", err)
	}

	hits := make([]ScoredDocument, 0, k)
	for _, result := range results {
		var contentCol, metadataCol *entity.ColumnVarChar
		for _, col := range result.Fields {
			switch col.Name() {
			case milvusFieldContent:
				contentCol, _ = col.(*entity.ColumnVarChar)
			case milvusFieldMetadata:
				metadataCol, _ = col.(*entity.ColumnVarChar)
			}
		}
		if contentCol == nil {
			continue
		}

		for i := 0; i < contentCol.Len(); i++ {
			content, err := contentCol.ValueByIdx(i)
			if err != nil {
				continue
			}

			doc := documents.Document{PageContent: content, Metadata: map[string]any{}}
			if metadataCol != nil {
				if raw, err := metadataCol.ValueByIdx(i); err == nil && raw != "" {
					// Metadata is written by AddDocuments; a broken row keeps empty metadata.
					_ = json.Unmarshal([]byte(raw), &doc.Metadata)
				}
			}

			var score float32
			if i < len(result.Scores) {
				score = -result.Scores[i]
			}
			hits = append(hits, ScoredDocument{Document: doc, Score: score})
		}
	}

	return hits, nil
}

// Reset drops and recreates the collection.
func (s *MilvusStore) Reset(ctx context.Context) error {
	exists, err := s.milvusClient.HasCollection(ctx, s.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}
	if exists {
		if err := s.milvusClient.DropCollection(ctx, s.collectionName); err != nil {
			return fmt.Errorf("failed to drop collection: %w", err)
		}
	}
	return s.ensureCollection(ctx)
}

// Close closes the Milvus client connection.
func (s *MilvusStore) Close() error {
	if s.milvusClient != nil {
		return s.milvusClient.Close()
	}
	return nil
}
