package chains

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/HuaTug/LLM/documents"
	"github.com/HuaTug/LLM/llms"
	"github.com/HuaTug/LLM/logger"
	"github.com/HuaTug/LLM/messages"
	"github.com/HuaTug/LLM/vectorstore"
)

// ErrKnowledgeBaseEmpty is returned by Ask before the first successful Update.
var ErrKnowledgeBaseEmpty = errors.New("knowledge base is empty, run update first")

// UpdateStats reports what an Update indexed.
type UpdateStats struct {
	Messages int
	Chunks   int
}

// KnowledgeBase indexes the latest messages into a vector store and answers
// questions from them.
type KnowledgeBase struct {
	mu        sync.RWMutex
	messages  *messages.Retriever
	splitter  *documents.RecursiveCharacterSplitter
	store     vectorstore.Store
	retriever *vectorstore.Retriever
	chain     *RetrievalChain
	ready     bool
	log       logger.Logger
}

// NewKnowledgeBase wires the message retriever, splitter, store and LLM together.
// Retrieval returns the top k chunks (k <= 0 uses vectorstore.DefaultTopK).
func NewKnowledgeBase(msgs *messages.Retriever, splitter *documents.RecursiveCharacterSplitter, store vectorstore.Store, llm llms.LLM, k int, log logger.Logger) *KnowledgeBase {
	if log == nil {
		log = logger.NopLogger()
	}
	retriever := vectorstore.NewRetriever(store, k)
	return &KnowledgeBase{
		messages:  msgs,
		splitter:  splitter,
		store:     store,
		retriever: retriever,
		chain:     NewRetrievalChain(retriever, llm),
		log:       log,
	}
}

// Update fetches messages from the last hoursBack hours, splits them and
// replaces the store contents. When no message matches, the store keeps its
// previous contents and the returned stats are zero.
func (kb *KnowledgeBase) Update(ctx context.Context, hoursBack int, categories messages.CategorySet) (UpdateStats, error) {
	latest, err := kb.messages.GetLatestMessages(ctx, hoursBack, categories)
	if err != nil {
		return UpdateStats{}, fmt.Errorf("failed to get latest messages: %w", err)
	}
	if len(latest) == 0 {
		kb.log.InfowCtx(ctx, "no latest messages found", "hours_back", hoursBack)
		return UpdateStats{}, nil
	}

	chunks := kb.splitter.SplitDocuments(documents.FromMessages(latest))

	kb.mu.Lock()
	defer kb.mu.Unlock()

	if err := kb.store.Reset(ctx); err != nil {
		return UpdateStats{}, fmt.Errorf("failed to reset vector store: %w", err)
	}
	kb.ready = false
	if err := kb.store.AddDocuments(ctx, chunks); err != nil {
		return UpdateStats{}, fmt.Errorf("failed to index documents: %w", err)
	}
	kb.ready = true

	stats := UpdateStats{Messages: len(latest), Chunks: len(chunks)}
	kb.log.InfowCtx(ctx, "knowledge base updated",
		"hours_back", hoursBack,
		"messages", stats.Messages,
		"chunks", stats.Chunks,
	)
	return stats, nil
}

// Ask answers question from the indexed messages.
func (kb *KnowledgeBase) Ask(ctx context.Context, question string) (Result, error) {
	kb.mu.RLock()
	defer kb.mu.RUnlock()

	if !kb.ready {
		return Result{}, ErrKnowledgeBaseEmpty
	}
	return kb.chain.Invoke(ctx, question)
}

// Context returns the chunks Ask would use for question, or nothing before
// the first Update.
func (kb *KnowledgeBase) Context(ctx context.Context, question string) ([]documents.Document, error) {
	kb.mu.RLock()
	defer kb.mu.RUnlock()

	if !kb.ready {
		return []documents.Document{}, nil
	}
	return kb.retriever.Invoke(ctx, question)
}

// Ready reports whether the knowledge base has been filled.
func (kb *KnowledgeBase) Ready() bool {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	return kb.ready
}
