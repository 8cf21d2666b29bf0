package main

import (
	"context"
	"fmt"
	"time"

	"github.com/HuaTug/LLM/config"
	"github.com/HuaTug/LLM/llms"
	"github.com/HuaTug/LLM/memory"
	"github.com/HuaTug/LLM/prompts"
	"github.com/HuaTug/LLM/vectorstore"
)

// validate checks the configuration before a command talks to a model.
func (a *app) validate() error {
	if err := a.cfg.Validate(); err != nil {
		return fmt.Errorf("%w\nset OPENAI_API_KEY, or AZURE_OPENAI_ENDPOINT, AZURE_OPENAI_API_KEY, "+
			"AZURE_OPENAI_DEPLOYMENT_NAME and AZURE_OPENAI_API_VERSION, in the environment or a .env file", err)
	}
	return nil
}

func (a *app) chatModel() llms.LLM {
	return llms.New(a.cfg.ChatModel())
}

func (a *app) tokenCounter() memory.TokenCounter {
	counter, err := memory.DefaultTokenCounter()
	if err != nil {
		a.log.Warnw("tiktoken unavailable, counting words", "error", err)
		return memory.WordCounter{}
	}
	return counter
}

// newMemory builds the configured conversation memory. The returned close
// function releases its connections.
func (a *app) newMemory(ctx context.Context, llm llms.LLM) (memory.Memory, func(), error) {
	cfg := a.cfg.Memory
	noop := func() {}

	switch cfg.Backend {
	case config.MemoryTokenBuffer:
		return memory.NewTokenBufferMemory(memory.NewBufferMemory(), a.tokenCounter(), cfg.MaxTokens), noop, nil
	case config.MemorySummaryBuffer:
		return memory.NewSummaryBufferMemory(llm, a.tokenCounter(), memory.WithMaxTokenLimit(cfg.MaxTokens)), noop, nil
	case config.MemoryRedis:
		mem, err := memory.NewRedisMemoryFromURL(ctx, cfg.Redis.URL, memory.RedisOptions{
			TTL:         time.Duration(cfg.Redis.TTLSeconds) * time.Second,
			KeyPrefix:   cfg.Redis.KeyPrefix,
			MaxMessages: cfg.Redis.MaxMessages,
		})
		if err != nil {
			return nil, nil, err
		}
		return mem, func() { _ = mem.Close() }, nil
	case config.MemoryMySQL:
		mem, err := memory.NewMySQLMemory(ctx, memory.MySQLConfig{
			DSN:   cfg.MySQL.DSN,
			Table: cfg.MySQL.Table,
			TTL:   time.Duration(cfg.MySQL.TTLSeconds) * time.Second,
		})
		if err != nil {
			return nil, nil, err
		}
		return mem, func() { _ = mem.Close() }, nil
	default:
		return memory.NewBufferMemory(), noop, nil
	}
}

// newStore builds the configured vector store over embedder.
func (a *app) newStore(ctx context.Context, embedder vectorstore.Embedder) (vectorstore.Store, func(), error) {
	if a.cfg.VectorStore.Backend != config.VectorStoreMilvus {
		return vectorstore.NewMemoryStore(embedder), func() {}, nil
	}

	m := a.cfg.VectorStore.Milvus
	store, err := vectorstore.NewMilvusStore(ctx, vectorstore.MilvusConfig{
		Address:        m.Address,
		Port:           m.Port,
		CollectionName: m.Collection,
		EmbeddingDim:   m.EmbeddingDim,
		Embedder:       embedder,
	})
	if err != nil {
		return nil, nil, err
	}
	return store, func() { _ = store.Close() }, nil
}

// personas returns the built-in personas plus those in personas.dir.
func (a *app) personas() (*prompts.Registry, error) {
	all := prompts.Builtins()
	if dir := a.cfg.Personas.Dir; dir != "" {
		loaded, err := prompts.LoadPersonas(dir)
		if err != nil {
			return nil, fmt.Errorf("failed to load personas: %w", err)
		}
		all = append(all, loaded...)
	}
	return prompts.NewRegistry(all...), nil
}
