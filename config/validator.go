package config

import (
	"fmt"
	"strings"

	"github.com/HuaTug/LLM/llms"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// ValidationErrors collects every problem found by Validate.
type ValidationErrors []*ValidationError

func (errs ValidationErrors) Error() string {
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return fmt.Sprintf("configuration validation failed: %s", strings.Join(msgs, "; "))
}

// Fields returns the names of the invalid fields.
func (errs ValidationErrors) Fields() []string {
	fields := make([]string, len(errs))
	for i, e := range errs {
		fields[i] = e.Field
	}
	return fields
}

type validator struct {
	errs ValidationErrors
}

func (v *validator) check(ok bool, field, format string, args ...any) {
	if !ok {
		v.errs = append(v.errs, &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}
}

// Validate checks the whole configuration and returns a *ValidationErrors
// listing every violation, or nil.
func (c *Config) Validate() error {
	v := &validator{}

	validateLLM(v, c.LLM)
	v.check(c.Embedding.Model != "", "embedding.model", "embedding model is required")
	validateMemory(v, c.Memory)
	validateVectorStore(v, c.VectorStore)
	validateRAG(v, c.RAG)

	switch c.Logging.Format {
	case "json", "console":
	default:
		v.check(false, "logging.format", "format must be json or console, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		v.check(false, "logging.level", "unknown level %q", c.Logging.Level)
	}

	if len(v.errs) > 0 {
		return &v.errs
	}
	return nil
}

func validateLLM(v *validator, cfg LLMConfig) {
	switch cfg.Provider {
	case llms.ProviderOpenAI:
		v.check(cfg.APIKey != "", "llm.api_key", "API key is required for the %s provider", cfg.Provider)
	case llms.ProviderAzure:
		v.check(cfg.APIKey != "", "llm.api_key", "API key is required for the %s provider", cfg.Provider)
		v.check(cfg.BaseURL != "", "llm.base_url", "endpoint is required for the azure provider")
		v.check(cfg.APIVersion != "", "llm.api_version", "API version is required for the azure provider")
	case llms.ProviderOllama:
		v.check(cfg.BaseURL != "", "llm.base_url", "base URL is required for the ollama provider")
	default:
		v.check(false, "llm.provider", "unsupported provider %q", cfg.Provider)
	}

	v.check(cfg.Model != "", "llm.model", "model is required")
	v.check(cfg.Temperature >= 0 && cfg.Temperature <= 2, "llm.temperature", "temperature must be between 0 and 2, got %v", cfg.Temperature)
	v.check(cfg.MaxRetries >= 0, "llm.max_retries", "max retries must not be negative")
	v.check(cfg.TimeoutSeconds >= 0, "llm.timeout_seconds", "timeout must not be negative")
}

func validateMemory(v *validator, cfg MemoryConfig) {
	switch cfg.Backend {
	case MemoryBuffer:
	case MemoryTokenBuffer, MemorySummaryBuffer:
		v.check(cfg.MaxTokens > 0, "memory.max_tokens", "max tokens must be positive for %s memory", cfg.Backend)
	case MemoryRedis:
		v.check(cfg.Redis.URL != "", "memory.redis.url", "Redis URL is required")
		v.check(cfg.Redis.TTLSeconds >= 0, "memory.redis.ttl_seconds", "TTL must not be negative")
		v.check(cfg.Redis.MaxMessages >= 0, "memory.redis.max_messages", "max messages must not be negative")
	case MemoryMySQL:
		v.check(cfg.MySQL.DSN != "", "memory.mysql.dsn", "MySQL DSN is required")
		v.check(cfg.MySQL.TTLSeconds >= 0, "memory.mysql.ttl_seconds", "TTL must not be negative")
	default:
		v.check(false, "memory.backend", "unsupported memory backend %q", cfg.Backend)
	}
}

func validateVectorStore(v *validator, cfg VectorStoreConfig) {
	switch cfg.Backend {
	case VectorStoreMemory:
	case VectorStoreMilvus:
		v.check(cfg.Milvus.Address != "", "vector_store.milvus.address", "address is required")
		v.check(cfg.Milvus.Port > 0 && cfg.Milvus.Port <= 65535, "vector_store.milvus.port", "port must be between 1 and 65535, got %d", cfg.Milvus.Port)
		v.check(cfg.Milvus.EmbeddingDim > 0, "vector_store.milvus.embedding_dim", "embedding dimension must be positive")
	default:
		v.check(false, "vector_store.backend", "unsupported vector store %q", cfg.Backend)
	}
}

func validateRAG(v *validator, cfg RAGConfig) {
	v.check(cfg.HoursBack > 0, "rag.hours_back", "hours back must be positive, got %d", cfg.HoursBack)
	v.check(cfg.TopK > 0, "rag.top_k", "top k must be positive, got %d", cfg.TopK)
	v.check(cfg.ChunkSize > 0, "rag.chunk_size", "chunk size must be positive, got %d", cfg.ChunkSize)
	v.check(cfg.ChunkOverlap >= 0 && cfg.ChunkOverlap < cfg.ChunkSize, "rag.chunk_overlap",
		"chunk overlap must be in [0, chunk_size), got %d", cfg.ChunkOverlap)
}
