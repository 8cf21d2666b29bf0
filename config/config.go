// Package config loads the application configuration from a YAML file,
// an optional .env file and environment variables.
package config

import (
	"time"

	"github.com/HuaTug/LLM/llms"
)

// Memory backends.
const (
	MemoryBuffer        = "buffer"
	MemoryTokenBuffer   = "token_buffer"
	MemorySummaryBuffer = "summary_buffer"
	MemoryRedis         = "redis"
	MemoryMySQL         = "mysql"
)

// Vector store backends.
const (
	VectorStoreMemory = "memory"
	VectorStoreMilvus = "milvus"
)

type Config struct {
	LLM         LLMConfig         `mapstructure:"llm"`
	Embedding   EmbeddingConfig   `mapstructure:"embedding"`
	Memory      MemoryConfig      `mapstructure:"memory"`
	VectorStore VectorStoreConfig `mapstructure:"vector_store"`
	RAG         RAGConfig         `mapstructure:"rag"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	Server      ServerConfig      `mapstructure:"server"`
	MCP         MCPConfig         `mapstructure:"mcp"`
	Personas    PersonasConfig    `mapstructure:"personas"`
}

type LLMConfig struct {
	Provider       string  `mapstructure:"provider"`
	BaseURL        string  `mapstructure:"base_url"`
	APIKey         string  `mapstructure:"api_key"`
	Model          string  `mapstructure:"model"`
	APIVersion     string  `mapstructure:"api_version"`
	Temperature    float32 `mapstructure:"temperature"`
	MaxRetries     int     `mapstructure:"max_retries"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds"`
}

// EmbeddingConfig selects the embedding model. Endpoint and credentials
// are shared with LLMConfig.
type EmbeddingConfig struct {
	Model string `mapstructure:"model"`
}

type MemoryConfig struct {
	Backend   string      `mapstructure:"backend"`
	MaxTokens int         `mapstructure:"max_tokens"`
	Redis     RedisConfig `mapstructure:"redis"`
	MySQL     MySQLConfig `mapstructure:"mysql"`
}

type RedisConfig struct {
	URL         string `mapstructure:"url"`
	TTLSeconds  int    `mapstructure:"ttl_seconds"`
	MaxMessages int    `mapstructure:"max_messages"`
	KeyPrefix   string `mapstructure:"key_prefix"`
}

type MySQLConfig struct {
	DSN        string `mapstructure:"dsn"`
	Table      string `mapstructure:"table"`
	TTLSeconds int    `mapstructure:"ttl_seconds"`
}

type VectorStoreConfig struct {
	Backend string       `mapstructure:"backend"`
	Milvus  MilvusConfig `mapstructure:"milvus"`
}

type MilvusConfig struct {
	Address      string `mapstructure:"address"`
	Port         int    `mapstructure:"port"`
	Collection   string `mapstructure:"collection"`
	EmbeddingDim int    `mapstructure:"embedding_dim"`
}

type RAGConfig struct {
	HoursBack    int `mapstructure:"hours_back"`
	TopK         int `mapstructure:"top_k"`
	ChunkSize    int `mapstructure:"chunk_size"`
	ChunkOverlap int `mapstructure:"chunk_overlap"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type MCPConfig struct {
	// ConfigPath points at a file listing mcp_servers. Empty disables tools.
	ConfigPath string `mapstructure:"config_path"`
}

type PersonasConfig struct {
	// Dir holds extra persona markdown files. Empty uses the built-ins only.
	Dir string `mapstructure:"dir"`
}

// ChatModel returns the llms.Config for the chat model.
func (c *Config) ChatModel() llms.Config {
	return llms.Config{
		Provider:    c.LLM.Provider,
		BaseURL:     c.LLM.BaseURL,
		APIKey:      c.LLM.APIKey,
		Model:       c.LLM.Model,
		Temperature: c.LLM.Temperature,
		MaxRetries:  c.LLM.MaxRetries,
		APIVersion:  c.LLM.APIVersion,
		Timeout:     time.Duration(c.LLM.TimeoutSeconds) * time.Second,
	}
}

// EmbeddingModel returns the llms.Config for the embedding model.
func (c *Config) EmbeddingModel() llms.Config {
	cfg := c.ChatModel()
	cfg.Model = c.Embedding.Model
	return cfg
}
