package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/HuaTug/LLM/llms"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envVars = []string{
	"LLM_PROVIDER", "LLM_API_KEY", "LLM_BASE_URL", "LLM_MODEL", "LLM_API_VERSION", "LLM_EMBEDDING_MODEL",
	"OPENAI_API_KEY", "OPENAI_BASE_URL", "OPENAI_MODEL",
	"AZURE_OPENAI_ENDPOINT", "AZURE_OPENAI_API_KEY", "AZURE_OPENAI_DEPLOYMENT_NAME",
	"AZURE_OPENAI_API_VERSION", "AZURE_OPENAI_EMBEDDING_DEPLOYMENT",
	"LLM_MEMORY_BACKEND", "LLM_LOGGING_LEVEL",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range envVars {
		t.Setenv(name, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, llms.ProviderOpenAI, cfg.LLM.Provider)
	assert.Equal(t, "gpt-3.5-turbo", cfg.LLM.Model)
	assert.Equal(t, llms.DefaultAzureAPIVersion, cfg.LLM.APIVersion)
	assert.InDelta(t, 0.7, cfg.LLM.Temperature, 1e-6)
	assert.Equal(t, "text-embedding-ada-002", cfg.Embedding.Model)
	assert.Equal(t, MemoryBuffer, cfg.Memory.Backend)
	assert.Equal(t, VectorStoreMemory, cfg.VectorStore.Backend)
	assert.Equal(t, RAGConfig{HoursBack: 24, TopK: 3, ChunkSize: 1000, ChunkOverlap: 200}, cfg.RAG)
	assert.Equal(t, ":8080", cfg.Server.Addr)

	var verr *ValidationErrors
	require.ErrorAs(t, cfg.Validate(), &verr)
	assert.Equal(t, []string{"llm.api_key"}, verr.Fields())
}

func TestLoadAzureFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("AZURE_OPENAI_ENDPOINT", "https://example.openai.azure.com/")
	t.Setenv("AZURE_OPENAI_API_KEY", "azure-key")
	t.Setenv("AZURE_OPENAI_DEPLOYMENT_NAME", "gpt-35-turbo")
	t.Setenv("AZURE_OPENAI_EMBEDDING_DEPLOYMENT", "embed-deploy")
	t.Setenv("LLM_MEMORY_BACKEND", "summary_buffer")

	cfg, err := Load("")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	chat := cfg.ChatModel()
	assert.Equal(t, llms.ProviderAzure, chat.Provider)
	assert.Equal(t, "https://example.openai.azure.com/", chat.BaseURL)
	assert.Equal(t, "azure-key", chat.APIKey)
	assert.Equal(t, "gpt-35-turbo", chat.Model)
	assert.Equal(t, 60*time.Second, chat.Timeout)
	assert.Equal(t, "embed-deploy", cfg.EmbeddingModel().Model)
	assert.Equal(t, MemorySummaryBuffer, cfg.Memory.Backend)
}

func TestLoadFileAndEnvFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
llm:
  provider: ollama
  base_url: http://localhost:11434
  model: llama3
  temperature: 0.2
memory:
  backend: redis
  redis:
    url: redis://cache:6379/1
    max_messages: 50
logging:
  level: debug
  format: json
`), 0o644))

	envFile := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("LLM_LOGGING_LEVEL=warn\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("LLM_LOGGING_LEVEL") })
	os.Unsetenv("LLM_LOGGING_LEVEL")

	cfg, err := Load(path, envFile)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, llms.ProviderOllama, cfg.LLM.Provider)
	assert.Equal(t, "llama3", cfg.LLM.Model)
	assert.InDelta(t, 0.2, cfg.LLM.Temperature, 1e-6)
	assert.Equal(t, "redis://cache:6379/1", cfg.Memory.Redis.URL)
	assert.Equal(t, 50, cfg.Memory.Redis.MaxMessages)
	assert.Equal(t, "warn", cfg.Logging.Level, "env overrides the file")
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)

	_, err = Load("", filepath.Join(t.TempDir(), "nope.env"))
	assert.Error(t, err)
}

func validConfig() *Config {
	return &Config{
		LLM:         LLMConfig{Provider: llms.ProviderOpenAI, APIKey: "k", Model: "m", Temperature: 0.7},
		Embedding:   EmbeddingConfig{Model: "e"},
		Memory:      MemoryConfig{Backend: MemoryBuffer},
		VectorStore: VectorStoreConfig{Backend: VectorStoreMemory},
		RAG:         RAGConfig{HoursBack: 24, TopK: 3, ChunkSize: 1000, ChunkOverlap: 200},
		Logging:     LoggingConfig{Level: "info", Format: "console"},
	}
}

func TestValidateAggregates(t *testing.T) {
	require.NoError(t, validConfig().Validate())

	cfg := validConfig()
	cfg.LLM.Temperature = 2.5
	cfg.Memory.Backend = MemoryMySQL
	cfg.VectorStore.Backend = VectorStoreMilvus
	cfg.RAG.HoursBack = 0
	cfg.RAG.ChunkOverlap = 1000
	cfg.Logging.Format = "xml"

	err := cfg.Validate()
	var verr *ValidationErrors
	require.True(t, errors.As(err, &verr))
	assert.ElementsMatch(t, []string{
		"llm.temperature",
		"memory.mysql.dsn",
		"vector_store.milvus.address",
		"vector_store.milvus.port",
		"vector_store.milvus.embedding_dim",
		"rag.hours_back",
		"rag.chunk_overlap",
		"logging.format",
	}, verr.Fields())
	assert.Contains(t, err.Error(), "configuration validation failed")
}

func TestValidateProviders(t *testing.T) {
	tests := []struct {
		name   string
		llm    LLMConfig
		fields []string
	}{
		{"azure missing endpoint", LLMConfig{Provider: "azure", APIKey: "k", Model: "m", APIVersion: "v"}, []string{"llm.base_url"}},
		{"ollama needs no key", LLMConfig{Provider: "ollama", BaseURL: "http://localhost:11434", Model: "m"}, nil},
		{"unknown provider", LLMConfig{Provider: "acme", Model: "m"}, []string{"llm.provider"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.LLM = tt.llm
			err := cfg.Validate()
			if tt.fields == nil {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationErrors
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.fields, verr.Fields())
		})
	}
}
