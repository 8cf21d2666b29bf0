package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/HuaTug/LLM/documents"
	"github.com/HuaTug/LLM/llms"
	"github.com/HuaTug/LLM/memory"
	"github.com/HuaTug/LLM/messages"
	"github.com/HuaTug/LLM/vectorstore"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultEnvFile is read by Load when it exists.
const DefaultEnvFile = ".env"

// Load builds the configuration. Values come from, in increasing priority:
// defaults, the YAML file at path (skipped when path is empty), and the
// environment: LLM_<SECTION>_<KEY> (e.g. LLM_MEMORY_BACKEND) plus the usual
// OPENAI_* and AZURE_OPENAI_* names. envFiles are loaded into the environment first without
// overriding variables that are already set; with none given, DefaultEnvFile
// is used if present.
//
// Load does not validate; call Validate once the needed parts are known.
func Load(path string, envFiles ...string) (*Config, error) {
	if err := loadEnvFiles(envFiles); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("LLM")
	v.AutomaticEnv()
	if err := bindEnvVariables(v); err != nil {
		return nil, fmt.Errorf("failed to bind environment: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = llms.ProviderOpenAI
		if v.GetString("azure.endpoint") != "" {
			cfg.LLM.Provider = llms.ProviderAzure
		}
	}

	return &cfg, nil
}

func loadEnvFiles(files []string) error {
	if len(files) == 0 {
		if _, err := os.Stat(DefaultEnvFile); err != nil {
			return nil
		}
		files = []string{DefaultEnvFile}
	}
	if err := godotenv.Load(files...); err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("llm.provider", "")
	v.SetDefault("llm.model", "gpt-3.5-turbo")
	v.SetDefault("llm.api_version", llms.DefaultAzureAPIVersion)
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.max_retries", 2)
	v.SetDefault("llm.timeout_seconds", 60)

	v.SetDefault("embedding.model", "text-embedding-ada-002")

	v.SetDefault("memory.backend", MemoryBuffer)
	v.SetDefault("memory.max_tokens", memory.DefaultSummaryTokenLimit)
	v.SetDefault("memory.redis.url", "redis://localhost:6379/0")
	v.SetDefault("memory.redis.ttl_seconds", 24*60*60)
	v.SetDefault("memory.redis.max_messages", 0)
	v.SetDefault("memory.redis.key_prefix", "")
	v.SetDefault("memory.mysql.dsn", "")
	v.SetDefault("memory.mysql.table", memory.DefaultMySQLTable)
	v.SetDefault("memory.mysql.ttl_seconds", 0)

	v.SetDefault("vector_store.backend", VectorStoreMemory)
	v.SetDefault("vector_store.milvus.address", "localhost")
	v.SetDefault("vector_store.milvus.port", 19530)
	v.SetDefault("vector_store.milvus.collection", "latest_messages")
	v.SetDefault("vector_store.milvus.embedding_dim", 1536)

	v.SetDefault("rag.hours_back", messages.DefaultHoursBack)
	v.SetDefault("rag.top_k", vectorstore.DefaultTopK)
	v.SetDefault("rag.chunk_size", documents.DefaultChunkSize)
	v.SetDefault("rag.chunk_overlap", documents.DefaultChunkOverlap)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("mcp.config_path", "")
	v.SetDefault("personas.dir", "")
}

// bindEnvVariables maps the OpenAI and Azure OpenAI variable names onto
// config keys. The first variable set wins.
func bindEnvVariables(v *viper.Viper) error {
	bindings := map[string][]string{
		"llm.provider":    {"LLM_PROVIDER"},
		"llm.api_key":     {"LLM_API_KEY", "AZURE_OPENAI_API_KEY", "OPENAI_API_KEY"},
		"llm.base_url":    {"LLM_BASE_URL", "AZURE_OPENAI_ENDPOINT", "OPENAI_BASE_URL"},
		"llm.model":       {"LLM_MODEL", "AZURE_OPENAI_DEPLOYMENT_NAME", "OPENAI_MODEL"},
		"llm.api_version": {"LLM_API_VERSION", "AZURE_OPENAI_API_VERSION"},
		"embedding.model": {"LLM_EMBEDDING_MODEL", "AZURE_OPENAI_EMBEDDING_DEPLOYMENT"},
		"azure.endpoint":  {"AZURE_OPENAI_ENDPOINT"},
	}

	var errs []error
	for key, envs := range bindings {
		args := append([]string{key}, envs...)
		if err := v.BindEnv(args...); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
