package llms

import "time"

// Supported providers.
const (
	ProviderOpenAI = "openai"
	ProviderAzure  = "azure"
	ProviderOllama = "ollama"
)

// DefaultAzureAPIVersion is used when an Azure config leaves APIVersion empty.
const DefaultAzureAPIVersion = "2024-02-15-preview"

// Config holds configuration for creating a chat or embedding model.
type Config struct {
	// Provider selects the backend: "openai" (default), "azure" or "ollama".
	Provider string

	// BaseURL is the base URL of the API endpoint.
	// Examples: "https://api.openai.com/v1", "https://my-resource.openai.azure.com/"
	BaseURL string

	// APIKey is the API key for authentication.
	APIKey string

	// Model is the model name to use. For Azure it is the deployment name.
	// Examples: "gpt-3.5-turbo", "gpt-4", "llama2"
	Model string

	// Temperature is the sampling temperature (0-2).
	Temperature float32

	// MaxRetries is the number of retries on transient failures.
	// Zero disables retrying.
	MaxRetries int

	// APIVersion is the Azure OpenAI api-version query parameter.
	APIVersion string

	// Timeout bounds each HTTP request. Zero means no timeout.
	Timeout time.Duration
}

// New creates the chat model selected by cfg.Provider, wrapped in a RetryLLM
// when cfg.MaxRetries is positive.
//
// Example:
//
//	llm := llms.New(llms.Config{
//	    Provider:    llms.ProviderAzure,
//	    BaseURL:     os.Getenv("AZURE_OPENAI_ENDPOINT"),
//	    APIKey:      os.Getenv("AZURE_OPENAI_API_KEY"),
//	    Model:       "gpt-35-turbo",
//	    Temperature: 0.08,
//	    MaxRetries:  2,
//	})
func New(cfg Config) LLM {
	var llm LLM
	switch cfg.Provider {
	case ProviderOllama:
		llm = NewOllamaModel(cfg)
	default:
		llm = NewOpenAIModel(cfg)
	}

	if cfg.MaxRetries > 0 {
		return NewRetryLLM(llm, cfg.MaxRetries)
	}
	return llm
}

// NewEmbedder creates the embedding model selected by cfg.Provider.
// cfg.Model is the embedding model (or Azure embedding deployment).
func NewEmbedder(cfg Config) Embedder {
	if cfg.Provider == ProviderOllama {
		return NewOllamaModel(cfg)
	}
	return NewOpenAIModel(cfg)
}
