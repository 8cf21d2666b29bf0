package llms

import (
	"context"
	"fmt"
	"math"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIModel is an implementation of the LLM interface using OpenAI's API.
// It can be used with any OpenAI-compatible API endpoint and with Azure OpenAI deployments.
type OpenAIModel struct {
	client      *openai.Client
	model       string
	temperature float32
}

// NewOpenAIModel creates a new OpenAI-compatible chat model instance using a config struct.
//
// Example:
//
//	llm := llms.NewOpenAIModel(llms.Config{
//	    BaseURL:     "https://api.openai.com/v1",
//	    APIKey:      "sk-...",
//	    Model:       "gpt-3.5-turbo",
//	    Temperature: 0.7,
//	})
func NewOpenAIModel(cfg Config) *OpenAIModel {
	return &OpenAIModel{
		client:      openai.NewClientWithConfig(clientConfig(cfg)),
		model:       cfg.Model,
		temperature: cfg.Temperature,
	}
}

func clientConfig(cfg Config) openai.ClientConfig {
	var config openai.ClientConfig
	if cfg.Provider == ProviderAzure {
		config = openai.DefaultAzureConfig(cfg.APIKey, cfg.BaseURL)
		config.APIVersion = cfg.APIVersion
		if config.APIVersion == "" {
			config.APIVersion = DefaultAzureAPIVersion
		}
		// The model name sent in requests is already the deployment name.
		config.AzureModelMapperFunc = func(model string) string { return model }
	} else {
		config = openai.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			config.BaseURL = cfg.BaseURL
		}
	}

	if cfg.Timeout > 0 {
		config.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	return config
}

// WithTemperature returns a copy of the model that shares its client.
func (m *OpenAIModel) WithTemperature(t float32) LLM {
	clone := *m
	clone.temperature = t
	return &clone
}

// requestTemperature maps 0 to the smallest float so that the field is not
// dropped by omitempty and the API really samples greedily.
func (m *OpenAIModel) requestTemperature() float32 {
	if m.temperature == 0 {
		return math.SmallestNonzeroFloat32
	}
	return m.temperature
}

// Chat sends a chat completion request to the LLM and returns the response.
func (m *OpenAIModel) Chat(ctx context.Context, messages []openai.ChatCompletionMessage) (openai.ChatCompletionResponse, error) {
	req := openai.ChatCompletionRequest{
		Model:       m.model,
		Messages:    messages,
		Temperature: m.requestTemperature(),
	}

	return m.client.CreateChatCompletion(ctx, req)
}

// ChatStream sends a chat completion request and returns a stream of responses.
// This allows you to receive responses incrementally as they are generated.
func (m *OpenAIModel) ChatStream(ctx context.Context, messages []openai.ChatCompletionMessage) (*openai.ChatCompletionStream, error) {
	req := openai.ChatCompletionRequest{
		Model:       m.model,
		Messages:    messages,
		Temperature: m.requestTemperature(),
		Stream:      true,
	}

	return m.client.CreateChatCompletionStream(ctx, req)
}

// Embeddings creates embeddings for the given inputs using the embedding model.
// It returns one vector per input, in input order.
func (m *OpenAIModel) Embeddings(ctx context.Context, inputs []string) ([][]float32, error) {
	if len(inputs) == 0 {
		return nil, nil
	}

	req := openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(m.model),
		Input: inputs,
	}

	resp, err := m.client.CreateEmbeddings(ctx, req)
	if err != nil {
		return nil, err
	}

	if len(resp.Data) != len(inputs) {
		return nil, fmt.Errorf("embedding count mismatch: expected %d, got %d", len(inputs), len(resp.Data))
	}

	results := make([][]float32, len(inputs))
	for _, data := range resp.Data {
		if data.Index < 0 || data.Index >= len(results) {
			return nil, fmt.Errorf("embedding index %d out of range", data.Index)
		}
		results[data.Index] = data.Embedding
	}

	return results, nil
}
