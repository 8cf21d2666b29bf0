package llms

import (
	"context"

	openai "github.com/sashabaranov/go-openai"
)

// LLM is the interface that all language models must implement.
// It provides a standard way for chains and agents to interact with different LLM providers.
type LLM interface {
	// Chat sends a chat completion request to the LLM and returns the response.
	// The messages parameter contains the conversation history.
	Chat(ctx context.Context, messages []openai.ChatCompletionMessage) (openai.ChatCompletionResponse, error)
}

// ChatStreamer is an optional interface for LLMs that support streaming responses.
type ChatStreamer interface {
	// ChatStream sends a chat completion request and returns a stream of responses.
	ChatStream(ctx context.Context, messages []openai.ChatCompletionMessage) (*openai.ChatCompletionStream, error)
}

// TemperatureSetter is an optional interface for LLMs whose sampling
// temperature can be changed per call site.
type TemperatureSetter interface {
	// WithTemperature returns a copy of the model using temperature t.
	WithTemperature(t float32) LLM
}

// Embedder is an interface for models that support generating embeddings.
type Embedder interface {
	// Embeddings returns one embedding vector per input string.
	Embeddings(ctx context.Context, inputs []string) ([][]float32, error)
}

// WithTemperature returns llm at temperature t when it supports it,
// and llm unchanged otherwise.
func WithTemperature(llm LLM, t float32) LLM {
	if ts, ok := llm.(TemperatureSetter); ok {
		return ts.WithTemperature(t)
	}
	return llm
}

// Content returns the first choice's message content, or "" when the
// response has no choices.
func Content(resp openai.ChatCompletionResponse) string {
	if len(resp.Choices) == 0 {
		return ""
	}
	return resp.Choices[0].Message.Content
}
