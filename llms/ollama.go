package llms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

// OllamaModel is an implementation of the LLM interface using Ollama's API.
// Ollama is a tool for running large language models locally.
type OllamaModel struct {
	baseURL     string
	model       string
	temperature float32
	client      *http.Client
}

// NewOllamaModel creates a new Ollama chat model instance.
//
// Example:
//
//	llm := llms.NewOllamaModel(llms.Config{
//	    BaseURL: "http://localhost:11434",
//	    Model:   "llama2",
//	})
func NewOllamaModel(cfg Config) *OllamaModel {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}

	return &OllamaModel{
		baseURL:     baseURL,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		client:      &http.Client{Timeout: cfg.Timeout},
	}
}

// WithTemperature returns a copy of the model using temperature t.
func (m *OllamaModel) WithTemperature(t float32) LLM {
	clone := *m
	clone.temperature = t
	return &clone
}

// post sends body as JSON to path and decodes the JSON reply into out.
func (m *OllamaModel) post(ctx context.Context, path string, body, out any) error {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s%s", m.baseURL, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return &openai.APIError{
			HTTPStatusCode: resp.StatusCode,
			Message:        fmt.Sprintf("ollama API error: %s", string(raw)),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Chat sends a chat completion request to Ollama and returns the response.
func (m *OllamaModel) Chat(ctx context.Context, messages []openai.ChatCompletionMessage) (openai.ChatCompletionResponse, error) {
	// Convert OpenAI messages to Ollama format
	ollamaMessages := make([]map[string]any, 0, len(messages))
	for _, msg := range messages {
		ollamaMessages = append(ollamaMessages, map[string]any{
			"role":    msg.Role,
			"content": msg.Content,
		})
	}

	reqBody := map[string]any{
		"model":    m.model,
		"messages": ollamaMessages,
		"stream":   false,
		"options": map[string]any{
			"temperature": m.temperature,
		},
	}

	var ollamaResp struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		Done            bool   `json:"done"`
		DoneReason      string `json:"done_reason"`
		PromptEvalCount int    `json:"prompt_eval_count"`
		EvalCount       int    `json:"eval_count"`
	}
	if err := m.post(ctx, "/api/chat", reqBody, &ollamaResp); err != nil {
		return openai.ChatCompletionResponse{}, err
	}

	finishReason := openai.FinishReasonStop
	if ollamaResp.DoneReason == "length" {
		finishReason = openai.FinishReasonLength
	}

	// Convert Ollama response to OpenAI format
	return openai.ChatCompletionResponse{
		ID: "ollama-" + m.model,
		Choices: []openai.ChatCompletionChoice{
			{
				Index: 0,
				Message: openai.ChatCompletionMessage{
					Role:    ollamaResp.Message.Role,
					Content: ollamaResp.Message.Content,
				},
				FinishReason: finishReason,
			},
		},
		Model: m.model,
		Usage: openai.Usage{
			TotalTokens:      ollamaResp.PromptEvalCount + ollamaResp.EvalCount,
			PromptTokens:     ollamaResp.PromptEvalCount,
			CompletionTokens: ollamaResp.EvalCount,
		},
	}, nil
}

// Embeddings creates embeddings for the given inputs with Ollama's /api/embed endpoint.
func (m *OllamaModel) Embeddings(ctx context.Context, inputs []string) ([][]float32, error) {
	if len(inputs) == 0 {
		return nil, nil
	}

	reqBody := map[string]any{
		"model": m.model,
		"input": inputs,
	}

	var embedResp struct {
		Embeddings [][]float32 `json:"embeddings"`
	}
	if err := m.post(ctx, "/api/embed", reqBody, &embedResp); err != nil {
		return nil, err
	}

	if len(embedResp.Embeddings) != len(inputs) {
		return nil, fmt.Errorf("embedding count mismatch: expected %d, got %d", len(inputs), len(embedResp.Embeddings))
	}
	return embedResp.Embeddings, nil
}

// ChatStream is not supported for Ollama. Callers fall back to Chat.
func (m *OllamaModel) ChatStream(ctx context.Context, messages []openai.ChatCompletionMessage) (*openai.ChatCompletionStream, error) {
	return nil, ErrStreamingUnsupported
}

// ErrStreamingUnsupported is returned by ChatStream on models that cannot stream.
var ErrStreamingUnsupported = errors.New("streaming not supported")
