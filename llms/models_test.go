package llms

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIModelChat(t *testing.T) {
	var got openai.ChatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			ID:    "chatcmpl-1",
			Model: got.Model,
			Choices: []openai.ChatCompletionChoice{{
				Message:      openai.ChatCompletionMessage{Role: "assistant", Content: "Hello!"},
				FinishReason: openai.FinishReasonStop,
			}},
			Usage: openai.Usage{PromptTokens: 3, CompletionTokens: 2, TotalTokens: 5},
		})
	}))
	defer srv.Close()

	llm := NewOpenAIModel(Config{BaseURL: srv.URL + "/v1", APIKey: "sk-test", Model: "gpt-3.5-turbo", Temperature: 0.7})
	resp, err := llm.Chat(context.Background(), []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleUser, Content: "hi"},
	})
	require.NoError(t, err)

	assert.Equal(t, "gpt-3.5-turbo", got.Model)
	assert.InDelta(t, 0.7, got.Temperature, 1e-6)
	assert.Equal(t, "Hello!", Content(resp))

	reply, err := ToReply(resp)
	require.NoError(t, err)
	assert.Equal(t, "Hello!", reply.Content)
	assert.Equal(t, Usage{PromptTokens: 3, CompletionTokens: 2, TotalTokens: 5}, reply.Usage)
	assert.True(t, reply.Usage.Reported())

	_, err = ToReply(openai.ChatCompletionResponse{})
	assert.ErrorIs(t, err, ErrNoChoices)
}

func TestOpenAIModelZeroTemperatureIsSent(t *testing.T) {
	var raw map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{})
	}))
	defer srv.Close()

	llm := NewOpenAIModel(Config{BaseURL: srv.URL, APIKey: "k", Model: "m"})
	_, err := llm.Chat(context.Background(), nil)
	require.NoError(t, err)
	assert.Contains(t, raw, "temperature")
}

func TestOpenAIModelAzure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/openai/deployments/gpt-35-turbo/chat/completions", r.URL.Path)
		assert.Equal(t, "2024-06-01", r.URL.Query().Get("api-version"))
		assert.Equal(t, "azure-key", r.Header.Get("api-key"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: "from azure"}}},
		})
	}))
	defer srv.Close()

	llm := NewOpenAIModel(Config{
		Provider:   ProviderAzure,
		BaseURL:    srv.URL,
		APIKey:     "azure-key",
		Model:      "gpt-35-turbo",
		APIVersion: "2024-06-01",
	})
	resp, err := llm.Chat(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "from azure", Content(resp))
}

func TestOpenAIModelEmbeddingsOrderedByIndex(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[
			{"object":"embedding","index":1,"embedding":[0,1]},
			{"object":"embedding","index":0,"embedding":[1,0]}
		],"model":"text-embedding-ada-002"}`))
	}))
	defer srv.Close()

	llm := NewOpenAIModel(Config{BaseURL: srv.URL, APIKey: "k", Model: "text-embedding-ada-002"})
	vectors, err := llm.Embeddings(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1, 0}, {0, 1}}, vectors)
}

func TestOllamaModel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/chat":
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "llama2", body["model"])
			assert.Equal(t, false, body["stream"])
			_, _ = w.Write([]byte(`{"message":{"role":"assistant","content":"local hi"},"done":true,"prompt_eval_count":4,"eval_count":6}`))
		case "/api/embed":
			_, _ = w.Write([]byte(`{"embeddings":[[0.1,0.2],[0.3,0.4]]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	llm := NewOllamaModel(Config{BaseURL: srv.URL, Model: "llama2"})

	resp, err := llm.Chat(context.Background(), []openai.ChatCompletionMessage{{Role: "user", Content: "hi"}})
	require.NoError(t, err)
	assert.Equal(t, "local hi", Content(resp))
	assert.Equal(t, 10, resp.Usage.TotalTokens)

	vectors, err := llm.Embeddings(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Len(t, vectors, 2)

	_, err = llm.ChatStream(context.Background(), nil)
	assert.ErrorIs(t, err, ErrStreamingUnsupported)
}

func TestOllamaModelErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewOllamaModel(Config{BaseURL: srv.URL, Model: "missing"}).Chat(context.Background(), nil)
	var apiErr *openai.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.HTTPStatusCode)
	assert.False(t, IsRetryable(err))
}

func TestNewSelectsProvider(t *testing.T) {
	assert.IsType(t, &OllamaModel{}, New(Config{Provider: ProviderOllama}))
	assert.IsType(t, &OpenAIModel{}, New(Config{Provider: ProviderAzure}))
	assert.IsType(t, &RetryLLM{}, New(Config{MaxRetries: 2}))
}
