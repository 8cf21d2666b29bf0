package memory

import (
	"context"
	"errors"
	"fmt"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func user(content string) openai.ChatCompletionMessage {
	return openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: content}
}

func assistant(content string) openai.ChatCompletionMessage {
	return openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content}
}

// summarizerLLM answers every request with a numbered summary and records the prompts.
type summarizerLLM struct {
	prompts []string
	err     error
}

func (s *summarizerLLM) Chat(_ context.Context, msgs []openai.ChatCompletionMessage) (openai.ChatCompletionResponse, error) {
	if s.err != nil {
		return openai.ChatCompletionResponse{}, s.err
	}
	s.prompts = append(s.prompts, msgs[len(msgs)-1].Content)
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{Message: assistant(fmt.Sprintf("summary %d", len(s.prompts)))}},
	}, nil
}

func TestBufferMemory(t *testing.T) {
	ctx := context.Background()
	mem := NewBufferMemory()

	require.NoError(t, mem.SaveMessages(ctx, "", []openai.ChatCompletionMessage{user("hi"), assistant("hello")}))
	require.NoError(t, mem.SaveMessages(ctx, "other", []openai.ChatCompletionMessage{user("yo")}))

	msgs, err := mem.LoadMessages(ctx, DefaultConversationID)
	require.NoError(t, err)
	assert.Equal(t, []openai.ChatCompletionMessage{user("hi"), assistant("hello")}, msgs)

	msgs[0].Content = "mutated"
	again, _ := mem.LoadMessages(ctx, "")
	assert.Equal(t, "hi", again[0].Content)

	assert.Equal(t, []string{"default", "other"}, mem.Conversations())

	require.NoError(t, mem.ClearMessages(ctx, ""))
	msgs, err = mem.LoadMessages(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, msgs)
	assert.NotNil(t, msgs)
}

func TestBufferString(t *testing.T) {
	msgs := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: "earlier talk"},
		user("hi"),
		assistant("hello"),
		{Role: openai.ChatMessageRoleTool, Content: "42"},
	}
	assert.Equal(t, "System: earlier talk\nHuman: hi\nAI: hello\ntool: 42", BufferString(msgs, "Human", "AI"))
	assert.Equal(t, "", BufferString(nil, "Human", "AI"))
}

func TestTokenBufferMemory(t *testing.T) {
	ctx := context.Background()
	backing := NewBufferMemory()
	mem := NewTokenBufferMemory(backing, WordCounter{}, 6)

	require.NoError(t, mem.SaveMessages(ctx, "c", []openai.ChatCompletionMessage{
		user("one two three"), // Human: one two three -> 4 words
		assistant("four five"), // AI: four five -> 3 words
		user("six"),            // Human: six -> 2 words
	}))

	msgs, err := mem.LoadMessages(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, []openai.ChatCompletionMessage{assistant("four five"), user("six")}, msgs)

	full, _ := backing.LoadMessages(ctx, "c")
	assert.Len(t, full, 3)

	require.NoError(t, mem.ClearMessages(ctx, "c"))
	msgs, _ = mem.LoadMessages(ctx, "c")
	assert.Empty(t, msgs)
}

func TestSummaryBufferMemoryPrunesIntoSummary(t *testing.T) {
	ctx := context.Background()
	llm := &summarizerLLM{}
	mem := NewSummaryBufferMemory(llm, WordCounter{}, WithMaxTokenLimit(6))

	require.NoError(t, mem.SaveMessages(ctx, "", []openai.ChatCompletionMessage{user("one two three")}))
	assert.Empty(t, llm.prompts)

	require.NoError(t, mem.SaveMessages(ctx, "", []openai.ChatCompletionMessage{assistant("four five")}))
	require.Len(t, llm.prompts, 1)
	assert.Contains(t, llm.prompts[0], "New lines of conversation:\nHuman: one two three\n")

	summary, err := mem.Summary(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "summary 1", summary)

	msgs, err := mem.LoadMessages(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: "summary 1"},
		assistant("four five"),
	}, msgs)
	assert.Equal(t, []openai.ChatCompletionMessage{assistant("four five")}, mem.Messages(""))
	assert.Equal(t, "System: summary 1\nAI: four five", mem.Buffer(""))

	// The next prune extends the existing summary.
	require.NoError(t, mem.SaveMessages(ctx, "", []openai.ChatCompletionMessage{user("six seven eight")}))
	require.Len(t, llm.prompts, 2)
	assert.Contains(t, llm.prompts[1], "Current summary:\nsummary 1\n")

	require.NoError(t, mem.ClearMessages(ctx, ""))
	summary, _ = mem.Summary(ctx, "")
	assert.Empty(t, summary)
}

func TestSummaryBufferMemoryKeepsMessagesOnError(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("rate limited")
	mem := NewSummaryBufferMemory(&summarizerLLM{err: boom}, WordCounter{}, WithMaxTokenLimit(2))

	err := mem.SaveMessages(ctx, "", []openai.ChatCompletionMessage{user("a b c d")})
	assert.ErrorIs(t, err, boom)
	assert.Len(t, mem.Messages(""), 1)
}

var _ Summarizer = (*SummaryBufferMemory)(nil)
