package memory

import (
	"context"

	openai "github.com/sashabaranov/go-openai"
)

// TokenBufferMemory returns only the most recent messages of a backing
// Memory whose combined size stays within MaxTokenLimit tokens.
// The backing store keeps the full history.
type TokenBufferMemory struct {
	store         Memory
	counter       TokenCounter
	maxTokenLimit int
}

// NewTokenBufferMemory wraps store. A nil store uses a new BufferMemory.
//
// Example:
//
//	counter, _ := memory.DefaultTokenCounter()
//	mem := memory.NewTokenBufferMemory(redisMem, counter, 2000)
func NewTokenBufferMemory(store Memory, counter TokenCounter, maxTokenLimit int) *TokenBufferMemory {
	if store == nil {
		store = NewBufferMemory()
	}
	return &TokenBufferMemory{
		store:         store,
		counter:       counter,
		maxTokenLimit: maxTokenLimit,
	}
}

// LoadMessages returns the longest suffix of the history that fits the token limit.
func (m *TokenBufferMemory) LoadMessages(ctx context.Context, conversationID string) ([]openai.ChatCompletionMessage, error) {
	msgs, err := m.store.LoadMessages(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	start := 0
	for start < len(msgs) && countMessages(m.counter, msgs[start:], "Human", "AI") > m.maxTokenLimit {
		start++
	}
	return msgs[start:], nil
}

// SaveMessages appends messages to the backing store.
func (m *TokenBufferMemory) SaveMessages(ctx context.Context, conversationID string, messages []openai.ChatCompletionMessage) error {
	return m.store.SaveMessages(ctx, conversationID, messages)
}

// ClearMessages clears the backing store.
func (m *TokenBufferMemory) ClearMessages(ctx context.Context, conversationID string) error {
	return m.store.ClearMessages(ctx, conversationID)
}
