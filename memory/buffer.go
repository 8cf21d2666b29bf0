package memory

import (
	"context"
	"sort"
	"sync"

	openai "github.com/sashabaranov/go-openai"
)

// BufferMemory keeps the full history of every conversation in process.
// It backs the chat REPL, where history lives only as long as the program.
type BufferMemory struct {
	mu            sync.RWMutex
	conversations map[string][]openai.ChatCompletionMessage
}

// NewBufferMemory creates a new BufferMemory instance.
func NewBufferMemory() *BufferMemory {
	return &BufferMemory{
		conversations: make(map[string][]openai.ChatCompletionMessage),
	}
}

// LoadMessages returns a copy of the conversation history.
func (m *BufferMemory) LoadMessages(ctx context.Context, conversationID string) ([]openai.ChatCompletionMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	messages := m.conversations[conversationKey(conversationID)]
	result := make([]openai.ChatCompletionMessage, len(messages))
	copy(result, messages)
	return result, nil
}

// SaveMessages appends messages to the conversation history.
func (m *BufferMemory) SaveMessages(ctx context.Context, conversationID string, messages []openai.ChatCompletionMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := conversationKey(conversationID)
	m.conversations[id] = append(m.conversations[id], messages...)
	return nil
}

// ClearMessages clears all messages for the given conversation ID.
func (m *BufferMemory) ClearMessages(ctx context.Context, conversationID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.conversations, conversationKey(conversationID))
	return nil
}

// Conversations returns the stored conversation IDs, sorted.
func (m *BufferMemory) Conversations() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.conversations))
	for id := range m.conversations {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
