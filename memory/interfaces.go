package memory

import (
	"context"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultConversationID is used when a caller passes an empty conversation ID.
const DefaultConversationID = "default"

// Memory is the interface that all memory implementations must satisfy.
// It provides methods for loading and saving conversation history.
//
// Implementations:
//   - BufferMemory: everything, in process
//   - TokenBufferMemory: the most recent messages within a token budget
//   - SummaryBufferMemory: recent messages plus an LLM-written summary of older ones
//   - RedisMemory, MySQLMemory: persistent storage with expiry
type Memory interface {
	// LoadMessages loads conversation history for the given conversation ID.
	// Returns an empty slice if no history exists.
	LoadMessages(ctx context.Context, conversationID string) ([]openai.ChatCompletionMessage, error)

	// SaveMessages appends messages to the conversation history.
	// This is called with each user message and assistant response.
	SaveMessages(ctx context.Context, conversationID string, messages []openai.ChatCompletionMessage) error

	// ClearMessages clears all messages for the given conversation ID.
	ClearMessages(ctx context.Context, conversationID string) error
}

// Summarizer is implemented by memories that keep a running summary.
type Summarizer interface {
	// Summary returns the summary of pruned messages, or "" if nothing was pruned.
	Summary(ctx context.Context, conversationID string) (string, error)
}

func conversationKey(conversationID string) string {
	if conversationID == "" {
		return DefaultConversationID
	}
	return conversationID
}

// BufferString renders messages as "Human: ...\nAI: ..." lines.
// System messages are prefixed with "System", other roles with their own name.
func BufferString(msgs []openai.ChatCompletionMessage, humanPrefix, aiPrefix string) string {
	lines := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		var role string
		switch msg.Role {
		case openai.ChatMessageRoleUser:
			role = humanPrefix
		case openai.ChatMessageRoleAssistant:
			role = aiPrefix
		case openai.ChatMessageRoleSystem:
			role = "System"
		default:
			role = msg.Role
		}
		lines = append(lines, role+": "+msg.Content)
	}
	return strings.Join(lines, "\n")
}
