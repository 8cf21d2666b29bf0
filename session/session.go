// Package session saves and restores chat conversations as JSON files.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/HuaTug/LLM/memory"
	openai "github.com/sashabaranov/go-openai"
)

// Roles stored in a session file.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one saved turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Session is a snapshot of one conversation: the persona in use and its messages.
type Session struct {
	Persona   string    `json:"persona"`
	Timestamp time.Time `json:"timestamp"`
	Messages  []Message `json:"messages"`
}

// DefaultFilename names a session file after t, e.g. conversation_20240501_120000.json.
func DefaultFilename(t time.Time) string {
	return "conversation_" + t.Format("20060102_150405") + ".json"
}

// FromMemory snapshots the user and assistant messages of a conversation.
// Other roles, such as a summary system message, are not saved.
func FromMemory(ctx context.Context, mem memory.Memory, conversationID, persona string, now time.Time) (*Session, error) {
	msgs, err := mem.LoadMessages(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}
	return FromMessages(persona, msgs, now), nil
}

// FromMessages builds a session from chat messages, keeping user and assistant turns.
func FromMessages(persona string, msgs []openai.ChatCompletionMessage, now time.Time) *Session {
	s := &Session{Persona: persona, Timestamp: now, Messages: []Message{}}
	for _, m := range msgs {
		if m.Role == RoleUser || m.Role == RoleAssistant {
			s.Messages = append(s.Messages, Message{Role: m.Role, Content: m.Content})
		}
	}
	return s
}

// Save writes the session as indented JSON. An empty path uses
// DefaultFilename(s.Timestamp). It returns the path written.
func (s *Session) Save(path string) (string, error) {
	if path == "" {
		path = DefaultFilename(s.Timestamp)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode session: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write session: %w", err)
	}
	return path, nil
}

// Load reads a session file.
func Load(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to decode session %s: %w", path, err)
	}
	if s.Persona == "" {
		return nil, fmt.Errorf("session %s has no persona", path)
	}
	return &s, nil
}

// Restore appends the session's user and assistant messages to a conversation.
// Messages with other roles are skipped.
func (s *Session) Restore(ctx context.Context, mem memory.Memory, conversationID string) error {
	msgs := make([]openai.ChatCompletionMessage, 0, len(s.Messages))
	for _, m := range s.Messages {
		if m.Role != RoleUser && m.Role != RoleAssistant {
			continue
		}
		msgs = append(msgs, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	if err := mem.SaveMessages(ctx, conversationID, msgs); err != nil {
		return fmt.Errorf("failed to restore conversation: %w", err)
	}
	return nil
}
