package agents

import (
	"context"

	"github.com/HuaTug/LLM/memory"
)

// SetConversationID switches the agent to another conversation thread.
// The next Run loads that thread's history from memory.
func (a *Agent) SetConversationID(conversationID string) *Agent {
	a.conversationID = conversationID
	return a
}

// ConversationID returns the current conversation thread.
func (a *Agent) ConversationID() string {
	return a.conversationID
}

// GetMemory returns the memory implementation used by this agent.
func (a *Agent) GetMemory() memory.Memory {
	return a.mem
}

// ClearHistory clears the conversation history for the current conversation ID.
func (a *Agent) ClearHistory(ctx context.Context) error {
	return a.mem.ClearMessages(ctx, a.conversationID)
}
