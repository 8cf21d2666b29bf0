package agents

import (
	"time"

	"github.com/HuaTug/LLM/llms"
	openai "github.com/sashabaranov/go-openai"
)

// Usage counts tokens spent by the last Run.
type Usage = llms.Usage

// AgentMetadata contains metadata about the agent's execution, including
// conversation ID, token usage, and timing information.
type AgentMetadata struct {
	ConversationID string        `json:"conversation_id"`
	Usage          Usage         `json:"usage"`
	Duration       time.Duration `json:"duration"`
	StartTime      time.Time     `json:"start_time"`
	EndTime        time.Time     `json:"end_time"`
}

// Usage returns the token usage of the last Run.
func (a *Agent) Usage() Usage {
	return a.usage
}

// GetMetadata returns the metadata of the last Run.
func (a *Agent) GetMetadata() AgentMetadata {
	var d time.Duration
	if !a.startTime.IsZero() && !a.endTime.IsZero() {
		d = a.endTime.Sub(a.startTime)
	}
	return AgentMetadata{
		ConversationID: a.conversationID,
		Usage:          a.usage,
		Duration:       d,
		StartTime:      a.startTime,
		EndTime:        a.endTime,
	}
}

// recordUsage adds the provider-reported usage, or counts it locally
// when the provider sent none.
func (a *Agent) recordUsage(reported llms.Usage, prompt []openai.ChatCompletionMessage, output string) {
	if reported.Reported() {
		a.usage.PromptTokens += reported.PromptTokens
		a.usage.CompletionTokens += reported.CompletionTokens
	} else {
		for _, msg := range prompt {
			a.usage.PromptTokens += a.counter.CountTokens(msg.Content)
		}
		a.usage.CompletionTokens += a.counter.CountTokens(output)
	}
	a.usage.TotalTokens = a.usage.PromptTokens + a.usage.CompletionTokens
}
