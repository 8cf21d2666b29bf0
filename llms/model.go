package llms

import (
	"errors"

	openai "github.com/sashabaranov/go-openai"
)

// ErrNoChoices is returned when a completion carries no choices.
var ErrNoChoices = errors.New("no response from LLM")

// Usage is the token usage reported for a completion.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Reported reports whether the provider filled in the usage.
func (u Usage) Reported() bool {
	return u.TotalTokens > 0
}

// Reply is the first choice of a completion together with its usage.
type Reply struct {
	Content      string `json:"content"`
	FinishReason string `json:"finish_reason,omitempty"`
	Usage        Usage  `json:"usage"`
}

// ToReply extracts the first choice of resp.
func ToReply(resp openai.ChatCompletionResponse) (Reply, error) {
	if len(resp.Choices) == 0 {
		return Reply{}, ErrNoChoices
	}
	choice := resp.Choices[0]
	return Reply{
		Content:      choice.Message.Content,
		FinishReason: string(choice.FinishReason),
		Usage: Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}
