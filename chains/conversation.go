package chains

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/HuaTug/LLM/llms"
	"github.com/HuaTug/LLM/logger"
	"github.com/HuaTug/LLM/memory"
	"github.com/HuaTug/LLM/prompts"
	openai "github.com/sashabaranov/go-openai"
)

// ConversationChain renders the conversation history and the new input into
// a prompt, asks the LLM and records both turns in memory.
type ConversationChain struct {
	LLM            llms.LLM
	Memory         memory.Memory
	Prompt         prompts.Template
	ConversationID string

	// HumanPrefix and AIPrefix label turns in {history}.
	HumanPrefix string
	AIPrefix    string

	Logger logger.Logger
}

// NewConversationChain creates a chain with "Human"/"AI" prefixes.
//
// Example:
//
//	chain := chains.NewConversationChain(llm, memory.NewBufferMemory(), persona.Template)
//	answer, err := chain.Predict(ctx, "Who built the Great Wall?")
func NewConversationChain(llm llms.LLM, mem memory.Memory, prompt prompts.Template) *ConversationChain {
	return &ConversationChain{
		LLM:         llm,
		Memory:      mem,
		Prompt:      prompt,
		HumanPrefix: "Human",
		AIPrefix:    "AI",
		Logger:      logger.NopLogger(),
	}
}

// StreamResponse is one chunk of a streamed answer.
type StreamResponse struct {
	// Content is the text in this chunk.
	Content string

	// Done is set on the final chunk, after the turn was saved.
	Done bool

	// Error ends the stream.
	Error error
}

func (c *ConversationChain) buildMessages(ctx context.Context, input string) ([]openai.ChatCompletionMessage, error) {
	history, err := c.Memory.LoadMessages(ctx, c.ConversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	prompt, err := c.Prompt.Format(map[string]string{
		"history": memory.BufferString(history, c.HumanPrefix, c.AIPrefix),
		"input":   input,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to format prompt: %w", err)
	}

	return []openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleUser, Content: prompt}}, nil
}

func (c *ConversationChain) saveTurn(ctx context.Context, input, answer string) error {
	err := c.Memory.SaveMessages(ctx, c.ConversationID, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleUser, Content: input},
		{Role: openai.ChatMessageRoleAssistant, Content: answer},
	})
	if err != nil {
		return fmt.Errorf("failed to save conversation turn: %w", err)
	}
	return nil
}

// Predict answers input in the context of the conversation so far.
// Nothing is saved when the LLM call fails.
func (c *ConversationChain) Predict(ctx context.Context, input string) (string, error) {
	msgs, err := c.buildMessages(ctx, input)
	if err != nil {
		return "", err
	}

	resp, err := c.LLM.Chat(ctx, msgs)
	if err != nil {
		return "", fmt.Errorf("failed to get LLM response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from LLM")
	}

	answer := strings.TrimSpace(llms.Content(resp))
	c.Logger.DebugwCtx(ctx, "conversation turn",
		"conversation_id", c.ConversationID,
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
	)

	if err := c.saveTurn(ctx, input, answer); err != nil {
		return "", err
	}
	return answer, nil
}

// Stream is like Predict but delivers the answer in chunks. LLMs that cannot
// stream produce a single chunk.
//
// Example:
//
//	for resp := range chain.Stream(ctx, "Tell me a story") {
//	    if resp.Error != nil {
//	        log.Printf("Error: %v", resp.Error)
//	        break
//	    }
//	    fmt.Print(resp.Content)
//	}
func (c *ConversationChain) Stream(ctx context.Context, input string) <-chan StreamResponse {
	ch := make(chan StreamResponse, 10)

	go func() {
		defer close(ch)

		streamer, ok := c.LLM.(llms.ChatStreamer)
		if !ok {
			c.predictInto(ctx, input, ch)
			return
		}

		msgs, err := c.buildMessages(ctx, input)
		if err != nil {
			ch <- StreamResponse{Error: err}
			return
		}

		stream, err := streamer.ChatStream(ctx, msgs)
		if errors.Is(err, llms.ErrStreamingUnsupported) {
			c.predictInto(ctx, input, ch)
			return
		}
		if err != nil {
			ch <- StreamResponse{Error: fmt.Errorf("failed to start stream: %w", err)}
			return
		}
		defer stream.Close()

		var answer strings.Builder
		for {
			chunk, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				ch <- StreamResponse{Error: fmt.Errorf("stream interrupted: %w", err)}
				return
			}
			if len(chunk.Choices) == 0 || chunk.Choices[0].Delta.Content == "" {
				continue
			}
			content := chunk.Choices[0].Delta.Content
			answer.WriteString(content)
			ch <- StreamResponse{Content: content}
		}

		if err := c.saveTurn(ctx, input, strings.TrimSpace(answer.String())); err != nil {
			ch <- StreamResponse{Error: err}
			return
		}
		ch <- StreamResponse{Done: true}
	}()

	return ch
}

func (c *ConversationChain) predictInto(ctx context.Context, input string, ch chan<- StreamResponse) {
	answer, err := c.Predict(ctx, input)
	if err != nil {
		ch <- StreamResponse{Error: err}
		return
	}
	ch <- StreamResponse{Content: answer}
	ch <- StreamResponse{Done: true}
}

// Direct sends message to the LLM on its own, without history or memory.
func Direct(ctx context.Context, llm llms.LLM, message string) (string, error) {
	resp, err := llm.Chat(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleUser, Content: message},
	})
	if err != nil {
		return "", fmt.Errorf("failed to get LLM response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from LLM")
	}
	return strings.TrimSpace(llms.Content(resp)), nil
}
