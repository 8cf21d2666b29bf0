package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/HuaTug/LLM/llms"
	"github.com/HuaTug/LLM/prompts"
	openai "github.com/sashabaranov/go-openai"
)

// DefaultSummaryTokenLimit is the buffer size above which old messages are summarized.
const DefaultSummaryTokenLimit = 1000

// SummaryBufferMemory keeps recent messages verbatim and folds older ones
// into a running summary written by an LLM once the buffer grows past
// MaxTokenLimit tokens.
//
// LoadMessages returns a system message holding the summary (when there is
// one) followed by the buffered messages.
type SummaryBufferMemory struct {
	mu            sync.Mutex
	llm           llms.LLM
	counter       TokenCounter
	maxTokenLimit int
	humanPrefix   string
	aiPrefix      string
	conversations map[string]*summaryState
}

type summaryState struct {
	summary string
	buffer  []openai.ChatCompletionMessage
}

// SummaryOption configures a SummaryBufferMemory.
type SummaryOption func(*SummaryBufferMemory)

// WithMaxTokenLimit sets the buffer token limit.
func WithMaxTokenLimit(limit int) SummaryOption {
	return func(m *SummaryBufferMemory) {
		m.maxTokenLimit = limit
	}
}

// WithPrefixes sets the speaker labels used when rendering lines for the summarizer.
func WithPrefixes(human, ai string) SummaryOption {
	return func(m *SummaryBufferMemory) {
		m.humanPrefix = human
		m.aiPrefix = ai
	}
}

// NewSummaryBufferMemory creates a summary buffer memory summarizing with llm.
//
// Example:
//
//	counter, _ := memory.DefaultTokenCounter()
//	mem := memory.NewSummaryBufferMemory(llm, counter, memory.WithMaxTokenLimit(1000))
func NewSummaryBufferMemory(llm llms.LLM, counter TokenCounter, opts ...SummaryOption) *SummaryBufferMemory {
	m := &SummaryBufferMemory{
		llm:           llm,
		counter:       counter,
		maxTokenLimit: DefaultSummaryTokenLimit,
		humanPrefix:   "Human",
		aiPrefix:      "AI",
		conversations: make(map[string]*summaryState),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *SummaryBufferMemory) state(conversationID string) *summaryState {
	id := conversationKey(conversationID)
	st, ok := m.conversations[id]
	if !ok {
		st = &summaryState{}
		m.conversations[id] = st
	}
	return st
}

// LoadMessages returns the summary as a system message plus the buffered messages.
func (m *SummaryBufferMemory) LoadMessages(ctx context.Context, conversationID string) ([]openai.ChatCompletionMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := m.state(conversationID)
	out := make([]openai.ChatCompletionMessage, 0, len(st.buffer)+1)
	if st.summary != "" {
		out = append(out, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: st.summary})
	}
	return append(out, st.buffer...), nil
}

// SaveMessages appends messages and prunes the buffer into the summary when
// it exceeds the token limit. On a summarization error the pruned messages
// stay in the buffer and the error is returned.
func (m *SummaryBufferMemory) SaveMessages(ctx context.Context, conversationID string, messages []openai.ChatCompletionMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := m.state(conversationID)
	st.buffer = append(st.buffer, messages...)

	if countMessages(m.counter, st.buffer, m.humanPrefix, m.aiPrefix) <= m.maxTokenLimit {
		return nil
	}

	cut := 0
	for cut < len(st.buffer) && countMessages(m.counter, st.buffer[cut:], m.humanPrefix, m.aiPrefix) > m.maxTokenLimit {
		cut++
	}

	summary, err := m.predictNewSummary(ctx, st.buffer[:cut], st.summary)
	if err != nil {
		return err
	}

	st.summary = summary
	st.buffer = append([]openai.ChatCompletionMessage(nil), st.buffer[cut:]...)
	return nil
}

func (m *SummaryBufferMemory) predictNewSummary(ctx context.Context, pruned []openai.ChatCompletionMessage, existing string) (string, error) {
	prompt, err := prompts.SummaryTemplate.Format(map[string]string{
		"summary":   existing,
		"new_lines": BufferString(pruned, m.humanPrefix, m.aiPrefix),
	})
	if err != nil {
		return "", err
	}

	resp, err := m.llm.Chat(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleUser, Content: prompt},
	})
	if err != nil {
		return "", fmt.Errorf("failed to summarize conversation: %w", err)
	}
	return llms.Content(resp), nil
}

// ClearMessages drops the summary and the buffer.
func (m *SummaryBufferMemory) ClearMessages(ctx context.Context, conversationID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.conversations, conversationKey(conversationID))
	return nil
}

// Summary returns the running summary.
func (m *SummaryBufferMemory) Summary(ctx context.Context, conversationID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.state(conversationID).summary, nil
}

// Messages returns the buffered messages without the summary.
func (m *SummaryBufferMemory) Messages(conversationID string) []openai.ChatCompletionMessage {
	m.mu.Lock()
	defer m.mu.Unlock()

	buf := m.state(conversationID).buffer
	out := make([]openai.ChatCompletionMessage, len(buf))
	copy(out, buf)
	return out
}

// Buffer renders the summary and buffered messages the way they reach the prompt.
func (m *SummaryBufferMemory) Buffer(conversationID string) string {
	msgs, _ := m.LoadMessages(context.Background(), conversationID)
	return BufferString(msgs, m.humanPrefix, m.aiPrefix)
}
