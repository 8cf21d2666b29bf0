package memory

import (
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	openai "github.com/sashabaranov/go-openai"
)

// DefaultEncoding is the tiktoken encoding used by gpt-3.5-turbo and gpt-4.
const DefaultEncoding = "cl100k_base"

// TokenCounter counts the tokens of a piece of text.
type TokenCounter interface {
	CountTokens(text string) int
}

// TiktokenCounter counts tokens with a tiktoken BPE encoding.
type TiktokenCounter struct {
	encoder *tiktoken.Tiktoken
}

var (
	defaultCounterOnce sync.Once
	defaultCounter     *TiktokenCounter
	defaultCounterErr  error
)

// NewTiktokenCounter loads the named encoding, e.g. "cl100k_base".
func NewTiktokenCounter(encoding string) (*TiktokenCounter, error) {
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, err
	}
	return &TiktokenCounter{encoder: enc}, nil
}

// DefaultTokenCounter returns a shared cl100k_base counter.
// The encoding is loaded once per process.
func DefaultTokenCounter() (*TiktokenCounter, error) {
	defaultCounterOnce.Do(func() {
		defaultCounter, defaultCounterErr = NewTiktokenCounter(DefaultEncoding)
	})
	return defaultCounter, defaultCounterErr
}

// CountTokens returns the number of tokens in text.
func (tc *TiktokenCounter) CountTokens(text string) int {
	return len(tc.encoder.Encode(text, nil, nil))
}

// WordCounter approximates tokens by whitespace-separated words.
// It needs no encoding files and is used when tiktoken cannot be loaded.
type WordCounter struct{}

// CountTokens returns the number of words in text.
func (WordCounter) CountTokens(text string) int {
	return len(strings.Fields(text))
}

// countMessages counts the tokens of msgs rendered as a buffer string.
func countMessages(counter TokenCounter, msgs []openai.ChatCompletionMessage, humanPrefix, aiPrefix string) int {
	if len(msgs) == 0 {
		return 0
	}
	return counter.CountTokens(BufferString(msgs, humanPrefix, aiPrefix))
}
