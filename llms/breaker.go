package llms

import (
	"context"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"
)

// BreakerConfig configures a BreakerLLM.
type BreakerConfig struct {
	Name          string
	MaxRequests   uint32
	Interval      time.Duration
	Timeout       time.Duration
	OnStateChange func(name string, from, to gobreaker.State)
}

// DefaultBreakerConfig opens after at least 3 requests with half or more failing.
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:        name,
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
	}
}

// BreakerLLM fails fast with gobreaker.ErrOpenState while the upstream
// keeps failing, instead of making every caller wait for a timeout.
// Client errors (4xx) and cancellations do not count as failures.
type BreakerLLM struct {
	llm LLM
	cb  *gobreaker.CircuitBreaker
}

// NewBreakerLLM wraps llm in a circuit breaker.
func NewBreakerLLM(llm LLM, cfg BreakerConfig) *BreakerLLM {
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !IsRetryable(err)
		},
		OnStateChange: cfg.OnStateChange,
	}

	return &BreakerLLM{llm: llm, cb: gobreaker.NewCircuitBreaker(settings)}
}

// Chat calls the wrapped LLM through the breaker.
func (b *BreakerLLM) Chat(ctx context.Context, messages []openai.ChatCompletionMessage) (openai.ChatCompletionResponse, error) {
	result, err := b.cb.Execute(func() (any, error) {
		return b.llm.Chat(ctx, messages)
	})
	if err != nil {
		return openai.ChatCompletionResponse{}, err
	}
	return result.(openai.ChatCompletionResponse), nil
}

// WithTemperature returns a model at temperature t sharing this breaker.
func (b *BreakerLLM) WithTemperature(t float32) LLM {
	return &BreakerLLM{llm: WithTemperature(b.llm, t), cb: b.cb}
}

// State returns the breaker state.
func (b *BreakerLLM) State() gobreaker.State {
	return b.cb.State()
}
