package llms

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	openai "github.com/sashabaranov/go-openai"
)

// RetryLLM retries Chat calls of the wrapped LLM with exponential backoff.
// Context cancellation and client errors (4xx other than 429) are not retried.
type RetryLLM struct {
	llm             LLM
	maxRetries      int
	initialInterval time.Duration
	maxInterval     time.Duration
}

// NewRetryLLM wraps llm so that failed calls are retried up to maxRetries times.
func NewRetryLLM(llm LLM, maxRetries int) *RetryLLM {
	return &RetryLLM{
		llm:             llm,
		maxRetries:      maxRetries,
		initialInterval: 500 * time.Millisecond,
		maxInterval:     10 * time.Second,
	}
}

func (r *RetryLLM) backOff(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = r.initialInterval
	exp.MaxInterval = r.maxInterval
	exp.MaxElapsedTime = 0

	var b backoff.BackOff = backoff.WithContext(exp, ctx)
	return backoff.WithMaxRetries(b, uint64(r.maxRetries))
}

// Chat calls the wrapped LLM, retrying transient failures.
func (r *RetryLLM) Chat(ctx context.Context, messages []openai.ChatCompletionMessage) (openai.ChatCompletionResponse, error) {
	var resp openai.ChatCompletionResponse
	operation := func() error {
		var err error
		resp, err = r.llm.Chat(ctx, messages)
		if err != nil && !IsRetryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	if err := backoff.Retry(operation, r.backOff(ctx)); err != nil {
		return openai.ChatCompletionResponse{}, err
	}
	return resp, nil
}

// ChatStream opens a stream on the wrapped LLM, retrying only the stream creation.
func (r *RetryLLM) ChatStream(ctx context.Context, messages []openai.ChatCompletionMessage) (*openai.ChatCompletionStream, error) {
	streamer, ok := r.llm.(ChatStreamer)
	if !ok {
		return nil, ErrStreamingUnsupported
	}

	var stream *openai.ChatCompletionStream
	operation := func() error {
		var err error
		stream, err = streamer.ChatStream(ctx, messages)
		if err != nil && !IsRetryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	if err := backoff.Retry(operation, r.backOff(ctx)); err != nil {
		return nil, err
	}
	return stream, nil
}

// WithTemperature forwards to the wrapped LLM and keeps the retry policy.
func (r *RetryLLM) WithTemperature(t float32) LLM {
	clone := *r
	clone.llm = WithTemperature(r.llm, t)
	return &clone
}

// IsRetryable reports whether err is worth retrying.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, ErrStreamingUnsupported) {
		return false
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return retryableStatus(apiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return retryableStatus(reqErr.HTTPStatusCode)
	}
	return true
}

func retryableStatus(code int) bool {
	if code == http.StatusTooManyRequests {
		return true
	}
	return code < 400 || code >= 500
}
