package messages

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/HuaTug/LLM/logger"
)

// DefaultHoursBack is the look-back window used when the caller has no preference.
const DefaultHoursBack = 24

// Retriever aggregates messages from a set of registered sources and
// filters them by time window and category.
//
// Registration is guarded by a mutex, so sources may be added while other
// goroutines read. Producers themselves are called sequentially.
type Retriever struct {
	mu      sync.RWMutex
	sources map[string]Producer
	now     func() time.Time
	log     logger.Logger
}

// Option configures a Retriever.
type Option func(*Retriever)

// WithClock replaces time.Now as the source of the current instant.
func WithClock(now func() time.Time) Option {
	return func(r *Retriever) {
		r.now = now
	}
}

// WithLogger sets the logger used to report aggregation progress.
func WithLogger(l logger.Logger) Option {
	return func(r *Retriever) {
		r.log = l
	}
}

// NewRetriever creates a Retriever with no sources.
//
// Example:
//
//	r := messages.NewRetriever()
//	_ = r.RegisterSource("news", fetchNews)
//	latest, err := r.GetLatestMessages(ctx, 24, nil)
func NewRetriever(opts ...Option) *Retriever {
	r := &Retriever{
		sources: make(map[string]Producer),
		now:     time.Now,
		log:     logger.NopLogger(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// RegisterSource adds a producer under name.
// Names are unique: registering an existing name fails with ErrDuplicateSource
// and leaves the original producer in place.
func (r *Retriever) RegisterSource(name string, producer Producer) error {
	if name == "" {
		return fmt.Errorf("%w: source name is required", ErrInvalidArgument)
	}
	if producer == nil {
		return fmt.Errorf("%w: producer for source %q is nil", ErrInvalidArgument, name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sources[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateSource, name)
	}
	r.sources[name] = producer
	return nil
}

// Sources returns the registered source names in sorted order.
func (r *Retriever) Sources() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetLatestMessages collects messages from every source whose timestamp is
// within the last hoursBack hours and whose category is in categories
// (nil categories means no category filter). The result is sorted newest first.
//
// The cutoff is computed once, before any source is read, so every source
// is filtered against the same instant. A failing producer aborts the whole
// call with a *SourceError naming the source.
func (r *Retriever) GetLatestMessages(ctx context.Context, hoursBack int, categories CategorySet) ([]Message, error) {
	if hoursBack <= 0 {
		return nil, fmt.Errorf("%w: hours back must be positive, got %d", ErrInvalidArgument, hoursBack)
	}
	if _, ok := categories[""]; ok {
		return nil, fmt.Errorf("%w: empty category in filter", ErrInvalidArgument)
	}

	cutoff := windowStart(r.now(), hoursBack)

	names, producers := r.snapshot()

	result := make([]Message, 0)
	for i, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		batch, err := callProducer(producers[i])
		if err != nil {
			r.log.WarnwCtx(ctx, "message source failed", "source", name, "error", err)
			return nil, &SourceError{Source: name, Err: err}
		}

		kept := 0
		for _, msg := range batch {
			if msg.Timestamp.Before(cutoff) {
				continue
			}
			if !categories.Contains(msg.Category) {
				continue
			}
			result = append(result, msg)
			kept++
		}
		r.log.DebugwCtx(ctx, "message source read", "source", name, "total", len(batch), "kept", kept)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Timestamp.After(result[j].Timestamp)
	})

	return result, nil
}

// snapshot copies the registry so producers run without holding the lock.
func (r *Retriever) snapshot() ([]string, []Producer) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}
	sort.Strings(names)

	producers := make([]Producer, len(names))
	for i, name := range names {
		producers[i] = r.sources[name]
	}
	return names, producers
}

func callProducer(p Producer) (msgs []Message, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("producer panicked: %v", rec)
		}
	}()
	return p()
}

// maxWindowHours is the longest window a time.Duration can hold.
const maxWindowHours = int64(math.MaxInt64 / int64(time.Hour))

// windowStart returns now minus hoursBack hours. Windows longer than a
// time.Duration can express start at the zero time, which keeps every record.
func windowStart(now time.Time, hoursBack int) time.Time {
	if int64(hoursBack) > maxWindowHours {
		return time.Time{}
	}
	return now.Add(-time.Duration(hoursBack) * time.Hour)
}
