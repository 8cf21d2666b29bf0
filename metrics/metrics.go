package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sony/gobreaker"
)

// Status label values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
	StatusInvalid = "invalid"
)

var (
	ChatRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_requests_total",
			Help: "Total number of chat requests (count)",
		},
		[]string{"status"},
	)

	ChatRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chat_request_duration_ms",
			Help:    "Chat request duration in milliseconds, including the model call",
			Buckets: []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
		},
		[]string{"status"},
	)

	MessagesRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_requests_total",
			Help: "Total number of latest-messages lookups (count)",
		},
		[]string{"status"},
	)

	KnowledgeBaseChunks = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "knowledge_base_chunks",
			Help: "Number of chunks indexed by the last knowledge base update (count)",
		},
	)

	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open) (state code)",
		},
		[]string{"name"},
	)
)

var registerOnce sync.Once

// Register adds every collector to the default registry. It is safe to call
// more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			ChatRequestsTotal,
			ChatRequestDuration,
			MessagesRequestsTotal,
			KnowledgeBaseChunks,
			CircuitBreakerState,
		)
	})
}

// Handler registers the collectors and returns the scrape handler for /metrics.
func Handler() http.Handler {
	Register()
	return promhttp.Handler()
}

func ObserveChatRequest(duration time.Duration, status string) {
	ChatRequestsTotal.WithLabelValues(status).Inc()
	ChatRequestDuration.WithLabelValues(status).Observe(float64(duration.Milliseconds()))
}

func IncMessagesRequest(status string) {
	MessagesRequestsTotal.WithLabelValues(status).Inc()
}

func SetKnowledgeBaseChunks(count int) {
	KnowledgeBaseChunks.Set(float64(count))
}

// SetCircuitBreakerState matches the signature of gobreaker's OnStateChange.
func SetCircuitBreakerState(name string, _, to gobreaker.State) {
	var v float64
	switch to {
	case gobreaker.StateHalfOpen:
		v = 1
	case gobreaker.StateOpen:
		v = 2
	}
	CircuitBreakerState.WithLabelValues(name).Set(v)
}
