package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/HuaTug/LLM/metrics"
)

const metricsAddrUsage = "serve Prometheus metrics on this address, e.g. :9090 (off when empty)"

// serveMetrics exposes /metrics on addr until stop is called. An empty addr
// serves nothing and returns a nil address.
func (a *app) serveMetrics(addr string) (net.Addr, func(), error) {
	if addr == "" {
		return nil, func() {}, nil
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to listen for metrics on %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		a.log.Infow("metrics server listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Errorw("metrics server stopped", "error", err)
		}
	}()

	stop := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			a.log.Warnw("failed to shut down metrics server", "error", err)
		}
	}
	return ln.Addr(), stop, nil
}
