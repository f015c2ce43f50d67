package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsShutdownTimeout = 5 * time.Second

type metricsServer struct {
	server *http.Server
	logger *slog.Logger
}

func newMetricsServer(address string, gatherer prometheus.Gatherer, logger *slog.Logger) *metricsServer {
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}))
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	return &metricsServer{
		server: &http.Server{
			Addr:              address,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger,
	}
}

// Start serves until ctx is done. The returned channel yields one value once
// the server has stopped.
func (s *metricsServer) Start(ctx context.Context) <-chan error {
	done := make(chan error, 1)
	serveErr := make(chan error, 1)

	go func() {
		s.logger.Info("metrics server listening", "address", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- fmt.Errorf("metrics server: %w", err)
			return
		}
		serveErr <- nil
	}()

	go func() {
		select {
		case err := <-serveErr:
			done <- err
			return
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			done <- fmt.Errorf("metrics server shutdown: %w", err)
			return
		}
		done <- <-serveErr
	}()

	return done
}

func (s *metricsServer) Handler() http.Handler {
	return s.server.Handler
}
