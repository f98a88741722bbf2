package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/migadu/exmdb/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// StatusProvider reports per-store health, typically a *Collector.
type StatusProvider interface {
	Status() map[string]StoreStatus
}

// NewRouter serves Prometheus metrics on path and store health as JSON on
// /health/stores. A nil provider disables the health route.
func NewRouter(path string, provider StatusProvider) *mux.Router {
	if path == "" {
		path = "/metrics"
	}
	router := mux.NewRouter()
	router.Handle(path, promhttp.Handler()).Methods("GET")
	if provider != nil {
		router.HandleFunc("/health/stores", func(w http.ResponseWriter, r *http.Request) {
			handleStoreHealth(w, provider)
		}).Methods("GET")
	}
	return router
}

func handleStoreHealth(w http.ResponseWriter, provider StatusProvider) {
	status := provider.Status()
	code := http.StatusOK
	for _, st := range status {
		if !st.Up {
			code = http.StatusServiceUnavailable
			break
		}
	}
	writeJSON(w, code, status)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Warn("Metrics: error encoding JSON response", "error", err)
	}
}

// Serve runs an HTTP server for handler on addr until ctx is done.
func Serve(ctx context.Context, addr string, handler http.Handler) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		logger.Info("Shutting down metrics server", "addr", addr)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Info("Error shutting down metrics server", "error", err)
		}
	}()

	logger.Info("Metrics server listening", "addr", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server failed: %w", err)
	}
	return nil
}
