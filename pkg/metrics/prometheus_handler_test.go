package metrics

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type staticStatus map[string]StoreStatus

func (s staticStatus) Status() map[string]StoreStatus { return s }

func TestPrometheusHTTPHandler(t *testing.T) {
	t.Run("basic_metrics_endpoint", func(t *testing.T) {
		RequestsTotal.Reset()
		RequestsTotal.WithLabelValues("ping_store", ResultSuccess).Add(10)

		server := httptest.NewServer(NewRouter("/metrics", nil))
		defer server.Close()

		resp, err := http.Get(server.URL + "/metrics")
		if err != nil {
			t.Fatalf("Failed to get metrics: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Errorf("Expected status 200, got %d", resp.StatusCode)
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			t.Fatalf("Failed to read response body: %v", err)
		}
		if !strings.Contains(string(body), `exmdb_requests_total{call="ping_store",result="success"} 10`) {
			t.Error("Expected ping_store success count of 10")
		}
	})

	t.Run("custom_path", func(t *testing.T) {
		server := httptest.NewServer(NewRouter("/stats", nil))
		defer server.Close()

		resp, err := http.Get(server.URL + "/metrics")
		if err != nil {
			t.Fatalf("Failed to query server: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("Expected 404 on default path, got %d", resp.StatusCode)
		}

		resp, err = http.Get(server.URL + "/stats")
		if err != nil {
			t.Fatalf("Failed to query server: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("Expected 200 on custom path, got %d", resp.StatusCode)
		}
	})

	t.Run("method_not_allowed", func(t *testing.T) {
		server := httptest.NewServer(NewRouter("", nil))
		defer server.Close()

		resp, err := http.Post(server.URL+"/metrics", "text/plain", nil)
		if err != nil {
			t.Fatalf("Failed to query server: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusMethodNotAllowed {
			t.Errorf("Expected 405, got %d", resp.StatusCode)
		}
	})
}

func TestStoreHealthEndpoint(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("all_up", func(t *testing.T) {
		server := httptest.NewServer(NewRouter("/metrics", staticStatus{
			"/d/a": {Up: true, LastCheck: now},
		}))
		defer server.Close()

		resp, err := http.Get(server.URL + "/health/stores")
		if err != nil {
			t.Fatalf("Failed to get health: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("Expected 200, got %d", resp.StatusCode)
		}
		if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Expected JSON content type, got %q", ct)
		}

		var got map[string]StoreStatus
		if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
			t.Fatalf("Failed to decode body: %v", err)
		}
		if !got["/d/a"].Up {
			t.Errorf("Expected /d/a to be up, got %+v", got)
		}
	})

	t.Run("one_down", func(t *testing.T) {
		server := httptest.NewServer(NewRouter("/metrics", staticStatus{
			"/d/a": {Up: true, LastCheck: now},
			"/d/b": {Up: false, LastCheck: now, Error: "connection broken"},
		}))
		defer server.Close()

		resp, err := http.Get(server.URL + "/health/stores")
		if err != nil {
			t.Fatalf("Failed to get health: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusServiceUnavailable {
			t.Errorf("Expected 503, got %d", resp.StatusCode)
		}
	})

	t.Run("disabled_without_provider", func(t *testing.T) {
		server := httptest.NewServer(NewRouter("/metrics", nil))
		defer server.Close()

		resp, err := http.Get(server.URL + "/health/stores")
		if err != nil {
			t.Fatalf("Failed to query server: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("Expected 404, got %d", resp.StatusCode)
		}
	})
}
