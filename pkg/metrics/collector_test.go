package metrics

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

// mockPinger implements StorePinger for testing
type mockPinger struct {
	mu    sync.Mutex
	down  map[string]bool
	calls map[string]int
}

func (m *mockPinger) Ping(ctx context.Context, homedir string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[homedir]++
	if m.down[homedir] {
		return errors.New("store unavailable")
	}
	return nil
}

func (m *mockPinger) count(homedir string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[homedir]
}

func TestCollectorBasic(t *testing.T) {
	StoreUp.Reset()

	pinger := &mockPinger{down: map[string]bool{"/d/broken": true}}
	collector := NewCollector(pinger, []string{"/d/ok", "/d/broken"}, 100*time.Millisecond)

	// Create a context that will cancel after 250ms
	ctx, cancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		collector.Start(ctx)
		close(done)
	}()
	<-done

	// immediate run plus at least one tick
	if n := pinger.count("/d/ok"); n < 2 {
		t.Errorf("Expected at least 2 pings, got %d", n)
	}
	if v := testutil.ToFloat64(StoreUp.WithLabelValues("/d/ok")); v != 1 {
		t.Errorf("Expected /d/ok to be up, got %v", v)
	}
	if v := testutil.ToFloat64(StoreUp.WithLabelValues("/d/broken")); v != 0 {
		t.Errorf("Expected /d/broken to be down, got %v", v)
	}
}

func TestCollectorStop(t *testing.T) {
	collector := NewCollector(&mockPinger{}, []string{"/d/ok"}, 50*time.Millisecond)

	done := make(chan struct{})
	go func() {
		collector.Start(context.Background())
		close(done)
	}()

	collector.Stop()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("collector did not stop")
	}

	// A second Stop is a no-op.
	collector.Stop()
}

func TestNewCollectorDefaultInterval(t *testing.T) {
	collector := NewCollector(&mockPinger{}, nil, 0)
	if collector.interval != 60*time.Second {
		t.Errorf("Expected default interval of 60s, got %v", collector.interval)
	}
}
