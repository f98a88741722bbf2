package metrics

import (
	"context"
	"sync"
	"time"

	"github.com/migadu/exmdb/logger"
)

// StorePinger checks that a store can be loaded by the server.
type StorePinger interface {
	Ping(ctx context.Context, homedir string) error
}

// StoreStatus is the outcome of the last ping of one store.
type StoreStatus struct {
	Up        bool      `json:"up"`
	LastCheck time.Time `json:"last_check"`
	Error     string    `json:"error,omitempty"`
}

// Collector periodically pings a fixed set of stores and publishes the
// outcome as exmdb_store_up.
type Collector struct {
	pinger   StorePinger
	homedirs []string
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once

	mu     sync.RWMutex
	status map[string]StoreStatus
}

// NewCollector creates a new store collector
func NewCollector(pinger StorePinger, homedirs []string, interval time.Duration) *Collector {
	if interval == 0 {
		interval = 60 * time.Second // Default to 60 seconds
	}

	return &Collector{
		pinger:   pinger,
		homedirs: homedirs,
		interval: interval,
		stopCh:   make(chan struct{}),
		status:   make(map[string]StoreStatus, len(homedirs)),
	}
}

// Status returns a snapshot of the last ping outcome per store.
func (c *Collector) Status() map[string]StoreStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]StoreStatus, len(c.status))
	for k, v := range c.status {
		out[k] = v
	}
	return out
}

func (c *Collector) record(homedir string, err error) {
	st := StoreStatus{Up: err == nil, LastCheck: time.Now()}
	if err != nil {
		st.Error = err.Error()
	}
	c.mu.Lock()
	c.status[homedir] = st
	c.mu.Unlock()
}

// Start begins the collection loop
func (c *Collector) Start(ctx context.Context) {
	// Collect immediately on start
	c.collect(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	logger.Info("StoreCollector started", "interval", c.interval, "stores", len(c.homedirs))

	for {
		select {
		case <-ctx.Done():
			logger.Info("StoreCollector stopping due to context cancellation")
			return
		case <-c.stopCh:
			logger.Info("StoreCollector stopping due to stop signal")
			return
		case <-ticker.C:
			c.collect(ctx)
		}
	}
}

// Stop signals the collector to stop
func (c *Collector) Stop() {
	c.stopOnce.Do(func() { close(c.stopCh) })
}

// collect pings every store once
func (c *Collector) collect(ctx context.Context) {
	for _, homedir := range c.homedirs {
		if ctx.Err() != nil {
			return
		}
		start := time.Now()
		err := c.pinger.Ping(ctx, homedir)
		StorePingDuration.WithLabelValues(homedir).Observe(time.Since(start).Seconds())
		c.record(homedir, err)
		if err != nil {
			StoreUp.WithLabelValues(homedir).Set(0)
			logger.Warn("StoreCollector: store ping failed", "homedir", homedir, "error", err)
			continue
		}
		StoreUp.WithLabelValues(homedir).Set(1)
	}
}
