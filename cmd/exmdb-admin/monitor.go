package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sync"

	"github.com/migadu/exmdb/config"
	"github.com/migadu/exmdb/exmdb"
	"github.com/migadu/exmdb/logger"
	"github.com/migadu/exmdb/pkg/circuitbreaker"
	"github.com/migadu/exmdb/pkg/metrics"
	"golang.org/x/sync/errgroup"
)

// redialPinger pings stores over one connection and replaces that
// connection once it is broken. Dials go through the breaker when one is
// set, so an unreachable server fails fast.
type redialPinger struct {
	dial    func(ctx context.Context) (*exmdb.Client, error)
	breaker *circuitbreaker.CircuitBreaker

	mu     sync.Mutex
	client *exmdb.Client
}

func (p *redialPinger) Ping(ctx context.Context, homedir string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client != nil && p.client.Conn().Broken() {
		p.client.Close()
		p.client = nil
	}
	if p.client == nil {
		var client *exmdb.Client
		var err error
		if p.breaker != nil {
			client, err = circuitbreaker.ExecuteValue(ctx, p.breaker, p.dial)
		} else {
			client, err = p.dial(ctx)
		}
		if err != nil {
			return err
		}
		logger.Info("Monitor: connected to exmdb server")
		p.client = client
	}
	return p.client.Ping(ctx, homedir)
}

func (p *redialPinger) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.client != nil {
		p.client.Close()
		p.client = nil
	}
}

func handleMonitor(ctx context.Context) {
	fs := flag.NewFlagSet("monitor", flag.ExitOnError)
	cf := addConnFlags(fs)
	fs.Usage = func() {
		fmt.Printf(`Ping stores periodically and serve Prometheus metrics

Usage:
  exmdb-admin monitor --config PATH

The stores listed in [metrics] homedirs are pinged every ping_interval.
Metrics are served on [metrics] addr and path, per-store health as JSON on
/health/stores (503 while any store is down).
`)
	}
	fs.Parse(os.Args[2:])

	cfg, err := loadConfig(fs, cf)
	if err != nil {
		fatalf("%v", err)
	}
	if len(cfg.Metrics.Homedirs) == 0 {
		fatalf("Error: [metrics] homedirs must list at least one store to monitor")
	}

	if err := runMonitor(ctx, cfg); err != nil {
		fatalf("Monitor failed: %v", err)
	}
}

func runMonitor(ctx context.Context, cfg config.Config) error {
	interval := cfg.Metrics.GetPingIntervalWithDefault()
	pinger := &redialPinger{
		dial: func(ctx context.Context) (*exmdb.Client, error) {
			return dialOnce(ctx, cfg)
		},
		breaker: circuitbreaker.NewCircuitBreaker(circuitbreaker.DefaultSettings("exmdb-dial", interval)),
	}
	defer pinger.Close()

	collector := metrics.NewCollector(pinger, cfg.Metrics.Homedirs, interval)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		collector.Start(gctx)
		return nil
	})
	g.Go(func() error {
		logger.Info("Monitor: serving metrics", "addr", cfg.Metrics.Addr, "path", cfg.Metrics.Path)
		return metrics.Serve(gctx, cfg.Metrics.Addr, metrics.NewRouter(cfg.Metrics.Path, collector))
	})
	return g.Wait()
}
