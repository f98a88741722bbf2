package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Connection metrics
var (
	ConnectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exmdb_connections_total",
			Help: "Total number of exmdb connection attempts",
		},
		[]string{"result"},
	)

	ConnectionsCurrent = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "exmdb_connections_current",
			Help: "Current number of open exmdb connections",
		},
	)

	ConnectionsBroken = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "exmdb_connections_broken_total",
			Help: "Total number of connections abandoned after a transport or protocol failure",
		},
	)
)

// Request metrics
var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exmdb_requests_total",
			Help: "Total number of exmdb calls by call name and result",
		},
		[]string{"call", "result"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "exmdb_request_duration_seconds",
			Help:    "Round trip time of exmdb calls in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
		},
		[]string{"call"},
	)

	ServerErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exmdb_server_errors_total",
			Help: "Total number of non-success reply statuses by code",
		},
		[]string{"call", "code"},
	)

	BytesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "exmdb_bytes_sent_total",
			Help: "Total number of request bytes written",
		},
	)

	BytesReceived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "exmdb_bytes_received_total",
			Help: "Total number of reply payload bytes read",
		},
	)
)

// Store metrics
var (
	StoreUp = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "exmdb_store_up",
			Help: "Whether the last ping of a store succeeded (1) or failed (0)",
		},
		[]string{"homedir"},
	)

	StorePingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "exmdb_store_ping_duration_seconds",
			Help:    "Duration of store pings in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"homedir"},
	)
)

// Request results used as the "result" label.
const (
	ResultSuccess     = "success"
	ResultServerError = "server_error"
	ResultTransport   = "transport_error"
	ResultProtocol    = "protocol_error"
	ResultBroken      = "broken"
	ResultRejected    = "rejected"
)
