package exmdb

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/migadu/exmdb/logger"
	"github.com/migadu/exmdb/pkg/metrics"
)

// Options describe how to reach an exmdb server and which store prefix to
// serve.
type Options struct {
	Host string
	Port int

	// Prefix is the homedir prefix announced in the connect handshake. Every
	// homedir used on the connection must live below it.
	Prefix string
	// Private selects private (user) stores; false selects public (domain)
	// stores.
	Private bool
	// RemoteID identifies this client to the server. Defaults to
	// "exmdb-go:<hostname>:<pid>".
	RemoteID string

	DialTimeout time.Duration
	// IOTimeout bounds every call in addition to the context deadline. Zero
	// disables it.
	IOTimeout time.Duration
	// MaxReplySize bounds a single reply payload. Zero selects
	// DefaultMaxReplySize.
	MaxReplySize uint32
}

// Addr returns the host:port pair to dial.
func (o Options) Addr() string {
	return net.JoinHostPort(o.Host, strconv.Itoa(o.Port))
}

func defaultRemoteID() string {
	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}
	return fmt.Sprintf("exmdb-go:%s:%d", host, os.Getpid())
}

// Conn is a single connection to an exmdb server. Calls are serialized: the
// connection carries at most one outstanding request, and a reply is always
// read before the next request is written.
//
// Any transport or protocol failure breaks the connection for good; later
// calls fail with ErrConnectionBroken. Server-reported errors leave it
// usable.
type Conn struct {
	mu      sync.Mutex
	nc      net.Conn
	br      *bufio.Reader
	opts    Options
	broken  error
	closed  bool
	maxRepl uint32
}

// Dial connects to the server and performs the connect handshake. A
// rejected handshake returns *ExmdbError; any other failure returns
// *ConnectionError.
func Dial(ctx context.Context, opts Options) (*Conn, error) {
	d := net.Dialer{Timeout: opts.DialTimeout}
	nc, err := d.DialContext(ctx, "tcp", opts.Addr())
	if err != nil {
		metrics.ConnectionsTotal.WithLabelValues(metrics.ResultTransport).Inc()
		return nil, &ConnectionError{Op: "dial", Err: err}
	}

	c := newConn(nc, opts)
	if err := c.handshake(ctx); err != nil {
		c.Close()
		if IsServerError(err) {
			metrics.ConnectionsTotal.WithLabelValues(metrics.ResultRejected).Inc()
		} else {
			metrics.ConnectionsTotal.WithLabelValues(metrics.ResultTransport).Inc()
		}
		return nil, err
	}

	metrics.ConnectionsTotal.WithLabelValues(metrics.ResultSuccess).Inc()
	logger.Info("exmdb: connected", "addr", opts.Addr(), "prefix", opts.Prefix, "private", opts.Private)
	return c, nil
}

func newConn(nc net.Conn, opts Options) *Conn {
	if opts.RemoteID == "" {
		opts.RemoteID = defaultRemoteID()
	}
	maxReply := opts.MaxReplySize
	if maxReply == 0 {
		maxReply = DefaultMaxReplySize
	}
	metrics.ConnectionsCurrent.Inc()
	return &Conn{
		nc:      nc,
		br:      bufio.NewReader(nc),
		opts:    opts,
		maxRepl: maxReply,
	}
}

func (c *Conn) handshake(ctx context.Context) error {
	_, err := c.Call(ctx, ConnectRequest{
		Prefix:    c.opts.Prefix,
		RemoteID:  c.opts.RemoteID,
		IsPrivate: c.opts.Private,
	})
	return err
}

// Call sends req and returns the decoded reply. It blocks until the reply
// has been read, ctx is done, or the IO timeout expires. An interrupted call
// breaks the connection.
func (c *Conn) Call(ctx context.Context, req Request) (Response, error) {
	call := req.Call()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.broken != nil {
		metrics.RequestsTotal.WithLabelValues(call.String(), metrics.ResultBroken).Inc()
		return nil, &ConnectionError{Op: call.String(), Err: fmt.Errorf("%w: %v", ErrConnectionBroken, c.broken)}
	}
	if c.closed {
		return nil, &ConnectionError{Op: call.String(), Err: fmt.Errorf("%w: connection closed", ErrConnectionBroken)}
	}
	if err := ctx.Err(); err != nil {
		return nil, &ConnectionError{Op: call.String(), Err: err}
	}

	frame, err := encodeRequest(req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := c.roundTrip(ctx, req, frame)
	elapsed := time.Since(start)
	metrics.RequestDuration.WithLabelValues(call.String()).Observe(elapsed.Seconds())

	var ee *ExmdbError
	switch {
	case err == nil:
		metrics.RequestsTotal.WithLabelValues(call.String(), metrics.ResultSuccess).Inc()
		logger.DebugContext(ctx, "exmdb: call", "call", call.String(), "duration", elapsed)
		return resp, nil
	case errors.As(err, &ee):
		metrics.RequestsTotal.WithLabelValues(call.String(), metrics.ResultServerError).Inc()
		metrics.ServerErrorsTotal.WithLabelValues(call.String(), strconv.Itoa(int(ee.Code))).Inc()
		logger.DebugContext(ctx, "exmdb: server error", "call", call.String(), "code", ee.Code, "message", ee.Message)
		return nil, err
	default:
		result := metrics.ResultTransport
		if errors.Is(err, ErrProtocol) {
			result = metrics.ResultProtocol
		}
		metrics.RequestsTotal.WithLabelValues(call.String(), result).Inc()
		c.poison(err)
		logger.WarnContext(ctx, "exmdb: connection broken", "call", call.String(), "addr", c.opts.Addr(), "error", err)
		return nil, &ConnectionError{Op: call.String(), Err: err}
	}
}

func (c *Conn) roundTrip(ctx context.Context, req Request, frame []byte) (Response, error) {
	deadline, hasDeadline := ctx.Deadline()
	if c.opts.IOTimeout > 0 {
		ioDeadline := time.Now().Add(c.opts.IOTimeout)
		if !hasDeadline || ioDeadline.Before(deadline) {
			deadline, hasDeadline = ioDeadline, true
		}
	}
	if !hasDeadline {
		deadline = time.Time{}
	}
	if err := c.nc.SetDeadline(deadline); err != nil {
		return nil, err
	}

	// Cancellation unblocks pending IO by moving the deadline into the past.
	interrupted := make(chan struct{})
	stop := context.AfterFunc(ctx, func() {
		c.nc.SetDeadline(time.Unix(1, 0))
		close(interrupted)
	})
	defer func() {
		if !stop() {
			<-interrupted
		}
	}()

	if _, err := c.nc.Write(frame); err != nil {
		return nil, ctxError(ctx, err)
	}
	metrics.BytesSent.Add(float64(len(frame)))

	status, payload, err := readReply(c.br, c.maxRepl)
	if err != nil {
		return nil, ctxError(ctx, err)
	}
	if status != StatusSuccess {
		return nil, newExmdbError(status)
	}
	metrics.BytesReceived.Add(float64(len(payload)))

	return decodeResponse(req.Call(), requestCodepage(req), payload)
}

// ctxError prefers the context's error over the deadline error it caused.
// The IO deadline can fire just before the context's own timer does.
func ctxError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%w: %v", ctxErr, err)
	}
	if dl, ok := ctx.Deadline(); ok && !time.Now().Before(dl) {
		return fmt.Errorf("%w: %v", context.DeadlineExceeded, err)
	}
	return err
}

func (c *Conn) poison(err error) {
	if c.broken != nil {
		return
	}
	c.broken = err
	metrics.ConnectionsBroken.Inc()
	c.closeLocked()
}

// Broken reports whether a transport or protocol failure has made the
// connection unusable.
func (c *Conn) Broken() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.broken != nil
}

// Close closes the underlying connection. It is safe to call more than once.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closeLocked()
}

func (c *Conn) closeLocked() error {
	if c.closed {
		return nil
	}
	c.closed = true
	metrics.ConnectionsCurrent.Dec()
	return c.nc.Close()
}
