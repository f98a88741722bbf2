package testutils

import (
	"encoding/binary"
	"errors"
	"io"
	"net"
	"strconv"
	"sync"
	"testing"

	"github.com/migadu/exmdb/mapi"
	"github.com/stretchr/testify/require"
)

// Frame is one request received by a StubPeer.
type Frame struct {
	Call uint8
	// Body holds the fields after the call id.
	Body []byte
}

// Reader returns a reader over the frame's fields.
func (f Frame) Reader() *mapi.Reader {
	return mapi.NewReader(f.Body, mapi.CpidUTF8)
}

// Reply is what a StubPeer sends back for one frame.
type Reply struct {
	// Status is the reply status byte. Non-zero statuses carry no payload.
	Status uint8
	// Payload follows a zero status with its u32 length prefix.
	Payload []byte
	// Raw, when set, is written verbatim instead of Status and Payload.
	Raw []byte
	// Hangup closes the connection after the reply is written.
	Hangup bool
}

// Success replies with status 0 and payload.
func Success(payload []byte) Reply {
	return Reply{Payload: payload}
}

// Failure replies with a non-zero status.
func Failure(status uint8) Reply {
	return Reply{Status: status}
}

// Hangup closes the connection without replying.
func Hangup() Reply {
	return Reply{Raw: []byte{}, Hangup: true}
}

// Handler produces the reply for one frame.
type Handler func(f Frame) Reply

// StubPeer is a scripted exmdb server on a loopback port. Every frame,
// including the connect handshake, is recorded and passed to the handler; a
// handler that returns the zero Reply accepts the call with an empty
// payload.
type StubPeer struct {
	t        testing.TB
	ln       net.Listener
	handler  Handler
	mu       sync.Mutex
	frames   []Frame
	conns    map[net.Conn]struct{}
	accepted int
	wg       sync.WaitGroup
}

// NewStubPeer starts a peer that answers frames with handler. It is closed
// when the test ends.
func NewStubPeer(t testing.TB, handler Handler) *StubPeer {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	p := &StubPeer{t: t, ln: ln, handler: handler, conns: make(map[net.Conn]struct{})}
	p.wg.Add(1)
	go p.serve()
	t.Cleanup(p.Close)
	return p
}

// Host returns the listening host.
func (p *StubPeer) Host() string {
	host, _, _ := net.SplitHostPort(p.ln.Addr().String())
	return host
}

// Port returns the listening port.
func (p *StubPeer) Port() int {
	_, port, _ := net.SplitHostPort(p.ln.Addr().String())
	n, _ := strconv.Atoi(port)
	return n
}

// Frames returns a copy of the frames received so far.
func (p *StubPeer) Frames() []Frame {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Frame, len(p.frames))
	copy(out, p.frames)
	return out
}

// CallFrames returns the received frames for one call id.
func (p *StubPeer) CallFrames(call uint8) []Frame {
	var out []Frame
	for _, f := range p.Frames() {
		if f.Call == call {
			out = append(out, f)
		}
	}
	return out
}

// Accepted returns the number of connections accepted so far.
func (p *StubPeer) Accepted() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.accepted
}

// Close stops the listener, drops open connections and waits for their
// handlers to return.
func (p *StubPeer) Close() {
	p.ln.Close()
	p.mu.Lock()
	for conn := range p.conns {
		conn.Close()
	}
	p.mu.Unlock()
	p.wg.Wait()
}

func (p *StubPeer) serve() {
	defer p.wg.Done()
	for {
		conn, err := p.ln.Accept()
		if err != nil {
			return
		}
		p.mu.Lock()
		p.accepted++
		p.conns[conn] = struct{}{}
		p.mu.Unlock()

		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			defer func() {
				p.mu.Lock()
				delete(p.conns, conn)
				p.mu.Unlock()
				conn.Close()
			}()
			p.handle(conn)
		}()
	}
}

func (p *StubPeer) handle(conn net.Conn) {
	for {
		var hdr [4]byte
		if _, err := io.ReadFull(conn, hdr[:]); err != nil {
			return
		}
		body := make([]byte, binary.LittleEndian.Uint32(hdr[:]))
		if _, err := io.ReadFull(conn, body); err != nil {
			return
		}
		if len(body) == 0 {
			return
		}
		f := Frame{Call: body[0], Body: body[1:]}
		p.mu.Lock()
		p.frames = append(p.frames, f)
		p.mu.Unlock()

		reply := p.reply(f)
		if err := writeReply(conn, reply); err != nil {
			if !errors.Is(err, net.ErrClosed) {
				p.t.Logf("stub peer: write reply: %v", err)
			}
			return
		}
		if reply.Hangup {
			return
		}
	}
}

// reply asks the handler for a reply. The zero Reply is an empty success.
func (p *StubPeer) reply(f Frame) Reply {
	if p.handler == nil {
		return Success(nil)
	}
	return p.handler(f)
}

func writeReply(w io.Writer, r Reply) error {
	if r.Raw != nil {
		_, err := w.Write(r.Raw)
		return err
	}
	if r.Status != 0 {
		_, err := w.Write([]byte{r.Status})
		return err
	}
	out := make([]byte, 5, 5+len(r.Payload))
	binary.LittleEndian.PutUint32(out[1:], uint32(len(r.Payload)))
	out = append(out, r.Payload...)
	_, err := w.Write(out)
	return err
}
