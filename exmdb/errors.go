package exmdb

import (
	"errors"
	"fmt"
)

// Reply status codes.
const (
	StatusSuccess           uint8 = 0x00
	StatusAccessDeny        uint8 = 0x01
	StatusMaxReached        uint8 = 0x02
	StatusLackMemory        uint8 = 0x03
	StatusMisconfigPrefix   uint8 = 0x04
	StatusMisconfigMode     uint8 = 0x05
	StatusConnectIncomplete uint8 = 0x06
	StatusPullError         uint8 = 0x07
	StatusDispatchError     uint8 = 0x08
	StatusPushError         uint8 = 0x09
)

var statusMessages = map[uint8]string{
	StatusAccessDeny:        "access denied",
	StatusMaxReached:        "maximum number of connections reached",
	StatusLackMemory:        "server out of memory",
	StatusMisconfigPrefix:   "prefix not served by server",
	StatusMisconfigMode:     "prefix has wrong store mode",
	StatusConnectIncomplete: "no prior connect request",
	StatusPullError:         "server could not parse request",
	StatusDispatchError:     "server could not process request",
	StatusPushError:         "server could not serialize response",
}

// StatusMessage returns the description of a reply status code.
func StatusMessage(code uint8) string {
	if code == StatusSuccess {
		return "success"
	}
	if msg, ok := statusMessages[code]; ok {
		return msg
	}
	return "unknown error"
}

// ExmdbError is a failure reported by the server through a non-zero reply
// status. The connection stays usable after it.
type ExmdbError struct {
	Message string
	Code    uint8
}

func newExmdbError(code uint8) *ExmdbError {
	return &ExmdbError{Message: StatusMessage(code), Code: code}
}

func (e *ExmdbError) Error() string {
	return fmt.Sprintf("exmdb: %s (code 0x%02x)", e.Message, e.Code)
}

// Validation failures. Both are detected before anything is written to the
// connection.
var (
	// ErrRange reports an empty or oversized tag or propval list.
	ErrRange = errors.New("exmdb: argument out of range")
	// ErrOutOfRange reports a string the protocol cannot represent.
	ErrOutOfRange = errors.New("exmdb: value not representable")
)

// Transport failures, always wrapped in *ConnectionError.
var (
	ErrProtocol         = errors.New("exmdb: protocol violation")
	ErrConnectionBroken = errors.New("exmdb: connection broken")
)

// ConnectionError is a transport or protocol failure. After any
// ConnectionError returned by a call, the connection is unusable.
type ConnectionError struct {
	Op  string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("exmdb %s: %v", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// IsServerError reports whether err carries a server status code.
func IsServerError(err error) bool {
	var ee *ExmdbError
	return errors.As(err, &ee)
}

// IsConnectionError reports whether err is a transport or protocol failure.
func IsConnectionError(err error) bool {
	var ce *ConnectionError
	return errors.As(err, &ce)
}
