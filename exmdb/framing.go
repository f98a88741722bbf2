package exmdb

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/migadu/exmdb/mapi"
)

// DefaultMaxReplySize bounds the payload of a single reply.
const DefaultMaxReplySize = 64 << 20

// encodeRequest builds the full request frame: u32 body length followed by
// the call id and the call's fields. 8-bit strings are encoded in the code
// page of the request.
func encodeRequest(req Request) ([]byte, error) {
	b := mapi.NewBuffer(requestCodepage(req))
	b.PutUint32(0)
	b.PutUint8(uint8(req.Call()))
	req.encode(b)

	frame := b.Bytes()
	body := len(frame) - 4
	if uint64(body) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %s request of %d bytes", ErrRange, req.Call(), body)
	}
	binary.LittleEndian.PutUint32(frame[:4], uint32(body))
	return frame, nil
}

// readReply reads one reply from r. For a non-zero status it returns the
// status and no payload. The payload length is checked against maxSize
// before anything is allocated.
func readReply(r io.Reader, maxSize uint32) (uint8, []byte, error) {
	var status [1]byte
	if _, err := io.ReadFull(r, status[:]); err != nil {
		return 0, nil, err
	}
	if status[0] != StatusSuccess {
		return status[0], nil, nil
	}

	var hdr [4]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return 0, nil, unexpectedEOF(err)
	}
	n := binary.LittleEndian.Uint32(hdr[:])
	if n > maxSize {
		return 0, nil, fmt.Errorf("%w: reply of %d bytes exceeds limit of %d", ErrProtocol, n, maxSize)
	}
	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return 0, nil, unexpectedEOF(err)
	}
	return StatusSuccess, payload, nil
}

// unexpectedEOF turns a clean EOF in the middle of a reply into
// io.ErrUnexpectedEOF.
func unexpectedEOF(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
