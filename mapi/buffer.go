package mapi

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Buffer accumulates little-endian wire data. The zero value is ready to use
// and encodes 8-bit strings as UTF-8.
type Buffer struct {
	buf  []byte
	cpid uint32
}

// NewBuffer returns a buffer that encodes 8-bit strings in the charset of cpid.
func NewBuffer(cpid uint32) *Buffer {
	return &Buffer{cpid: cpid}
}

// Bytes returns the encoded data. The slice aliases the buffer.
func (b *Buffer) Bytes() []byte {
	return b.buf
}

// Len returns the number of encoded bytes.
func (b *Buffer) Len() int {
	return len(b.buf)
}

// Reset drops all encoded data but keeps the allocation.
func (b *Buffer) Reset() {
	b.buf = b.buf[:0]
}

func (b *Buffer) PutUint8(v uint8) {
	b.buf = append(b.buf, v)
}

func (b *Buffer) PutBool(v bool) {
	if v {
		b.buf = append(b.buf, 1)
		return
	}
	b.buf = append(b.buf, 0)
}

func (b *Buffer) PutUint16(v uint16) {
	b.buf = binary.LittleEndian.AppendUint16(b.buf, v)
}

func (b *Buffer) PutUint32(v uint32) {
	b.buf = binary.LittleEndian.AppendUint32(b.buf, v)
}

func (b *Buffer) PutUint64(v uint64) {
	b.buf = binary.LittleEndian.AppendUint64(b.buf, v)
}

func (b *Buffer) PutFloat32(v float32) {
	b.PutUint32(math.Float32bits(v))
}

func (b *Buffer) PutFloat64(v float64) {
	b.PutUint64(math.Float64bits(v))
}

// PutRaw appends p without a length prefix.
func (b *Buffer) PutRaw(p []byte) {
	b.buf = append(b.buf, p...)
}

// PutBinary appends a u32 length prefix followed by p.
func (b *Buffer) PutBinary(p []byte) {
	b.PutUint32(uint32(len(p)))
	b.buf = append(b.buf, p...)
}

// PutString appends a UTF-8 string as u32 length (terminator included),
// the bytes, and a NUL terminator.
func (b *Buffer) PutString(s string) {
	b.putTerminated([]byte(s))
}

// PutString8 is PutString for 8-bit strings: s is converted to the charset of
// the buffer's code page first. Runes the charset cannot represent are
// replaced.
func (b *Buffer) PutString8(s string) {
	b.putTerminated(encodeCodepage(b.cpid, s))
}

func (b *Buffer) putTerminated(p []byte) {
	b.PutUint32(uint32(len(p) + 1))
	b.buf = append(b.buf, p...)
	b.buf = append(b.buf, 0)
}

// PutGUID appends g in MS wire order.
func (b *Buffer) PutGUID(g GUID) {
	b.buf = append(b.buf, g.Wire()...)
}

// PutProptags appends a u16 count followed by each tag.
func (b *Buffer) PutProptags(tags []uint32) {
	b.PutUint16(uint16(len(tags)))
	for _, tag := range tags {
		b.PutUint32(tag)
	}
}

// PutPropvals appends a u16 count followed by each tagged propval.
func (b *Buffer) PutPropvals(vals []TaggedPropval) {
	b.PutUint16(uint16(len(vals)))
	for _, v := range vals {
		v.EncodeTo(b)
	}
}

// Reader consumes little-endian wire data. Every read is bounds checked; a
// short read returns an error wrapping ErrTruncated and leaves the offset
// untouched.
type Reader struct {
	data []byte
	off  int
	cpid uint32
}

// NewReader returns a reader over data decoding 8-bit strings under cpid.
func NewReader(data []byte, cpid uint32) *Reader {
	return &Reader{data: data, cpid: cpid}
}

// Remaining reports how many unread bytes are left.
func (r *Reader) Remaining() int {
	return len(r.data) - r.off
}

// Offset reports the current read position.
func (r *Reader) Offset() int {
	return r.off
}

func (r *Reader) take(n int) ([]byte, error) {
	if n < 0 || r.Remaining() < n {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrTruncated, n, r.off, r.Remaining())
	}
	p := r.data[r.off : r.off+n]
	r.off += n
	return p, nil
}

func (r *Reader) Uint8() (uint8, error) {
	p, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return p[0], nil
}

func (r *Reader) Bool() (bool, error) {
	v, err := r.Uint8()
	if err != nil {
		return false, err
	}
	switch v {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("%w: invalid bool value %d at offset %d", ErrMalformed, v, r.off-1)
	}
}

func (r *Reader) Uint16() (uint16, error) {
	p, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(p), nil
}

func (r *Reader) Uint32() (uint32, error) {
	p, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(p), nil
}

func (r *Reader) Uint64() (uint64, error) {
	p, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(p), nil
}

func (r *Reader) Float32() (float32, error) {
	v, err := r.Uint32()
	return math.Float32frombits(v), err
}

func (r *Reader) Float64() (float64, error) {
	v, err := r.Uint64()
	return math.Float64frombits(v), err
}

// Binary reads a u32 length prefix and that many bytes. The result is a copy.
func (r *Reader) Binary() ([]byte, error) {
	start := r.off
	n, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	if uint64(n) > uint64(r.Remaining()) {
		r.off = start
		return nil, fmt.Errorf("%w: binary of %d bytes at offset %d, have %d", ErrTruncated, n, start, r.Remaining())
	}
	p, _ := r.take(int(n))
	out := make([]byte, len(p))
	copy(out, p)
	return out, nil
}

// UnicodeString reads a string written by Buffer.PutString.
func (r *Reader) UnicodeString() (string, error) {
	p, err := r.terminated()
	if err != nil {
		return "", err
	}
	return string(p), nil
}

// String8 reads a string written by Buffer.PutString8 and converts it from
// the reader's code page to UTF-8.
func (r *Reader) String8() (string, error) {
	p, err := r.terminated()
	if err != nil {
		return "", err
	}
	return decodeCodepage(r.cpid, p), nil
}

func (r *Reader) terminated() ([]byte, error) {
	start := r.off
	n, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		r.off = start
		return nil, fmt.Errorf("%w: zero string length at offset %d", ErrMalformed, start)
	}
	if uint64(n) > uint64(r.Remaining()) {
		r.off = start
		return nil, fmt.Errorf("%w: string of %d bytes at offset %d, have %d", ErrTruncated, n, start, r.Remaining())
	}
	p, _ := r.take(int(n))
	if p[n-1] != 0 {
		r.off = start
		return nil, fmt.Errorf("%w: string at offset %d is not NUL terminated", ErrMalformed, start)
	}
	return p[:n-1], nil
}

// GUID reads 16 bytes in MS wire order.
func (r *Reader) GUID() (GUID, error) {
	p, err := r.take(16)
	if err != nil {
		return GUID{}, err
	}
	return GUIDFromWire(p)
}

// Proptags reads a u16 count followed by that many tags.
func (r *Reader) Proptags() ([]uint32, error) {
	n, err := r.Uint16()
	if err != nil {
		return nil, err
	}
	if int(n)*4 > r.Remaining() {
		return nil, errTruncatedList("proptags", int(n), r)
	}
	tags := make([]uint32, n)
	for i := range tags {
		tags[i], _ = r.Uint32()
	}
	return tags, nil
}

// Propvals reads a u16 count followed by that many tagged propvals.
func (r *Reader) Propvals() ([]TaggedPropval, error) {
	n, err := r.Uint16()
	if err != nil {
		return nil, err
	}
	vals := make([]TaggedPropval, 0, min(int(n), r.Remaining()/4))
	for i := 0; i < int(n); i++ {
		v, err := DecodePropval(r)
		if err != nil {
			return nil, fmt.Errorf("propval %d: %w", i, err)
		}
		vals = append(vals, v)
	}
	return vals, nil
}

func errTruncatedList(what string, n int, r *Reader) error {
	return fmt.Errorf("%w: %d %s at offset %d, have %d bytes", ErrTruncated, n, what, r.off, r.Remaining())
}
