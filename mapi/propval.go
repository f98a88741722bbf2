package mapi

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// TaggedPropval is one property value together with its tag. The payload's
// Go type is fixed by the tag's type code:
//
//	PT_SHORT uint16        PT_MV_SHORT []uint16
//	PT_LONG, PT_ERROR uint32   PT_MV_LONG []uint32
//	PT_FLOAT float32       PT_MV_FLOAT []float32
//	PT_DOUBLE, PT_APPTIME float64   PT_MV_DOUBLE, PT_MV_APPTIME []float64
//	PT_CURRENCY int64      PT_MV_CURRENCY []int64
//	PT_I8, PT_SYSTIME uint64   PT_MV_I8, PT_MV_SYSTIME []uint64
//	PT_BOOLEAN bool
//	PT_STRING8, PT_UNICODE string   PT_MV_STRING8, PT_MV_UNICODE []string
//	PT_CLSID GUID          PT_MV_CLSID []GUID
//	PT_BINARY []byte       PT_MV_BINARY [][]byte
//
// Values are immutable. Slice payloads are copied on construction and on
// access, so a TaggedPropval can be copied freely.
type TaggedPropval struct {
	tag   uint32
	value any
}

// NewPropval builds a propval from a payload whose Go type matches the tag's
// type code exactly.
func NewPropval(tag uint32, value any) (TaggedPropval, error) {
	t := TypeOf(tag)
	v, ok := normalize(t, value)
	if !ok {
		return TaggedPropval{}, fmt.Errorf("%w: tag 0x%08x (%s) cannot hold %T", ErrTypeMismatch, tag, t, value)
	}
	return TaggedPropval{tag: tag, value: v}, nil
}

// MustPropval is NewPropval for tags and payloads known to match. It panics
// otherwise.
func MustPropval(tag uint32, value any) TaggedPropval {
	p, err := NewPropval(tag, value)
	if err != nil {
		panic(err)
	}
	return p
}

// NewUint64Propval converts v to the integer, float or boolean payload the
// tag's type requires. Narrower widths truncate.
func NewUint64Propval(tag uint32, v uint64) (TaggedPropval, error) {
	var value any
	switch t := TypeOf(tag); t {
	case PtShort:
		value = uint16(v)
	case PtLong, PtError:
		value = uint32(v)
	case PtFloat:
		value = float32(v)
	case PtDouble, PtAppTime:
		value = float64(v)
	case PtCurrency:
		value = int64(v)
	case PtI8, PtSysTime:
		value = v
	case PtBoolean:
		value = v != 0
	default:
		return TaggedPropval{}, fmt.Errorf("%w: tag 0x%08x (%s) is not numeric", ErrTypeMismatch, tag, t)
	}
	return TaggedPropval{tag: tag, value: value}, nil
}

// NewStringPropval builds a PT_UNICODE or PT_STRING8 propval.
func NewStringPropval(tag uint32, s string) (TaggedPropval, error) {
	switch t := TypeOf(tag); t {
	case PtUnicode, PtString8:
		return TaggedPropval{tag: tag, value: s}, nil
	default:
		return TaggedPropval{}, fmt.Errorf("%w: tag 0x%08x (%s) is not a string", ErrTypeMismatch, tag, t)
	}
}

func normalize(t PropType, value any) (any, bool) {
	switch t {
	case PtShort:
		v, ok := value.(uint16)
		return v, ok
	case PtLong, PtError:
		v, ok := value.(uint32)
		return v, ok
	case PtFloat:
		v, ok := value.(float32)
		return v, ok
	case PtDouble, PtAppTime:
		v, ok := value.(float64)
		return v, ok
	case PtCurrency:
		v, ok := value.(int64)
		return v, ok
	case PtI8, PtSysTime:
		v, ok := value.(uint64)
		return v, ok
	case PtBoolean:
		v, ok := value.(bool)
		return v, ok
	case PtString8, PtUnicode:
		v, ok := value.(string)
		return v, ok
	case PtClsid:
		v, ok := value.(GUID)
		return v, ok
	case PtBinary:
		v, ok := value.([]byte)
		return cloneSlice(v), ok
	case PtMvShort:
		v, ok := value.([]uint16)
		return cloneSlice(v), ok
	case PtMvLong:
		v, ok := value.([]uint32)
		return cloneSlice(v), ok
	case PtMvFloat:
		v, ok := value.([]float32)
		return cloneSlice(v), ok
	case PtMvDouble, PtMvAppTime:
		v, ok := value.([]float64)
		return cloneSlice(v), ok
	case PtMvCurrency:
		v, ok := value.([]int64)
		return cloneSlice(v), ok
	case PtMvI8, PtMvSysTime:
		v, ok := value.([]uint64)
		return cloneSlice(v), ok
	case PtMvString8, PtMvUnicode:
		v, ok := value.([]string)
		return cloneSlice(v), ok
	case PtMvClsid:
		v, ok := value.([]GUID)
		return cloneSlice(v), ok
	case PtMvBinary:
		v, ok := value.([][]byte)
		return cloneBinaries(v), ok
	}
	return nil, false
}

func cloneSlice[T any](s []T) []T {
	out := make([]T, len(s))
	copy(out, s)
	return out
}

func cloneBinaries(s [][]byte) [][]byte {
	out := make([][]byte, len(s))
	for i, p := range s {
		out[i] = cloneSlice(p)
	}
	return out
}

func cloneValue(v any) any {
	switch x := v.(type) {
	case []byte:
		return cloneSlice(x)
	case []uint16:
		return cloneSlice(x)
	case []uint32:
		return cloneSlice(x)
	case []float32:
		return cloneSlice(x)
	case []float64:
		return cloneSlice(x)
	case []int64:
		return cloneSlice(x)
	case []uint64:
		return cloneSlice(x)
	case []string:
		return cloneSlice(x)
	case []GUID:
		return cloneSlice(x)
	case [][]byte:
		return cloneBinaries(x)
	}
	return v
}

// Tag returns the full 32-bit property tag.
func (p TaggedPropval) Tag() uint32 {
	return p.tag
}

// Type returns the type code carried in the low 16 bits of the tag.
func (p TaggedPropval) Type() PropType {
	return TypeOf(p.tag)
}

// Valid reports whether p was built by one of the constructors. The zero
// value is not valid.
func (p TaggedPropval) Valid() bool {
	return p.value != nil && p.Type().Known()
}

// Value returns a copy of the payload.
func (p TaggedPropval) Value() any {
	return cloneValue(p.value)
}

// Uint64 widens integer and boolean payloads.
func (p TaggedPropval) Uint64() (uint64, error) {
	switch v := p.value.(type) {
	case uint16:
		return uint64(v), nil
	case uint32:
		return uint64(v), nil
	case uint64:
		return v, nil
	case int64:
		return uint64(v), nil
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	}
	return 0, fmt.Errorf("%w: tag 0x%08x (%s) is not an integer", ErrTypeMismatch, p.tag, p.Type())
}

// Text returns the payload of a PT_UNICODE or PT_STRING8 propval.
func (p TaggedPropval) Text() (string, error) {
	if s, ok := p.value.(string); ok {
		return s, nil
	}
	return "", fmt.Errorf("%w: tag 0x%08x (%s) is not a string", ErrTypeMismatch, p.tag, p.Type())
}

// Bool returns the payload of a PT_BOOLEAN propval.
func (p TaggedPropval) Bool() (bool, error) {
	if b, ok := p.value.(bool); ok {
		return b, nil
	}
	return false, fmt.Errorf("%w: tag 0x%08x (%s) is not a boolean", ErrTypeMismatch, p.tag, p.Type())
}

// Binary returns a copy of the payload of a PT_BINARY propval.
func (p TaggedPropval) Binary() ([]byte, error) {
	if b, ok := p.value.([]byte); ok {
		return cloneSlice(b), nil
	}
	return nil, fmt.Errorf("%w: tag 0x%08x (%s) is not binary", ErrTypeMismatch, p.tag, p.Type())
}

// Encode returns the wire form of p with 8-bit strings in UTF-8.
func (p TaggedPropval) Encode() []byte {
	var b Buffer
	p.EncodeTo(&b)
	return b.Bytes()
}

// EncodeTo appends the wire form of p to b. It panics if p is not Valid.
// Floating point payloads are written bit for bit, so a NaN decodes to the
// same bits even though it never compares equal.
func (p TaggedPropval) EncodeTo(b *Buffer) {
	b.PutUint32(p.tag)
	switch t := p.Type(); t {
	case PtShort:
		b.PutUint16(p.value.(uint16))
	case PtLong, PtError:
		b.PutUint32(p.value.(uint32))
	case PtFloat:
		b.PutFloat32(p.value.(float32))
	case PtDouble, PtAppTime:
		b.PutFloat64(p.value.(float64))
	case PtCurrency:
		b.PutUint64(uint64(p.value.(int64)))
	case PtI8, PtSysTime:
		b.PutUint64(p.value.(uint64))
	case PtBoolean:
		b.PutBool(p.value.(bool))
	case PtString8:
		b.PutString8(p.value.(string))
	case PtUnicode:
		b.PutString(p.value.(string))
	case PtClsid:
		b.PutGUID(p.value.(GUID))
	case PtBinary:
		b.PutBinary(p.value.([]byte))
	case PtMvShort:
		putMulti(b, p.value.([]uint16), b.PutUint16)
	case PtMvLong:
		putMulti(b, p.value.([]uint32), b.PutUint32)
	case PtMvFloat:
		putMulti(b, p.value.([]float32), b.PutFloat32)
	case PtMvDouble, PtMvAppTime:
		putMulti(b, p.value.([]float64), b.PutFloat64)
	case PtMvCurrency:
		putMulti(b, p.value.([]int64), func(v int64) { b.PutUint64(uint64(v)) })
	case PtMvI8, PtMvSysTime:
		putMulti(b, p.value.([]uint64), b.PutUint64)
	case PtMvString8:
		putMulti(b, p.value.([]string), b.PutString8)
	case PtMvUnicode:
		putMulti(b, p.value.([]string), b.PutString)
	case PtMvClsid:
		putMulti(b, p.value.([]GUID), b.PutGUID)
	case PtMvBinary:
		putMulti(b, p.value.([][]byte), b.PutBinary)
	default:
		panic(fmt.Sprintf("mapi: encoding propval 0x%08x with unknown type %s", p.tag, t))
	}
}

func putMulti[T any](b *Buffer, vals []T, put func(T)) {
	b.PutUint32(uint32(len(vals)))
	for _, v := range vals {
		put(v)
	}
}

// DecodePropval reads one tagged propval from r. Failures wrap
// ErrMalformedPropval.
func DecodePropval(r *Reader) (TaggedPropval, error) {
	start := r.Offset()
	tag, err := r.Uint32()
	if err != nil {
		return TaggedPropval{}, fmt.Errorf("%w: tag at offset %d: %w", ErrMalformedPropval, start, err)
	}
	value, err := decodeValue(r, TypeOf(tag))
	if err != nil {
		return TaggedPropval{}, fmt.Errorf("%w: tag 0x%08x at offset %d: %w", ErrMalformedPropval, tag, start, err)
	}
	return TaggedPropval{tag: tag, value: value}, nil
}

// DecodePropvalBytes decodes a propval that must span all of data.
func DecodePropvalBytes(data []byte, cpid uint32) (TaggedPropval, error) {
	r := NewReader(data, cpid)
	p, err := DecodePropval(r)
	if err != nil {
		return TaggedPropval{}, err
	}
	if r.Remaining() != 0 {
		return TaggedPropval{}, fmt.Errorf("%w: %d trailing bytes", ErrMalformedPropval, r.Remaining())
	}
	return p, nil
}

func decodeValue(r *Reader, t PropType) (any, error) {
	switch t {
	case PtShort:
		return r.Uint16()
	case PtLong, PtError:
		return r.Uint32()
	case PtFloat:
		return r.Float32()
	case PtDouble, PtAppTime:
		return r.Float64()
	case PtCurrency:
		return readInt64(r)
	case PtI8, PtSysTime:
		return r.Uint64()
	case PtBoolean:
		return r.Bool()
	case PtString8:
		return r.String8()
	case PtUnicode:
		return r.UnicodeString()
	case PtClsid:
		return r.GUID()
	case PtBinary:
		return r.Binary()
	case PtMvShort:
		return readMulti(r, 2, r.Uint16)
	case PtMvLong:
		return readMulti(r, 4, r.Uint32)
	case PtMvFloat:
		return readMulti(r, 4, r.Float32)
	case PtMvDouble, PtMvAppTime:
		return readMulti(r, 8, r.Float64)
	case PtMvCurrency:
		return readMulti(r, 8, func() (int64, error) { return readInt64(r) })
	case PtMvI8, PtMvSysTime:
		return readMulti(r, 8, r.Uint64)
	case PtMvString8:
		return readMulti(r, 5, r.String8)
	case PtMvUnicode:
		return readMulti(r, 5, r.UnicodeString)
	case PtMvClsid:
		return readMulti(r, 16, r.GUID)
	case PtMvBinary:
		return readMulti(r, 4, r.Binary)
	}
	return nil, fmt.Errorf("%w: unknown property type 0x%04x", ErrMalformed, uint16(t))
}

func readInt64(r *Reader) (int64, error) {
	v, err := r.Uint64()
	return int64(v), err
}

// readMulti reads a u32 count and that many elements. minSize is the
// smallest wire size of one element and bounds the allocation before any
// element is read.
func readMulti[T any](r *Reader, minSize int, read func() (T, error)) ([]T, error) {
	n, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	if uint64(n)*uint64(minSize) > uint64(r.Remaining()) {
		return nil, fmt.Errorf("%w: %d values of at least %d bytes, have %d", ErrTruncated, n, minSize, r.Remaining())
	}
	out := make([]T, 0, n)
	for i := uint32(0); i < n; i++ {
		v, err := read()
		if err != nil {
			return nil, fmt.Errorf("value %d: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// PrintValue renders the payload for humans: decimal integers, quoted
// strings, hex binaries.
func (p TaggedPropval) PrintValue() string {
	return printValue(p.value)
}

func printValue(v any) string {
	switch x := v.(type) {
	case uint16:
		return strconv.FormatUint(uint64(x), 10)
	case uint32:
		return strconv.FormatUint(uint64(x), 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case string:
		return strconv.Quote(x)
	case GUID:
		return "{" + x.String() + "}"
	case []byte:
		return "0x" + hex.EncodeToString(x)
	case []uint16:
		return printMulti(x)
	case []uint32:
		return printMulti(x)
	case []float32:
		return printMulti(x)
	case []float64:
		return printMulti(x)
	case []int64:
		return printMulti(x)
	case []uint64:
		return printMulti(x)
	case []string:
		return printMulti(x)
	case []GUID:
		return printMulti(x)
	case [][]byte:
		return printMulti(x)
	}
	return "<invalid>"
}

func printMulti[T any](vals []T) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = printValue(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// String includes tag and type code. It is meant for diagnostics only.
func (p TaggedPropval) String() string {
	return fmt.Sprintf("0x%08x (type 0x%04x): %s", p.tag, uint16(p.Type()), p.PrintValue())
}

// Propvals is a row of property values as returned by property and table
// queries.
type Propvals []TaggedPropval

// Find returns the first propval carrying tag.
func (ps Propvals) Find(tag uint32) (TaggedPropval, bool) {
	for _, p := range ps {
		if p.tag == tag {
			return p, true
		}
	}
	return TaggedPropval{}, false
}

// Uint64 returns the integer payload of tag, or def when the tag is missing
// or not an integer.
func (ps Propvals) Uint64(tag uint32, def uint64) uint64 {
	p, ok := ps.Find(tag)
	if !ok {
		return def
	}
	v, err := p.Uint64()
	if err != nil {
		return def
	}
	return v
}

// Text returns the string payload of tag, or def when the tag is missing or
// not a string.
func (ps Propvals) Text(tag uint32, def string) string {
	p, ok := ps.Find(tag)
	if !ok {
		return def
	}
	s, err := p.Text()
	if err != nil {
		return def
	}
	return s
}
