package mapi

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sampleGUID = GUID{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f, 0x10}

func samplePayload(t PropType) any {
	switch t {
	case PtShort:
		return uint16(0xBEEF)
	case PtLong, PtError:
		return uint32(0x80040102)
	case PtFloat:
		return float32(1.5)
	case PtDouble, PtAppTime:
		return 2.25
	case PtCurrency:
		return int64(-1234567)
	case PtI8, PtSysTime:
		return uint64(0x01D6F0A1B2C3D4E5)
	case PtBoolean:
		return true
	case PtString8, PtUnicode:
		return "Grüße aus Inbox"
	case PtClsid:
		return sampleGUID
	case PtBinary:
		return []byte{0x00, 0xFF, 0x10}
	case PtMvShort:
		return []uint16{1, 2, 65535}
	case PtMvLong:
		return []uint32{7, 0xFFFFFFFF}
	case PtMvFloat:
		return []float32{0.5, -3}
	case PtMvDouble, PtMvAppTime:
		return []float64{3.14, 0}
	case PtMvCurrency:
		return []int64{-1, 1}
	case PtMvI8, PtMvSysTime:
		return []uint64{0, 1 << 63}
	case PtMvString8, PtMvUnicode:
		return []string{"a", "", "Ümlaut"}
	case PtMvClsid:
		return []GUID{sampleGUID, DomainGUID(5)}
	case PtMvBinary:
		return [][]byte{{}, {0xCA, 0xFE}}
	}
	return nil
}

func TestRoundTripEveryKnownType(t *testing.T) {
	for _, pt := range KnownPropTypes {
		t.Run(pt.String(), func(t *testing.T) {
			tag := MakeTag(0x8001, pt)
			in, err := NewPropval(tag, samplePayload(pt))
			require.NoError(t, err)
			require.True(t, in.Valid())

			out, err := DecodePropvalBytes(in.Encode(), CpidUTF8)
			require.NoError(t, err)
			assert.Equal(t, in, out)
			assert.Equal(t, pt, out.Type())
		})
	}
}

func TestRoundTripUint64Constructor(t *testing.T) {
	tests := []struct {
		name string
		tag  uint32
		in   uint64
		want any
	}{
		{"short", MakeTag(1, PtShort), 0x12345, uint16(0x2345)},
		{"long", PrMemberRights, uint64(RightsOwner), RightsOwner},
		{"error", MakeTag(1, PtError), 0x8004010F, uint32(0x8004010F)},
		{"i8", PrFolderID, 12345, uint64(12345)},
		{"systime", PrCreationTime, 132537600000000000, uint64(132537600000000000)},
		{"currency", MakeTag(1, PtCurrency), 42, int64(42)},
		{"double", MakeTag(1, PtDouble), 3, float64(3)},
		{"float", MakeTag(1, PtFloat), 9, float32(9)},
		{"boolean", PrSubfolders, 2, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewUint64Propval(tt.tag, tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Value())

			out, err := DecodePropvalBytes(p.Encode(), CpidUTF8)
			require.NoError(t, err)
			assert.Equal(t, p, out)
		})
	}
}

func TestRoundTripStringConstructor(t *testing.T) {
	for _, tag := range []uint32{PrDisplayName, MakeTag(0x3001, PtString8)} {
		p, err := NewStringPropval(tag, "Inbox2")
		require.NoError(t, err)

		out, err := DecodePropvalBytes(p.Encode(), CpidUTF8)
		require.NoError(t, err)
		assert.Equal(t, p, out)

		s, err := out.Text()
		require.NoError(t, err)
		assert.Equal(t, "Inbox2", s)
	}
}

func TestConstructorsRejectMismatchedTypes(t *testing.T) {
	_, err := NewUint64Propval(PrDisplayName, 1)
	assert.ErrorIs(t, err, ErrTypeMismatch)

	_, err = NewStringPropval(PrFolderID, "x")
	assert.ErrorIs(t, err, ErrTypeMismatch)

	_, err = NewPropval(PrFolderID, uint32(1))
	assert.ErrorIs(t, err, ErrTypeMismatch)

	_, err = NewPropval(MakeTag(1, PropType(0x0999)), uint32(1))
	assert.ErrorIs(t, err, ErrTypeMismatch)

	assert.Panics(t, func() { MustPropval(PrComment, 5) })
}

func TestPropvalIsImmutable(t *testing.T) {
	raw := []byte{1, 2, 3}
	p := MustPropval(PrChangeKey, raw)
	raw[0] = 0xFF

	got, err := p.Binary()
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, got)

	got[1] = 0xFF
	again, _ := p.Binary()
	assert.Equal(t, []byte{1, 2, 3}, again)
}

func TestDecodeTruncatedNeverPanics(t *testing.T) {
	for _, pt := range KnownPropTypes {
		p := MustPropval(MakeTag(0x8002, pt), samplePayload(pt))
		wire := p.Encode()
		for cut := 0; cut < len(wire); cut++ {
			var err error
			require.NotPanics(t, func() {
				_, err = DecodePropvalBytes(wire[:cut], CpidUTF8)
			}, "%s cut at %d", pt, cut)
			require.Error(t, err, "%s cut at %d", pt, cut)
			assert.ErrorIs(t, err, ErrMalformedPropval, "%s cut at %d", pt, cut)
		}
	}
}

func TestDecodeUnknownType(t *testing.T) {
	var b Buffer
	b.PutUint32(MakeTag(0x1234, PropType(0x0999)))
	b.PutUint32(0)

	_, err := DecodePropvalBytes(b.Bytes(), CpidUTF8)
	assert.ErrorIs(t, err, ErrMalformedPropval)
}

func TestDecodeHugeMultiValueCountFailsFast(t *testing.T) {
	var b Buffer
	b.PutUint32(MakeTag(0x1234, PtMvI8))
	b.PutUint32(0xFFFFFFFF)

	_, err := DecodePropvalBytes(b.Bytes(), CpidUTF8)
	assert.ErrorIs(t, err, ErrMalformedPropval)
	assert.True(t, errors.Is(err, ErrTruncated))
}

func TestDecodeStringWithoutTerminator(t *testing.T) {
	var b Buffer
	b.PutUint32(PrDisplayName)
	b.PutUint32(3)
	b.PutRaw([]byte("abc"))

	_, err := DecodePropvalBytes(b.Bytes(), CpidUTF8)
	assert.ErrorIs(t, err, ErrMalformedPropval)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestDecodeRejectsTrailingBytes(t *testing.T) {
	wire := MustPropval(PrFolderType, FolderGeneric).Encode()
	_, err := DecodePropvalBytes(append(wire, 0), CpidUTF8)
	assert.ErrorIs(t, err, ErrMalformedPropval)
}

func TestEncodeZeroValuePanics(t *testing.T) {
	assert.False(t, TaggedPropval{}.Valid())
	assert.Panics(t, func() { TaggedPropval{}.Encode() })
}

func TestStringWireLayout(t *testing.T) {
	p := MustPropval(PrComment, "hi")
	assert.Equal(t, []byte{
		0x1F, 0x00, 0x04, 0x30, // tag
		0x03, 0x00, 0x00, 0x00, // length including terminator
		'h', 'i', 0x00,
	}, p.Encode())
}

func TestPrintValue(t *testing.T) {
	tests := []struct {
		p    TaggedPropval
		want string
	}{
		{MustPropval(PrFolderID, uint64(12345)), "12345"},
		{MustPropval(PrDisplayName, "Inbox"), `"Inbox"`},
		{MustPropval(PrChangeKey, []byte{0xAB, 0x01}), "0xab01"},
		{MustPropval(PrSubfolders, false), "false"},
		{MustPropval(MakeTag(1, PtMvLong), []uint32{1, 2}), "[1, 2]"},
		{MustPropval(MakeTag(1, PtMvUnicode), []string{"a"}), `["a"]`},
		{MustPropval(MakeTag(1, PtClsid), sampleGUID), "{01020304-0506-0708-090a-0b0c0d0e0f10}"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.p.PrintValue())
	}

	assert.Equal(t, `0x3001001f (type 0x001f): "Inbox"`, MustPropval(PrDisplayName, "Inbox").String())
}

func TestPropvalsLookup(t *testing.T) {
	row := Propvals{
		MustPropval(PrFolderID, uint64(9)),
		MustPropval(PrDisplayName, "Sales"),
	}
	assert.Equal(t, uint64(9), row.Uint64(PrFolderID, 0))
	assert.Equal(t, "Sales", row.Text(PrDisplayName, ""))
	assert.Equal(t, "", row.Text(PrComment, ""))
	assert.Equal(t, uint64(7), row.Uint64(PrCreationTime, 7))
	assert.Equal(t, "fallback", row.Text(PrFolderID, "fallback"))
}

// NaN never equals itself, so floating point round trips are checked bit
// for bit.
func TestRoundTripNaNKeepsBits(t *testing.T) {
	nan64 := math.Float64frombits(0x7FF8000000000001)
	nan32 := math.Float32frombits(0x7FC00001)

	out, err := DecodePropvalBytes(MustPropval(MakeTag(1, PtDouble), nan64).Encode(), CpidUTF8)
	require.NoError(t, err)
	assert.Equal(t, math.Float64bits(nan64), math.Float64bits(out.Value().(float64)))

	out, err = DecodePropvalBytes(MustPropval(MakeTag(1, PtFloat), nan32).Encode(), CpidUTF8)
	require.NoError(t, err)
	assert.Equal(t, math.Float32bits(nan32), math.Float32bits(out.Value().(float32)))

	out, err = DecodePropvalBytes(MustPropval(MakeTag(1, PtMvDouble), []float64{nan64, 1}).Encode(), CpidUTF8)
	require.NoError(t, err)
	vals := out.Value().([]float64)
	require.Len(t, vals, 2)
	assert.Equal(t, math.Float64bits(nan64), math.Float64bits(vals[0]))
	assert.Equal(t, 1.0, vals[1])
}
