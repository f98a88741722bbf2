package mapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferLittleEndian(t *testing.T) {
	var b Buffer
	b.PutUint8(0x01)
	b.PutUint16(0x0302)
	b.PutUint32(0x07060504)
	b.PutUint64(0x0F0E0D0C0B0A0908)
	b.PutBool(true)
	b.PutBool(false)

	assert.Equal(t, []byte{
		0x01,
		0x02, 0x03,
		0x04, 0x05, 0x06, 0x07,
		0x08, 0x09, 0x0A, 0x0B, 0x0C, 0x0D, 0x0E, 0x0F,
		0x01, 0x00,
	}, b.Bytes())
	assert.Equal(t, 17, b.Len())

	b.Reset()
	assert.Zero(t, b.Len())
}

func TestReaderShortReadKeepsOffset(t *testing.T) {
	r := NewReader([]byte{0x01, 0x02, 0x03}, CpidUTF8)
	v, err := r.Uint16()
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0201), v)

	_, err = r.Uint32()
	assert.ErrorIs(t, err, ErrTruncated)
	assert.Equal(t, 2, r.Offset())
	assert.Equal(t, 1, r.Remaining())
}

func TestReaderRejectsBadBool(t *testing.T) {
	_, err := NewReader([]byte{2}, CpidUTF8).Bool()
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestReaderBinaryOverrun(t *testing.T) {
	var b Buffer
	b.PutUint32(100)
	b.PutRaw([]byte{1, 2})

	r := NewReader(b.Bytes(), CpidUTF8)
	_, err := r.Binary()
	assert.ErrorIs(t, err, ErrTruncated)
	assert.Zero(t, r.Offset())
}

func TestReaderZeroLengthString(t *testing.T) {
	var b Buffer
	b.PutUint32(0)
	_, err := NewReader(b.Bytes(), CpidUTF8).UnicodeString()
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestProptagsRoundTrip(t *testing.T) {
	tags := []uint32{PrFolderID, PrDisplayName, PrComment}
	var b Buffer
	b.PutProptags(tags)
	assert.Equal(t, 2+4*len(tags), b.Len())

	got, err := NewReader(b.Bytes(), CpidUTF8).Proptags()
	require.NoError(t, err)
	assert.Equal(t, tags, got)

	_, err = NewReader([]byte{0xFF, 0xFF, 0x00}, CpidUTF8).Proptags()
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestPropvalsRoundTrip(t *testing.T) {
	vals := []TaggedPropval{
		MustPropval(PrFolderID, uint64(12345)),
		MustPropval(PrDisplayName, "Sales"),
		MustPropval(PrSubfolders, true),
	}
	var b Buffer
	b.PutPropvals(vals)

	got, err := NewReader(b.Bytes(), CpidUTF8).Propvals()
	require.NoError(t, err)
	assert.Equal(t, vals, got)
}

func TestPropvalsReportsFailingIndex(t *testing.T) {
	var b Buffer
	b.PutUint16(2)
	MustPropval(PrFolderID, uint64(1)).EncodeTo(&b)
	b.PutUint32(PrDisplayName)

	_, err := NewReader(b.Bytes(), CpidUTF8).Propvals()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedPropval)
	assert.Contains(t, err.Error(), "propval 1")
}

func TestProblemsRoundTrip(t *testing.T) {
	problems := []PropertyProblem{
		{Index: 1, PropTag: PrComment, Err: 0x80040102},
		{Index: 3, PropTag: PrDisplayName, Err: 0x8004010F},
	}
	var b Buffer
	EncodeProblems(&b, problems)

	got, err := DecodeProblems(NewReader(b.Bytes(), CpidUTF8))
	require.NoError(t, err)
	assert.Equal(t, problems, got)

	_, err = DecodeProblems(NewReader(b.Bytes()[:12], CpidUTF8))
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestPermissionDataLayout(t *testing.T) {
	pd := PermissionData{
		Flags:    PermissionRowRemove,
		Propvals: []TaggedPropval{MustPropval(PrMemberID, uint64(42))},
	}
	var b Buffer
	pd.EncodeTo(&b)

	r := NewReader(b.Bytes(), CpidUTF8)
	flags, err := r.Uint8()
	require.NoError(t, err)
	assert.Equal(t, PermissionRowRemove, flags)

	vals, err := r.Propvals()
	require.NoError(t, err)
	assert.Equal(t, pd.Propvals, vals)
	assert.Zero(t, r.Remaining())
}
