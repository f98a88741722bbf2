package mapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestString8UsesCodepage(t *testing.T) {
	p := MustPropval(MakeTag(0x3001, PtString8), "Grüße")

	b := NewBuffer(CpidLatin1)
	p.EncodeTo(b)
	wire := b.Bytes()

	// ü and ß are single bytes in Windows-1252
	assert.Equal(t, []byte{'G', 'r', 0xFC, 0xDF, 'e', 0x00}, wire[8:])

	out, err := DecodePropval(NewReader(wire, CpidLatin1))
	require.NoError(t, err)
	assert.Equal(t, p, out)
}

func TestUnicodeIgnoresCodepage(t *testing.T) {
	p := MustPropval(PrDisplayName, "Grüße")

	b := NewBuffer(CpidLatin1)
	p.EncodeTo(b)

	out, err := DecodePropval(NewReader(b.Bytes(), 932))
	require.NoError(t, err)
	assert.Equal(t, p, out)
}

func TestString8ShiftJIS(t *testing.T) {
	p := MustPropval(MakeTag(0x3001, PtString8), "受信トレイ")

	b := NewBuffer(932)
	p.EncodeTo(b)
	out, err := DecodePropval(NewReader(b.Bytes(), 932))
	require.NoError(t, err)
	assert.Equal(t, p, out)
}

func TestUnsupportedRunesAreReplaced(t *testing.T) {
	b := NewBuffer(CpidLatin1)
	b.PutString8("a☃b")
	out, err := NewReader(b.Bytes(), CpidLatin1).String8()
	require.NoError(t, err)
	assert.Equal(t, "a\x1ab", out)
}

func TestCodepageKnown(t *testing.T) {
	assert.True(t, CodepageKnown(CpidDefault))
	assert.True(t, CodepageKnown(CpidUTF8))
	assert.True(t, CodepageKnown(1251))
	assert.False(t, CodepageKnown(4242))
	assert.Nil(t, Codepage(CpidUTF8))
	assert.NotNil(t, Codepage(936))
}

func TestUnknownCodepageFallsBackToUTF8(t *testing.T) {
	b := NewBuffer(4242)
	b.PutString8("Ümlaut")
	out, err := NewReader(b.Bytes(), 4242).String8()
	require.NoError(t, err)
	assert.Equal(t, "Ümlaut", out)

	bad := NewBuffer(0)
	bad.PutUint32(3)
	bad.PutRaw([]byte{0xFF, 'x', 0})
	out, err = NewReader(bad.Bytes(), CpidUTF8).String8()
	require.NoError(t, err)
	assert.Equal(t, "�x", out)
}
