package mapi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGUIDWireOrder(t *testing.T) {
	g, err := ParseGUID("00000005-0afb-7df6-9192-49886aa738ce")
	require.NoError(t, err)
	assert.Equal(t, DomainGUID(5), g)

	assert.Equal(t, []byte{
		0x05, 0x00, 0x00, 0x00,
		0xfb, 0x0a,
		0xf6, 0x7d,
		0x91, 0x92, 0x49, 0x88, 0x6a, 0xa7, 0x38, 0xce,
	}, g.Wire())

	back, err := GUIDFromWire(g.Wire())
	require.NoError(t, err)
	assert.Equal(t, g, back)
}

func TestGUIDFromWireShort(t *testing.T) {
	_, err := GUIDFromWire([]byte{1, 2, 3})
	assert.ErrorIs(t, err, ErrTruncated)

	_, err = ParseGUID("not-a-guid")
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestUserGUIDDiffersFromDomainGUID(t *testing.T) {
	assert.NotEqual(t, DomainGUID(1), UserGUID(1))
	assert.Equal(t, "00000001-18a5-6f7b-bcdc-ea1ed03c5657", UserGUID(1).String())
}

func TestEIDLayout(t *testing.T) {
	eid := MakeEID(1, PublicFIDIPMSubtree)
	// replica 1 in the low word, then the 48-bit counter big-endian
	assert.Equal(t, uint64(0x0200000000000001), eid)
	assert.Equal(t, PublicFIDIPMSubtree, EIDValue(eid))
	assert.Equal(t, uint16(1), EIDReplica(eid))

	big := MakeEID(7, 0x0000123456789ABC)
	assert.Equal(t, uint64(0x0000123456789ABC), EIDValue(big))
}

func TestXIDAndChangeList(t *testing.T) {
	x := XID{GUID: DomainGUID(5), Counter: 0x010203}
	b := x.Bytes()
	require.Len(t, b, 22)
	assert.Equal(t, DomainGUID(5).Wire(), b[:16])
	assert.Equal(t, []byte{0, 0, 0, 0x01, 0x02, 0x03}, b[16:])

	pcl := PredecessorChangeList(x)
	require.Len(t, pcl, 23)
	assert.Equal(t, byte(22), pcl[0])
	assert.Equal(t, b, pcl[1:])
}

func TestNTTime(t *testing.T) {
	epoch := time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, uint64(116444736000000000), NTTime(epoch))

	now := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	assert.Equal(t, now, TimeFromNT(NTTime(now)))

	for _, when := range []time.Time{
		time.Date(1601, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(1650, 6, 1, 8, 0, 0, 1200, time.UTC),
		time.Date(2500, 12, 31, 23, 59, 59, 999999900, time.UTC),
		time.Date(9999, 1, 1, 0, 0, 0, 0, time.UTC),
	} {
		assert.Equal(t, when, TimeFromNT(NTTime(when)), when.String())
	}
	assert.Equal(t, uint64(0), NTTime(time.Date(1601, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, uint64(0), NTTime(time.Date(1500, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, time.Date(1601, 1, 1, 0, 0, 0, 0, time.UTC), TimeFromNT(0))
}
