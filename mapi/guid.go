package mapi

import (
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"
)

// GUID is a 16-byte identifier held in RFC 4122 (big-endian) byte order.
// On the wire the first three fields are little-endian; Wire and
// GUIDFromWire convert between the two.
type GUID uuid.UUID

// ParseGUID parses the textual xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx form.
func ParseGUID(s string) (GUID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return GUID{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return GUID(u), nil
}

// GUIDFromWire converts 16 bytes in MS wire order into a GUID.
func GUIDFromWire(p []byte) (GUID, error) {
	if len(p) != 16 {
		return GUID{}, fmt.Errorf("%w: guid needs 16 bytes, got %d", ErrTruncated, len(p))
	}
	var g GUID
	binary.BigEndian.PutUint32(g[0:4], binary.LittleEndian.Uint32(p[0:4]))
	binary.BigEndian.PutUint16(g[4:6], binary.LittleEndian.Uint16(p[4:6]))
	binary.BigEndian.PutUint16(g[6:8], binary.LittleEndian.Uint16(p[6:8]))
	copy(g[8:], p[8:16])
	return g, nil
}

// Wire returns the MS wire representation of g.
func (g GUID) Wire() []byte {
	p := make([]byte, 16)
	binary.LittleEndian.PutUint32(p[0:4], binary.BigEndian.Uint32(g[0:4]))
	binary.LittleEndian.PutUint16(p[4:6], binary.BigEndian.Uint16(g[4:6]))
	binary.LittleEndian.PutUint16(p[6:8], binary.BigEndian.Uint16(g[6:8]))
	copy(p[8:], g[8:])
	return p
}

func (g GUID) String() string {
	return uuid.UUID(g).String()
}

// DomainGUID derives the store GUID the server assigns to a domain's public
// store.
func DomainGUID(domainID uint32) GUID {
	var g GUID
	binary.BigEndian.PutUint32(g[0:4], domainID)
	copy(g[4:], []byte{0x0a, 0xfb, 0x7d, 0xf6, 0x91, 0x92, 0x49, 0x88, 0x6a, 0xa7, 0x38, 0xce})
	return g
}

// UserGUID derives the store GUID the server assigns to a user's private
// store.
func UserGUID(userID uint32) GUID {
	var g GUID
	binary.BigEndian.PutUint32(g[0:4], userID)
	copy(g[4:], []byte{0x18, 0xa5, 0x6f, 0x7b, 0xbc, 0xdc, 0xea, 0x1e, 0xd0, 0x3c, 0x56, 0x57})
	return g
}

// GlobCnt returns the 6-byte big-endian global counter of value. Bits above
// 48 are dropped.
func GlobCnt(value uint64) [6]byte {
	var gc [6]byte
	for i := range gc {
		gc[i] = byte(value >> (40 - 8*uint(i)))
	}
	return gc
}

// MakeEID builds a 64-bit entry id from a replica id and a counter value, in
// the layout the server uses for folder and message ids.
func MakeEID(replid uint16, value uint64) uint64 {
	gc := GlobCnt(value)
	eid := uint64(replid)
	for i, b := range gc {
		eid |= uint64(b) << (16 + 8*uint(i))
	}
	return eid
}

// EIDValue recovers the counter value of an entry id built by MakeEID.
func EIDValue(eid uint64) uint64 {
	var v uint64
	for i := 0; i < 6; i++ {
		v = v<<8 | (eid>>(16+8*uint(i)))&0xFF
	}
	return v
}

// EIDReplica returns the replica id of an entry id.
func EIDReplica(eid uint64) uint16 {
	return uint16(eid)
}

// XID is a GUID-qualified counter used in change keys.
type XID struct {
	GUID    GUID
	Counter uint64
}

// Bytes returns the 22-byte wire form: GUID followed by the 6-byte counter.
func (x XID) Bytes() []byte {
	gc := GlobCnt(x.Counter)
	out := make([]byte, 0, 22)
	out = append(out, x.GUID.Wire()...)
	return append(out, gc[:]...)
}

// PredecessorChangeList encodes a change list holding only x: one size byte
// followed by the XID.
func PredecessorChangeList(x XID) []byte {
	b := x.Bytes()
	return append([]byte{byte(len(b))}, b...)
}
