package mapi

import "fmt"

// PropType is the 16-bit property type code carried in the low half of a
// property tag.
type PropType uint16

const (
	PtShort      PropType = 0x0002
	PtLong       PropType = 0x0003
	PtFloat      PropType = 0x0004
	PtDouble     PropType = 0x0005
	PtCurrency   PropType = 0x0006
	PtAppTime    PropType = 0x0007
	PtError      PropType = 0x000A
	PtBoolean    PropType = 0x000B
	PtI8         PropType = 0x0014
	PtString8    PropType = 0x001E
	PtUnicode    PropType = 0x001F
	PtSysTime    PropType = 0x0040
	PtClsid      PropType = 0x0048
	PtBinary     PropType = 0x0102
	PtMvShort    PropType = 0x1002
	PtMvLong     PropType = 0x1003
	PtMvFloat    PropType = 0x1004
	PtMvDouble   PropType = 0x1005
	PtMvCurrency PropType = 0x1006
	PtMvAppTime  PropType = 0x1007
	PtMvI8       PropType = 0x1014
	PtMvString8  PropType = 0x101E
	PtMvUnicode  PropType = 0x101F
	PtMvSysTime  PropType = 0x1040
	PtMvClsid    PropType = 0x1048
	PtMvBinary   PropType = 0x1102

	mvFlag PropType = 0x1000
)

// KnownPropTypes lists every type code the codec understands. Adding a code
// here without teaching EncodeTo and DecodePropval about it makes the codec
// tests fail.
var KnownPropTypes = []PropType{
	PtShort, PtLong, PtFloat, PtDouble, PtCurrency, PtAppTime, PtError,
	PtBoolean, PtI8, PtString8, PtUnicode, PtSysTime, PtClsid, PtBinary,
	PtMvShort, PtMvLong, PtMvFloat, PtMvDouble, PtMvCurrency, PtMvAppTime,
	PtMvI8, PtMvString8, PtMvUnicode, PtMvSysTime, PtMvClsid, PtMvBinary,
}

var propTypeNames = map[PropType]string{
	PtShort:      "PT_SHORT",
	PtLong:       "PT_LONG",
	PtFloat:      "PT_FLOAT",
	PtDouble:     "PT_DOUBLE",
	PtCurrency:   "PT_CURRENCY",
	PtAppTime:    "PT_APPTIME",
	PtError:      "PT_ERROR",
	PtBoolean:    "PT_BOOLEAN",
	PtI8:         "PT_I8",
	PtString8:    "PT_STRING8",
	PtUnicode:    "PT_UNICODE",
	PtSysTime:    "PT_SYSTIME",
	PtClsid:      "PT_CLSID",
	PtBinary:     "PT_BINARY",
	PtMvShort:    "PT_MV_SHORT",
	PtMvLong:     "PT_MV_LONG",
	PtMvFloat:    "PT_MV_FLOAT",
	PtMvDouble:   "PT_MV_DOUBLE",
	PtMvCurrency: "PT_MV_CURRENCY",
	PtMvAppTime:  "PT_MV_APPTIME",
	PtMvI8:       "PT_MV_I8",
	PtMvString8:  "PT_MV_STRING8",
	PtMvUnicode:  "PT_MV_UNICODE",
	PtMvSysTime:  "PT_MV_SYSTIME",
	PtMvClsid:    "PT_MV_CLSID",
	PtMvBinary:   "PT_MV_BINARY",
}

// Known reports whether t is part of KnownPropTypes.
func (t PropType) Known() bool {
	_, ok := propTypeNames[t]
	return ok
}

// MultiValued reports whether t is one of the PT_MV_* codes.
func (t PropType) MultiValued() bool {
	return t&mvFlag != 0
}

// Base strips the multi-value flag.
func (t PropType) Base() PropType {
	return t &^ mvFlag
}

func (t PropType) String() string {
	if name, ok := propTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("PT_0x%04X", uint16(t))
}

// TypeOf extracts the type code from a property tag.
func TypeOf(tag uint32) PropType {
	return PropType(tag & 0xFFFF)
}

// IDOf extracts the property id from a property tag.
func IDOf(tag uint32) uint16 {
	return uint16(tag >> 16)
}

// MakeTag combines a property id and type code.
func MakeTag(id uint16, t PropType) uint32 {
	return uint32(id)<<16 | uint32(t)
}
