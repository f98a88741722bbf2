package mapi

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
)

// Code page ids commonly sent with exmdb calls.
const (
	CpidDefault uint32 = 0
	CpidUTF8    uint32 = 65001
	CpidLatin1  uint32 = 1252
)

var codepages = map[uint32]encoding.Encoding{
	437:   charmap.CodePage437,
	850:   charmap.CodePage850,
	852:   charmap.CodePage852,
	866:   charmap.CodePage866,
	874:   charmap.Windows874,
	932:   japanese.ShiftJIS,
	936:   simplifiedchinese.GBK,
	949:   korean.EUCKR,
	950:   traditionalchinese.Big5,
	1250:  charmap.Windows1250,
	1251:  charmap.Windows1251,
	1252:  charmap.Windows1252,
	1253:  charmap.Windows1253,
	1254:  charmap.Windows1254,
	1255:  charmap.Windows1255,
	1256:  charmap.Windows1256,
	1257:  charmap.Windows1257,
	1258:  charmap.Windows1258,
	20866: charmap.KOI8R,
	21866: charmap.KOI8U,
	28591: charmap.ISO8859_1,
	28592: charmap.ISO8859_2,
	28593: charmap.ISO8859_3,
	28594: charmap.ISO8859_4,
	28595: charmap.ISO8859_5,
	28596: charmap.ISO8859_6,
	28597: charmap.ISO8859_7,
	28598: charmap.ISO8859_8,
	28599: charmap.ISO8859_9,
	28603: charmap.ISO8859_13,
	28605: charmap.ISO8859_15,
	54936: simplifiedchinese.GB18030,
}

// CodepageKnown reports whether cpid selects a charset other than the UTF-8
// fallback.
func CodepageKnown(cpid uint32) bool {
	_, ok := codepages[cpid]
	return ok || cpid == CpidUTF8 || cpid == CpidDefault
}

// Codepage returns the charset for cpid, or nil when strings are UTF-8.
func Codepage(cpid uint32) encoding.Encoding {
	return codepages[cpid]
}

func encodeCodepage(cpid uint32, s string) []byte {
	enc := codepages[cpid]
	if enc == nil {
		return []byte(s)
	}
	out, err := encoding.ReplaceUnsupported(enc.NewEncoder()).Bytes([]byte(s))
	if err != nil {
		return []byte(s)
	}
	return out
}

func decodeCodepage(cpid uint32, p []byte) string {
	enc := codepages[cpid]
	if enc == nil {
		if utf8.Valid(p) {
			return string(p)
		}
		return strings.ToValidUTF8(string(p), "�")
	}
	out, err := enc.NewDecoder().Bytes(p)
	if err != nil {
		return strings.ToValidUTF8(string(p), "�")
	}
	return string(out)
}
