package testutils

import "github.com/migadu/exmdb/mapi"

// Builders for reply payloads.

func Uint64Payload(v uint64) []byte {
	var b mapi.Buffer
	b.PutUint64(v)
	return b.Bytes()
}

func BoolPayload(v bool) []byte {
	var b mapi.Buffer
	b.PutBool(v)
	return b.Bytes()
}

// LoadTablePayload is the reply to a load-table call.
func LoadTablePayload(tableID, rowCount uint32) []byte {
	var b mapi.Buffer
	b.PutUint32(tableID)
	b.PutUint32(rowCount)
	return b.Bytes()
}

// PropvalsPayload encodes vals with 8-bit strings in the charset of cpid.
func PropvalsPayload(cpid uint32, vals ...mapi.TaggedPropval) []byte {
	b := mapi.NewBuffer(cpid)
	b.PutPropvals(vals)
	return b.Bytes()
}

// RowsPayload is the reply to a query-table call.
func RowsPayload(rows ...[]mapi.TaggedPropval) []byte {
	var b mapi.Buffer
	b.PutUint32(uint32(len(rows)))
	for _, row := range rows {
		b.PutPropvals(row)
	}
	return b.Bytes()
}

func ProblemsPayload(problems ...mapi.PropertyProblem) []byte {
	var b mapi.Buffer
	mapi.EncodeProblems(&b, problems)
	return b.Bytes()
}

func ProptagsPayload(tags ...uint32) []byte {
	var b mapi.Buffer
	b.PutProptags(tags)
	return b.Bytes()
}
