package mapi

// Permission row operations.
const (
	PermissionRowAdd    uint8 = 0x01
	PermissionRowModify uint8 = 0x02
	PermissionRowRemove uint8 = 0x04
)

// PermissionData is one row change sent with an update-folder-permission
// call.
type PermissionData struct {
	Flags    uint8
	Propvals []TaggedPropval
}

// EncodeTo appends the flags byte and the propval list.
func (p PermissionData) EncodeTo(b *Buffer) {
	b.PutUint8(p.Flags)
	b.PutPropvals(p.Propvals)
}

// PropertyProblem reports one propval a batch set operation rejected. Index
// refers to the position in the submitted list.
type PropertyProblem struct {
	Index   uint16
	PropTag uint32
	Err     uint32
}

// DecodeProblems reads a u16 count followed by (u16 index, u32 tag, u32 err)
// triples.
func DecodeProblems(r *Reader) ([]PropertyProblem, error) {
	n, err := r.Uint16()
	if err != nil {
		return nil, err
	}
	if int(n)*10 > r.Remaining() {
		return nil, errTruncatedList("problems", int(n), r)
	}
	problems := make([]PropertyProblem, n)
	for i := range problems {
		problems[i].Index, _ = r.Uint16()
		problems[i].PropTag, _ = r.Uint32()
		problems[i].Err, _ = r.Uint32()
	}
	return problems, nil
}

// EncodeProblems is the inverse of DecodeProblems.
func EncodeProblems(b *Buffer, problems []PropertyProblem) {
	b.PutUint16(uint16(len(problems)))
	for _, p := range problems {
		b.PutUint16(p.Index)
		b.PutUint32(p.PropTag)
		b.PutUint32(p.Err)
	}
}
