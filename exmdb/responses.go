package exmdb

import (
	"fmt"

	"github.com/migadu/exmdb/mapi"
)

// Response is the decoded payload of a successful reply. The concrete type
// is fixed by the call id of the request.
type Response interface {
	isResponse()
}

// NullResponse is returned by calls without a payload.
type NullResponse struct{}

// PropvalResponse carries the properties returned by a get call. Properties
// the server does not have are absent, not errors.
type PropvalResponse struct {
	Propvals mapi.Propvals
}

// SuccessResponse carries the boolean result of a call. Success=false is a
// normal return.
type SuccessResponse struct {
	Success bool
}

// ProblemsResponse lists the propvals a batch set call rejected. An empty
// list means everything was applied.
type ProblemsResponse struct {
	Problems []mapi.PropertyProblem
}

// QueryTableResponse holds one propval list per table row.
type QueryTableResponse struct {
	Entries []mapi.Propvals
}

type CreateFolderByPropertiesResponse struct {
	FolderID uint64
}

type AllocateCnResponse struct {
	ChangeNum uint64
}

type LoadTableResponse struct {
	TableID  uint32
	RowCount uint32
}

type ProptagsResponse struct {
	Proptags []uint32
}

func (NullResponse) isResponse()                     {}
func (PropvalResponse) isResponse()                  {}
func (SuccessResponse) isResponse()                  {}
func (ProblemsResponse) isResponse()                 {}
func (QueryTableResponse) isResponse()               {}
func (CreateFolderByPropertiesResponse) isResponse() {}
func (AllocateCnResponse) isResponse()               {}
func (LoadTableResponse) isResponse()                {}
func (ProptagsResponse) isResponse()                 {}

type decodeFunc func(r *mapi.Reader) (Response, error)

// responseDecoders maps every call id to the decoder of its reply payload.
var responseDecoders = map[CallID]decodeFunc{
	CallConnect:                  decodeNull,
	CallPingStore:                decodeNull,
	CallGetStoreAllProptags:      decodeProptags,
	CallGetStoreProperties:       decodePropvals,
	CallSetStoreProperties:       decodeProblems,
	CallRemoveStoreProperties:    decodeNull,
	CallCreateFolderByProperties: decodeCreateFolder,
	CallGetFolderProperties:      decodePropvals,
	CallSetFolderProperties:      decodeProblems,
	CallDeleteFolder:             decodeSuccess,
	CallLoadHierarchyTable:       decodeLoadTable,
	CallLoadPermissionTable:      decodeLoadTable,
	CallUnloadTable:              decodeNull,
	CallQueryTable:               decodeQueryTable,
	CallAllocateCn:               decodeAllocateCn,
	CallUpdateFolderPermission:   decodeNull,
	CallUnloadStore:              decodeNull,
}

// decodeResponse decodes payload as the reply to call. The payload must be
// consumed entirely.
func decodeResponse(call CallID, cpid uint32, payload []byte) (Response, error) {
	dec, ok := responseDecoders[call]
	if !ok {
		return nil, fmt.Errorf("%w: no decoder for %s", ErrProtocol, call)
	}
	r := mapi.NewReader(payload, cpid)
	resp, err := dec(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %s reply: %w", ErrProtocol, call, err)
	}
	if r.Remaining() != 0 {
		return nil, fmt.Errorf("%w: %s reply has %d trailing bytes", ErrProtocol, call, r.Remaining())
	}
	return resp, nil
}

func decodeNull(*mapi.Reader) (Response, error) {
	return NullResponse{}, nil
}

func decodePropvals(r *mapi.Reader) (Response, error) {
	vals, err := r.Propvals()
	if err != nil {
		return nil, err
	}
	return PropvalResponse{Propvals: vals}, nil
}

func decodeSuccess(r *mapi.Reader) (Response, error) {
	ok, err := r.Bool()
	if err != nil {
		return nil, err
	}
	return SuccessResponse{Success: ok}, nil
}

func decodeProblems(r *mapi.Reader) (Response, error) {
	problems, err := mapi.DecodeProblems(r)
	if err != nil {
		return nil, err
	}
	return ProblemsResponse{Problems: problems}, nil
}

func decodeQueryTable(r *mapi.Reader) (Response, error) {
	n, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	// every row carries at least its u16 propval count
	if uint64(n)*2 > uint64(r.Remaining()) {
		return nil, fmt.Errorf("%w: %d rows, have %d bytes", mapi.ErrTruncated, n, r.Remaining())
	}
	entries := make([]mapi.Propvals, 0, n)
	for i := uint32(0); i < n; i++ {
		row, err := r.Propvals()
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		entries = append(entries, row)
	}
	return QueryTableResponse{Entries: entries}, nil
}

func decodeCreateFolder(r *mapi.Reader) (Response, error) {
	id, err := r.Uint64()
	if err != nil {
		return nil, err
	}
	return CreateFolderByPropertiesResponse{FolderID: id}, nil
}

func decodeAllocateCn(r *mapi.Reader) (Response, error) {
	cn, err := r.Uint64()
	if err != nil {
		return nil, err
	}
	return AllocateCnResponse{ChangeNum: cn}, nil
}

func decodeLoadTable(r *mapi.Reader) (Response, error) {
	id, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	rows, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	return LoadTableResponse{TableID: id, RowCount: rows}, nil
}

func decodeProptags(r *mapi.Reader) (Response, error) {
	tags, err := r.Proptags()
	if err != nil {
		return nil, err
	}
	return ProptagsResponse{Proptags: tags}, nil
}
