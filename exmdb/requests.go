package exmdb

import "github.com/migadu/exmdb/mapi"

// Table flags for load-table requests.
const (
	TableFlagDepth          uint8 = 0x04
	TableFlagNoNotify       uint8 = 0x10
	TableFlagSoftDeletes    uint8 = 0x20
	PermissionTableFreeBusy uint8 = 0x02
)

// Request is one call frame. The set of requests is closed; each type
// encodes its own fields after the call id.
type Request interface {
	Call() CallID
	encode(b *mapi.Buffer)
}

// codepager is implemented by requests whose reply strings depend on a code
// page.
type codepager interface {
	codepage() uint32
}

func requestCodepage(req Request) uint32 {
	if cp, ok := req.(codepager); ok {
		return cp.codepage()
	}
	return mapi.CpidUTF8
}

func putOptionalString(b *mapi.Buffer, s string) {
	if s == "" {
		b.PutUint8(0)
		return
	}
	b.PutUint8(1)
	b.PutString(s)
}

type ConnectRequest struct {
	Prefix    string
	RemoteID  string
	IsPrivate bool
}

func (ConnectRequest) Call() CallID { return CallConnect }

func (r ConnectRequest) encode(b *mapi.Buffer) {
	b.PutString(r.Prefix)
	b.PutString(r.RemoteID)
	b.PutBool(r.IsPrivate)
}

type PingStoreRequest struct {
	Homedir string
}

func (PingStoreRequest) Call() CallID { return CallPingStore }

func (r PingStoreRequest) encode(b *mapi.Buffer) {
	b.PutString(r.Homedir)
}

type UnloadStoreRequest struct {
	Homedir string
}

func (UnloadStoreRequest) Call() CallID { return CallUnloadStore }

func (r UnloadStoreRequest) encode(b *mapi.Buffer) {
	b.PutString(r.Homedir)
}

type AllocateCnRequest struct {
	Homedir string
}

func (AllocateCnRequest) Call() CallID { return CallAllocateCn }

func (r AllocateCnRequest) encode(b *mapi.Buffer) {
	b.PutString(r.Homedir)
}

type GetStoreAllProptagsRequest struct {
	Homedir string
}

func (GetStoreAllProptagsRequest) Call() CallID { return CallGetStoreAllProptags }

func (r GetStoreAllProptagsRequest) encode(b *mapi.Buffer) {
	b.PutString(r.Homedir)
}

type GetStorePropertiesRequest struct {
	Homedir  string
	Cpid     uint32
	Proptags []uint32
}

func (GetStorePropertiesRequest) Call() CallID { return CallGetStoreProperties }

func (r GetStorePropertiesRequest) codepage() uint32 { return r.Cpid }

func (r GetStorePropertiesRequest) encode(b *mapi.Buffer) {
	b.PutString(r.Homedir)
	b.PutUint32(r.Cpid)
	b.PutProptags(r.Proptags)
}

type SetStorePropertiesRequest struct {
	Homedir  string
	Cpid     uint32
	Propvals []mapi.TaggedPropval
}

func (SetStorePropertiesRequest) Call() CallID { return CallSetStoreProperties }

func (r SetStorePropertiesRequest) codepage() uint32 { return r.Cpid }

func (r SetStorePropertiesRequest) encode(b *mapi.Buffer) {
	b.PutString(r.Homedir)
	b.PutUint32(r.Cpid)
	b.PutPropvals(r.Propvals)
}

type RemoveStorePropertiesRequest struct {
	Homedir  string
	Proptags []uint32
}

func (RemoveStorePropertiesRequest) Call() CallID { return CallRemoveStoreProperties }

func (r RemoveStorePropertiesRequest) encode(b *mapi.Buffer) {
	b.PutString(r.Homedir)
	b.PutProptags(r.Proptags)
}

type CreateFolderByPropertiesRequest struct {
	Homedir  string
	Cpid     uint32
	Propvals []mapi.TaggedPropval
}

func (CreateFolderByPropertiesRequest) Call() CallID { return CallCreateFolderByProperties }

func (r CreateFolderByPropertiesRequest) codepage() uint32 { return r.Cpid }

func (r CreateFolderByPropertiesRequest) encode(b *mapi.Buffer) {
	b.PutString(r.Homedir)
	b.PutUint32(r.Cpid)
	b.PutPropvals(r.Propvals)
}

type GetFolderPropertiesRequest struct {
	Homedir  string
	Cpid     uint32
	FolderID uint64
	Proptags []uint32
}

func (GetFolderPropertiesRequest) Call() CallID { return CallGetFolderProperties }

func (r GetFolderPropertiesRequest) codepage() uint32 { return r.Cpid }

func (r GetFolderPropertiesRequest) encode(b *mapi.Buffer) {
	b.PutString(r.Homedir)
	b.PutUint32(r.Cpid)
	b.PutUint64(r.FolderID)
	b.PutProptags(r.Proptags)
}

type SetFolderPropertiesRequest struct {
	Homedir  string
	Cpid     uint32
	FolderID uint64
	Propvals []mapi.TaggedPropval
}

func (SetFolderPropertiesRequest) Call() CallID { return CallSetFolderProperties }

func (r SetFolderPropertiesRequest) codepage() uint32 { return r.Cpid }

func (r SetFolderPropertiesRequest) encode(b *mapi.Buffer) {
	b.PutString(r.Homedir)
	b.PutUint32(r.Cpid)
	b.PutUint64(r.FolderID)
	b.PutPropvals(r.Propvals)
}

type DeleteFolderRequest struct {
	Homedir  string
	Cpid     uint32
	FolderID uint64
	Hard     bool
}

func (DeleteFolderRequest) Call() CallID { return CallDeleteFolder }

func (r DeleteFolderRequest) encode(b *mapi.Buffer) {
	b.PutString(r.Homedir)
	b.PutUint32(r.Cpid)
	b.PutUint64(r.FolderID)
	b.PutBool(r.Hard)
}

// LoadHierarchyTableRequest opens a table over the subfolders of FolderID.
// An empty Username loads the table without a permission context. No
// restriction is ever sent.
type LoadHierarchyTableRequest struct {
	Homedir    string
	FolderID   uint64
	Username   string
	TableFlags uint8
}

func (LoadHierarchyTableRequest) Call() CallID { return CallLoadHierarchyTable }

func (r LoadHierarchyTableRequest) encode(b *mapi.Buffer) {
	b.PutString(r.Homedir)
	b.PutUint64(r.FolderID)
	putOptionalString(b, r.Username)
	b.PutUint8(r.TableFlags)
	b.PutUint8(0)
}

type LoadPermissionTableRequest struct {
	Homedir    string
	FolderID   uint64
	TableFlags uint8
}

func (LoadPermissionTableRequest) Call() CallID { return CallLoadPermissionTable }

func (r LoadPermissionTableRequest) encode(b *mapi.Buffer) {
	b.PutString(r.Homedir)
	b.PutUint64(r.FolderID)
	b.PutUint8(r.TableFlags)
}

// QueryTableRequest reads RowNeeded rows starting at Start from a loaded
// table. A negative RowNeeded reads backwards.
type QueryTableRequest struct {
	Homedir   string
	Username  string
	Cpid      uint32
	TableID   uint32
	Proptags  []uint32
	Start     uint32
	RowNeeded int32
}

func (QueryTableRequest) Call() CallID { return CallQueryTable }

func (r QueryTableRequest) codepage() uint32 { return r.Cpid }

func (r QueryTableRequest) encode(b *mapi.Buffer) {
	b.PutString(r.Homedir)
	putOptionalString(b, r.Username)
	b.PutUint32(r.Cpid)
	b.PutUint32(r.TableID)
	b.PutProptags(r.Proptags)
	b.PutUint32(r.Start)
	b.PutUint32(uint32(r.RowNeeded))
}

type UnloadTableRequest struct {
	Homedir string
	TableID uint32
}

func (UnloadTableRequest) Call() CallID { return CallUnloadTable }

func (r UnloadTableRequest) encode(b *mapi.Buffer) {
	b.PutString(r.Homedir)
	b.PutUint32(r.TableID)
}

type UpdateFolderPermissionRequest struct {
	Homedir  string
	FolderID uint64
	FreeBusy bool
	Rows     []mapi.PermissionData
}

func (UpdateFolderPermissionRequest) Call() CallID { return CallUpdateFolderPermission }

func (r UpdateFolderPermissionRequest) encode(b *mapi.Buffer) {
	b.PutString(r.Homedir)
	b.PutUint64(r.FolderID)
	b.PutBool(r.FreeBusy)
	b.PutUint16(uint16(len(r.Rows)))
	for _, row := range r.Rows {
		row.EncodeTo(b)
	}
}
