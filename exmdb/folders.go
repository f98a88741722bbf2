package exmdb

import "github.com/migadu/exmdb/mapi"

// DefaultFolderProps are queried by GetFolderList when the caller passes no
// tags.
var DefaultFolderProps = []uint32{
	mapi.PrFolderID,
	mapi.PrDisplayName,
	mapi.PrComment,
	mapi.PrCreationTime,
	mapi.PrContainerClass,
}

// OwnerProps are queried by GetFolderOwnerList.
var OwnerProps = []uint32{
	mapi.PrMemberID,
	mapi.PrMemberName,
	mapi.PrMemberRights,
}

// Folder is a public folder as listed by GetFolderList. Properties missing
// from a row are left at their zero value.
type Folder struct {
	FolderID     uint64
	DisplayName  string
	Comment      string
	CreationTime uint64
	Container    string
}

// FolderFromPropvals maps one hierarchy table row.
func FolderFromPropvals(row mapi.Propvals) Folder {
	return Folder{
		FolderID:     row.Uint64(mapi.PrFolderID, 0),
		DisplayName:  row.Text(mapi.PrDisplayName, ""),
		Comment:      row.Text(mapi.PrComment, ""),
		CreationTime: row.Uint64(mapi.PrCreationTime, 0),
		Container:    row.Text(mapi.PrContainerClass, ""),
	}
}

// FolderListResponse is the result of GetFolderList.
type FolderListResponse struct {
	Folders []Folder
}

// NewFolderListResponse maps every row of a hierarchy table query.
func NewFolderListResponse(q QueryTableResponse) FolderListResponse {
	folders := make([]Folder, len(q.Entries))
	for i, row := range q.Entries {
		folders[i] = FolderFromPropvals(row)
	}
	return FolderListResponse{Folders: folders}
}

// Owner is one row of a folder's permission table.
type Owner struct {
	MemberID     uint64
	MemberName   string
	MemberRights uint32
}

// OwnerFromPropvals maps one permission table row.
func OwnerFromPropvals(row mapi.Propvals) Owner {
	return Owner{
		MemberID:     row.Uint64(mapi.PrMemberID, 0),
		MemberName:   row.Text(mapi.PrMemberName, ""),
		MemberRights: uint32(row.Uint64(mapi.PrMemberRights, 0)),
	}
}

// IsOwner reports whether the member holds the folder owner right.
func (o Owner) IsOwner() bool {
	return o.MemberRights&mapi.RightsFolderOwner != 0
}

// FolderOwnerListResponse is the result of GetFolderOwnerList. It lists
// every permission row, not only owners.
type FolderOwnerListResponse struct {
	Owners []Owner
}

// NewFolderOwnerListResponse maps every row of a permission table query.
func NewFolderOwnerListResponse(q QueryTableResponse) FolderOwnerListResponse {
	owners := make([]Owner, len(q.Entries))
	for i, row := range q.Entries {
		owners[i] = OwnerFromPropvals(row)
	}
	return FolderOwnerListResponse{Owners: owners}
}

// OwnersOnly returns the rows whose member holds the folder owner right.
func (r FolderOwnerListResponse) OwnersOnly() []Owner {
	var owners []Owner
	for _, o := range r.Owners {
		if o.IsOwner() {
			owners = append(owners, o)
		}
	}
	return owners
}
