package mapi

// Property tags used by the folder, store and permission operations. The
// registry is owned by the server; only the tags this module touches are
// listed.
const (
	PrMessageSizeExtended   uint32 = 0x0E080014
	PrDisplayName           uint32 = 0x3001001F
	PrComment               uint32 = 0x3004001F
	PrCreationTime          uint32 = 0x30070040
	PrLastModificationTime  uint32 = 0x30080040
	PrFolderType            uint32 = 0x36010003
	PrContentCount          uint32 = 0x36020003
	PrContentUnreadCount    uint32 = 0x36030003
	PrSubfolders            uint32 = 0x360A000B
	PrContainerClass        uint32 = 0x3613001F
	PrSMTPAddress           uint32 = 0x39FE001F
	PrStorageQuotaLimit     uint32 = 0x3FF50003
	PrAssocContentCount     uint32 = 0x36170003
	PrChangeKey             uint32 = 0x65E20102
	PrPredecessorChangeList uint32 = 0x65E30102
	PrProhibitReceiveQuota  uint32 = 0x666A0003
	PrMemberID              uint32 = 0x66710014
	PrMemberName            uint32 = 0x6672001F
	PrMemberRights          uint32 = 0x66730003
	PrProhibitSendQuota     uint32 = 0x666E0003
	PrFolderID              uint32 = 0x67480014
	PrParentFolderID        uint32 = 0x67490014
	PrChangeNumber          uint32 = 0x67A40014
	PrOutOfOfficeState      uint32 = 0x661D000B
)

// Folder types carried by PrFolderType.
const (
	FolderRoot    uint32 = 0
	FolderGeneric uint32 = 1
	FolderSearch  uint32 = 2
)

// Well-known folder ids of a public store.
const (
	PublicFIDRoot           uint64 = 0x01
	PublicFIDIPMSubtree     uint64 = 0x02
	PublicFIDNonIPMSubtree  uint64 = 0x03
	PublicFIDEFormsRegistry uint64 = 0x04
)

// Folder permission bits carried by PrMemberRights.
const (
	RightsReadAny         uint32 = 0x00000001
	RightsCreate          uint32 = 0x00000002
	RightsEditOwned       uint32 = 0x00000008
	RightsDeleteOwned     uint32 = 0x00000010
	RightsEditAny         uint32 = 0x00000020
	RightsDeleteAny       uint32 = 0x00000040
	RightsCreateSubfolder uint32 = 0x00000080
	RightsFolderOwner     uint32 = 0x00000100
	RightsFolderContact   uint32 = 0x00000200
	RightsFolderVisible   uint32 = 0x00000400

	// RightsOwner is the full right set granted to folder owners.
	RightsOwner = RightsReadAny | RightsCreate | RightsEditOwned | RightsDeleteOwned |
		RightsEditAny | RightsDeleteAny | RightsCreateSubfolder | RightsFolderOwner |
		RightsFolderContact | RightsFolderVisible
)
