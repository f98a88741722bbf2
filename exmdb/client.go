package exmdb

import (
	"context"
	"fmt"
	"time"

	"github.com/migadu/exmdb/logger"
	"github.com/migadu/exmdb/mapi"
)

// Client exposes the folder, store and permission operations of an exmdb
// server over one connection. Methods are safe for concurrent use but
// serialize on the connection; use one Client per goroutine for parallelism.
type Client struct {
	conn *Conn
	now  func() time.Time
}

// NewClient wraps an established connection.
func NewClient(conn *Conn) *Client {
	return &Client{conn: conn, now: time.Now}
}

// Connect dials the server described by opts and returns a ready client.
func Connect(ctx context.Context, opts Options) (*Client, error) {
	conn, err := Dial(ctx, opts)
	if err != nil {
		return nil, err
	}
	return NewClient(conn), nil
}

// Conn returns the underlying connection.
func (c *Client) Conn() *Conn {
	return c.conn
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// send issues req and asserts the reply shape the decoder table promises
// for it.
func send[T Response](ctx context.Context, c *Conn, req Request) (T, error) {
	var zero T
	resp, err := c.Call(ctx, req)
	if err != nil {
		return zero, err
	}
	typed, ok := resp.(T)
	if !ok {
		return zero, &ConnectionError{Op: req.Call().String(), Err: fmt.Errorf("%w: unexpected reply %T", ErrProtocol, resp)}
	}
	return typed, nil
}

// CreateFolder creates a generic public folder below the IPM subtree of the
// domain store at homedir and returns its id. domainID selects the GUID used
// in the folder's change key.
func (c *Client) CreateFolder(ctx context.Context, homedir string, domainID uint32, folderName, container, comment string) (CreateFolderByPropertiesResponse, error) {
	if err := checkHomedir(homedir); err != nil {
		return CreateFolderByPropertiesResponse{}, err
	}
	for _, arg := range []struct{ name, value string }{
		{"folder name", folderName},
		{"container", container},
		{"comment", comment},
	} {
		if err := checkString(arg.name, arg.value, MaxStringLength); err != nil {
			return CreateFolderByPropertiesResponse{}, err
		}
	}

	cn, err := send[AllocateCnResponse](ctx, c.conn, AllocateCnRequest{Homedir: homedir})
	if err != nil {
		return CreateFolderByPropertiesResponse{}, err
	}

	now := mapi.NTTime(c.now())
	xid := mapi.XID{GUID: mapi.DomainGUID(domainID), Counter: cn.ChangeNum}
	propvals := []mapi.TaggedPropval{
		mapi.MustPropval(mapi.PrParentFolderID, mapi.MakeEID(1, mapi.PublicFIDIPMSubtree)),
		mapi.MustPropval(mapi.PrFolderType, mapi.FolderGeneric),
		mapi.MustPropval(mapi.PrDisplayName, folderName),
		mapi.MustPropval(mapi.PrComment, comment),
		mapi.MustPropval(mapi.PrCreationTime, now),
		mapi.MustPropval(mapi.PrLastModificationTime, now),
		mapi.MustPropval(mapi.PrChangeNumber, cn.ChangeNum),
		mapi.MustPropval(mapi.PrChangeKey, xid.Bytes()),
		mapi.MustPropval(mapi.PrPredecessorChangeList, mapi.PredecessorChangeList(xid)),
		mapi.MustPropval(mapi.PrContainerClass, container),
	}

	resp, err := send[CreateFolderByPropertiesResponse](ctx, c.conn, CreateFolderByPropertiesRequest{
		Homedir:  homedir,
		Propvals: propvals,
	})
	if err != nil {
		return CreateFolderByPropertiesResponse{}, err
	}
	logger.DebugContext(ctx, "exmdb: folder created", "homedir", homedir, "folder_id", resp.FolderID, "name", folderName)
	return resp, nil
}

// DeleteFolder hard-deletes a folder. A false Success means the server did
// not delete it and is not an error.
func (c *Client) DeleteFolder(ctx context.Context, homedir string, folderID uint64) (SuccessResponse, error) {
	if err := checkHomedir(homedir); err != nil {
		return SuccessResponse{}, err
	}
	return send[SuccessResponse](ctx, c.conn, DeleteFolderRequest{
		Homedir:  homedir,
		FolderID: folderID,
		Hard:     true,
	})
}

// GetFolderList lists the folders directly below the IPM subtree. A nil or
// empty proptags selects DefaultFolderProps.
func (c *Client) GetFolderList(ctx context.Context, homedir string, proptags []uint32) (FolderListResponse, error) {
	if err := checkHomedir(homedir); err != nil {
		return FolderListResponse{}, err
	}
	if len(proptags) == 0 {
		proptags = DefaultFolderProps
	} else if err := checkProptags(proptags); err != nil {
		return FolderListResponse{}, err
	}

	table, err := send[LoadTableResponse](ctx, c.conn, LoadHierarchyTableRequest{
		Homedir:  homedir,
		FolderID: mapi.MakeEID(1, mapi.PublicFIDIPMSubtree),
	})
	if err != nil {
		return FolderListResponse{}, err
	}
	rows, err := c.queryAndUnload(ctx, homedir, table, proptags)
	if err != nil {
		return FolderListResponse{}, err
	}
	return NewFolderListResponse(rows), nil
}

// GetFolderOwnerList lists the permission rows of a folder.
func (c *Client) GetFolderOwnerList(ctx context.Context, homedir string, folderID uint64) (FolderOwnerListResponse, error) {
	if err := checkHomedir(homedir); err != nil {
		return FolderOwnerListResponse{}, err
	}
	table, err := send[LoadTableResponse](ctx, c.conn, LoadPermissionTableRequest{
		Homedir:  homedir,
		FolderID: folderID,
	})
	if err != nil {
		return FolderOwnerListResponse{}, err
	}
	rows, err := c.queryAndUnload(ctx, homedir, table, OwnerProps)
	if err != nil {
		return FolderOwnerListResponse{}, err
	}
	return NewFolderOwnerListResponse(rows), nil
}

// queryAndUnload reads every row of a loaded table and releases it. The
// table is released even when the query fails with a server error.
func (c *Client) queryAndUnload(ctx context.Context, homedir string, table LoadTableResponse, proptags []uint32) (QueryTableResponse, error) {
	rows, err := send[QueryTableResponse](ctx, c.conn, QueryTableRequest{
		Homedir:   homedir,
		Cpid:      mapi.CpidUTF8,
		TableID:   table.TableID,
		Proptags:  proptags,
		RowNeeded: int32(min(table.RowCount, 0x7FFFFFFF)),
	})
	if err != nil && IsConnectionError(err) {
		return QueryTableResponse{}, err
	}

	_, unloadErr := send[NullResponse](ctx, c.conn, UnloadTableRequest{Homedir: homedir, TableID: table.TableID})
	if err != nil {
		return QueryTableResponse{}, err
	}
	if unloadErr != nil {
		return QueryTableResponse{}, unloadErr
	}
	return rows, nil
}

// GetFolderProperties reads proptags of a folder. String values are decoded
// under cpid. Tags the folder does not have are missing from the reply.
func (c *Client) GetFolderProperties(ctx context.Context, homedir string, cpid uint32, folderID uint64, proptags []uint32) (PropvalResponse, error) {
	if err := checkHomedir(homedir); err != nil {
		return PropvalResponse{}, err
	}
	if err := checkProptags(proptags); err != nil {
		return PropvalResponse{}, err
	}
	return send[PropvalResponse](ctx, c.conn, GetFolderPropertiesRequest{
		Homedir:  homedir,
		Cpid:     cpid,
		FolderID: folderID,
		Proptags: proptags,
	})
}

// GetStoreProperties reads proptags of the store at homedir.
func (c *Client) GetStoreProperties(ctx context.Context, homedir string, cpid uint32, proptags []uint32) (PropvalResponse, error) {
	if err := checkHomedir(homedir); err != nil {
		return PropvalResponse{}, err
	}
	if err := checkProptags(proptags); err != nil {
		return PropvalResponse{}, err
	}
	return send[PropvalResponse](ctx, c.conn, GetStorePropertiesRequest{
		Homedir:  homedir,
		Cpid:     cpid,
		Proptags: proptags,
	})
}

// GetAllStoreProperties reads every property the store has.
func (c *Client) GetAllStoreProperties(ctx context.Context, homedir string, cpid uint32) (PropvalResponse, error) {
	if err := checkHomedir(homedir); err != nil {
		return PropvalResponse{}, err
	}
	tags, err := send[ProptagsResponse](ctx, c.conn, GetStoreAllProptagsRequest{Homedir: homedir})
	if err != nil {
		return PropvalResponse{}, err
	}
	if len(tags.Proptags) == 0 {
		return PropvalResponse{Propvals: mapi.Propvals{}}, nil
	}
	return c.GetStoreProperties(ctx, homedir, cpid, tags.Proptags)
}

// SetFolderProperties writes propvals to a folder. Rejected values are
// reported in the reply; a partial failure is not an error.
func (c *Client) SetFolderProperties(ctx context.Context, homedir string, cpid uint32, folderID uint64, propvals []mapi.TaggedPropval) (ProblemsResponse, error) {
	if err := checkHomedir(homedir); err != nil {
		return ProblemsResponse{}, err
	}
	if err := checkPropvals(propvals); err != nil {
		return ProblemsResponse{}, err
	}
	return send[ProblemsResponse](ctx, c.conn, SetFolderPropertiesRequest{
		Homedir:  homedir,
		Cpid:     cpid,
		FolderID: folderID,
		Propvals: propvals,
	})
}

// SetStoreProperties writes propvals to the store at homedir.
func (c *Client) SetStoreProperties(ctx context.Context, homedir string, cpid uint32, propvals []mapi.TaggedPropval) (ProblemsResponse, error) {
	if err := checkHomedir(homedir); err != nil {
		return ProblemsResponse{}, err
	}
	if err := checkPropvals(propvals); err != nil {
		return ProblemsResponse{}, err
	}
	return send[ProblemsResponse](ctx, c.conn, SetStorePropertiesRequest{
		Homedir:  homedir,
		Cpid:     cpid,
		Propvals: propvals,
	})
}

// RemoveStoreProperties deletes proptags from the store at homedir.
func (c *Client) RemoveStoreProperties(ctx context.Context, homedir string, proptags []uint32) (NullResponse, error) {
	if err := checkHomedir(homedir); err != nil {
		return NullResponse{}, err
	}
	if err := checkProptags(proptags); err != nil {
		return NullResponse{}, err
	}
	return send[NullResponse](ctx, c.conn, RemoveStorePropertiesRequest{
		Homedir:  homedir,
		Proptags: proptags,
	})
}

// AddFolderOwner grants username the full owner rights on a folder. Whether
// the server treats a repeated grant as a no-op is up to the server.
func (c *Client) AddFolderOwner(ctx context.Context, homedir string, folderID uint64, username string) (NullResponse, error) {
	return c.SetFolderMemberRights(ctx, homedir, folderID, username, mapi.RightsOwner)
}

// SetFolderMemberRights adds a permission row for username with the given
// rights.
func (c *Client) SetFolderMemberRights(ctx context.Context, homedir string, folderID uint64, username string, rights uint32) (NullResponse, error) {
	if err := checkHomedir(homedir); err != nil {
		return NullResponse{}, err
	}
	if username == "" {
		return NullResponse{}, fmt.Errorf("%w: username is empty", ErrOutOfRange)
	}
	if err := checkString("username", username, MaxStringLength); err != nil {
		return NullResponse{}, err
	}
	return c.updatePermission(ctx, homedir, folderID, mapi.PermissionData{
		Flags: mapi.PermissionRowAdd,
		Propvals: []mapi.TaggedPropval{
			mapi.MustPropval(mapi.PrSMTPAddress, username),
			mapi.MustPropval(mapi.PrMemberRights, rights),
		},
	})
}

// DeleteFolderOwner removes the permission row memberID from a folder.
func (c *Client) DeleteFolderOwner(ctx context.Context, homedir string, folderID uint64, memberID uint64) (NullResponse, error) {
	if err := checkHomedir(homedir); err != nil {
		return NullResponse{}, err
	}
	return c.updatePermission(ctx, homedir, folderID, mapi.PermissionData{
		Flags:    mapi.PermissionRowRemove,
		Propvals: []mapi.TaggedPropval{mapi.MustPropval(mapi.PrMemberID, memberID)},
	})
}

func (c *Client) updatePermission(ctx context.Context, homedir string, folderID uint64, row mapi.PermissionData) (NullResponse, error) {
	return send[NullResponse](ctx, c.conn, UpdateFolderPermissionRequest{
		Homedir:  homedir,
		FolderID: folderID,
		Rows:     []mapi.PermissionData{row},
	})
}

// UnloadStore asks the server to release the store at homedir.
func (c *Client) UnloadStore(ctx context.Context, homedir string) (NullResponse, error) {
	if err := checkHomedir(homedir); err != nil {
		return NullResponse{}, err
	}
	return send[NullResponse](ctx, c.conn, UnloadStoreRequest{Homedir: homedir})
}

// PingStore checks that the store at homedir can be loaded.
func (c *Client) PingStore(ctx context.Context, homedir string) (NullResponse, error) {
	if err := checkHomedir(homedir); err != nil {
		return NullResponse{}, err
	}
	return send[NullResponse](ctx, c.conn, PingStoreRequest{Homedir: homedir})
}

// Ping implements metrics.StorePinger.
func (c *Client) Ping(ctx context.Context, homedir string) error {
	_, err := c.PingStore(ctx, homedir)
	return err
}
