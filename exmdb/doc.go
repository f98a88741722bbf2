// Package exmdb is a client for the exmdb protocol, the binary RPC a
// groupware mail store uses for folders, properties and permissions.
//
// A Conn carries one request at a time: each call writes a length
// prefixed frame and reads exactly one reply. A transport or protocol
// failure breaks the connection, while a non-zero reply status is returned
// as an *ExmdbError and leaves it usable.
//
//	client, err := exmdb.Connect(ctx, exmdb.Options{
//		Host:   "localhost",
//		Port:   5000,
//		Prefix: "/var/lib/gromox/domain",
//	})
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	folders, err := client.GetFolderList(ctx, "/var/lib/gromox/domain/1", nil)
package exmdb
