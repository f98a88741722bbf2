// Package testutils provides testing utilities for the exmdb client.
//
// The main component is StubPeer, a scripted exmdb server listening on a
// loopback port. It records every request frame and answers with replies
// produced by a handler, which lets tests inspect the exact bytes a client
// sends and feed it success payloads, status failures, truncated replies
// or dropped connections.
//
// Example usage:
//
//	import "github.com/migadu/exmdb/testutils"
//
//	func TestMyFunction(t *testing.T) {
//		peer := testutils.NewStubPeer(t, func(f testutils.Frame) testutils.Reply {
//			if f.Call == 0x5c {
//				return testutils.Success(testutils.Uint64Payload(42))
//			}
//			return testutils.Success(nil)
//		})
//		// Dial peer.Host(), peer.Port() ...
//	}
package testutils
