// Package mapi holds the MAPI property model shared by exmdb requests and
// replies: property types and tags, TaggedPropval values, permission rows,
// GUIDs and the little-endian wire buffer they are encoded with.
package mapi
