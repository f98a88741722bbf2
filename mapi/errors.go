package mapi

import "errors"

var (
	ErrTruncated        = errors.New("mapi: truncated data")
	ErrMalformed        = errors.New("mapi: malformed data")
	ErrMalformedPropval = errors.New("mapi: malformed propval")
	ErrTypeMismatch     = errors.New("mapi: property type mismatch")
)
