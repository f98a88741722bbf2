package exmdb

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/migadu/exmdb/mapi"
)

// Argument limits checked before a request is sent.
const (
	// MaxPropTags is the largest tag or propval list a single call accepts.
	MaxPropTags = 0xFFFF
	// MaxHomedirLength is the longest homedir path in bytes.
	MaxHomedirLength = 4095
	// MaxStringLength is the longest string argument in bytes, terminator
	// excluded.
	MaxStringLength = 0xFFFE
)

func checkString(field, s string, limit int) error {
	if len(s) > limit {
		return fmt.Errorf("%w: %s is %d bytes, limit is %d", ErrOutOfRange, field, len(s), limit)
	}
	if !utf8.ValidString(s) {
		return fmt.Errorf("%w: %s is not valid UTF-8", ErrOutOfRange, field)
	}
	if strings.IndexByte(s, 0) >= 0 {
		return fmt.Errorf("%w: %s contains a NUL byte", ErrOutOfRange, field)
	}
	return nil
}

func checkHomedir(homedir string) error {
	if homedir == "" {
		return fmt.Errorf("%w: homedir is empty", ErrOutOfRange)
	}
	return checkString("homedir", homedir, MaxHomedirLength)
}

func checkProptags(tags []uint32) error {
	if len(tags) == 0 {
		return fmt.Errorf("%w: empty proptag list", ErrRange)
	}
	if len(tags) > MaxPropTags {
		return fmt.Errorf("%w: %d proptags, limit is %d", ErrRange, len(tags), MaxPropTags)
	}
	return nil
}

func checkPropvals(vals []mapi.TaggedPropval) error {
	if len(vals) == 0 {
		return fmt.Errorf("%w: empty propval list", ErrRange)
	}
	if len(vals) > MaxPropTags {
		return fmt.Errorf("%w: %d propvals, limit is %d", ErrRange, len(vals), MaxPropTags)
	}
	for i, v := range vals {
		if !v.Valid() {
			return fmt.Errorf("%w: propval %d was not built by a constructor", ErrRange, i)
		}
		field := fmt.Sprintf("propval 0x%08x", v.Tag())
		if s, err := v.Text(); err == nil {
			if err := checkString(field, s, MaxStringLength); err != nil {
				return err
			}
		}
		if ss, ok := v.Value().([]string); ok {
			for j, s := range ss {
				if err := checkString(fmt.Sprintf("%s[%d]", field, j), s, MaxStringLength); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
