package mapi

import "time"

// ntEpochOffset is the number of seconds between 1601-01-01 and the Unix
// epoch.
const ntEpochOffset = 11644473600

const ntTicksPerSecond = 10000000

// NTTime converts t to a PT_SYSTIME value, in 100ns ticks since 1601.
// Times before 1601 map to 0.
func NTTime(t time.Time) uint64 {
	secs := t.Unix() + ntEpochOffset
	if secs < 0 {
		return 0
	}
	return uint64(secs)*ntTicksPerSecond + uint64(t.Nanosecond()/100)
}

// TimeFromNT converts a PT_SYSTIME value back to UTC.
func TimeFromNT(nt uint64) time.Time {
	secs := int64(nt/ntTicksPerSecond) - ntEpochOffset
	nsec := int64(nt%ntTicksPerSecond) * 100
	return time.Unix(secs, nsec).UTC()
}
