package service

import "time"

// stamp returns now in UTC at the store's microsecond precision, so values
// handed back to callers match later reads of the same row.
func stamp(now func() time.Time) time.Time {
	return now().UTC().Truncate(time.Microsecond)
}
