package database

import "time"

// Now is the gorm NowFunc. Postgres keeps microseconds, so timestamps are
// truncated before they are written and match what a later read returns.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
