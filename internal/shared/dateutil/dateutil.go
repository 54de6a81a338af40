package dateutil

import (
	"time"
)

const Layout = "2006-01-02"

// Parse reads a calendar date in YYYY-MM-DD form as UTC midnight.
func Parse(s string) (time.Time, error) {
	return time.ParseInLocation(Layout, s, time.UTC)
}

// DaysInclusive counts calendar days from start to end, both included.
func DaysInclusive(start, end time.Time) int {
	return int(end.Sub(start).Hours()/24) + 1
}
