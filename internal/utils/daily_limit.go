package utils

import "time"

// DailyLimitReached reports whether count prior submissions today exhaust limit
func DailyLimitReached(count int64, limit int) bool {
	return count >= int64(limit)
}

// ResolveLocation loads the IANA zone name, falling back to fallback and then UTC
func ResolveLocation(name, fallback string) *time.Location {
	for _, n := range []string{name, fallback} {
		if n == "" {
			continue
		}
		if loc, err := time.LoadLocation(n); err == nil {
			return loc
		}
	}
	return time.UTC
}

// LocalMidnight returns the start of now's calendar day in loc
func LocalMidnight(now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}
