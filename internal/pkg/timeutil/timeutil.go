package timeutil

import "time"

func NowUnix() int64 {
	return time.Now().UnixMilli()
}

// UTCDay is the calendar-day key used for daily usage rows.
// Quota resets at midnight UTC, not server-local time.
func UTCDay(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

func TodayUTC() string {
	return UTCDay(time.Now())
}
