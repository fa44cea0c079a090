package utils

import (
	"time"
)

// EasternLocation is the timezone for US equity markets.
var EasternLocation *time.Location

func init() {
	var err error
	EasternLocation, err = time.LoadLocation("America/New_York")
	if err != nil {
		// Fallback to UTC-5
		EasternLocation = time.FixedZone("EST", -5*60*60)
	}
}

// IsTradingDay reports whether t falls on a weekday. Exchange holidays
// are not modeled; upstream data sources simply return no rows for
// those days.
func IsTradingDay(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// IsMarketOpen reports whether the US regular session (9:30-16:00 ET)
// is currently in progress.
func IsMarketOpen() bool {
	now := time.Now().In(EasternLocation)
	if !IsTradingDay(now) {
		return false
	}
	minutes := now.Hour()*60 + now.Minute()
	return minutes >= 570 && minutes < 960
}

// NextTradingDay returns the first weekday strictly after t.
func NextTradingDay(t time.Time) time.Time {
	next := t.AddDate(0, 0, 1)
	for !IsTradingDay(next) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// PreviousTradingDay returns the last weekday strictly before t.
func PreviousTradingDay(t time.Time) time.Time {
	prev := t.AddDate(0, 0, -1)
	for !IsTradingDay(prev) {
		prev = prev.AddDate(0, 0, -1)
	}
	return prev
}
