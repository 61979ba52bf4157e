package subscription

import (
	"time"

	"github.com/fatflowers/financeplus/pkg/types"
)

// AddInterval adds n months or years to t. When the target month is shorter
// than t's day, the result is clamped to that month's last day, so Jan 31
// plus one month is the end of February and Feb 29 plus one year is Feb 28.
func AddInterval(t time.Time, interval types.Interval, n int) time.Time {
	months := n
	if interval == types.IntervalYear {
		months = n * 12
	}
	return addMonthsClamped(t, months)
}

func addMonthsClamped(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	// day 1 never overflows, so time.Date only normalizes the month here
	first := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	if last := daysIn(first.Year(), first.Month(), t.Location()); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}
