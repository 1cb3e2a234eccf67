// Package period works with the program's reporting months. Each month of
// the mentorship batch maps to one source table and one stored period label.
package period

import "time"

var monthOrder = []string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

// Index returns the calendar position of a month label, or -1 if the
// label is unknown.
func Index(month string) int {
	for i, m := range monthOrder {
		if m == month {
			return i
		}
	}

	return -1
}

// Current returns the label of the month now falls in.
func Current(now time.Time) string {
	return monthOrder[int(now.Month())-1]
}

// IsFuture reports whether month is later than now's month. Unknown
// labels are not future; they are rejected by the window check instead.
func IsFuture(month string, now time.Time) bool {
	i := Index(month)
	if i == -1 {
		return false
	}

	return i > int(now.Month())-1
}

// Window is the configured range of months the batch runs across; it is
// the whitelist of syncable periods.
type Window struct {
	start int
	end   int
}

func NewWindow(startMonth, endMonth string) Window {
	return Window{
		start: Index(startMonth),
		end:   Index(endMonth),
	}
}

// Contains reports whether month falls inside the batch window.
func (w Window) Contains(month string) bool {
	i := Index(month)
	if w.start == -1 || w.end == -1 || i == -1 {
		return false
	}

	return i >= w.start && i <= w.end
}
