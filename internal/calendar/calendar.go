// Package calendar decides which menu page applies to a given day.
package calendar

import "time"

// Weekday returns the 1-based ISO weekday of t: Monday is 1, Sunday is 7.
func Weekday(t time.Time) int {
	return (int(t.Weekday())+6)%7 + 1
}

// IsWorkday reports whether t falls on Monday through Friday.
func IsWorkday(t time.Time) bool {
	return Weekday(t) <= 5
}

// WeekStart returns midnight of the Monday that starts t's week, in t's
// location.
func WeekStart(t time.Time) time.Time {
	y, m, d := t.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	return midnight.AddDate(0, 0, -(Weekday(t) - 1))
}

// ParseDate parses a YYYY-MM-DD date in loc. An empty string yields now.
func ParseDate(s string, loc *time.Location, now func() time.Time) (time.Time, error) {
	if s == "" {
		return now().In(loc), nil
	}
	return time.ParseInLocation(time.DateOnly, s, loc)
}
