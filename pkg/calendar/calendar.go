// Package calendar derives the waitlist's week keys and opening times from an
// explicit instant. Nothing here reads the wall clock.
package calendar

import (
	"fmt"
	"math"
	"time"
)

const week = 7 * 24 * time.Hour

// WeekKey returns "YYYY-Www" where www is ceil((now - Jan 1) / 7 days),
// evaluated in now's location. This is not an ISO-8601 week number: the
// first instant of the year is week 00 and partial first weeks are not
// aligned to Monday.
func WeekKey(now time.Time) string {
	year := now.Year()
	jan1 := time.Date(year, time.January, 1, 0, 0, 0, 0, now.Location())
	n := int(math.Ceil(float64(now.Sub(jan1)) / float64(week)))
	return fmt.Sprintf("%d-W%02d", year, n)
}

// NextWeekOpen returns hour:minute on the Monday after the ISO week that
// contains now.
func NextWeekOpen(now time.Time, hour, minute int) time.Time {
	offset := (int(now.Weekday()) + 6) % 7
	y, m, d := now.Date()
	weekStart := time.Date(y, m, d-offset, 0, 0, 0, 0, now.Location())
	next := weekStart.AddDate(0, 0, 7)
	return time.Date(next.Year(), next.Month(), next.Day(), hour, minute, 0, 0, now.Location())
}

// FormatHuman renders t like "Mon, Mar 04 09:00 AM", adding the year when it
// differs from now's.
func FormatHuman(t, now time.Time) string {
	if t.Year() != now.Year() {
		return t.Format("Mon, Jan 02, 2006 03:04 PM")
	}
	return t.Format("Mon, Jan 02 03:04 PM")
}
