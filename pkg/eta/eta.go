// Package eta renders queue estimates. FormatDate answers "when will this be
// done" as a calendar date; FormatDuration answers "how long" as a coarse
// duration. They are not interchangeable.
package eta

import (
	"fmt"
	"math"
	"time"
)

// MinutesPerSlot is the average handling time of one queue position (one week).
const MinutesPerSlot = 60 * 24 * 7

// MaxPosition is the largest position whose offset fits in a time.Duration
// with room to spare (about 190 years). Larger positions are clamped.
const MaxPosition = 10000

// Target returns the instant position slots after now.
func Target(position int, now time.Time) time.Time {
	return now.Add(time.Duration(clamp(position)) * MinutesPerSlot * time.Minute)
}

// FormatDate renders the completion date for a 1-based position, e.g.
// "by Mar 22", or "by Jan 5, 2025" when the date falls in another year.
func FormatDate(position int, now time.Time) string {
	target := Target(position, now)
	if target.Year() == now.Year() {
		return "by " + target.Format("Jan 2")
	}
	return "by " + target.Format("Jan 2, 2006")
}

// FormatDuration renders a minute count as "<N> min", "<N> hr" or
// "<N> day(s)". N is rounded and never below 1.
func FormatDuration(totalMinutes float64) string {
	if totalMinutes < 60 {
		return fmt.Sprintf("%d min", atLeastOne(totalMinutes))
	}
	hours := totalMinutes / 60
	if hours < 24 {
		return fmt.Sprintf("%d hr", atLeastOne(hours))
	}
	days := hours / 24
	suffix := ""
	if math.Round(days) > 1 {
		suffix = "s"
	}
	return fmt.Sprintf("%d day%s", atLeastOne(days), suffix)
}

// FormatPositionDuration is FormatDuration for a queue position.
func FormatPositionDuration(position int) string {
	return FormatDuration(float64(clamp(position)) * MinutesPerSlot)
}

func clamp(position int) int {
	if position > MaxPosition {
		return MaxPosition
	}
	return position
}

func atLeastOne(v float64) int {
	return int(math.Max(1, math.Round(v)))
}
