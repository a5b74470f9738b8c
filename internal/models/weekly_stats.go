package models

import "time"

// WeeklyStats is the per-week admission counter. TotalSubmissions starts at
// zero with each new week's record and is what the API reports as "total".
type WeeklyStats struct {
	WeekKey          string    `json:"weekKey" db:"week_key"`
	Cap              int       `json:"cap" db:"cap"`
	Count            int       `json:"count" db:"count"`
	TotalSubmissions int       `json:"totalSubmissions" db:"total_submissions"`
	LastUpdated      time.Time `json:"lastUpdated" db:"last_updated"`
}

// Remaining is the number of open slots, clamped at zero.
func (s *WeeklyStats) Remaining() int {
	return max(0, s.Cap-s.Count)
}
