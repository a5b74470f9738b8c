package models

import (
	"time"
)

type Submission struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Email       string    `json:"email" db:"email"`
	AppIdea     string    `json:"appIdea" db:"app_idea"`
	Platform    string    `json:"platform" db:"platform"`
	Documents   []string  `json:"documents,omitempty" db:"documents"`
	SubmittedAt time.Time `json:"submittedAt" db:"submitted_at"`
	Status      string    `json:"status" db:"status"` // pending, processing, completed
	WeeklyCap   int       `json:"weeklyCap" db:"weekly_cap"`
	WeekKey     string    `json:"weekKey" db:"week_key"`
	Position    int       `json:"position" db:"position"`
}

type SubmissionStatus string

const (
	SubmissionStatusPending    SubmissionStatus = "pending"
	SubmissionStatusProcessing SubmissionStatus = "processing"
	SubmissionStatusCompleted  SubmissionStatus = "completed"
)

func (s SubmissionStatus) String() string {
	return string(s)
}

func IsValidSubmissionStatus(status string) bool {
	switch SubmissionStatus(status) {
	case SubmissionStatusPending, SubmissionStatusProcessing, SubmissionStatusCompleted:
		return true
	default:
		return false
	}
}
