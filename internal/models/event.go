package models

import "time"

type EmailTaskType string

const (
	EmailTaskConfirmation      EmailTaskType = "confirmation"
	EmailTaskCompletion        EmailTaskType = "completion"
	EmailTaskOwnerNotification EmailTaskType = "owner_notification"
)

func (t EmailTaskType) String() string {
	return string(t)
}

// EmailTask is the message published for the email worker. Fields not used
// by a task type are left empty.
type EmailTask struct {
	Type         EmailTaskType `json:"type"`
	SubmissionID string        `json:"submission_id,omitempty"`
	Email        string        `json:"email"`
	Name         string        `json:"name"`
	Position     int           `json:"position,omitempty"`
	ETA          string        `json:"eta,omitempty"`
	AppURL       string        `json:"app_url,omitempty"`
	AppIdea      string        `json:"app_idea,omitempty"`
	Documents    []string      `json:"documents,omitempty"`
	Timestamp    int64         `json:"timestamp"`
}

func NewConfirmationTask(sub *Submission, eta string, now time.Time) *EmailTask {
	return &EmailTask{
		Type:         EmailTaskConfirmation,
		SubmissionID: sub.ID,
		Email:        sub.Email,
		Name:         sub.Name,
		Position:     sub.Position,
		ETA:          eta,
		Timestamp:    now.Unix(),
	}
}

func NewOwnerNotificationTask(sub *Submission, now time.Time) *EmailTask {
	return &EmailTask{
		Type:         EmailTaskOwnerNotification,
		SubmissionID: sub.ID,
		Email:        sub.Email,
		Name:         sub.Name,
		AppIdea:      sub.AppIdea,
		Documents:    sub.Documents,
		Timestamp:    now.Unix(),
	}
}

func NewCompletionTask(sub *Submission, appURL string, now time.Time) *EmailTask {
	return &EmailTask{
		Type:         EmailTaskCompletion,
		SubmissionID: sub.ID,
		Email:        sub.Email,
		Name:         sub.Name,
		AppURL:       appURL,
		Timestamp:    now.Unix(),
	}
}
