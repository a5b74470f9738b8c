package models

// Data Transfer Objects

type SubmitRequest struct {
	Name      string   `json:"name"`
	Email     string   `json:"email"`
	AppIdea   string   `json:"appIdea"`
	Platform  string   `json:"platform"`
	Documents []string `json:"documents,omitempty"`
}

const (
	ReasonWeeklyCapReached      = "weekly_cap_reached"
	ReasonEmailAlreadySubmitted = "email_already_submitted"
)

// SubmitResult is the admission outcome. Which fields are set depends on
// Accepted and Reason.
type SubmitResult struct {
	Accepted           bool        `json:"accepted"`
	Reason             string      `json:"reason,omitempty"`
	SubmissionID       string      `json:"submissionId,omitempty"`
	Position           int         `json:"position,omitempty"`
	WeeklyCap          int         `json:"weeklyCap,omitempty"`
	WeekKey            string      `json:"weekKey,omitempty"`
	CurrentWeekCount   *int        `json:"currentWeekCount,omitempty"`
	RemainingThisWeek  *int        `json:"remainingThisWeek,omitempty"`
	Total              *int        `json:"total,omitempty"`
	ExistingSubmission *Submission `json:"existingSubmission,omitempty"`
}

type StatusResponse struct {
	Total             int    `json:"total"`
	WeeklyCap         int    `json:"weeklyCap"`
	WeekKey           string `json:"weekKey"`
	CurrentWeekCount  int    `json:"currentWeekCount"`
	RemainingThisWeek int    `json:"remainingThisWeek"`
	NextOpenISO       string `json:"nextOpenIso"`
	NextOpenHuman     string `json:"nextOpenHuman"`
}

type ETAResponse struct {
	Position    int    `json:"position"`
	ETA         string `json:"eta"`
	ETADuration string `json:"etaDuration"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
	AppURL string `json:"app_url,omitempty"`
}

type UpdateCapRequest struct {
	Cap int `json:"cap"`
}

type UpdateCapResponse struct {
	OK      bool   `json:"ok"`
	Cap     int    `json:"cap"`
	WeekKey string `json:"weekKey"`
}

type ListSubmissionsFilter struct {
	WeekKey string
	Status  string
}

type SubmissionsResponse struct {
	Submissions []Submission `json:"submissions"`
	Total       int          `json:"total"`
	Page        int          `json:"page"`
	Limit       int          `json:"limit"`
}

type DocumentsResponse struct {
	Documents []Document `json:"documents"`
}
