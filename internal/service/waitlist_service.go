package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/appgenerator/waitlist-service/internal/config"
	"github.com/appgenerator/waitlist-service/internal/models"
	"github.com/appgenerator/waitlist-service/internal/repository"
	"github.com/appgenerator/waitlist-service/internal/service/integration"
	"github.com/appgenerator/waitlist-service/pkg/calendar"
	"github.com/appgenerator/waitlist-service/pkg/eta"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrInvalidStatus      = errors.New("invalid submission status")
	ErrInvalidCap         = errors.New("cap must be a positive integer")
	ErrInvalidInput       = errors.New("invalid input")
)

type WaitlistService interface {
	Submit(ctx context.Context, req *models.SubmitRequest, now time.Time) (*models.SubmitResult, error)
	GetStatus(ctx context.Context, now time.Time) (*models.StatusResponse, error)
	GetByEmail(ctx context.Context, email string) (*models.Submission, error)
	UpdateStatus(ctx context.Context, id, status, appURL string, now time.Time) (*models.Submission, error)
	UpdateCap(ctx context.Context, newCap int, now time.Time) (*models.UpdateCapResponse, error)
	ListSubmissions(ctx context.Context, filter models.ListSubmissionsFilter, page, limit int) (*models.SubmissionsResponse, error)
	ETA(position int, now time.Time) (*models.ETAResponse, error)
}

type waitlistService struct {
	submissionRepo repository.SubmissionRepository
	statsRepo      repository.WeeklyStatsRepository
	publisher      integration.TaskPublisher
	cfg            config.WaitlistConfig
	logger         zerolog.Logger
}

func NewWaitlistService(
	submissionRepo repository.SubmissionRepository,
	statsRepo repository.WeeklyStatsRepository,
	publisher integration.TaskPublisher,
	cfg config.WaitlistConfig,
	logger zerolog.Logger,
) WaitlistService {
	return &waitlistService{
		submissionRepo: submissionRepo,
		statsRepo:      statsRepo,
		publisher:      publisher,
		cfg:            cfg,
		logger:         logger,
	}
}

func (s *waitlistService) Submit(ctx context.Context, req *models.SubmitRequest, now time.Time) (*models.SubmitResult, error) {
	// Email is the natural key and is matched exactly as given.
	name, email := req.Name, req.Email
	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" {
		return nil, fmt.Errorf("%w: name and email are required", ErrInvalidInput)
	}

	weekKey := calendar.WeekKey(now)

	stats, err := s.statsRepo.GetOrCreate(ctx, weekKey, s.cfg.DefaultCap, now)
	if err != nil {
		return nil, fmt.Errorf("failed to load weekly counter: %w", err)
	}

	if stats.Count >= stats.Cap {
		s.logger.Info().
			Str("week_key", weekKey).
			Int("cap", stats.Cap).
			Msg("Submission rejected: weekly cap reached")
		return capReached(stats), nil
	}

	existing, err := s.submissionRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing submission: %w", err)
	}
	if existing != nil {
		s.logger.Info().
			Str("submission_id", existing.ID).
			Msg("Submission rejected: email already submitted")
		return alreadySubmitted(existing), nil
	}

	sub := &models.Submission{
		ID:          uuid.New().String(),
		Name:        name,
		Email:       email,
		AppIdea:     req.AppIdea,
		Platform:    req.Platform,
		Documents:   req.Documents,
		SubmittedAt: now,
		Status:      models.SubmissionStatusPending.String(),
		WeekKey:     weekKey,
	}

	after, err := s.submissionRepo.Admit(ctx, sub, now)
	switch {
	case errors.Is(err, repository.ErrWeeklyCapReached):
		// Another request took the last slot after the advisory check.
		latest, getErr := s.statsRepo.GetByWeek(ctx, weekKey)
		if getErr != nil || latest == nil {
			latest = &models.WeeklyStats{WeekKey: weekKey, Cap: stats.Cap, Count: stats.Cap, TotalSubmissions: stats.TotalSubmissions}
		}
		s.logger.Info().Str("week_key", weekKey).Msg("Submission rejected: weekly cap reached concurrently")
		return capReached(latest), nil
	case errors.Is(err, repository.ErrDuplicateEmail):
		winner, getErr := s.submissionRepo.GetByEmail(ctx, email)
		if getErr != nil {
			return nil, fmt.Errorf("failed to load existing submission: %w", getErr)
		}
		s.logger.Info().Msg("Submission rejected: email submitted concurrently")
		return alreadySubmitted(winner), nil
	case err != nil:
		return nil, fmt.Errorf("failed to admit submission: %w", err)
	}

	s.logger.Info().
		Str("submission_id", sub.ID).
		Str("week_key", weekKey).
		Int("position", sub.Position).
		Int("weekly_cap", sub.WeeklyCap).
		Msg("Submission admitted")

	s.publish(ctx, models.NewConfirmationTask(sub, eta.FormatDate(sub.Position, now), now))
	s.publish(ctx, models.NewOwnerNotificationTask(sub, now))

	return &models.SubmitResult{
		Accepted:          true,
		SubmissionID:      sub.ID,
		Position:          sub.Position,
		WeeklyCap:         after.Cap,
		WeekKey:           weekKey,
		RemainingThisWeek: intPtr(after.Remaining()),
		Total:             intPtr(after.TotalSubmissions),
	}, nil
}

func (s *waitlistService) GetStatus(ctx context.Context, now time.Time) (*models.StatusResponse, error) {
	weekKey := calendar.WeekKey(now)

	stats, err := s.statsRepo.GetByWeek(ctx, weekKey)
	if err != nil {
		return nil, fmt.Errorf("failed to get weekly counter: %w", err)
	}
	if stats == nil {
		stats = &models.WeeklyStats{WeekKey: weekKey, Cap: s.cfg.DefaultCap}
	}

	nextOpen := calendar.NextWeekOpen(now, s.cfg.NextOpenHour, s.cfg.NextOpenMinute)

	return &models.StatusResponse{
		Total:             stats.TotalSubmissions,
		WeeklyCap:         stats.Cap,
		WeekKey:           weekKey,
		CurrentWeekCount:  stats.Count,
		RemainingThisWeek: stats.Remaining(),
		NextOpenISO:       nextOpen.UTC().Format(time.RFC3339),
		NextOpenHuman:     calendar.FormatHuman(nextOpen, now),
	}, nil
}

func (s *waitlistService) GetByEmail(ctx context.Context, email string) (*models.Submission, error) {
	if strings.TrimSpace(email) == "" {
		return nil, fmt.Errorf("%w: email is required", ErrInvalidInput)
	}

	sub, err := s.submissionRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	if sub == nil {
		return nil, ErrSubmissionNotFound
	}

	return sub, nil
}

// UpdateStatus writes status unconditionally. Moving to completed enqueues
// a completion email every time, including repeats.
func (s *waitlistService) UpdateStatus(ctx context.Context, id, status, appURL string, now time.Time) (*models.Submission, error) {
	if !models.IsValidSubmissionStatus(status) {
		return nil, ErrInvalidStatus
	}

	sub, err := s.submissionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	if sub == nil {
		return nil, ErrSubmissionNotFound
	}

	if err := s.submissionRepo.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("failed to update submission status: %w", err)
	}
	sub.Status = status

	s.logger.Info().
		Str("submission_id", id).
		Str("status", status).
		Msg("Submission status updated")

	if status == models.SubmissionStatusCompleted.String() {
		s.publish(ctx, models.NewCompletionTask(sub, appURL, now))
	}

	return sub, nil
}

func (s *waitlistService) UpdateCap(ctx context.Context, newCap int, now time.Time) (*models.UpdateCapResponse, error) {
	if newCap < 1 {
		return nil, ErrInvalidCap
	}

	weekKey := calendar.WeekKey(now)

	if _, err := s.statsRepo.GetOrCreate(ctx, weekKey, s.cfg.DefaultCap, now); err != nil {
		return nil, fmt.Errorf("failed to load weekly counter: %w", err)
	}
	if err := s.statsRepo.UpdateCap(ctx, weekKey, newCap, now); err != nil {
		return nil, fmt.Errorf("failed to update weekly cap: %w", err)
	}

	s.logger.Info().
		Str("week_key", weekKey).
		Int("cap", newCap).
		Msg("Weekly cap updated")

	return &models.UpdateCapResponse{OK: true, Cap: newCap, WeekKey: weekKey}, nil
}

func (s *waitlistService) ListSubmissions(ctx context.Context, filter models.ListSubmissionsFilter, page, limit int) (*models.SubmissionsResponse, error) {
	if filter.Status != "" && !models.IsValidSubmissionStatus(filter.Status) {
		return nil, ErrInvalidStatus
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	offset := (page - 1) * limit

	subs, total, err := s.submissionRepo.List(ctx, filter, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	if subs == nil {
		subs = []models.Submission{}
	}

	return &models.SubmissionsResponse{
		Submissions: subs,
		Total:       total,
		Page:        page,
		Limit:       limit,
	}, nil
}

func (s *waitlistService) ETA(position int, now time.Time) (*models.ETAResponse, error) {
	if position < 1 {
		return nil, fmt.Errorf("%w: position must be positive", ErrInvalidInput)
	}
	if position > eta.MaxPosition {
		return nil, fmt.Errorf("%w: position must not exceed %d", ErrInvalidInput, eta.MaxPosition)
	}

	return &models.ETAResponse{
		Position:    position,
		ETA:         eta.FormatDate(position, now),
		ETADuration: eta.FormatPositionDuration(position),
	}, nil
}

// publish never fails the caller; the admission is already committed.
func (s *waitlistService) publish(ctx context.Context, task *models.EmailTask) {
	if s.publisher == nil {
		s.logger.Warn().Str("task_type", task.Type.String()).Msg("No task publisher configured, email task dropped")
		return
	}

	if err := s.publisher.PublishEmailTask(ctx, task); err != nil {
		s.logger.Error().
			Err(err).
			Str("task_type", task.Type.String()).
			Str("submission_id", task.SubmissionID).
			Msg("Failed to publish email task")
	}
}

func capReached(stats *models.WeeklyStats) *models.SubmitResult {
	return &models.SubmitResult{
		Accepted:          false,
		Reason:            models.ReasonWeeklyCapReached,
		WeeklyCap:         stats.Cap,
		WeekKey:           stats.WeekKey,
		CurrentWeekCount:  intPtr(stats.Count),
		RemainingThisWeek: intPtr(0),
		Total:             intPtr(stats.TotalSubmissions),
	}
}

func alreadySubmitted(existing *models.Submission) *models.SubmitResult {
	return &models.SubmitResult{
		Accepted:           false,
		Reason:             models.ReasonEmailAlreadySubmitted,
		ExistingSubmission: existing,
	}
}

func intPtr(v int) *int {
	return &v
}
