package mocks

import (
	"context"
	"time"

	"github.com/appgenerator/waitlist-service/internal/models"
	"github.com/stretchr/testify/mock"
)

// SubmissionRepository is a mock for repository.SubmissionRepository.
type SubmissionRepository struct {
	mock.Mock
}

func (m *SubmissionRepository) Admit(ctx context.Context, sub *models.Submission, now time.Time) (*models.WeeklyStats, error) {
	args := m.Called(ctx, sub, now)
	if stats, ok := args.Get(0).(*models.WeeklyStats); ok {
		return stats, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *SubmissionRepository) GetByID(ctx context.Context, id string) (*models.Submission, error) {
	args := m.Called(ctx, id)
	if sub, ok := args.Get(0).(*models.Submission); ok {
		return sub, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *SubmissionRepository) GetByEmail(ctx context.Context, email string) (*models.Submission, error) {
	args := m.Called(ctx, email)
	if sub, ok := args.Get(0).(*models.Submission); ok {
		return sub, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *SubmissionRepository) UpdateStatus(ctx context.Context, id, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *SubmissionRepository) List(ctx context.Context, filter models.ListSubmissionsFilter, limit, offset int) ([]models.Submission, int, error) {
	args := m.Called(ctx, filter, limit, offset)
	if list, ok := args.Get(0).([]models.Submission); ok {
		return list, args.Int(1), args.Error(2)
	}
	return nil, args.Int(1), args.Error(2)
}

// WeeklyStatsRepository is a mock for repository.WeeklyStatsRepository.
type WeeklyStatsRepository struct {
	mock.Mock
}

func (m *WeeklyStatsRepository) GetByWeek(ctx context.Context, weekKey string) (*models.WeeklyStats, error) {
	args := m.Called(ctx, weekKey)
	if stats, ok := args.Get(0).(*models.WeeklyStats); ok {
		return stats, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *WeeklyStatsRepository) GetOrCreate(ctx context.Context, weekKey string, defaultCap int, now time.Time) (*models.WeeklyStats, error) {
	args := m.Called(ctx, weekKey, defaultCap, now)
	if stats, ok := args.Get(0).(*models.WeeklyStats); ok {
		return stats, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *WeeklyStatsRepository) UpdateCap(ctx context.Context, weekKey string, newCap int, now time.Time) error {
	args := m.Called(ctx, weekKey, newCap, now)
	return args.Error(0)
}

// TaskPublisher is a mock for integration.TaskPublisher.
type TaskPublisher struct {
	mock.Mock
}

func (m *TaskPublisher) PublishEmailTask(ctx context.Context, task *models.EmailTask) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *TaskPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}
