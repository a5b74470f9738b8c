package mocks

import (
	"context"
	"time"

	"github.com/appgenerator/waitlist-service/internal/models"
	"github.com/appgenerator/waitlist-service/internal/service/integration"
	"github.com/stretchr/testify/mock"
)

// WaitlistService is a mock for service.WaitlistService.
type WaitlistService struct {
	mock.Mock
}

func (m *WaitlistService) Submit(ctx context.Context, req *models.SubmitRequest, now time.Time) (*models.SubmitResult, error) {
	args := m.Called(ctx, req, now)
	if res, ok := args.Get(0).(*models.SubmitResult); ok {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *WaitlistService) GetStatus(ctx context.Context, now time.Time) (*models.StatusResponse, error) {
	args := m.Called(ctx, now)
	if res, ok := args.Get(0).(*models.StatusResponse); ok {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *WaitlistService) GetByEmail(ctx context.Context, email string) (*models.Submission, error) {
	args := m.Called(ctx, email)
	if sub, ok := args.Get(0).(*models.Submission); ok {
		return sub, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *WaitlistService) UpdateStatus(ctx context.Context, id, status, appURL string, now time.Time) (*models.Submission, error) {
	args := m.Called(ctx, id, status, appURL, now)
	if sub, ok := args.Get(0).(*models.Submission); ok {
		return sub, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *WaitlistService) UpdateCap(ctx context.Context, newCap int, now time.Time) (*models.UpdateCapResponse, error) {
	args := m.Called(ctx, newCap, now)
	if res, ok := args.Get(0).(*models.UpdateCapResponse); ok {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *WaitlistService) ListSubmissions(ctx context.Context, filter models.ListSubmissionsFilter, page, limit int) (*models.SubmissionsResponse, error) {
	args := m.Called(ctx, filter, page, limit)
	if res, ok := args.Get(0).(*models.SubmissionsResponse); ok {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *WaitlistService) ETA(position int, now time.Time) (*models.ETAResponse, error) {
	args := m.Called(position, now)
	if res, ok := args.Get(0).(*models.ETAResponse); ok {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

// DocumentService is a mock for service.DocumentService.
type DocumentService struct {
	mock.Mock
}

func (m *DocumentService) ListDocuments(ctx context.Context) (*models.DocumentsResponse, error) {
	args := m.Called(ctx)
	if res, ok := args.Get(0).(*models.DocumentsResponse); ok {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *DocumentService) ResolveLinks(ctx context.Context, names []string) []integration.DocumentLink {
	args := m.Called(ctx, names)
	if links, ok := args.Get(0).([]integration.DocumentLink); ok {
		return links
	}
	return nil
}
