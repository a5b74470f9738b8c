package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/appgenerator/waitlist-service/internal/models"
	"github.com/appgenerator/waitlist-service/internal/service/integration"
	"github.com/appgenerator/waitlist-service/internal/service/storage"
	"github.com/rs/zerolog"
)

var ErrStorageUnavailable = errors.New("document storage is not configured")

type DocumentService interface {
	ListDocuments(ctx context.Context) (*models.DocumentsResponse, error)
	// ResolveLinks pairs each name with a presigned URL. Names that cannot be
	// signed keep an empty URL.
	ResolveLinks(ctx context.Context, names []string) []integration.DocumentLink
}

type documentService struct {
	store  storage.DocumentStore
	logger zerolog.Logger
}

// NewDocumentService accepts a nil store; the catalog is then reported as
// unavailable and links carry names only.
func NewDocumentService(store storage.DocumentStore, logger zerolog.Logger) DocumentService {
	return &documentService{
		store:  store,
		logger: logger,
	}
}

func (s *documentService) ListDocuments(ctx context.Context) (*models.DocumentsResponse, error) {
	if s.store == nil {
		return nil, ErrStorageUnavailable
	}

	documents, err := s.store.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	return &models.DocumentsResponse{Documents: documents}, nil
}

func (s *documentService) ResolveLinks(ctx context.Context, names []string) []integration.DocumentLink {
	links := make([]integration.DocumentLink, 0, len(names))
	for _, name := range names {
		link := integration.DocumentLink{Name: name}
		if s.store != nil {
			u, err := s.store.PresignedURL(ctx, name)
			if err != nil {
				s.logger.Warn().Err(err).Str("document", name).Msg("Failed to presign document")
			} else {
				link.URL = u
			}
		}
		links = append(links, link)
	}
	return links
}
