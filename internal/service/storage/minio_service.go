package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"sync"
	"time"

	"github.com/appgenerator/waitlist-service/internal/models"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"
)

var ErrDocumentNotFound = errors.New("document not found")

// DocumentStore is the bucket holding the documents a submitter can attach.
type DocumentStore interface {
	ListDocuments(ctx context.Context) ([]models.Document, error)
	PresignedURL(ctx context.Context, name string) (string, error)
}

type MinIOStore struct {
	client     *minio.Client
	bucket     string
	region     string
	presignTTL time.Duration
	logger     zerolog.Logger

	ensureMu      sync.Mutex
	bucketEnsured bool
}

func NewMinIOStore(endpoint, accessKey, secretKey, bucket, region string, useSSL bool, connectTimeout, presignTTL time.Duration, logger zerolog.Logger) (*MinIOStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	store := &MinIOStore{
		client:     client,
		bucket:     bucket,
		region:     region,
		presignTTL: presignTTL,
		logger:     logger,
	}

	// Best-effort bootstrap: the catalog is optional, so a MinIO that is not
	// up yet only costs us document links until it is.
	if connectTimeout <= 0 {
		connectTimeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := store.ensureBucket(ctx); err != nil {
		logger.Error().Err(err).
			Str("endpoint", endpoint).
			Str("bucket", bucket).
			Msg("MinIO not ready during startup; will retry on demand")
	}

	logger.Info().
		Str("endpoint", endpoint).
		Str("bucket", bucket).
		Bool("ssl", useSSL).
		Msg("Connected to MinIO")

	return store, nil
}

func (s *MinIOStore) ensureBucket(ctx context.Context) error {
	s.ensureMu.Lock()
	defer s.ensureMu.Unlock()
	if s.bucketEnsured {
		return nil
	}

	backoff := 500 * time.Millisecond
	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("minio not ready: %w", err)
		}

		exists, err := s.client.BucketExists(ctx, s.bucket)
		if err != nil {
			sleep(ctx, backoff)
			continue
		}

		if !exists {
			if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
				sleep(ctx, backoff)
				continue
			}
			s.logger.Info().Str("bucket", s.bucket).Msg("Created new bucket")
		}

		s.bucketEnsured = true
		return nil
	}
}

func (s *MinIOStore) ListDocuments(ctx context.Context) ([]models.Document, error) {
	if err := s.ensureBucket(ctx); err != nil {
		return nil, err
	}

	documents := []models.Document{}
	objectCh := s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Recursive: true,
	})

	for object := range objectCh {
		if object.Err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", object.Err)
		}
		documents = append(documents, models.Document{
			Name:         object.Key,
			Size:         object.Size,
			ContentType:  object.ContentType,
			LastModified: object.LastModified,
		})
	}

	sort.Slice(documents, func(i, j int) bool {
		return documents[i].Name < documents[j].Name
	})

	return documents, nil
}

func (s *MinIOStore) PresignedURL(ctx context.Context, name string) (string, error) {
	if err := s.ensureBucket(ctx); err != nil {
		return "", err
	}

	if _, err := s.client.StatObject(ctx, s.bucket, name, minio.StatObjectOptions{}); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return "", ErrDocumentNotFound
		}
		return "", fmt.Errorf("failed to stat document: %w", err)
	}

	params := make(url.Values)
	params.Set("response-content-disposition", fmt.Sprintf("inline; filename=%q", name))

	u, err := s.client.PresignedGetObject(ctx, s.bucket, name, s.presignTTL, params)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	s.logger.Debug().
		Str("bucket", s.bucket).
		Str("document", name).
		Dur("ttl", s.presignTTL).
		Msg("Presigned document URL")

	return u.String(), nil
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
