package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/appgenerator/waitlist-service/internal/models"
	"github.com/rs/zerolog"
)

type WeeklyStatsRepository interface {
	GetByWeek(ctx context.Context, weekKey string) (*models.WeeklyStats, error)
	GetOrCreate(ctx context.Context, weekKey string, defaultCap int, now time.Time) (*models.WeeklyStats, error)
	UpdateCap(ctx context.Context, weekKey string, newCap int, now time.Time) error
}

type weeklyStatsRepository struct {
	*PostgresRepository
}

func NewWeeklyStatsRepository(db *sql.DB, logger zerolog.Logger) WeeklyStatsRepository {
	return &weeklyStatsRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *weeklyStatsRepository) GetByWeek(ctx context.Context, weekKey string) (*models.WeeklyStats, error) {
	query := `
		SELECT week_key, cap, count, total_submissions, last_updated
		FROM weekly_stats
		WHERE week_key = $1
	`

	stats := &models.WeeklyStats{}
	err := r.db.QueryRowContext(ctx, query, weekKey).Scan(
		&stats.WeekKey,
		&stats.Cap,
		&stats.Count,
		&stats.TotalSubmissions,
		&stats.LastUpdated,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return stats, nil
}

// GetOrCreate inserts the week's counter if it is missing and reads it back.
// ON CONFLICT makes concurrent first submissions of a week converge on a
// single row.
func (r *weeklyStatsRepository) GetOrCreate(ctx context.Context, weekKey string, defaultCap int, now time.Time) (*models.WeeklyStats, error) {
	query := `
		INSERT INTO weekly_stats (week_key, cap, count, total_submissions, last_updated)
		VALUES ($1, $2, 0, 0, $3)
		ON CONFLICT (week_key) DO NOTHING
	`

	result, err := r.db.ExecContext(ctx, query, weekKey, defaultCap, now)
	if err != nil {
		return nil, fmt.Errorf("failed to insert weekly stats: %w", err)
	}

	if created, _ := result.RowsAffected(); created > 0 {
		r.logger.Info().
			Str("week_key", weekKey).
			Int("cap", defaultCap).
			Msg("Weekly stats initialized")
	}

	stats, err := r.GetByWeek(ctx, weekKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read weekly stats: %w", err)
	}
	if stats == nil {
		return nil, fmt.Errorf("weekly stats for %s missing after insert", weekKey)
	}

	return stats, nil
}

func (r *weeklyStatsRepository) UpdateCap(ctx context.Context, weekKey string, newCap int, now time.Time) error {
	query := `
		UPDATE weekly_stats
		SET cap = $2, last_updated = $3
		WHERE week_key = $1
	`

	result, err := r.db.ExecContext(ctx, query, weekKey, newCap, now)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}
