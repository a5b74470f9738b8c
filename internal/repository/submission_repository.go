package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/appgenerator/waitlist-service/internal/models"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

type SubmissionRepository interface {
	Admit(ctx context.Context, sub *models.Submission, now time.Time) (*models.WeeklyStats, error)
	GetByID(ctx context.Context, id string) (*models.Submission, error)
	GetByEmail(ctx context.Context, email string) (*models.Submission, error)
	UpdateStatus(ctx context.Context, id, status string) error
	List(ctx context.Context, filter models.ListSubmissionsFilter, limit, offset int) ([]models.Submission, int, error)
}

type submissionRepository struct {
	*PostgresRepository
}

func NewSubmissionRepository(db *sql.DB, logger zerolog.Logger) SubmissionRepository {
	return &submissionRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

const submissionColumns = `id, name, email, app_idea, platform, documents, submitted_at, status, weekly_cap, week_key, position`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubmission(row rowScanner) (*models.Submission, error) {
	sub := &models.Submission{}
	err := row.Scan(
		&sub.ID,
		&sub.Name,
		&sub.Email,
		&sub.AppIdea,
		&sub.Platform,
		pq.Array(&sub.Documents),
		&sub.SubmittedAt,
		&sub.Status,
		&sub.WeeklyCap,
		&sub.WeekKey,
		&sub.Position,
	)
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// Admit takes the next slot of sub.WeekKey and inserts sub in one
// transaction. The counter is only incremented while count < cap, so two
// concurrent admissions can never push a week over its cap. On success
// sub.Position and sub.WeeklyCap are filled from the updated counter.
func (r *submissionRepository) Admit(ctx context.Context, sub *models.Submission, now time.Time) (*models.WeeklyStats, error) {
	reserve := `
		UPDATE weekly_stats
		SET count = count + 1,
			total_submissions = total_submissions + 1,
			last_updated = $2
		WHERE week_key = $1 AND count < cap
		RETURNING week_key, cap, count, total_submissions, last_updated
	`

	insert := `
		INSERT INTO waitlist_submissions (` + submissionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	stats := &models.WeeklyStats{}
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, reserve, sub.WeekKey, now).Scan(
			&stats.WeekKey,
			&stats.Cap,
			&stats.Count,
			&stats.TotalSubmissions,
			&stats.LastUpdated,
		)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrWeeklyCapReached
		}
		if err != nil {
			return fmt.Errorf("failed to reserve weekly slot: %w", err)
		}

		sub.Position = stats.Count
		sub.WeeklyCap = stats.Cap

		_, err = tx.ExecContext(ctx, insert,
			sub.ID,
			sub.Name,
			sub.Email,
			sub.AppIdea,
			sub.Platform,
			pq.Array(sub.Documents),
			sub.SubmittedAt,
			sub.Status,
			sub.WeeklyCap,
			sub.WeekKey,
			sub.Position,
		)
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		if err != nil {
			return fmt.Errorf("failed to insert submission: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return stats, nil
}

func (r *submissionRepository) GetByID(ctx context.Context, id string) (*models.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM waitlist_submissions WHERE id = $1`

	sub, err := scanSubmission(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return sub, err
}

func (r *submissionRepository) GetByEmail(ctx context.Context, email string) (*models.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM waitlist_submissions WHERE email = $1`

	sub, err := scanSubmission(r.db.QueryRowContext(ctx, query, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return sub, err
}

func (r *submissionRepository) UpdateStatus(ctx context.Context, id, status string) error {
	query := `UPDATE waitlist_submissions SET status = $2 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, status)
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

func (r *submissionRepository) List(ctx context.Context, filter models.ListSubmissionsFilter, limit, offset int) ([]models.Submission, int, error) {
	var (
		conditions []string
		args       []any
	)
	if filter.WeekKey != "" {
		args = append(args, filter.WeekKey)
		conditions = append(conditions, fmt.Sprintf("week_key = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM waitlist_submissions ` + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM waitlist_submissions
		%s
		ORDER BY submitted_at DESC
		LIMIT $%d OFFSET $%d
	`, submissionColumns, where, len(args)+1, len(args)+2)

	rows, err := r.db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	submissions := make([]models.Submission, 0, limit)
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, 0, err
		}
		submissions = append(submissions, *sub)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return submissions, total, nil
}
