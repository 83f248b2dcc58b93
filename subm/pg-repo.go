package subm

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgUniqueViolation = "23505"

type pgSubmRepo struct {
	pool *pgxpool.Pool
}

func NewPgSubmRepo(pool *pgxpool.Pool) *pgSubmRepo {
	return &pgSubmRepo{pool: pool}
}

func (r *pgSubmRepo) CountSubms(ctx context.Context, authorUUID uuid.UUID, competitionID string, intervalID int) (int, error) {
	query := `
		SELECT count(*) FROM submissions
		WHERE author_uuid = $1 AND competition_id = $2 AND interval_id = $3
	`
	var count int
	err := r.pool.QueryRow(ctx, query, authorUUID, competitionID, intervalID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count submissions: %w", err)
	}
	return count, nil
}

func (r *pgSubmRepo) InsertWithinQuota(ctx context.Context, s Subm, quota int) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// serializes count-then-insert per (author, competition, interval)
	lockKey := fmt.Sprintf("subm:%s:%s:%d", s.AuthorUUID, s.CompetitionID, s.IntervalID)
	_, err = tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, lockKey)
	if err != nil {
		return fmt.Errorf("failed to acquire submission lock: %w", err)
	}

	var count int
	err = tx.QueryRow(ctx, `
		SELECT count(*) FROM submissions
		WHERE author_uuid = $1 AND competition_id = $2 AND interval_id = $3
	`, s.AuthorUUID, s.CompetitionID, s.IntervalID).Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to count submissions: %w", err)
	}
	if count >= quota {
		return &QuotaReachedError{Count: count}
	}

	insertQuery := `
		INSERT INTO submissions (
			uuid, author_uuid, competition_id, interval_id, slot, kind,
			link, filename, s3_key, media_type, size_bytes, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err = tx.Exec(ctx, insertQuery,
		s.UUID,
		s.AuthorUUID,
		s.CompetitionID,
		s.IntervalID,
		count+1,
		string(s.Kind),
		nullIfEmpty(s.Link),
		nullIfEmpty(s.Filename),
		nullIfEmpty(s.S3Key),
		nullIfEmpty(s.MediaType),
		s.SizeBytes,
		s.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrSlotConflict
		}
		return fmt.Errorf("failed to insert submission: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *pgSubmRepo) ListByAuthor(ctx context.Context, authorUUID uuid.UUID, competitionID string) ([]Subm, error) {
	query := `
		SELECT uuid, author_uuid, competition_id, interval_id, kind,
			   link, filename, s3_key, media_type, size_bytes, created_at
		FROM submissions
		WHERE author_uuid = $1 AND competition_id = $2
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, authorUUID, competitionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query submissions: %w", err)
	}
	defer rows.Close()

	var res []Subm
	for rows.Next() {
		var s Subm
		var kind string
		var link, filename, s3Key, mediaType *string
		err := rows.Scan(
			&s.UUID,
			&s.AuthorUUID,
			&s.CompetitionID,
			&s.IntervalID,
			&kind,
			&link,
			&filename,
			&s3Key,
			&mediaType,
			&s.SizeBytes,
			&s.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		s.Kind = Kind(kind)
		s.Link = derefOrEmpty(link)
		s.Filename = derefOrEmpty(filename)
		s.S3Key = derefOrEmpty(s3Key)
		s.MediaType = derefOrEmpty(mediaType)
		res = append(res, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating submissions: %w", err)
	}

	return res, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func derefOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
