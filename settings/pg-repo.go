package settings

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// admin_settings holds exactly one row with id = 1.
const snapshotColumns = `current_interval, is_submissions_open, max_submissions_per_interval, updated_at`

type pgSnapshotRepo struct {
	pool *pgxpool.Pool
}

func NewPgSnapshotRepo(pool *pgxpool.Pool) *pgSnapshotRepo {
	return &pgSnapshotRepo{pool: pool}
}

func scanSnapshot(row pgx.Row) (Snapshot, error) {
	var s Snapshot
	err := row.Scan(
		&s.CurrentInterval,
		&s.IsSubmissionsOpen,
		&s.MaxSubmissionsPerInterval,
		&s.UpdatedAt,
	)
	return s, err
}

func (r *pgSnapshotRepo) ReadSnapshot(ctx context.Context) (Snapshot, bool, error) {
	query := `SELECT ` + snapshotColumns + ` FROM admin_settings WHERE id = 1`
	s, err := scanSnapshot(r.pool.QueryRow(ctx, query))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Snapshot{}, false, nil
		}
		return Snapshot{}, false, fmt.Errorf("failed to query admin settings: %w", err)
	}
	return s, true, nil
}

func (r *pgSnapshotRepo) CreateSnapshot(ctx context.Context, s Snapshot) (Snapshot, bool, error) {
	insertQuery := `
		INSERT INTO admin_settings (
			id, current_interval, is_submissions_open, max_submissions_per_interval, updated_at
		) VALUES (1, $1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING
		RETURNING ` + snapshotColumns

	created, err := scanSnapshot(r.pool.QueryRow(ctx, insertQuery,
		s.CurrentInterval,
		s.IsSubmissionsOpen,
		s.MaxSubmissionsPerInterval,
		s.UpdatedAt,
	))
	if err == nil {
		return created, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return Snapshot{}, false, fmt.Errorf("failed to insert admin settings: %w", err)
	}

	existing, found, err := r.ReadSnapshot(ctx)
	if err != nil {
		return Snapshot{}, false, err
	}
	if !found {
		return Snapshot{}, false, ErrSnapshotNotFound
	}
	return existing, false, nil
}

func (r *pgSnapshotRepo) UpdateIntervalState(ctx context.Context, state IntervalState) (Snapshot, bool, error) {
	updateQuery := `
		UPDATE admin_settings
		SET current_interval = $1, is_submissions_open = $2, updated_at = now()
		WHERE id = 1
		  AND (current_interval IS DISTINCT FROM $1 OR is_submissions_open IS DISTINCT FROM $2)
		RETURNING ` + snapshotColumns

	s, err := scanSnapshot(r.pool.QueryRow(ctx, updateQuery,
		state.CurrentInterval,
		state.IsSubmissionsOpen,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Snapshot{}, false, nil
		}
		return Snapshot{}, false, fmt.Errorf("failed to update admin settings: %w", err)
	}
	return s, true, nil
}

func (r *pgSnapshotRepo) SetMaxSubmissions(ctx context.Context, max int) (Snapshot, error) {
	updateQuery := `
		UPDATE admin_settings
		SET max_submissions_per_interval = $1, updated_at = now()
		WHERE id = 1
		RETURNING ` + snapshotColumns

	s, err := scanSnapshot(r.pool.QueryRow(ctx, updateQuery, max))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Snapshot{}, ErrSnapshotNotFound
		}
		return Snapshot{}, fmt.Errorf("failed to update submission quota: %w", err)
	}
	return s, nil
}
