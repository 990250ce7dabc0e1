package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/mna11/ReadMe3D/internal/core/domain"

	_ "github.com/jackc/pgx/v5/stdlib"
)

var _ domain.SnapshotRepository = (*PostgresSnapshotRepository)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS activity_snapshots (
    id          UUID PRIMARY KEY,
    username    TEXT NOT NULL,
    total       INTEGER NOT NULL CHECK (total >= 0),
    fetched_at  TIMESTAMPTZ NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE (username, fetched_at)
);

CREATE TABLE IF NOT EXISTS activity_days (
    snapshot_id UUID NOT NULL REFERENCES activity_snapshots(id) ON DELETE CASCADE,
    day         DATE NOT NULL,
    weekday     SMALLINT NOT NULL CHECK (weekday BETWEEN 0 AND 6),
    count       INTEGER NOT NULL CHECK (count >= 0),
    PRIMARY KEY (snapshot_id, day)
);

CREATE INDEX IF NOT EXISTS idx_activity_snapshots_latest
    ON activity_snapshots (username, fetched_at DESC);
`

const uniqueViolation = "23505"

type PostgresSnapshotRepository struct {
	db *sqlx.DB
}

func NewPostgresSnapshotRepository(db *sqlx.DB) *PostgresSnapshotRepository {
	return &PostgresSnapshotRepository{db: db}
}

// EnsureSchema creates the snapshot tables when missing.
func (r *PostgresSnapshotRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("repository: ensure schema failed: %w", err)
	}
	return nil
}

type snapshotRow struct {
	ID        string    `db:"id"`
	Username  string    `db:"username"`
	Total     int       `db:"total"`
	FetchedAt time.Time `db:"fetched_at"`
}

type dayRow struct {
	SnapshotID string    `db:"snapshot_id"`
	Day        time.Time `db:"day"`
	Weekday    int       `db:"weekday"`
	Count      int       `db:"count"`
}

func (r *PostgresSnapshotRepository) Save(ctx context.Context, cal *domain.Calendar) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("repository: begin snapshot tx failed: %w", err)
	}
	defer tx.Rollback()

	fetchedAt := cal.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now().UTC()
	}
	snap := snapshotRow{
		ID:        uuid.NewString(),
		Username:  cal.Username,
		Total:     cal.Total,
		FetchedAt: fetchedAt.UTC().Truncate(time.Microsecond),
	}

	query := `
		INSERT INTO activity_snapshots (id, username, total, fetched_at)
		VALUES (:id, :username, :total, :fetched_at)`

	if _, err := tx.NamedExecContext(ctx, query, snap); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrSnapshotConflict
		}
		return fmt.Errorf("repository: insert snapshot failed: %w", err)
	}

	if len(cal.Days) > 0 {
		rows := make([]dayRow, len(cal.Days))
		for i, d := range cal.Days {
			rows[i] = dayRow{SnapshotID: snap.ID, Day: d.Date, Weekday: d.Weekday, Count: d.Count}
		}

		query = `
			INSERT INTO activity_days (snapshot_id, day, weekday, count)
			VALUES (:snapshot_id, :day, :weekday, :count)`

		if _, err := tx.NamedExecContext(ctx, query, rows); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: duplicate day in series", domain.ErrMalformedDay)
			}
			return fmt.Errorf("repository: insert days failed: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("repository: commit snapshot failed: %w", err)
	}
	cal.FetchedAt = snap.FetchedAt
	return nil
}

func (r *PostgresSnapshotRepository) Latest(ctx context.Context, username string) (*domain.Calendar, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var snap snapshotRow
	query := `
		SELECT id, username, total, fetched_at
		FROM activity_snapshots
		WHERE username = $1
		ORDER BY fetched_at DESC
		LIMIT 1`

	if err := r.db.GetContext(ctx, &snap, query, username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("repository: latest snapshot failed: %w", err)
	}

	rows := []dayRow{}
	query = `
		SELECT snapshot_id, day, weekday, count
		FROM activity_days
		WHERE snapshot_id = $1
		ORDER BY day ASC`

	if err := r.db.SelectContext(ctx, &rows, query, snap.ID); err != nil {
		return nil, fmt.Errorf("repository: snapshot days failed: %w", err)
	}

	cal := &domain.Calendar{
		Username:  snap.Username,
		Total:     snap.Total,
		FetchedAt: snap.FetchedAt.UTC(),
		Days:      make([]domain.ActivityDay, len(rows)),
	}
	for i, row := range rows {
		cal.Days[i] = domain.ActivityDay{
			Date:    time.Date(row.Day.Year(), row.Day.Month(), row.Day.Day(), 0, 0, 0, 0, time.UTC),
			Weekday: row.Weekday,
			Count:   row.Count,
		}
	}
	return cal, nil
}

// FetchCalendar serves the latest snapshot, so the store can stand in for GitHub.
func (r *PostgresSnapshotRepository) FetchCalendar(ctx context.Context, username string) (*domain.Calendar, error) {
	return r.Latest(ctx, username)
}

// Ping reports whether the database answers.
func (r *PostgresSnapshotRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// isUniqueViolation understands both drivers the service can run on.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == uniqueViolation
	}
	return false
}
