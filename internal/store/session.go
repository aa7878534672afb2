package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// sessionRepo implements SessionRepo on the sessions table.
type sessionRepo struct {
	db *sql.DB
}

const sessionColumns = `id, kind, subject, topic, correct, total, percentage, export, completed_at`

func (r *sessionRepo) Save(ctx context.Context, rec *SessionRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO sessions (`+sessionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Kind, rec.Subject, rec.Topic, rec.Correct, rec.Total, rec.Percentage,
		rec.Export, rec.CompletedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (r *sessionRepo) Latest(ctx context.Context) (*SessionRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions ORDER BY completed_at DESC LIMIT 1`)
	return scanSessionOrNil(row)
}

func (r *sessionRepo) Get(ctx context.Context, id string) (*SessionRecord, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)
	return scanSessionOrNil(row)
}

func (r *sessionRepo) List(ctx context.Context, limit int) ([]SessionRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions ORDER BY completed_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionRecord
	for rows.Next() {
		rec, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func (r *sessionRepo) Prune(ctx context.Context, keep int) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE id NOT IN (
			SELECT id FROM sessions ORDER BY completed_at DESC LIMIT ?
		)`, keep)
	if err != nil {
		return fmt.Errorf("prune sessions: %w", err)
	}
	return nil
}

func scanSessionOrNil(s rowScanner) (*SessionRecord, error) {
	rec, err := scanSession(s)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return rec, err
}

func scanSession(s rowScanner) (*SessionRecord, error) {
	var (
		rec SessionRecord
		ts  int64
	)
	err := s.Scan(&rec.ID, &rec.Kind, &rec.Subject, &rec.Topic, &rec.Correct, &rec.Total,
		&rec.Percentage, &rec.Export, &ts)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scan session: %w", err)
	}
	rec.CompletedAt = time.UnixMilli(ts)
	return &rec, nil
}
