package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Fixed-width so stored timestamps sort lexically.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteRepository(db *sql.DB) (*SQLiteRepository, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return &SQLiteRepository{db: db, now: time.Now}, nil
}

// OpenSQLite opens the database at path and applies pending migrations.
func OpenSQLite(path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := MigrateUp(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	repo, err := NewSQLiteRepository(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) Load(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := r.db.QueryRowContext(ctx, `SELECT value FROM state_blobs WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return value, nil
}

func (r *SQLiteRepository) Save(ctx context.Context, key string, value []byte) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO state_blobs (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, mustTime(r.now()),
	)
	return err
}

func (r *SQLiteRepository) Delete(ctx context.Context, key string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM state_blobs WHERE key = ?`, key)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) EnqueueIntent(ctx context.Context, in OutboxRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sync_outbox (id, kind, payload, attempts, next_attempt_at, last_error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		in.ID, in.Kind, in.Payload, in.Attempts, mustTime(in.NextAttemptAt), in.LastError, mustTime(in.CreatedAt),
	)
	return err
}

func (r *SQLiteRepository) ListDueIntents(ctx context.Context, now time.Time, limit int) ([]OutboxRecord, error) {
	args := []any{mustTime(now)}
	query := `
		SELECT id, kind, payload, attempts, next_attempt_at, last_error, created_at
		FROM sync_outbox WHERE next_attempt_at <= ?
		ORDER BY created_at ASC`
	query += applyPagination(&args, limit, 0)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]OutboxRecord, 0)
	for rows.Next() {
		item, scanErr := scanOutbox(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) RescheduleIntent(ctx context.Context, id string, attempts int, nextAttemptAt time.Time, lastError string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE sync_outbox
		SET attempts = ?, next_attempt_at = ?, last_error = ?
		WHERE id = ?`,
		attempts, mustTime(nextAttemptAt), lastError, id,
	)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) DeleteIntent(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sync_outbox WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) CountIntents(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sync_outbox`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *SQLiteRepository) ClearIntents(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sync_outbox`)
	return err
}

func mustTime(v time.Time) string {
	return v.UTC().Format(sqliteTimeLayout)
}

func parseRequiredTime(v string) (time.Time, error) {
	return time.Parse(sqliteTimeLayout, v)
}

func applyPagination(args *[]any, limit, offset int) string {
	sql := ""
	if limit > 0 {
		sql += " LIMIT ?"
		*args = append(*args, limit)
	}
	if offset > 0 {
		sql += " OFFSET ?"
		*args = append(*args, offset)
	}
	return sql
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOutbox(s scanner) (OutboxRecord, error) {
	var out OutboxRecord
	var next string
	var created string
	if err := s.Scan(&out.ID, &out.Kind, &out.Payload, &out.Attempts, &next, &out.LastError, &created); err != nil {
		return OutboxRecord{}, err
	}
	nextAt, err := parseRequiredTime(next)
	if err != nil {
		return OutboxRecord{}, err
	}
	createdAt, err := parseRequiredTime(created)
	if err != nil {
		return OutboxRecord{}, err
	}
	out.NextAttemptAt = nextAt
	out.CreatedAt = createdAt
	return out, nil
}

func checkRowsAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
