package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type KVSQLite struct {
	db *sql.DB
}

func NewKVSQLite(db *sql.DB) *KVSQLite { return &KVSQLite{db: db} }

const (
	upsertKVSQL = `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value=excluded.value,
			updated_at=excluded.updated_at
	`

	selectKVSQL = `SELECT value FROM kv_store WHERE key=?`
	deleteKVSQL = `DELETE FROM kv_store WHERE key=?`
)

// Get fetches the value stored under key. ok is false when the slot is empty.
func (r *KVSQLite) Get(ctx context.Context, key string) (string, bool, error) {
	row := r.db.QueryRowContext(ctx, selectKVSQL, key)

	var value string
	if err := row.Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

// Set writes or replaces the value stored under key.
func (r *KVSQLite) Set(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, upsertKVSQL, key, value, time.Now().UTC())
	return err
}

// Delete removes the slot; deleting a missing key is not an error.
func (r *KVSQLite) Delete(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, deleteKVSQL, key)
	return err
}
