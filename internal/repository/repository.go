package repository

import (
	"context"
	"database/sql"
)

// KV is the durable key-value slot store backing history and preferences.
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

type Repository struct {
	KV KV
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		KV: NewKVSQLite(db),
	}
}
