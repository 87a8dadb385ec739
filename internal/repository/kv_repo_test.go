package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMockKV(t *testing.T) (*KVSQLite, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	return NewKVSQLite(db), mock, func() { _ = db.Close() }
}

func TestKVGet(t *testing.T) {
	t.Parallel()

	r, mock, closeDB := newMockKV(t)
	defer closeDB()

	mock.ExpectQuery("SELECT value FROM kv_store").
		WithArgs("device_address").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("10.0.0.5"))

	value, ok, err := r.Get(context.Background(), "device_address")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok || value != "10.0.0.5" {
		t.Fatalf("got (%q, %v)", value, ok)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestKVGetMissing(t *testing.T) {
	t.Parallel()

	r, mock, closeDB := newMockKV(t)
	defer closeDB()

	mock.ExpectQuery("SELECT value FROM kv_store").
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows([]string{"value"}))

	_, ok, err := r.Get(context.Background(), "nope")
	if err != nil {
		t.Fatalf("missing key must not error, got %v", err)
	}
	if ok {
		t.Fatal("expected ok=false for missing key")
	}
}

func TestKVGetQueryError(t *testing.T) {
	t.Parallel()

	r, mock, closeDB := newMockKV(t)
	defer closeDB()

	dbErr := errors.New("database is locked")
	mock.ExpectQuery("SELECT value FROM kv_store").
		WithArgs("mode_history").
		WillReturnError(dbErr)

	_, _, err := r.Get(context.Background(), "mode_history")
	if !errors.Is(err, dbErr) {
		t.Fatalf("expected %v, got %v", dbErr, err)
	}
}

func TestKVSet(t *testing.T) {
	t.Parallel()

	r, mock, closeDB := newMockKV(t)
	defer closeDB()

	mock.ExpectExec("INSERT INTO kv_store").
		WithArgs("default_mode", "2", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := r.Set(context.Background(), "default_mode", "2"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestKVDelete(t *testing.T) {
	t.Parallel()

	r, mock, closeDB := newMockKV(t)
	defer closeDB()

	mock.ExpectExec("DELETE FROM kv_store").
		WithArgs("mode_history").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := r.Delete(context.Background(), "mode_history"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
