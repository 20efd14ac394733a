package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// PgStore keeps records in PostgreSQL with the metadata as a JSONB document.
type PgStore struct {
	sqlStore
}

const pgSelect = `SELECT id, code, metadata, created_at FROM records`

var pgQueries = queries{
	insert: `INSERT INTO records (code, metadata, created_at) VALUES ($1, $2::jsonb, $3)`,
	byCode: pgSelect + ` WHERE code = $1`,
	all:    pgSelect + ` ORDER BY id DESC`,
	byCategory: pgSelect + `
WHERE metadata->>'category' = $1
ORDER BY id DESC`,
}

// NewPgStore wraps an open lib/pq connection.
func NewPgStore(db *sql.DB) *PgStore {
	return &PgStore{sqlStore{
		db:          sqlx.NewDb(db, "postgres"),
		q:           pgQueries,
		isDuplicate: isPgUniqueViolation,
		now:         time.Now,
	}}
}

// OpenPostgres opens a pooled connection. It does not ping; callers wait
// for the database themselves since it may still be starting.
func OpenPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	return db, nil
}

func isPgUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
