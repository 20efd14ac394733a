package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// SQLiteStore keeps records in a single SQLite file. Meant for local runs
// and tests; writes are serialised through one connection.
type SQLiteStore struct {
	sqlStore
}

const sqliteSelect = `SELECT id, code, metadata, created_at FROM records`

var sqliteQueries = queries{
	insert: `INSERT INTO records (code, metadata, created_at) VALUES (?, ?, ?)`,
	byCode: sqliteSelect + ` WHERE code = ?`,
	all:    sqliteSelect + ` ORDER BY id DESC`,
	byCategory: sqliteSelect + `
WHERE json_extract(metadata, '$.category') = ?
ORDER BY id DESC`,
}

// NewSQLiteStore wraps a connection from OpenSQLite.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{sqlStore{
		db:          sqlx.NewDb(db, "sqlite"),
		q:           sqliteQueries,
		isDuplicate: isSQLiteUniqueViolation,
		now:         time.Now,
	}}
}

// OpenSQLite opens or creates the database at path in WAL mode.
func OpenSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	for _, pragma := range []string{"PRAGMA journal_mode=WAL;", "PRAGMA busy_timeout=5000;"} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlite %s: %w", pragma, err)
		}
	}
	return db, nil
}

func isSQLiteUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE || se.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
}
