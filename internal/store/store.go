package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	dbtypes "github.com/nitesh/newsmap/internal/db"
	"github.com/nitesh/newsmap/pkg/models"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

var (
	// ErrNotFound is returned by GetByCode when no record has the code.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateCode is returned by Insert when the code is already taken.
	ErrDuplicateCode = errors.New("record code already exists")
)

// recordRow is the on-disk shape: the article metadata lives in one JSON
// document column, the code and creation time beside it.
type recordRow struct {
	ID        int64                         `db:"id"`
	Code      string                        `db:"code"`
	Metadata  dbtypes.JSON[models.Metadata] `db:"metadata"`
	CreatedAt time.Time                     `db:"created_at"`
}

func (r recordRow) toModel() *models.Record {
	return &models.Record{
		Code:      r.Code,
		Metadata:  r.Metadata.Val,
		CreatedAt: r.CreatedAt.UTC(),
	}
}

type queries struct {
	insert     string
	byCode     string
	all        string
	byCategory string
}

// sqlStore holds the logic shared by the Postgres and SQLite backends; they
// differ only in SQL text and how a unique violation is reported.
type sqlStore struct {
	db          *sqlx.DB
	q           queries
	isDuplicate func(error) bool
	now         func() time.Time
}

// Insert stores rec. CreatedAt is set when zero.
func (s *sqlStore) Insert(ctx context.Context, rec *models.Record) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now().UTC().Truncate(time.Microsecond)
	}
	doc := dbtypes.JSON[models.Metadata]{Val: rec.Metadata}
	if _, err := s.db.ExecContext(ctx, s.q.insert, rec.Code, doc, rec.CreatedAt); err != nil {
		if s.isDuplicate(err) {
			return fmt.Errorf("%w: code=%s", ErrDuplicateCode, rec.Code)
		}
		return fmt.Errorf("insert record code=%s: %w", rec.Code, err)
	}
	return nil
}

// GetByCode returns the record with code or ErrNotFound.
func (s *sqlStore) GetByCode(ctx context.Context, code string) (*models.Record, error) {
	var row recordRow
	err := s.db.GetContext(ctx, &row, s.q.byCode, code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get record code=%s: %w", code, err)
	}
	return row.toModel(), nil
}

// List returns records newest first, restricted to category when it is a filter.
func (s *sqlStore) List(ctx context.Context, category models.Category) ([]*models.Record, error) {
	rows := []recordRow{}
	var err error
	if category.IsFilter() {
		err = s.db.SelectContext(ctx, &rows, s.q.byCategory, string(category))
	} else {
		err = s.db.SelectContext(ctx, &rows, s.q.all)
	}
	if err != nil {
		return nil, fmt.Errorf("list records category=%q: %w", category, err)
	}
	out := make([]*models.Record, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out, nil
}

// Ping checks the connection.
func (s *sqlStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying connection pool.
func (s *sqlStore) Close() error {
	return s.db.Close()
}
