package attempt

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/julienduc-econ/finquiz/internal/question"
)

// DBStore implements Store on MySQL.
type DBStore struct {
	db *sqlx.DB
}

// NewDBStore creates a new DBStore.
func NewDBStore(db *sqlx.DB) *DBStore {
	return &DBStore{db: db}
}

// Append inserts one attempt row.
func (s *DBStore) Append(ctx context.Context, record Record) error {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO attempts (identity, score, category, elapsed_minutes, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		record.Identity, record.Score, record.Category, record.ElapsedMinutes, record.CreatedAt)
	if err != nil {
		return fmt.Errorf("db.ExecContext(insert attempt) > %w: %w", ErrStoreUnavailable, err)
	}
	if _, err := result.LastInsertId(); err != nil {
		return fmt.Errorf("result.LastInsertId() > %w: %w", ErrStoreUnavailable, err)
	}
	return nil
}

// Query returns attempts for a category, oldest first.
func (s *DBStore) Query(ctx context.Context, category question.Category) ([]Record, error) {
	var records []Record
	var err error
	if category == "" || category == question.CategoryAll {
		err = s.db.SelectContext(ctx, &records,
			"SELECT * FROM attempts ORDER BY created_at, id")
	} else {
		err = s.db.SelectContext(ctx, &records,
			"SELECT * FROM attempts WHERE category = ? ORDER BY created_at, id", category)
	}
	if err != nil {
		return nil, fmt.Errorf("db.SelectContext(attempts) > %w: %w", ErrStoreUnavailable, err)
	}
	return records, nil
}
