package attempt

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julienduc-econ/finquiz/internal/question"
)

func TestDBStore_Append(t *testing.T) {
	now := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		record    Record
		setupMock func(mock sqlmock.Sqlmock)
		wantErr   bool
	}{
		{
			name: "inserts one row",
			record: Record{
				Identity:       "zoe",
				Score:          4,
				Category:       question.CategoryCapitalisation,
				ElapsedMinutes: 3.5,
				CreatedAt:      now,
			},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("INSERT INTO attempts").
					WithArgs("zoe", 4, question.CategoryCapitalisation, 3.5, now).
					WillReturnResult(sqlmock.NewResult(1, 1))
			},
		},
		{
			name:   "transport error surfaces as ErrStoreUnavailable",
			record: Record{Identity: "zoe", CreatedAt: now},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("INSERT INTO attempts").
					WillReturnError(fmt.Errorf("connection refused"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			store := NewDBStore(sqlx.NewDb(db, "mysql"))
			tt.setupMock(mock)

			err = store.Append(context.Background(), tt.record)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrStoreUnavailable)
				return
			}
			require.NoError(t, err)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestDBStore_Query(t *testing.T) {
	now := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	columns := []string{"id", "identity", "score", "category", "elapsed_minutes", "created_at"}

	tests := []struct {
		name      string
		category  question.Category
		setupMock func(mock sqlmock.Sqlmock)
		wantLen   int
		wantErr   bool
	}{
		{
			name:     "all categories",
			category: question.CategoryAll,
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows(columns).
					AddRow(1, "zoe", 4, "Capitalisation", 3.5, now).
					AddRow(2, "leo", 2, "TAEG", 5.1, now)
				mock.ExpectQuery("SELECT \\* FROM attempts ORDER BY created_at, id").
					WillReturnRows(rows)
			},
			wantLen: 2,
		},
		{
			name:     "filtered by category",
			category: question.CategoryRates,
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows(columns).
					AddRow(2, "leo", 2, "TAEG", 5.1, now)
				mock.ExpectQuery("SELECT \\* FROM attempts WHERE category = \\? ORDER BY created_at, id").
					WithArgs(question.CategoryRates).
					WillReturnRows(rows)
			},
			wantLen: 1,
		},
		{
			name:     "db error",
			category: question.CategoryAll,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT \\* FROM attempts").
					WillReturnError(fmt.Errorf("connection refused"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			store := NewDBStore(sqlx.NewDb(db, "mysql"))
			tt.setupMock(mock)

			got, err := store.Query(context.Background(), tt.category)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrStoreUnavailable)
				return
			}
			require.NoError(t, err)
			require.Len(t, got, tt.wantLen)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
