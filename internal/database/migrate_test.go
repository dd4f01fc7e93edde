package database

import (
	"context"
	"fmt"
	"testing"
	"testing/fstest"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"migrations/0002_second.sql": {Data: []byte("CREATE TABLE second (id INT);")},
		"migrations/0001_first.sql":  {Data: []byte("CREATE TABLE first (id INT);")},
		"migrations/notes.txt":       {Data: []byte("ignored")},
	}

	t.Run("applies SQL files in lexical order", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec("CREATE TABLE first").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("CREATE TABLE second").WillReturnResult(sqlmock.NewResult(0, 0))

		require.NoError(t, ApplyMigrations(context.Background(), sqlx.NewDb(db, "mysql"), fsys))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("stops at the first failing migration", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec("CREATE TABLE first").WillReturnError(fmt.Errorf("syntax error"))

		err = ApplyMigrations(context.Background(), sqlx.NewDb(db, "mysql"), fsys)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "0001_first.sql")
	})

	t.Run("no migration files is a no-op", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		require.NoError(t, ApplyMigrations(context.Background(), sqlx.NewDb(db, "mysql"), fstest.MapFS{}))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
