package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDSN(t *testing.T) {
	assert.Equal(t, "file:./yatube.db?"+pragmas, dsn("./yatube.db"))
	assert.Equal(t, "file:x.db?mode=ro&"+pragmas, dsn("file:x.db?mode=ro"))
}

func TestNewAndMigrate(t *testing.T) {
	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, Migrate(db))
	// Migrations are idempotent.
	require.NoError(t, Migrate(db))

	var fk int
	require.NoError(t, db.QueryRow("PRAGMA foreign_keys").Scan(&fk))
	assert.Equal(t, 1, fk)

	for _, table := range []string{"users", "groups", "posts"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
		require.NoError(t, err, table)
	}

	assert.NoError(t, Optimize(context.Background(), db))
}

func TestOptimizeStopsOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("PRAGMA optimize").WillReturnError(assert.AnError)

	err = Optimize(context.Background(), db)
	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}
