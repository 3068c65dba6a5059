package database

import (
	"context"
	"database/sql"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver
)

const pragmas = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

// New creates a new database connection pool.
func New(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func dsn(path string) string {
	if !strings.HasPrefix(path, "file:") {
		path = "file:" + path
	}
	if strings.Contains(path, "?") {
		return path + "&" + pragmas
	}
	return path + "?" + pragmas
}

// Migrate runs the SQL statements to set up the database schema.
func Migrate(db *sql.DB) error {
	const sqlStmt = `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT NOT NULL PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		email TEXT,
		password_hash TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS groups (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		slug TEXT NOT NULL UNIQUE,
		description TEXT
	);

	CREATE TABLE IF NOT EXISTS posts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		text TEXT NOT NULL,
		pub_date DATETIME NOT NULL,
		author_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		group_id INTEGER REFERENCES groups(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_posts_pub_date ON posts(pub_date DESC, id DESC);
	CREATE INDEX IF NOT EXISTS idx_posts_author ON posts(author_id);
	CREATE INDEX IF NOT EXISTS idx_posts_group ON posts(group_id);
	`
	_, err := db.Exec(sqlStmt)
	return err
}

// Optimize runs SQLite housekeeping: planner statistics and a WAL checkpoint.
func Optimize(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, "PRAGMA optimize"); err != nil {
		return err
	}
	_, err := db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)")
	return err
}
