package db

import (
	"database/sql"
	"fmt"
	"sync"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

var (
	db   *sqlx.DB
	once sync.Once
)

const schema = `
CREATE TABLE IF NOT EXISTS UserSearch (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id TEXT NOT NULL,
	query_string TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_user_search_user ON UserSearch (user_id, created_at);
`

// Init opens the database connection and applies the schema
func Init(databaseURL string) error {
	var err error
	once.Do(func() {
		db, err = sqlx.Open("sqlite3", databaseURL)
		if err != nil {
			err = fmt.Errorf("failed to open database: %w", err)
			return
		}

		if err = db.Ping(); err != nil {
			err = fmt.Errorf("failed to ping database: %w", err)
			return
		}

		if _, err = db.Exec(schema); err != nil {
			err = fmt.Errorf("failed to apply schema: %w", err)
			return
		}

		log.Info().Str("component", "db").Str("url", databaseURL).Msg("database initialized")
	})
	return err
}

// Get returns the database connection
func Get() *sqlx.DB {
	if db == nil {
		panic("Database not initialized. Call db.Init() first.")
	}
	return db
}

// Wrap adapts a plain *sql.DB, such as a sqlmock connection, for sqlx use.
func Wrap(conn *sql.DB) *sqlx.DB {
	return sqlx.NewDb(conn, "sqlite3")
}

// SetForTesting sets the database connection for testing
func SetForTesting(conn *sql.DB) {
	db = Wrap(conn)
}

// Close closes the database connection
func Close() error {
	if db != nil {
		return db.Close()
	}
	return nil
}
