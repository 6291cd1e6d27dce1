package shared

import (
	"database/sql"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// NewDatabase opens a connection to a SQLite database at the specified path.
// The path can be ":memory:" for an in-memory database.
// Returns an open database connection or an error if connection fails.
func NewDatabase(path string) (*sql.DB, error) {
	return OpenDatabase(DatabaseConfig{Path: path})
}

// OpenDatabase opens the SQLite database described by cfg.
//
// Transactions begin with BEGIN IMMEDIATE, so a writer takes the database
// write lock before it reads. With WAL journaling readers keep seeing the last
// committed data while a writer is active.
func OpenDatabase(cfg DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if cfg.MaxOpenConns > 0 || cfg.MaxIdleConns > 0 {
		ConfigureDatabase(db, cfg.MaxOpenConns, cfg.MaxIdleConns)
	}

	// every connection to :memory: is a separate database
	if cfg.Path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	return db, nil
}

// DSN builds a go-sqlite3 connection string for cfg.
func DSN(cfg DatabaseConfig) string {
	params := url.Values{}
	params.Set("_txlock", "immediate")
	if cfg.JournalMode != "" && cfg.Path != ":memory:" {
		params.Set("_journal_mode", strings.ToUpper(cfg.JournalMode))
	}
	if cfg.BusyTimeoutMS > 0 {
		params.Set("_busy_timeout", strconv.Itoa(cfg.BusyTimeoutMS))
	}

	path := cfg.Path
	if !strings.HasPrefix(path, "file:") {
		path = "file:" + path
	}
	if strings.Contains(path, "?") {
		return path + "&" + params.Encode()
	}
	return path + "?" + params.Encode()
}

// ConfigureDatabase sets connection pool settings for the database.
// Recommended for production use to limit connections and improve performance.
func ConfigureDatabase(db *sql.DB, maxOpenConns, maxIdleConns int) {
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
}
