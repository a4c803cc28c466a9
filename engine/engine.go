package engine

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite" // register pure-Go SQLite driver
)

// MemoryDSN opens a private in-memory database.
const MemoryDSN = ":memory:"

// filePragmas enable concurrent readers with a single writer and make a
// locked database wait instead of failing immediately. Transactions begin
// IMMEDIATE so the write lock is taken at BEGIN, where busy_timeout applies,
// rather than on the first write of a read-then-write transaction.
const filePragmas = "_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_txlock=immediate"

// Open opens a SQLite database using the modernc.org/sqlite driver.
//
// For file-based databases, pass a path like "./db.sqlite"; WAL and busy
// timeout pragmas are appended unless the DSN already carries a query. For
// in-memory databases, pass ":memory:". Every pooled connection to
// ":memory:" would see its own empty database, so the pool is capped to one
// connection.
func Open(dsn string) (*sql.DB, error) {
	if dsn == MemoryDSN {
		db, err := sql.Open("sqlite", dsn)
		if err != nil {
			return nil, err
		}
		db.SetMaxOpenConns(1)
		return db, nil
	}
	if !strings.Contains(dsn, "?") {
		dsn += "?" + filePragmas
	}
	return sql.Open("sqlite", dsn)
}

// OpenFile creates the parent directory of path when needed, opens the
// database and verifies the connection.
func OpenFile(path string) (*sql.DB, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("engine: database path is required")
	}
	if path != MemoryDSN {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("engine: create database directory: %w", err)
		}
	}
	db, err := Open(path)
	if err != nil {
		return nil, fmt.Errorf("engine: open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("engine: ping sqlite db: %w", err)
	}
	return db, nil
}
