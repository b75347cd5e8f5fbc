// Package histdb persists calculation history in a SQLite database.
//
// It is an alternative backend to the CSV file adapter: the same
// history.Adapter contract, but with SQLite's journal providing the
// crash atomicity the file adapter gets from write-then-rename.
package histdb

import (
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/reckon/internal/history"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 1 - Initial schema (calculations table + seq index)
const currentSchemaVersion = 1

// Store provides durable storage for calculation history.
// Uses SQLite with WAL mode. Implements history.Adapter.
type Store struct {
	db *sql.DB
}

// Open creates or opens a SQLite database at the given path.
// Applies required pragmas and the schema automatically.
//
// The database is configured with:
//   - WAL mode for read access during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//
// This function is idempotent - safe to call multiple times.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, history.NewIOError("open history database", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, history.NewIOError("connect to history database", err)
	}

	// SQLite only supports one writer at a time, so limit connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, history.NewIOError("configure history database", err)
	}
	if err := applySchema(db); err != nil {
		db.Close()
		return nil, history.NewIOError("apply history schema", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Save replaces the stored history with records, in order, within a single
// transaction. A failed save leaves the previously stored history intact.
func (s *Store) Save(records []history.Record) error {
	tx, err := s.db.Begin()
	if err != nil {
		return history.NewIOError("begin history save", err)
	}
	defer tx.Rollback() // No-op if committed

	if _, err := tx.Exec(`DELETE FROM calculations`); err != nil {
		return history.NewIOError("clear stored history", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO calculations
		(id, operation, operand1, operand2, result, timestamp, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`)
	if err != nil {
		return history.NewIOError("prepare history insert", err)
	}
	defer stmt.Close()

	for seq, rec := range records {
		row := marshalRecord(rec, seq)
		if _, err := stmt.Exec(row.id, row.op, row.operand1, row.operand2, row.result, row.timestamp, row.seq); err != nil {
			return history.NewIOError(fmt.Sprintf("insert history record %d", seq), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return history.NewIOError("commit history save", err)
	}
	return nil
}

// Load reads the stored history in chronological order. An empty or
// freshly created database yields an empty slice, not an error.
func (s *Store) Load() ([]history.Record, error) {
	rows, err := s.db.Query(`
		SELECT id, operation, operand1, operand2, result, timestamp
		FROM calculations
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, history.NewIOError("query stored history", err)
	}
	defer rows.Close()

	records := []history.Record{}
	for rows.Next() {
		var raw rawRecord
		if err := rows.Scan(&raw.id, &raw.op, &raw.operand1, &raw.operand2, &raw.result, &raw.timestamp); err != nil {
			return nil, history.NewIOError("scan history record", err)
		}
		rec, err := unmarshalRecord(raw)
		if err != nil {
			return nil, history.NewParseError(fmt.Sprintf("stored record %q", raw.id), err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, history.NewIOError("iterate stored history", err)
	}
	return records, nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}
	return nil
}

// applySchema creates the calculations table if it doesn't exist and
// records the schema version. Idempotent.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}

	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}
	if version < currentSchemaVersion {
		if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
			return fmt.Errorf("set user_version: %w", err)
		}
	}
	return nil
}
