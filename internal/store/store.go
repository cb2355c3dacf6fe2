// Package store owns the SQLite database: opening, schema creation, and the
// startup integrity check that guards the tracked data.
package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/srcsintheta/timetracker/internal/config"
	_ "modernc.org/sqlite"
)

// Table names. The history table references the activities table by name.
const (
	TableActivities = "tt_activities"
	TableHistory    = "tt_history"
)

// Creation statements. The integrity check compares these against
// sqlite_master, so any schema change must go through here.
const (
	createActivities = `CREATE TABLE ` + TableActivities + ` (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		added TEXT NOT NULL,
		hourstotal NUMERIC NOT NULL DEFAULT 0.0
	)`

	createHistory = `CREATE TABLE ` + TableHistory + ` (
		id INTEGER NOT NULL,
		year INTEGER NOT NULL,
		month INTEGER NOT NULL,
		day INTEGER NOT NULL,
		isoweek INTEGER NOT NULL,
		isoweekyear INTEGER NOT NULL,
		hoursonday NUMERIC NOT NULL DEFAULT 0.0,
		date TEXT NOT NULL,
		FOREIGN KEY (id) REFERENCES ` + TableActivities + `(id)
	)`
)

// DB wraps the SQLite connection.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the tracker database at the XDG data path.
func Open() (*DB, error) {
	paths := config.GetPaths()
	if err := paths.EnsureDirs(); err != nil {
		return nil, fmt.Errorf("creating data dirs: %w", err)
	}
	return OpenAt(paths.DBFile)
}

// OpenAt opens (or creates) a tracker database at an explicit path.
// Tests use ":memory:".
func OpenAt(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA temp_store=MEMORY",
	}
	for _, p := range pragmas {
		if _, err := conn.Exec(p); err != nil {
			conn.Close()
			return nil, fmt.Errorf("setting pragma %q: %w", p, err)
		}
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Conn returns the raw sql.DB for direct queries.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// migrate creates the two tracker tables when they do not exist yet.
func (db *DB) migrate() error {
	tables := []struct {
		name   string
		create string
	}{
		{TableActivities, createActivities},
		{TableHistory, createHistory},
	}
	for _, tbl := range tables {
		exists, err := db.tableExists(tbl.name)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		if _, err := db.conn.Exec(tbl.create); err != nil {
			return fmt.Errorf("creating table %s: %w", tbl.name, err)
		}
	}
	return nil
}

func (db *DB) tableExists(name string) (bool, error) {
	var count int
	err := db.conn.QueryRow(
		`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, name,
	).Scan(&count)
	return count > 0, err
}

// Check verifies that the on-disk schema matches the creation statements.
// A mismatch means the database was touched by something else and continuing
// could corrupt the bookkeeping, so the failure is an *IntegrityError.
func (db *DB) Check() error {
	checks := []struct {
		table  string
		create string
	}{
		{TableActivities, createActivities},
		{TableHistory, createHistory},
	}

	for _, c := range checks {
		var schema string
		err := db.conn.QueryRow(
			`SELECT sql FROM sqlite_master WHERE type='table' AND name=?`, c.table,
		).Scan(&schema)
		if err != nil {
			return Integrityf("table %s missing from database: %v", c.table, err)
		}
		if normalizeSQL(schema) != normalizeSQL(c.create) {
			return Integrityf("table %s does not match its creation schema", c.table)
		}
	}
	return nil
}

// normalizeSQL collapses all whitespace runs so schema strings compare
// independent of formatting.
func normalizeSQL(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
