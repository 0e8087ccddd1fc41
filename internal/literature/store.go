// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package literature persists imported citation libraries and builds the
// deduplicated index the pipeline cites from.
package literature

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/manuscript-engine/pkg/types"
)

// Store manages the literature SQLite database. Each imported entry keeps
// its source library; deduplication happens at index build, not at import,
// so the provenance of near-duplicates stays inspectable.
type Store struct {
	db *sql.DB
}

// libraryFile is the YAML import format produced by the literature
// collaborator: a named list of entries.
type libraryFile struct {
	Entries []types.LiteratureEntry `json:"entries" yaml:"entries"`
}

// Open opens or creates the literature database at dbPath, creating the
// schema if needed.
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening literature database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS entries (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			authors TEXT,
			year INTEGER,
			abstract TEXT,
			library TEXT,
			normalized_key TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_key ON entries(normalized_key)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_library ON entries(library)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// ImportFile reads a library YAML file and inserts its entries under the
// given library name. Entries already present (same id) are replaced.
// Returns the number of entries imported.
func (s *Store) ImportFile(ctx context.Context, path, library string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading library file: %w", err)
	}
	var lib libraryFile
	if err := yaml.Unmarshal(data, &lib); err != nil {
		return 0, fmt.Errorf("parsing library file: %w", err)
	}
	return s.Import(ctx, lib.Entries, library)
}

// Import inserts entries under the given library name.
func (s *Store) Import(ctx context.Context, entries []types.LiteratureEntry, library string) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO entries (id, title, authors, year, abstract, library, normalized_key)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	count := 0
	for _, e := range entries {
		if e.Title == "" {
			continue
		}
		e.Library = library
		if e.ID == "" {
			e.ID = stableEntryID(e)
		}
		authors, err := json.Marshal(e.Authors)
		if err != nil {
			return 0, fmt.Errorf("marshaling authors: %w", err)
		}
		if _, err := stmt.ExecContext(ctx,
			e.ID, e.Title, string(authors), e.Year, e.Abstract, e.Library, e.NormalizedKey(),
		); err != nil {
			return 0, fmt.Errorf("inserting entry %q: %w", e.Title, err)
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing import: %w", err)
	}
	return count, nil
}

// All returns every stored entry ordered by library, year, title. The order
// is stable so index builds are deterministic.
func (s *Store) All(ctx context.Context) ([]types.LiteratureEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, authors, year, abstract, library
		 FROM entries ORDER BY library, year, title, id`)
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()

	var entries []types.LiteratureEntry
	for rows.Next() {
		var (
			e           types.LiteratureEntry
			authorsJSON sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.Title, &authorsJSON, &e.Year, &e.Abstract, &e.Library); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		if authorsJSON.Valid && authorsJSON.String != "" {
			if err := json.Unmarshal([]byte(authorsJSON.String), &e.Authors); err != nil {
				return nil, fmt.Errorf("decoding authors for entry %s: %w", e.ID, err)
			}
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Libraries returns the distinct library names present in the store.
func (s *Store) Libraries(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT library FROM entries ORDER BY library`)
	if err != nil {
		return nil, fmt.Errorf("querying libraries: %w", err)
	}
	defer rows.Close()

	var libs []string
	for rows.Next() {
		var lib string
		if err := rows.Scan(&lib); err != nil {
			return nil, fmt.Errorf("scanning library: %w", err)
		}
		libs = append(libs, lib)
	}
	return libs, rows.Err()
}

// stableEntryID derives a deterministic id from library, title, and year:
// the first 12 hex characters of SHA-256 over the normalized key and library.
func stableEntryID(e types.LiteratureEntry) string {
	h := sha256.New()
	h.Write([]byte(e.Library))
	h.Write([]byte(e.NormalizedKey()))
	return fmt.Sprintf("%x", h.Sum(nil))[:12]
}
