package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/meur/guideforge/internal/models"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Store caches reference catalogs in SQLite
type Store struct {
	db *sql.DB
}

// New opens the catalog database at dbPath, creating it if needed.
func New(dbPath string) (*Store, error) {
	dsn := dbPath + "?_foreign_keys=on&_journal_mode=WAL"
	if dbPath == MemoryPath {
		dsn = dbPath + "?_foreign_keys=on"
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == MemoryPath {
		// every connection would get its own empty database
		db.SetMaxOpenConns(1)
		db.SetConnMaxLifetime(0)
		db.SetConnMaxIdleTime(0)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate runs database migrations
func (s *Store) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS catalogs (
			kind TEXT PRIMARY KEY,
			entry_count INTEGER NOT NULL,
			fetched_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS entries (
			kind TEXT NOT NULL REFERENCES catalogs(kind) ON DELETE CASCADE,
			id TEXT NOT NULL,
			name TEXT NOT NULL,
			rank INTEGER NOT NULL DEFAULT 0,
			icon TEXT NOT NULL DEFAULT '',
			icon_url TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (kind, id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_name ON entries(kind, name COLLATE NOCASE)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}

// ReplaceEntries swaps the cached catalog of kind for entries in one
// transaction.
func (s *Store) ReplaceEntries(kind models.ReferenceKind, entries []models.ReferenceEntry, fetchedAt time.Time) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM entries WHERE kind = ?`, kind); err != nil {
		return err
	}
	if _, err := tx.Exec(`
		INSERT INTO catalogs (kind, entry_count, fetched_at) VALUES (?, ?, ?)
		ON CONFLICT(kind) DO UPDATE SET entry_count = excluded.entry_count, fetched_at = excluded.fetched_at
	`, kind, len(entries), fetchedAt.UTC()); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO entries (kind, id, name, rank, icon, icon_url)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.Exec(kind, e.ID, e.Name, e.Rank, e.Icon, e.IconURL); err != nil {
			return fmt.Errorf("insert %s %s: %w", kind, e.ID, err)
		}
	}

	return tx.Commit()
}

// FetchedAt reports when kind was last stored. ok is false when it never was.
func (s *Store) FetchedAt(kind models.ReferenceKind) (t time.Time, ok bool, err error) {
	err = s.db.QueryRow(`SELECT fetched_at FROM catalogs WHERE kind = ?`, kind).Scan(&t)
	if err == sql.ErrNoRows {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}

// Count returns the number of cached entries of kind
func (s *Store) Count(kind models.ReferenceKind) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM entries WHERE kind = ?`, kind).Scan(&n)
	return n, err
}

// SearchEntries returns up to limit entries of kind whose name contains
// query (case-insensitive), ordered by name, plus the number of matches.
// A limit of zero or less returns every match.
func (s *Store) SearchEntries(kind models.ReferenceKind, query string, limit int) ([]models.ReferenceEntry, int, error) {
	pattern := "%" + escapeLike(strings.TrimSpace(query)) + "%"

	var total int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM entries WHERE kind = ? AND name LIKE ? ESCAPE '\'
	`, kind, pattern).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query(`
		SELECT kind, id, name, rank, icon, icon_url
		FROM entries WHERE kind = ? AND name LIKE ? ESCAPE '\'
		ORDER BY name COLLATE NOCASE, id LIMIT ?
	`, kind, pattern, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	entries := []models.ReferenceEntry{}
	for rows.Next() {
		var e models.ReferenceEntry
		if err := rows.Scan(&e.Kind, &e.ID, &e.Name, &e.Rank, &e.Icon, &e.IconURL); err != nil {
			return nil, 0, err
		}
		entries = append(entries, e)
	}
	return entries, total, rows.Err()
}

// GetEntry returns one entry, or nil when it is not cached
func (s *Store) GetEntry(kind models.ReferenceKind, id string) (*models.ReferenceEntry, error) {
	var e models.ReferenceEntry
	err := s.db.QueryRow(`
		SELECT kind, id, name, rank, icon, icon_url
		FROM entries WHERE kind = ? AND id = ?
	`, kind, id).Scan(&e.Kind, &e.ID, &e.Name, &e.Rank, &e.Icon, &e.IconURL)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
