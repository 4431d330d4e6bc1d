// Package snapshot persists normalized metafield collections in SQLite so that
// content edits can be compared over time.
package snapshot

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gosimple/slug"
	_ "modernc.org/sqlite"

	"github.com/aidanlsb/metafold/internal/metafield"
)

// CurrentDBVersion is the snapshot schema version stored in PRAGMA user_version.
const CurrentDBVersion = 1

var (
	// ErrNotFound indicates the named snapshot does not exist.
	ErrNotFound = errors.New("snapshot not found")
	// ErrInvalidName indicates a name that slugifies to nothing.
	ErrInvalidName = errors.New("invalid snapshot name")
	// ErrVersionMismatch indicates a database written by a newer schema.
	ErrVersionMismatch = errors.New("snapshot database version mismatch")
)

// Snapshot describes one saved collection.
type Snapshot struct {
	Name       string    `json:"name"`
	Source     string    `json:"source,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	FieldCount int       `json:"field_count"`
}

// Entry is one stored field.
type Entry struct {
	Namespace string            `json:"namespace"`
	Key       string            `json:"key"`
	RawType   string            `json:"raw_type"`
	Kind      metafield.Kind    `json:"kind"`
	Display   metafield.Display `json:"display"`
	Value     json.RawMessage   `json:"value,omitempty"`
	RefCount  int               `json:"ref_count"`
}

// QualifiedKey returns "namespace.key".
func (e Entry) QualifiedKey() string {
	if e.Namespace == "" {
		return e.Key
	}
	return e.Namespace + "." + e.Key
}

// Store is the SQLite snapshot database handle.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the snapshot database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot database: %w", err)
	}

	s := &Store{db: db, now: time.Now}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// OpenInMemory opens an in-memory store (for testing).
func OpenInMemory() (*Store, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, err
	}
	// Each pooled connection would get its own empty in-memory database.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, now: time.Now}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initialize() error {
	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("failed to read snapshot database version: %w", err)
	}
	if version > CurrentDBVersion {
		return fmt.Errorf("%w: database is v%d, this build supports v%d", ErrVersionMismatch, version, CurrentDBVersion)
	}

	schema := `
		PRAGMA busy_timeout = 5000;

		CREATE TABLE IF NOT EXISTS snapshots (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			source TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL,    -- Unix nanoseconds
			field_count INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS entries (
			snapshot_id INTEGER NOT NULL,
			position INTEGER NOT NULL,      -- Order within the source collection
			namespace TEXT NOT NULL,
			key TEXT NOT NULL,
			raw_type TEXT NOT NULL,
			kind TEXT NOT NULL,
			display TEXT NOT NULL,          -- JSON string or array of strings
			value TEXT,                     -- JSON, NULL when the field has no value
			ref_count INTEGER NOT NULL,
			PRIMARY KEY (snapshot_id, position)
		);

		CREATE INDEX IF NOT EXISTS idx_entries_key ON entries(namespace, key);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize snapshot schema: %w", err)
	}

	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", CurrentDBVersion)); err != nil {
		return fmt.Errorf("failed to set snapshot database version: %w", err)
	}
	return nil
}

// NormalizeName returns the stored form of a snapshot name.
func NormalizeName(name string) (string, error) {
	normalized := slug.Make(strings.TrimSpace(name))
	if normalized == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return normalized, nil
}

// Save stores fields under name, replacing any snapshot with the same name.
// source records where the fields came from (a file path, "-" for stdin).
func (s *Store) Save(name, source string, fields []metafield.NormalizedField) (Snapshot, error) {
	normalized, err := NormalizeName(name)
	if err != nil {
		return Snapshot{}, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return Snapshot{}, err
	}
	defer tx.Rollback()

	if err := deleteSnapshot(tx, normalized); err != nil {
		return Snapshot{}, err
	}

	created := s.now().UTC()
	res, err := tx.Exec(
		`INSERT INTO snapshots (name, source, created_at, field_count) VALUES (?, ?, ?, ?)`,
		normalized, source, created.UnixNano(), len(fields),
	)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to insert snapshot: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Snapshot{}, err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO entries (snapshot_id, position, namespace, key, raw_type, kind, display, value, ref_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return Snapshot{}, err
	}
	defer stmt.Close()

	for i, f := range fields {
		display, err := json.Marshal(f.Display)
		if err != nil {
			return Snapshot{}, fmt.Errorf("failed to encode display for %s: %w", f.QualifiedKey(), err)
		}
		value, err := encodeValue(f)
		if err != nil {
			return Snapshot{}, fmt.Errorf("failed to encode value for %s: %w", f.QualifiedKey(), err)
		}
		if _, err := stmt.Exec(id, i, f.Namespace, f.Key, f.RawType, string(f.Kind), string(display), value, len(f.Refs)); err != nil {
			return Snapshot{}, fmt.Errorf("failed to insert entry %s: %w", f.QualifiedKey(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Snapshot{}, err
	}

	return Snapshot{Name: normalized, Source: source, CreatedAt: time.Unix(0, created.UnixNano()).UTC(), FieldCount: len(fields)}, nil
}

// encodeValue stores the list for list fields and the value otherwise.
func encodeValue(f metafield.NormalizedField) (any, error) {
	var v any = f.Value
	if f.IsList() {
		v = f.List
	}
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func deleteSnapshot(e execer, name string) error {
	if _, err := e.Exec(`DELETE FROM entries WHERE snapshot_id IN (SELECT id FROM snapshots WHERE name = ?)`, name); err != nil {
		return fmt.Errorf("delete entries: %w", err)
	}
	if _, err := e.Exec(`DELETE FROM snapshots WHERE name = ?`, name); err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}

// List returns all snapshots, newest first.
func (s *Store) List() ([]Snapshot, error) {
	rows, err := s.db.Query(`SELECT name, source, created_at, field_count FROM snapshots ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	return scanRows(rows, func(rows *sql.Rows) (Snapshot, error) {
		var snap Snapshot
		var created int64
		if err := rows.Scan(&snap.Name, &snap.Source, &created, &snap.FieldCount); err != nil {
			return Snapshot{}, err
		}
		snap.CreatedAt = time.Unix(0, created).UTC()
		return snap, nil
	})
}

// scanRows scans all rows with scan and closes them.
func scanRows[T any](rows *sql.Rows, scan func(*sql.Rows) (T, error)) ([]T, error) {
	defer rows.Close()

	var out []T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// Get returns a snapshot and its entries in their original order.
func (s *Store) Get(name string) (Snapshot, []Entry, error) {
	normalized, err := NormalizeName(name)
	if err != nil {
		return Snapshot{}, nil, err
	}

	var snap Snapshot
	var id, created int64
	err = s.db.QueryRow(
		`SELECT id, name, source, created_at, field_count FROM snapshots WHERE name = ?`, normalized,
	).Scan(&id, &snap.Name, &snap.Source, &created, &snap.FieldCount)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, nil, fmt.Errorf("%w: %s", ErrNotFound, normalized)
	}
	if err != nil {
		return Snapshot{}, nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	snap.CreatedAt = time.Unix(0, created).UTC()

	rows, err := s.db.Query(`
		SELECT namespace, key, raw_type, kind, display, value, ref_count
		FROM entries WHERE snapshot_id = ? ORDER BY position
	`, id)
	if err != nil {
		return Snapshot{}, nil, fmt.Errorf("failed to load entries: %w", err)
	}
	entries, err := scanRows(rows, func(rows *sql.Rows) (Entry, error) {
		var e Entry
		var kind, display string
		var value sql.NullString
		if err := rows.Scan(&e.Namespace, &e.Key, &e.RawType, &kind, &display, &value, &e.RefCount); err != nil {
			return Entry{}, err
		}
		e.Kind = metafield.Kind(kind)
		if err := json.Unmarshal([]byte(display), &e.Display); err != nil {
			return Entry{}, fmt.Errorf("corrupt display for %s: %w", e.QualifiedKey(), err)
		}
		if value.Valid {
			e.Value = json.RawMessage(value.String)
		}
		return e, nil
	})
	if err != nil {
		return Snapshot{}, nil, err
	}
	if entries == nil {
		entries = []Entry{}
	}
	return snap, entries, nil
}

// Delete removes a snapshot.
func (s *Store) Delete(name string) error {
	normalized, err := NormalizeName(name)
	if err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRow(`SELECT COUNT(*) FROM snapshots WHERE name = ?`, normalized).Scan(&exists)
	if err != nil {
		return err
	}
	if exists == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, normalized)
	}
	if err := deleteSnapshot(tx, normalized); err != nil {
		return err
	}
	return tx.Commit()
}

// EntriesFromFields converts normalized fields to entries without storing them.
func EntriesFromFields(fields []metafield.NormalizedField) ([]Entry, error) {
	entries := make([]Entry, 0, len(fields))
	for _, f := range fields {
		value, err := encodeValue(f)
		if err != nil {
			return nil, err
		}
		e := Entry{
			Namespace: f.Namespace,
			Key:       f.Key,
			RawType:   f.RawType,
			Kind:      f.Kind,
			Display:   f.Display,
			RefCount:  len(f.Refs),
		}
		if s, ok := value.(string); ok {
			e.Value = json.RawMessage(s)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
