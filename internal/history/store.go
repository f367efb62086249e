// Package history keeps a local SQLite record of jdctl results so they can
// be listed, reopened and exported after the fact.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jharjadi/jdgen/internal/model"
)

// Entry kinds.
const (
	KindGenerate = "generate"
	KindLevel    = "level"
)

// Entry is one recorded result.
type Entry struct {
	ID          int64           `json:"id"`
	Kind        string          `json:"kind"`
	Title       string          `json:"title"`
	Department  string          `json:"department,omitempty"`
	TargetLevel string          `json:"target_level,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	Result      json.RawMessage `json:"result"`
}

// Store is a SQLite-backed history.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

const schema = `CREATE TABLE IF NOT EXISTS history (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	kind         TEXT NOT NULL,
	title        TEXT NOT NULL,
	department   TEXT NOT NULL DEFAULT '',
	target_level TEXT NOT NULL DEFAULT '',
	created_at   TEXT NOT NULL,
	result       TEXT NOT NULL
)`

// Open opens (or creates) the history database at path. ":memory:" gives a
// throwaway store.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening history db: %w", err)
	}
	// A single connection keeps ":memory:" databases coherent.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating history table: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores result under kind and returns the new entry.
func (s *Store) Record(ctx context.Context, kind, title, department, targetLevel string, result any) (Entry, error) {
	if kind != KindGenerate && kind != KindLevel {
		return Entry{}, fmt.Errorf("unknown history kind %q", kind)
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return Entry{}, fmt.Errorf("marshal result: %w", err)
	}

	e := Entry{
		Kind:        kind,
		Title:       title,
		Department:  department,
		TargetLevel: targetLevel,
		CreatedAt:   s.now().UTC().Truncate(time.Millisecond),
		Result:      raw,
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO history (kind, title, department, target_level, created_at, result) VALUES (?, ?, ?, ?, ?, ?)`,
		e.Kind, e.Title, e.Department, e.TargetLevel, e.CreatedAt.Format(time.RFC3339Nano), string(raw))
	if err != nil {
		return Entry{}, fmt.Errorf("inserting history entry: %w", err)
	}
	if e.ID, err = res.LastInsertId(); err != nil {
		return Entry{}, fmt.Errorf("reading history id: %w", err)
	}
	return e, nil
}

// List returns up to limit entries, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, title, department, target_level, created_at, result
		 FROM history ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing history: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history rows iteration: %w", err)
	}
	return out, nil
}

// Get returns one entry, or model.ErrNotFound.
func (s *Store) Get(ctx context.Context, id int64) (Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, kind, title, department, target_level, created_at, result
		 FROM history WHERE id = ?`, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, fmt.Errorf("history entry %d: %w", id, model.ErrNotFound)
	}
	return e, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(sc scanner) (Entry, error) {
	var (
		e         Entry
		createdAt string
		result    string
	)
	if err := sc.Scan(&e.ID, &e.Kind, &e.Title, &e.Department, &e.TargetLevel, &createdAt, &result); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, err
		}
		return Entry{}, fmt.Errorf("scanning history row: %w", err)
	}
	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return Entry{}, fmt.Errorf("parsing created_at of entry %d: %w", e.ID, err)
	}
	e.CreatedAt = t
	e.Result = json.RawMessage(result)
	return e, nil
}
