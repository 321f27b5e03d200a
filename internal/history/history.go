// Package history persists captured clipboard entries in SQLite.
//
// It backs the reference server: the monitor inserts into it and the gRPC
// service reads from it. Entry ordering is newest first by capture time, with
// the id breaking ties inside the same second.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite" // pure-Go driver, registers "sqlite"

	"go.klb.dev/clipview/internal/entry"
)

// ErrNotFound is returned for ids that are not in the history.
var ErrNotFound = errors.New("history: entry not found")

// Memory is the path of a throwaway in-memory database.
const Memory = ":memory:"

// DB is the clipboard history.
type DB struct {
	db *sql.DB
}

// Open opens (creating if needed) the history database at path.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	// A single connection serializes writers and keeps an in-memory
	// database alive for the lifetime of the pool.
	db.SetMaxOpenConns(1)

	if path != Memory {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("enable WAL: %w", err)
		}
	}

	h := &DB{db: db}
	if err := h.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate history: %w", err)
	}
	return h, nil
}

// Close closes the database.
func (h *DB) Close() error { return h.db.Close() }

func (h *DB) migrate() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS clipboard_entries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		type TEXT NOT NULL,
		content TEXT NOT NULL,
		added_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		pinned INTEGER NOT NULL DEFAULT 0,
		forced_language TEXT DEFAULT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_entries_added ON clipboard_entries(added_at DESC, id DESC);
	CREATE INDEX IF NOT EXISTS idx_entries_type ON clipboard_entries(type);
	`
	if _, err := h.db.Exec(schema); err != nil {
		return err
	}

	// Older databases may predate the pin and language columns.
	for _, col := range []struct{ name, def string }{
		{"pinned", "pinned INTEGER NOT NULL DEFAULT 0"},
		{"forced_language", "forced_language TEXT DEFAULT NULL"},
	} {
		ok, err := h.columnExists(col.name)
		if err != nil {
			return err
		}
		if ok {
			continue
		}
		if _, err := h.db.Exec("ALTER TABLE clipboard_entries ADD COLUMN " + col.def); err != nil {
			return fmt.Errorf("add column %s: %w", col.name, err)
		}
	}
	return nil
}

func (h *DB) columnExists(name string) (bool, error) {
	rows, err := h.db.Query("SELECT name FROM pragma_table_info('clipboard_entries')")
	if err != nil {
		return false, err
	}
	defer rows.Close()
	for rows.Next() {
		var col string
		if err := rows.Scan(&col); err != nil {
			return false, err
		}
		if col == name {
			return true, nil
		}
	}
	return false, rows.Err()
}

// added_at is formatted in SQL so the driver hands back plain text rather
// than a parsed timestamp.
const selectEntry = `SELECT id, type, content, strftime('%Y-%m-%d %H:%M:%S', added_at), pinned, forced_language
	FROM clipboard_entries`

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (entry.Entry, error) {
	var (
		id       int64
		kind     string
		content  string
		addedAt  sql.NullString
		pinned   bool
		language sql.NullString
	)
	if err := s.Scan(&id, &kind, &content, &addedAt, &pinned, &language); err != nil {
		return entry.Entry{}, err
	}
	k, err := entry.ParseKind(kind)
	if err != nil {
		return entry.Entry{}, fmt.Errorf("entry %d: %w", id, err)
	}
	e := entry.New(id, k, content, addedAt.String)
	e.Pinned = pinned
	e.LanguageOverride = language.String
	return e, nil
}

// IDs returns every entry id, newest first.
func (h *DB) IDs(ctx context.Context) ([]int64, error) {
	rows, err := h.db.QueryContext(ctx, "SELECT id FROM clipboard_entries ORDER BY added_at DESC, id DESC")
	if err != nil {
		return nil, fmt.Errorf("list ids: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("list ids: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Get returns one entry.
func (h *DB) Get(ctx context.Context, id int64) (entry.Entry, error) {
	e, err := scanEntry(h.db.QueryRowContext(ctx, selectEntry+" WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return entry.Entry{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if err != nil {
		return entry.Entry{}, fmt.Errorf("get entry %d: %w", id, err)
	}
	return e, nil
}

// Latest returns the most recent entry of kind, or ErrNotFound.
func (h *DB) Latest(ctx context.Context, kind entry.Kind) (entry.Entry, error) {
	e, err := scanEntry(h.db.QueryRowContext(ctx,
		selectEntry+" WHERE type = ? ORDER BY added_at DESC, id DESC LIMIT 1", string(kind)))
	if errors.Is(err, sql.ErrNoRows) {
		return entry.Entry{}, fmt.Errorf("%w: no %s entry", ErrNotFound, kind)
	}
	if err != nil {
		return entry.Entry{}, fmt.Errorf("latest %s: %w", kind, err)
	}
	return e, nil
}

// Insert stores a new unpinned entry and returns it as stored.
func (h *DB) Insert(ctx context.Context, kind entry.Kind, content string) (entry.Entry, error) {
	res, err := h.db.ExecContext(ctx,
		"INSERT INTO clipboard_entries (type, content, pinned) VALUES (?, ?, 0)", string(kind), content)
	if err != nil {
		return entry.Entry{}, fmt.Errorf("insert entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return entry.Entry{}, fmt.Errorf("insert entry: %w", err)
	}
	return h.Get(ctx, id)
}

// Delete removes one entry. Deleting an unknown id is not an error.
func (h *DB) Delete(ctx context.Context, id int64) error {
	if _, err := h.db.ExecContext(ctx, "DELETE FROM clipboard_entries WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete entry %d: %w", id, err)
	}
	return nil
}

// DeleteAll removes every entry and returns how many there were.
func (h *DB) DeleteAll(ctx context.Context) (int64, error) {
	res, err := h.db.ExecContext(ctx, "DELETE FROM clipboard_entries")
	if err != nil {
		return 0, fmt.Errorf("delete all: %w", err)
	}
	return res.RowsAffected()
}

// SetPinned sets the pin flag of one entry.
func (h *DB) SetPinned(ctx context.Context, id int64, pinned bool) error {
	res, err := h.db.ExecContext(ctx, "UPDATE clipboard_entries SET pinned = ? WHERE id = ?", pinned, id)
	if err != nil {
		return fmt.Errorf("pin entry %d: %w", id, err)
	}
	return mustAffect(res, id)
}

// UnpinAll clears every pin flag and returns how many entries were pinned.
func (h *DB) UnpinAll(ctx context.Context) (int64, error) {
	res, err := h.db.ExecContext(ctx, "UPDATE clipboard_entries SET pinned = 0 WHERE pinned = 1")
	if err != nil {
		return 0, fmt.Errorf("unpin all: %w", err)
	}
	return res.RowsAffected()
}

// ForceLanguage sets the syntax language override of one entry. An empty
// language restores auto-detection.
func (h *DB) ForceLanguage(ctx context.Context, id int64, language string) error {
	lang := sql.NullString{String: language, Valid: language != ""}
	res, err := h.db.ExecContext(ctx, "UPDATE clipboard_entries SET forced_language = ? WHERE id = ?", lang, id)
	if err != nil {
		return fmt.Errorf("force language of %d: %w", id, err)
	}
	return mustAffect(res, id)
}

func mustAffect(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return nil
}
