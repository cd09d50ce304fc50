package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS notes (
	id INTEGER PRIMARY KEY,
	title TEXT NOT NULL,
	content TEXT NOT NULL,
	images TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL,
	sync_status TEXT NOT NULL,
	deleted INTEGER NOT NULL DEFAULT 0
)`

const columns = "id, title, content, images, created_at, updated_at, sync_status, deleted"

// Store keeps notes in an embedded sqlite database
type Store struct {
	db *sql.DB
}

// Open opens (and migrates) the database at path; ":memory:" keeps it in memory
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fail("open", err)
	}
	// one connection: an in-memory database lives and dies with its connection
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fail("migrate", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database
func (s *Store) Close() error {
	return s.db.Close()
}

// List returns every local note, tombstones included, most recently updated first
func (s *Store) List(ctx context.Context) ([]Note, error) {
	return s.query(ctx, "list", "SELECT "+columns+" FROM notes ORDER BY updated_at DESC, id DESC")
}

// Get returns the note or ErrNotFound
func (s *Store) Get(ctx context.Context, id int64) (Note, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+columns+" FROM notes WHERE id = ?", id)
	n, err := scan(row)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return Note{}, ErrNotFound
	case err != nil:
		return Note{}, fail("get", err)
	}
	return n, nil
}

// Put inserts the note or fully replaces the one with the same id
func (s *Store) Put(ctx context.Context, n Note) error {
	images, err := json.Marshal(nonNil(n.Images))
	if err != nil {
		return fail("put", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO notes (`+columns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			content = excluded.content,
			images = excluded.images,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at,
			sync_status = excluded.sync_status,
			deleted = excluded.deleted`,
		n.Id, n.Title, n.Content, string(images),
		n.CreatedAt.UnixNano(), n.UpdatedAt.UnixNano(),
		string(n.SyncStatus), n.Deleted)
	if err != nil {
		return fail("put", err)
	}
	return nil
}

// Delete removes the note; removing an unknown id is not an error
func (s *Store) Delete(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM notes WHERE id = ?", id); err != nil {
		return fail("delete", err)
	}
	return nil
}

// QueryByStatus returns the notes in any of the given statuses, most recently updated first
func (s *Store) QueryByStatus(ctx context.Context, statuses ...Status) ([]Note, error) {
	if len(statuses) == 0 {
		return []Note{}, nil
	}
	args := make([]any, len(statuses))
	for i, st := range statuses {
		args[i] = string(st)
	}
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(statuses)), ", ")
	return s.query(ctx, "query by status",
		"SELECT "+columns+" FROM notes WHERE sync_status IN ("+marks+") ORDER BY updated_at DESC, id DESC",
		args...)
}

func (s *Store) query(ctx context.Context, op, stmt string, args ...any) ([]Note, error) {
	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fail(op, err)
	}
	defer rows.Close()

	notes := make([]Note, 0)
	for rows.Next() {
		n, err := scan(rows)
		if err != nil {
			return nil, fail(op, err)
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fail(op, err)
	}
	return notes, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(r scanner) (Note, error) {
	var (
		n                Note
		images, status   string
		created, updated int64
		deleted          bool
	)
	if err := r.Scan(&n.Id, &n.Title, &n.Content, &images, &created, &updated, &status, &deleted); err != nil {
		return Note{}, err
	}
	if err := json.Unmarshal([]byte(images), &n.Images); err != nil {
		return Note{}, err
	}
	n.Images = nonNil(n.Images)
	n.CreatedAt = time.Unix(0, created).UTC()
	n.UpdatedAt = time.Unix(0, updated).UTC()
	n.SyncStatus = Status(status)
	n.Deleted = deleted
	return n, nil
}

func nonNil(images []string) []string {
	if images == nil {
		return []string{}
	}
	return images
}
