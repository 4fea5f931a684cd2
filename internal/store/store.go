// Package store persists saved highlights and their classification in
// SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/crimson-sun/gatekeeper/internal/model"
)

// ErrNotFound is returned when no highlight has the requested id.
var ErrNotFound = errors.New("store: highlight not found")

const schemaSQL = `
CREATE TABLE IF NOT EXISTS highlights (
    id         TEXT PRIMARY KEY,
    page_key   TEXT NOT NULL DEFAULT '',
    url        TEXT NOT NULL DEFAULT '',
    text       TEXT NOT NULL,
    color      TEXT NOT NULL DEFAULT '',
    fallacy    TEXT NOT NULL DEFAULT 'no_fallacy',
    confidence REAL NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS highlights_page_key ON highlights (page_key, created_at);
`

// Highlight is a saved passage of page text with its classification.
type Highlight struct {
	ID         string      `json:"id"`
	PageKey    string      `json:"pageKey"`
	URL        string      `json:"url"`
	Text       string      `json:"text"`
	Color      string      `json:"color"`
	Fallacy    model.Label `json:"fallacy"`
	Confidence float64     `json:"confidence"`
	CreatedAt  time.Time   `json:"createdAt"`
}

// Store is a SQLite-backed highlight store. Safe for concurrent use.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the database at path and applies the
// schema. Use ":memory:" for a private in-memory database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open sqlite: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serializes
	// writers.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Save inserts h, or replaces the highlight with the same id. A missing id
// is generated and a zero CreatedAt is set to the current time; the stored
// record is returned. Line breaks in the text are flattened to spaces.
func (s *Store) Save(ctx context.Context, h Highlight) (Highlight, error) {
	if strings.TrimSpace(h.Text) == "" {
		return Highlight{}, errors.New("store: highlight text is empty")
	}
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	if h.CreatedAt.IsZero() {
		h.CreatedAt = s.now()
	}
	if h.Fallacy == "" {
		h.Fallacy = model.NoFallacy
	}
	h.Text = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(h.Text)
	h.CreatedAt = h.CreatedAt.UTC().Truncate(time.Millisecond)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO highlights (id, page_key, url, text, color, fallacy, confidence, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			page_key = excluded.page_key,
			url = excluded.url,
			text = excluded.text,
			color = excluded.color,
			fallacy = excluded.fallacy,
			confidence = excluded.confidence`,
		h.ID, h.PageKey, h.URL, h.Text, h.Color, string(h.Fallacy), h.Confidence, h.CreatedAt.UnixMilli())
	if err != nil {
		return Highlight{}, fmt.Errorf("store: save %s: %w", h.ID, err)
	}
	return h, nil
}

// Get returns the highlight with id, or ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (Highlight, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, page_key, url, text, color, fallacy, confidence, created_at
		FROM highlights WHERE id = ?`, id)
	h, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Highlight{}, ErrNotFound
	}
	if err != nil {
		return Highlight{}, fmt.Errorf("store: get %s: %w", id, err)
	}
	return h, nil
}

// List returns the highlights for pageKey, oldest first. An empty pageKey
// lists every highlight.
func (s *Store) List(ctx context.Context, pageKey string) ([]Highlight, error) {
	query := `SELECT id, page_key, url, text, color, fallacy, confidence, created_at FROM highlights`
	var args []any
	if pageKey != "" {
		query += ` WHERE page_key = ?`
		args = append(args, pageKey)
	}
	query += ` ORDER BY created_at, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	defer rows.Close()

	var out []Highlight
	for rows.Next() {
		h, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("store: list: %w", err)
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	return out, nil
}

// Delete removes the highlight with id, or returns ErrNotFound.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM highlights WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: delete %s: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(sc scanner) (Highlight, error) {
	var (
		h       Highlight
		fallacy string
		created int64
	)
	if err := sc.Scan(&h.ID, &h.PageKey, &h.URL, &h.Text, &h.Color, &fallacy, &h.Confidence, &created); err != nil {
		return Highlight{}, err
	}
	h.Fallacy = model.Label(fallacy)
	h.CreatedAt = time.UnixMilli(created).UTC()
	return h, nil
}
