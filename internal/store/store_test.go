package store

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crimson-sun/gatekeeper/internal/model"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "highlights.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveGeneratesID(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	h, err := s.Save(ctx, Highlight{PageKey: "p1", Text: "Either we act\nor we lose.", Fallacy: model.FalseDilemma, Confidence: 0.91})
	require.NoError(t, err)
	_, err = uuid.Parse(h.ID)
	assert.NoError(t, err, "generated id should be a uuid")
	assert.False(t, h.CreatedAt.IsZero())
	assert.Equal(t, "Either we act or we lose.", h.Text)

	got, err := s.Get(ctx, h.ID)
	require.NoError(t, err)
	assert.Equal(t, h, got)
}

func TestSaveDefaults(t *testing.T) {
	s := openTest(t)
	h, err := s.Save(context.Background(), Highlight{ID: "h1", Text: "plain text here"})
	require.NoError(t, err)
	assert.Equal(t, "h1", h.ID)
	assert.Equal(t, model.NoFallacy, h.Fallacy)
}

func TestSaveRejectsEmptyText(t *testing.T) {
	s := openTest(t)
	_, err := s.Save(context.Background(), Highlight{Text: "  "})
	assert.Error(t, err)
}

func TestSaveReplaces(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	_, err := s.Save(ctx, Highlight{ID: "h1", Text: "first", Color: "yellow"})
	require.NoError(t, err)
	_, err = s.Save(ctx, Highlight{ID: "h1", Text: "second", Color: "green"})
	require.NoError(t, err)

	got, err := s.Get(ctx, "h1")
	require.NoError(t, err)
	assert.Equal(t, "second", got.Text)
	assert.Equal(t, "green", got.Color)

	all, err := s.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestList(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, hl := range []Highlight{
		{ID: "b", PageKey: "page-1", Text: "second on page one"},
		{ID: "a", PageKey: "page-1", Text: "first on page one"},
		{ID: "c", PageKey: "page-2", Text: "only on page two"},
	} {
		// ids sort opposite to insertion so ordering is by time.
		hl.CreatedAt = base.Add(time.Duration(2-i) * time.Minute)
		_, err := s.Save(ctx, hl)
		require.NoError(t, err)
	}

	page1, err := s.List(ctx, "page-1")
	require.NoError(t, err)
	require.Len(t, page1, 2)
	assert.Equal(t, "a", page1[0].ID)
	assert.Equal(t, "b", page1[1].ID)

	all, err := s.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	none, err := s.List(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestGetMissing(t *testing.T) {
	s := openTest(t)
	_, err := s.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	h, err := s.Save(ctx, Highlight{Text: "to be removed"})
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, h.ID))

	_, err = s.Get(ctx, h.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, h.ID), ErrNotFound)
}

func TestPersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "highlights.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.Save(ctx, Highlight{ID: "keep", Text: "persisted text"})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Get(ctx, "keep")
	require.NoError(t, err)
	assert.Equal(t, "persisted text", got.Text)
}

func TestConcurrentSave(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Save(ctx, Highlight{PageKey: "p", Text: "concurrent write"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	all, err := s.List(ctx, "p")
	require.NoError(t, err)
	assert.Len(t, all, 20)
}
