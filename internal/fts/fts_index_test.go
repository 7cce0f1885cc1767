package fts

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	_, err = db.Exec(`CREATE VIRTUAL TABLE files_fts USING fts5(
		file_id UNINDEXED, title, authors, tags, summary, category, tokenize = 'unicode61'
	)`)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestUpsertIsIdempotentByFileID(t *testing.T) {
	db := newTestDB(t)
	idx := New(db, Identity)
	ctx := context.Background()

	tx, err := db.Begin()
	require.NoError(t, err)
	require.NoError(t, idx.Upsert(tx, Document{FileID: "f1", Title: "Attention Is All You Need"}))
	require.NoError(t, idx.Upsert(tx, Document{FileID: "f1", Title: "Updated Title"}))
	require.NoError(t, tx.Commit())

	hits, err := idx.Search(ctx, `"Updated"`)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	require.Equal(t, "f1", hits[0].FileID)

	hits, err = idx.Search(ctx, `"Attention"`)
	require.NoError(t, err)
	require.Empty(t, hits)
}

func TestDeleteRemovesDocument(t *testing.T) {
	db := newTestDB(t)
	idx := New(db, Identity)
	ctx := context.Background()

	tx, _ := db.Begin()
	require.NoError(t, idx.Upsert(tx, Document{FileID: "f1", Title: "Rust Programming"}))
	require.NoError(t, tx.Commit())

	tx, _ = db.Begin()
	require.NoError(t, idx.Delete(tx, "f1"))
	require.NoError(t, tx.Commit())

	hits, err := idx.Search(ctx, `"Rust"`)
	require.NoError(t, err)
	require.Empty(t, hits)
}

func TestRebuildIsRestartable(t *testing.T) {
	db := newTestDB(t)
	idx := New(db, Identity)
	ctx := context.Background()

	// Simulate a stale partial-rebuild leftover.
	tx, _ := db.Begin()
	require.NoError(t, idx.Upsert(tx, Document{FileID: "stale", Title: "Stale"}))
	require.NoError(t, tx.Commit())

	docs := []Document{
		{FileID: "f1", Title: "One"},
		{FileID: "f2", Title: "Two"},
	}
	err := idx.Rebuild(ctx, func(yield func(Document) error) error {
		for _, d := range docs {
			if err := yield(d); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM files_fts`).Scan(&count))
	require.Equal(t, 2, count)

	hits, err := idx.Search(ctx, `"Stale"`)
	require.NoError(t, err)
	require.Empty(t, hits)
}

func TestCountMatchesSearchLength(t *testing.T) {
	db := newTestDB(t)
	idx := New(db, Identity)
	ctx := context.Background()

	tx, _ := db.Begin()
	require.NoError(t, idx.Upsert(tx, Document{FileID: "f1", Tags: "rust systems"}))
	require.NoError(t, idx.Upsert(tx, Document{FileID: "f2", Tags: "rust web"}))
	require.NoError(t, tx.Commit())

	count, err := idx.Count(ctx, `"rust"`)
	require.NoError(t, err)
	require.Equal(t, 2, count)
}
