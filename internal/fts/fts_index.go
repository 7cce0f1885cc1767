package fts

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Document is the indexed projection of a File: title (weight 10),
// authors-concatenated (weight 5), tags-concatenated (weight 5), summary
// (weight 2), category path (weight 1).
type Document struct {
	FileID   string
	Title    string
	Authors  string
	Tags     string
	Summary  string
	Category string
}

// bm25Weights mirrors files_fts's column order in schema.go and is passed to
// SQLite's bm25() ranking function. bm25() takes one weight per column,
// unindexed ones included, so the leading 0.0 belongs to file_id.
const bm25Weights = "0.0, 10.0, 5.0, 5.0, 2.0, 1.0"

// Index wraps the files_fts virtual table.
type Index struct {
	db        *sql.DB
	tokenizer Tokenizer
}

// New builds an Index bound to db. tokenizer pre-segments text both at
// write time (Upsert) and at query time (callers run MATCH strings through
// Tokenizer.Segment before calling Search), so index and query tokens line
// up.
func New(db *sql.DB, tokenizer Tokenizer) *Index {
	if tokenizer == nil {
		tokenizer = Identity
	}
	return &Index{db: db, tokenizer: tokenizer}
}

func (idx *Index) Tokenizer() Tokenizer { return idx.tokenizer }

// Upsert writes doc's document, replacing any prior document for the same
// file id. FTS5 has no native INSERT OR REPLACE, so this is delete-then-
// insert within tx. Called
// from within the same transaction as the owning Catalog write so both
// commit or neither does.
func (idx *Index) Upsert(tx *sql.Tx, doc Document) error {
	if _, err := tx.Exec(`DELETE FROM files_fts WHERE file_id = ?`, doc.FileID); err != nil {
		return fmt.Errorf("failed to clear prior fts document: %w", err)
	}

	_, err := tx.Exec(
		`INSERT INTO files_fts (file_id, title, authors, tags, summary, category) VALUES (?, ?, ?, ?, ?, ?)`,
		doc.FileID,
		idx.tokenizer.Segment(doc.Title),
		idx.tokenizer.Segment(doc.Authors),
		idx.tokenizer.Segment(doc.Tags),
		idx.tokenizer.Segment(doc.Summary),
		idx.tokenizer.Segment(doc.Category),
	)
	if err != nil {
		return fmt.Errorf("failed to insert fts document: %w", err)
	}
	return nil
}

// Delete removes fileID's document, if any.
func (idx *Index) Delete(tx *sql.Tx, fileID string) error {
	_, err := tx.Exec(`DELETE FROM files_fts WHERE file_id = ?`, fileID)
	if err != nil {
		return fmt.Errorf("failed to delete fts document: %w", err)
	}
	return nil
}

// Hit is one FTS match: the matched file id and its bm25 rank (lower is
// more relevant, matching SQLite's bm25() convention).
type Hit struct {
	FileID string
	Rank   float64
}

// Search runs matchExpr (already lowered to FTS5 MATCH syntax by
// QueryCompiler) against files_fts and returns hits ordered by bm25 rank
// ascending (most relevant first).
func (idx *Index) Search(ctx context.Context, matchExpr string) ([]Hit, error) {
	rows, err := idx.db.QueryContext(ctx,
		`SELECT file_id, bm25(files_fts, `+bm25Weights+`) AS rank
		 FROM files_fts WHERE files_fts MATCH ? ORDER BY rank`,
		matchExpr,
	)
	if err != nil {
		return nil, fmt.Errorf("fts search failed: %w", err)
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		var h Hit
		if err := rows.Scan(&h.FileID, &h.Rank); err != nil {
			return nil, fmt.Errorf("failed to scan fts hit: %w", err)
		}
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

// Count returns the number of documents matching matchExpr, used by
// Searcher to compute total_count when an FTS clause is present.
func (idx *Index) Count(ctx context.Context, matchExpr string) (int, error) {
	var count int
	err := idx.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM files_fts WHERE files_fts MATCH ?`, matchExpr,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("fts count failed: %w", err)
	}
	return count, nil
}

// Rebuild truncates the index and re-inserts docs. Deleting first makes the
// operation idempotent under restart: a prior partial rebuild left some
// subset of documents behind, and truncating removes exactly that subset
// before the fresh pass begins.
func (idx *Index) Rebuild(ctx context.Context, docs func(yield func(Document) error) error) error {
	tx, err := idx.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin rebuild transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM files_fts`); err != nil {
		return fmt.Errorf("failed to truncate fts index: %w", err)
	}

	if err := docs(func(doc Document) error {
		return idx.Upsert(tx, doc)
	}); err != nil {
		return err
	}

	return tx.Commit()
}

// EscapeMatchTerm quotes a raw token for safe inclusion in an FTS5 MATCH
// expression, doubling embedded double quotes the way FTS5's string syntax
// requires.
func EscapeMatchTerm(term string) string {
	return `"` + strings.ReplaceAll(term, `"`, `""`) + `"`
}
