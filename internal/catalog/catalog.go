// Package catalog is the relational store of files, authors,
// tags, categories, and links, plus the FTS document lifecycle that must
// commit atomically alongside every catalog write.
package catalog

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/tagbox/tagbox/internal/config"
	"github.com/tagbox/tagbox/internal/fts"
)

// Catalog wraps the SQLite connection pool backing the catalog and FTS
// tables. One logical writer serializes mutations; readers may run
// concurrently through the same *sql.DB.
type Catalog struct {
	db  *sql.DB
	fts *fts.Index
}

// Open initializes (or attaches to) the catalog database at cfg.Path,
// applying the configured journal/sync pragmas and a 5s busy timeout, then
// ensures the schema exists. ftsLanguage is the search.fts_language
// selector; it picks the FTS5 tokenizer files_fts is created with (see
// fts.TokenizeClause). The pragmas ride in the DSN so every pooled
// connection gets them, not just the one that happened to run an Exec.
func Open(cfg config.DatabaseConfig, ftsLanguage string, tokenizer fts.Tokenizer) (*Catalog, error) {
	dsn := fmt.Sprintf("%s?_foreign_keys=on&_busy_timeout=5000&_journal_mode=%s&_synchronous=%s",
		cfg.Path, cfg.JournalMode, cfg.SyncMode)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A plain :memory: database exists per connection; without capping the
	// pool, the second pooled connection would see an empty schema.
	if cfg.Path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	version, err := GetSchemaVersion(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	if version == "0" {
		if err := CreateSchema(db, fts.TokenizeClause(ftsLanguage)); err != nil {
			db.Close()
			return nil, err
		}
	}

	return &Catalog{db: db, fts: fts.New(db, tokenizer)}, nil
}

// OpenMemory opens an in-memory catalog for tests.
func OpenMemory(tokenizer fts.Tokenizer) (*Catalog, error) {
	return Open(config.DatabaseConfig{Path: ":memory:", JournalMode: "WAL", SyncMode: "NORMAL"}, "unicode61", tokenizer)
}

// DB exposes the underlying pool for Searcher's read-only queries —
// Searcher never mutates through it.
func (c *Catalog) DB() *sql.DB { return c.db }

// FTS exposes the full-text index for Searcher and rebuild operations.
func (c *Catalog) FTS() *fts.Index { return c.fts }

// Close releases the underlying connection pool.
func (c *Catalog) Close() error { return c.db.Close() }

// Stats reports coarse row counts and the schema version.
func (c *Catalog) Stats() (DBStats, error) {
	var stats DBStats

	version, err := GetSchemaVersion(c.db)
	if err != nil {
		return stats, err
	}
	stats.SchemaVersion = version

	queries := []struct {
		dst *int
		sql string
	}{
		{&stats.FileCount, "SELECT COUNT(*) FROM files WHERE is_deleted = 0"},
		{&stats.DeletedCount, "SELECT COUNT(*) FROM files WHERE is_deleted = 1"},
		{&stats.AuthorCount, "SELECT COUNT(*) FROM authors"},
		{&stats.TagCount, "SELECT COUNT(*) FROM tags"},
		{&stats.LinkCount, "SELECT COUNT(*) FROM file_links"},
	}
	for _, q := range queries {
		if err := c.db.QueryRow(q.sql).Scan(q.dst); err != nil {
			return stats, fmt.Errorf("failed to compute stats: %w", err)
		}
	}
	return stats, nil
}
