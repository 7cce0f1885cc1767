package catalog

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates every table and index for a fresh catalog
// database: ordered DDL in one transaction, then the FTS5 virtual table
// afterward, since SQLite forbids creating virtual tables inside some
// driver transaction modes. tokenize is the FTS5 tokenize argument for
// files_fts, resolved from search.fts_language via fts.TokenizeClause.
func CreateSchema(db *sql.DB, tokenize string) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin schema transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	tables := []struct {
		name string
		ddl  string
	}{
		{"files", createFilesTable},
		{"authors", createAuthorsTable},
		{"tags", createTagsTable},
		{"file_authors", createFileAuthorsTable},
		{"file_tags", createFileTagsTable},
		{"file_links", createFileLinksTable},
		{"schema_metadata", createSchemaMetadataTable},
	}

	for _, table := range tables {
		if _, err := tx.Exec(table.ddl); err != nil {
			return fmt.Errorf("failed to create %s table: %w", table.name, err)
		}
	}

	for i, idx := range getAllIndexes() {
		if _, err := tx.Exec(idx); err != nil {
			return fmt.Errorf("failed to create index %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schema transaction: %w", err)
	}

	if _, err := db.Exec(fmt.Sprintf(createFilesFTSTable, tokenize)); err != nil {
		return fmt.Errorf("failed to create files_fts table: %w", err)
	}

	return UpdateSchemaVersion(db, schemaVersion)
}

// schemaVersion identifies the shape produced by CreateSchema; bump it when
// the DDL above changes.
const schemaVersion = "1"

const createFilesTable = `
CREATE TABLE files (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    year INTEGER,
    publisher TEXT,
    source TEXT,
    category1 TEXT NOT NULL,
    category2 TEXT,
    category3 TEXT,
    summary TEXT,
    original_filename TEXT NOT NULL,
    relative_path TEXT NOT NULL,
    initial_hash TEXT NOT NULL,
    current_hash TEXT,
    original_path TEXT,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    last_accessed TEXT,
    is_deleted INTEGER NOT NULL DEFAULT 0,
    file_metadata TEXT,
    type_metadata TEXT
)
`

const createAuthorsTable = `
CREATE TABLE authors (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    aliases TEXT NOT NULL DEFAULT '[]'
)
`

const createTagsTable = `
CREATE TABLE tags (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL COLLATE NOCASE
)
`

const createFileAuthorsTable = `
CREATE TABLE file_authors (
    file_id TEXT NOT NULL,
    author_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    PRIMARY KEY (file_id, author_id),
    FOREIGN KEY (file_id) REFERENCES files(id) ON DELETE CASCADE,
    FOREIGN KEY (author_id) REFERENCES authors(id) ON DELETE RESTRICT
)
`

const createFileTagsTable = `
CREATE TABLE file_tags (
    file_id TEXT NOT NULL,
    tag_id TEXT NOT NULL,
    PRIMARY KEY (file_id, tag_id),
    FOREIGN KEY (file_id) REFERENCES files(id) ON DELETE CASCADE,
    FOREIGN KEY (tag_id) REFERENCES tags(id) ON DELETE RESTRICT
)
`

const createFileLinksTable = `
CREATE TABLE file_links (
    id TEXT PRIMARY KEY,
    file_id_a TEXT NOT NULL,
    file_id_b TEXT NOT NULL,
    relation TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL,
    FOREIGN KEY (file_id_a) REFERENCES files(id) ON DELETE CASCADE,
    FOREIGN KEY (file_id_b) REFERENCES files(id) ON DELETE CASCADE
)
`

const createSchemaMetadataTable = `
CREATE TABLE schema_metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
)
`

// createFilesFTSTable backs the full-text index. Column order matches the bm25()
// weight ordering FtsIndex.Search uses: title(10), authors(5), tags(5),
// summary(2), category(1).
const createFilesFTSTable = `
CREATE VIRTUAL TABLE files_fts USING fts5(
    file_id UNINDEXED,
    title,
    authors,
    tags,
    summary,
    category,
    tokenize = '%s'
)
`

func getAllIndexes() []string {
	return []string{
		"CREATE UNIQUE INDEX idx_files_initial_hash_live ON files(initial_hash) WHERE is_deleted = 0",
		"CREATE UNIQUE INDEX idx_files_relative_path_live ON files(relative_path) WHERE is_deleted = 0",
		"CREATE INDEX idx_files_category ON files(category1, category2, category3)",
		"CREATE INDEX idx_files_created_at ON files(created_at)",
		"CREATE INDEX idx_files_is_deleted ON files(is_deleted)",
		"CREATE UNIQUE INDEX idx_tags_name ON tags(name)",
		"CREATE INDEX idx_file_authors_author ON file_authors(author_id)",
		"CREATE INDEX idx_file_tags_tag ON file_tags(tag_id)",
		"CREATE UNIQUE INDEX idx_file_links_pair ON file_links(file_id_a, file_id_b)",
	}
}

// GetSchemaVersion retrieves the schema version from schema_metadata.
// Returns "0" for a database that predates versioning.
func GetSchemaVersion(db *sql.DB) (string, error) {
	var exists int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_metadata'").Scan(&exists)
	if err != nil {
		return "", fmt.Errorf("failed to check schema_metadata existence: %w", err)
	}
	if exists == 0 {
		return "0", nil
	}

	var version string
	err = db.QueryRow("SELECT value FROM schema_metadata WHERE key = 'schema_version'").Scan(&version)
	if err == sql.ErrNoRows {
		return "0", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query schema version: %w", err)
	}
	return version, nil
}

// UpdateSchemaVersion sets the schema version in schema_metadata.
func UpdateSchemaVersion(db *sql.DB, version string) error {
	_, err := db.Exec(`
		INSERT INTO schema_metadata (key, value) VALUES ('schema_version', ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, version)
	if err != nil {
		return fmt.Errorf("failed to update schema version: %w", err)
	}
	return nil
}
