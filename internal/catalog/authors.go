package catalog

import (
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/tagbox/tagbox/internal/tberrors"
)

// upsertAuthors finds-or-creates an Author row per name (lazy creation) and returns their ids in the same order as names.
func upsertAuthors(tx *sql.Tx, names []string) ([]string, error) {
	ids := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		id, err := upsertAuthor(tx, name)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func upsertAuthor(tx *sql.Tx, name string) (string, error) {
	var id string
	err := tx.QueryRow(`SELECT id FROM authors WHERE name = ?`, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return "", tberrors.NewDatabase(err)
	}

	id = newID()
	if _, err := tx.Exec(`INSERT INTO authors (id, name, aliases) VALUES (?, ?, '[]')`, id, name); err != nil {
		return "", tberrors.NewDatabase(err)
	}
	return id, nil
}

func replaceFileAuthors(tx *sql.Tx, fileID string, authorIDs []string) error {
	if _, err := tx.Exec(`DELETE FROM file_authors WHERE file_id = ?`, fileID); err != nil {
		return tberrors.NewDatabase(err)
	}
	for i, authorID := range authorIDs {
		if _, err := tx.Exec(
			`INSERT INTO file_authors (file_id, author_id, position) VALUES (?, ?, ?)`,
			fileID, authorID, i,
		); err != nil {
			return tberrors.NewDatabase(err)
		}
	}
	return nil
}

func upsertTags(tx *sql.Tx, names []string) ([]string, error) {
	ids := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || seen[strings.ToLower(name)] {
			continue
		}
		seen[strings.ToLower(name)] = true

		id, err := upsertTag(tx, name)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func upsertTag(tx *sql.Tx, name string) (string, error) {
	var id string
	err := tx.QueryRow(`SELECT id FROM tags WHERE name = ? COLLATE NOCASE`, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return "", tberrors.NewDatabase(err)
	}

	id = newID()
	if _, err := tx.Exec(`INSERT INTO tags (id, name) VALUES (?, ?)`, id, name); err != nil {
		return "", tberrors.NewDatabase(err)
	}
	return id, nil
}

func replaceFileTags(tx *sql.Tx, fileID string, tagIDs []string) error {
	if _, err := tx.Exec(`DELETE FROM file_tags WHERE file_id = ?`, fileID); err != nil {
		return tberrors.NewDatabase(err)
	}
	for _, tagID := range tagIDs {
		if _, err := tx.Exec(`INSERT INTO file_tags (file_id, tag_id) VALUES (?, ?)`, fileID, tagID); err != nil {
			return tberrors.NewDatabase(err)
		}
	}
	return nil
}

// CreateAuthor creates a new Author row explicitly.
func (c *Catalog) CreateAuthor(name string, aliases []string) (*Author, error) {
	if strings.TrimSpace(name) == "" {
		return nil, tberrors.NewMissingField("name")
	}
	aliasJSON, err := json.Marshal(aliases)
	if err != nil {
		return nil, tberrors.Wrap(tberrors.Serialization, err)
	}

	id := newID()
	if _, err := c.db.Exec(`INSERT INTO authors (id, name, aliases) VALUES (?, ?, ?)`, id, name, string(aliasJSON)); err != nil {
		return nil, tberrors.NewDatabase(err)
	}
	return &Author{ID: id, Name: name, Aliases: aliases}, nil
}

// GetAuthor hydrates a single Author by id.
func (c *Catalog) GetAuthor(id string) (*Author, error) {
	var name, aliasJSON string
	err := c.db.QueryRow(`SELECT name, aliases FROM authors WHERE id = ?`, id).Scan(&name, &aliasJSON)
	if err == sql.ErrNoRows {
		return nil, tberrors.NewInvalidFileID(id)
	}
	if err != nil {
		return nil, tberrors.NewDatabase(err)
	}

	var aliases []string
	if err := json.Unmarshal([]byte(aliasJSON), &aliases); err != nil {
		return nil, tberrors.Wrap(tberrors.Serialization, err)
	}
	return &Author{ID: id, Name: name, Aliases: aliases}, nil
}

// MergeAuthors rewrites every File↔Author edge from "from" to "to" and
// deletes "from".
func (c *Catalog) MergeAuthors(from, to string) error {
	if from == to {
		return tberrors.NewConfig("cannot merge an author into itself")
	}

	tx, err := c.db.Begin()
	if err != nil {
		return tberrors.NewDatabase(err)
	}
	defer tx.Rollback()

	if _, err := c.GetAuthorTx(tx, from); err != nil {
		return err
	}
	if _, err := c.GetAuthorTx(tx, to); err != nil {
		return err
	}

	// Files already linked to `to` would collide on (file_id, author_id);
	// drop those edges for `from` rather than erroring, since the
	// post-merge graph should have at most one edge per (file, author).
	if _, err := tx.Exec(`
		DELETE FROM file_authors
		WHERE author_id = ? AND file_id IN (SELECT file_id FROM file_authors WHERE author_id = ?)
	`, from, to); err != nil {
		return tberrors.NewDatabase(err)
	}

	if _, err := tx.Exec(`UPDATE file_authors SET author_id = ? WHERE author_id = ?`, to, from); err != nil {
		return tberrors.NewDatabase(err)
	}

	if _, err := tx.Exec(`DELETE FROM authors WHERE id = ?`, from); err != nil {
		return tberrors.NewDatabase(err)
	}

	if err := tx.Commit(); err != nil {
		return tberrors.NewDatabase(err)
	}
	return nil
}

// GetAuthorTx is GetAuthor scoped to an in-flight transaction, exported for
// Editor/Importer callers that need it inside their own transaction.
func (c *Catalog) GetAuthorTx(tx *sql.Tx, id string) (*Author, error) {
	var name, aliasJSON string
	err := tx.QueryRow(`SELECT name, aliases FROM authors WHERE id = ?`, id).Scan(&name, &aliasJSON)
	if err == sql.ErrNoRows {
		return nil, tberrors.NewInvalidFileID(id)
	}
	if err != nil {
		return nil, tberrors.NewDatabase(err)
	}
	var aliases []string
	if err := json.Unmarshal([]byte(aliasJSON), &aliases); err != nil {
		return nil, tberrors.Wrap(tberrors.Serialization, err)
	}
	return &Author{ID: id, Name: name, Aliases: aliases}, nil
}
