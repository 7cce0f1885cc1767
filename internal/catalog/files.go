package catalog

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/mattn/go-sqlite3"

	"github.com/tagbox/tagbox/internal/fts"
	"github.com/tagbox/tagbox/internal/tberrors"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Question)

const timeLayout = time.RFC3339Nano

// InsertFile inserts entry transactionally: the file row, author/tag
// upserts and their edges, and the FTS document all commit together or not
// at all. A live initial_hash collision surfaces DuplicateHash with
// the existing row's id.
func (c *Catalog) InsertFile(entry NewFileEntry) (string, error) {
	if strings.TrimSpace(entry.Title) == "" {
		return "", tberrors.NewMissingField("title")
	}
	if strings.TrimSpace(entry.Category1) == "" {
		return "", tberrors.NewMissingField("category1")
	}

	if existingID, ok, err := c.findLiveByHash(entry.InitialHash); err != nil {
		return "", err
	} else if ok {
		return "", tberrors.NewDuplicateHash(entry.InitialHash, existingID)
	}

	tx, err := c.db.Begin()
	if err != nil {
		return "", tberrors.NewDatabase(err)
	}
	defer tx.Rollback()

	id := newID()
	now := time.Now().UTC()

	_, err = tx.Exec(
		`INSERT INTO files (
			id, title, year, publisher, source, category1, category2, category3,
			summary, original_filename, relative_path, initial_hash, current_hash,
			original_path, created_at, updated_at, last_accessed, is_deleted,
			file_metadata, type_metadata
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL, 0, ?, ?)`,
		id, entry.Title, entry.Year, nullIfEmpty(entry.Publisher), nullIfEmpty(entry.Source),
		entry.Category1, nullIfEmpty(entry.Category2), nullIfEmpty(entry.Category3),
		nullIfEmpty(entry.Summary), entry.OriginalFilename, entry.RelativePath,
		entry.InitialHash, entry.InitialHash,
		nullIfEmpty(entry.OriginalPath), now.Format(timeLayout), now.Format(timeLayout),
		nullIfEmpty(entry.FileMetadata), nullIfEmpty(entry.TypeMetadata),
	)
	if err != nil {
		if isUniqueConstraintErr(err) {
			return "", tberrors.NewDuplicateHash(entry.InitialHash, "")
		}
		return "", tberrors.NewDatabase(err)
	}

	authorIDs, err := upsertAuthors(tx, entry.Authors)
	if err != nil {
		return "", err
	}
	if err := replaceFileAuthors(tx, id, authorIDs); err != nil {
		return "", err
	}

	tagIDs, err := upsertTags(tx, entry.Tags)
	if err != nil {
		return "", err
	}
	if err := replaceFileTags(tx, id, tagIDs); err != nil {
		return "", err
	}

	if err := c.fts.Upsert(tx, fts.Document{
		FileID:   id,
		Title:    entry.Title,
		Authors:  strings.Join(entry.Authors, " "),
		Tags:     strings.Join(entry.Tags, " "),
		Summary:  entry.Summary,
		Category: strings.Join(nonEmpty(entry.Category1, entry.Category2, entry.Category3), " "),
	}); err != nil {
		return "", tberrors.NewDatabase(err)
	}

	if err := tx.Commit(); err != nil {
		return "", tberrors.NewDatabase(err)
	}

	return id, nil
}

// GetFile hydrates the full entry, including authors in their declared
// order and tags. Tags come back sorted by name; their declared order is
// not stored.
func (c *Catalog) GetFile(id string) (*FileEntry, error) {
	return c.getFile(c.db, id)
}

type queryer interface {
	QueryRow(query string, args ...interface{}) *sql.Row
	Query(query string, args ...interface{}) (*sql.Rows, error)
}

func (c *Catalog) getFile(q queryer, id string) (*FileEntry, error) {
	row := q.QueryRow(`
		SELECT id, title, year, publisher, source, category1, category2, category3,
		       summary, original_filename, relative_path, initial_hash, current_hash,
		       original_path, created_at, updated_at, last_accessed, is_deleted,
		       file_metadata, type_metadata
		FROM files WHERE id = ?`, id)

	entry, err := scanFileEntry(row)
	if err == sql.ErrNoRows {
		return nil, tberrors.NewInvalidFileID(id)
	}
	if err != nil {
		return nil, tberrors.NewDatabase(err)
	}

	entry.Authors, err = c.authorsForFile(q, id)
	if err != nil {
		return nil, err
	}
	entry.Tags, err = c.tagsForFile(q, id)
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func scanFileEntry(row *sql.Row) (*FileEntry, error) {
	var (
		e                                       FileEntry
		year                                    sql.NullInt64
		publisher, source, category2, category3 sql.NullString
		summary, currentHash, originalPath      sql.NullString
		fileMetadata, typeMetadata              sql.NullString
		createdAt, updatedAt                    string
		lastAccessed                            sql.NullString
		isDeleted                               int
	)
	err := row.Scan(
		&e.ID, &e.Title, &year, &publisher, &source, &e.Category1, &category2, &category3,
		&summary, &e.OriginalFilename, &e.RelativePath, &e.InitialHash, &currentHash,
		&originalPath, &createdAt, &updatedAt, &lastAccessed, &isDeleted,
		&fileMetadata, &typeMetadata,
	)
	if err != nil {
		return nil, err
	}

	if year.Valid {
		y := int(year.Int64)
		e.Year = &y
	}
	e.Publisher = publisher.String
	e.Source = source.String
	e.Category2 = category2.String
	e.Category3 = category3.String
	e.Summary = summary.String
	e.CurrentHash = currentHash.String
	e.OriginalPath = originalPath.String
	e.FileMetadata = fileMetadata.String
	e.TypeMetadata = typeMetadata.String
	e.IsDeleted = isDeleted != 0

	e.CreatedAt, err = time.Parse(timeLayout, createdAt)
	if err != nil {
		return nil, err
	}
	e.UpdatedAt, err = time.Parse(timeLayout, updatedAt)
	if err != nil {
		return nil, err
	}
	if lastAccessed.Valid {
		t, err := time.Parse(timeLayout, lastAccessed.String)
		if err != nil {
			return nil, err
		}
		e.LastAccessed = &t
	}

	return &e, nil
}

func (c *Catalog) authorsForFile(q queryer, fileID string) ([]string, error) {
	rows, err := q.Query(`
		SELECT a.name FROM authors a
		JOIN file_authors fa ON fa.author_id = a.id
		WHERE fa.file_id = ? ORDER BY fa.position ASC`, fileID)
	if err != nil {
		return nil, tberrors.NewDatabase(err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, tberrors.NewDatabase(err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (c *Catalog) tagsForFile(q queryer, fileID string) ([]string, error) {
	rows, err := q.Query(`
		SELECT t.name FROM tags t
		JOIN file_tags ft ON ft.tag_id = t.id
		WHERE ft.file_id = ? ORDER BY t.name ASC`, fileID)
	if err != nil {
		return nil, tberrors.NewDatabase(err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, tberrors.NewDatabase(err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// UpdateFile applies patch's sparse set of fields, bumps updated_at, and
// keeps the FTS document in sync. The returned bool reports whether the
// patch set a path-defining field (whether or not its value differs), so
// Editor knows to call rebuild_file_path.
func (c *Catalog) UpdateFile(id string, patch FilePatch) (pathMayHaveChanged bool, err error) {
	tx, err := c.db.Begin()
	if err != nil {
		return false, tberrors.NewDatabase(err)
	}
	defer tx.Rollback()

	entry, err := c.getFile(tx, id)
	if err != nil {
		return false, err
	}
	if entry.IsDeleted {
		return false, tberrors.NewInvalidFileID(id)
	}

	update := psql.Update("files").Set("updated_at", time.Now().UTC().Format(timeLayout))

	if patch.Title != nil {
		entry.Title = *patch.Title
		update = update.Set("title", entry.Title)
	}
	if patch.Year != nil {
		entry.Year = *patch.Year
		update = update.Set("year", entry.Year)
	}
	if patch.Publisher != nil {
		entry.Publisher = *patch.Publisher
		update = update.Set("publisher", nullIfEmpty(entry.Publisher))
	}
	if patch.Source != nil {
		entry.Source = *patch.Source
		update = update.Set("source", nullIfEmpty(entry.Source))
	}
	if patch.Category1 != nil {
		entry.Category1 = *patch.Category1
		update = update.Set("category1", entry.Category1)
	}
	if patch.Category2 != nil {
		entry.Category2 = *patch.Category2
		update = update.Set("category2", nullIfEmpty(entry.Category2))
	}
	if patch.Category3 != nil {
		entry.Category3 = *patch.Category3
		update = update.Set("category3", nullIfEmpty(entry.Category3))
	}
	if patch.Summary != nil {
		entry.Summary = *patch.Summary
		update = update.Set("summary", nullIfEmpty(entry.Summary))
	}

	sqlStr, args, err := update.Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return false, tberrors.NewDatabase(err)
	}
	if _, err := tx.Exec(sqlStr, args...); err != nil {
		return false, tberrors.NewDatabase(err)
	}

	if patch.Authors != nil {
		entry.Authors = *patch.Authors
		authorIDs, err := upsertAuthors(tx, entry.Authors)
		if err != nil {
			return false, err
		}
		if err := replaceFileAuthors(tx, id, authorIDs); err != nil {
			return false, err
		}
	}
	if patch.Tags != nil {
		entry.Tags = *patch.Tags
		tagIDs, err := upsertTags(tx, entry.Tags)
		if err != nil {
			return false, err
		}
		if err := replaceFileTags(tx, id, tagIDs); err != nil {
			return false, err
		}
	}

	if err := c.fts.Upsert(tx, fts.Document{
		FileID:   id,
		Title:    entry.Title,
		Authors:  strings.Join(entry.Authors, " "),
		Tags:     strings.Join(entry.Tags, " "),
		Summary:  entry.Summary,
		Category: strings.Join(nonEmpty(entry.Category1, entry.Category2, entry.Category3), " "),
	}); err != nil {
		return false, tberrors.NewDatabase(err)
	}

	if err := tx.Commit(); err != nil {
		return false, tberrors.NewDatabase(err)
	}

	return patch.PathDefiningFieldsChanged(), nil
}

// UpdateRelativePath is called by Editor after physically moving a file;
// it does not touch updated_at since it's a consequence of an edit already
// accounted for, not a new edit.
func (c *Catalog) UpdateRelativePath(id, relativePath string) error {
	res, err := c.db.Exec(`UPDATE files SET relative_path = ? WHERE id = ? AND is_deleted = 0`, relativePath, id)
	if err != nil {
		if isUniqueConstraintErr(err) {
			return tberrors.NewPathGeneration(fmt.Sprintf("relative_path %q already occupied", relativePath))
		}
		return tberrors.NewDatabase(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return tberrors.NewInvalidFileID(id)
	}
	return nil
}

// SoftDelete marks the file deleted and removes its FTS document, leaving
// rows intact.
func (c *Catalog) SoftDelete(id string) error {
	tx, err := c.db.Begin()
	if err != nil {
		return tberrors.NewDatabase(err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`UPDATE files SET is_deleted = 1, updated_at = ? WHERE id = ? AND is_deleted = 0`,
		time.Now().UTC().Format(timeLayout), id)
	if err != nil {
		return tberrors.NewDatabase(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return tberrors.NewInvalidFileID(id)
	}

	if err := c.fts.Delete(tx, id); err != nil {
		return tberrors.NewDatabase(err)
	}

	if err := tx.Commit(); err != nil {
		return tberrors.NewDatabase(err)
	}
	return nil
}

// HardDelete removes the file row, its FTS document, and any FileLink
// edges. Separate admin path, never invoked implicitly.
func (c *Catalog) HardDelete(id string) error {
	tx, err := c.db.Begin()
	if err != nil {
		return tberrors.NewDatabase(err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM file_links WHERE file_id_a = ? OR file_id_b = ?`, id, id); err != nil {
		return tberrors.NewDatabase(err)
	}
	if _, err := tx.Exec(`DELETE FROM file_authors WHERE file_id = ?`, id); err != nil {
		return tberrors.NewDatabase(err)
	}
	if _, err := tx.Exec(`DELETE FROM file_tags WHERE file_id = ?`, id); err != nil {
		return tberrors.NewDatabase(err)
	}
	if err := c.fts.Delete(tx, id); err != nil {
		return tberrors.NewDatabase(err)
	}

	res, err := tx.Exec(`DELETE FROM files WHERE id = ?`, id)
	if err != nil {
		return tberrors.NewDatabase(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return tberrors.NewInvalidFileID(id)
	}

	if err := tx.Commit(); err != nil {
		return tberrors.NewDatabase(err)
	}
	return nil
}

// FindByHash reports whether a non-deleted file with the given
// initial_hash exists, and its id if so. Importer uses this for the
// dedup check before placing any bytes on disk.
func (c *Catalog) FindByHash(hash string) (id string, ok bool, err error) {
	return c.findLiveByHash(hash)
}

// ListLiveFileIDs returns the ids of every non-deleted file, ordered by
// creation time. Editor's rebuild_all_files iterates this set.
func (c *Catalog) ListLiveFileIDs() ([]string, error) {
	rows, err := c.db.Query(`SELECT id FROM files WHERE is_deleted = 0 ORDER BY created_at ASC`)
	if err != nil {
		return nil, tberrors.NewDatabase(err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, tberrors.NewDatabase(err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (c *Catalog) findLiveByHash(hash string) (id string, ok bool, err error) {
	err = c.db.QueryRow(`SELECT id FROM files WHERE initial_hash = ? AND is_deleted = 0`, hash).Scan(&id)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, tberrors.NewDatabase(err)
	}
	return id, true, nil
}

func isUniqueConstraintErr(err error) bool {
	sqliteErr, ok := err.(sqlite3.Error)
	return ok && sqliteErr.Code == sqlite3.ErrConstraint
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

