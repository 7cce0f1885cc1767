package catalog

import (
	"database/sql"
	"time"

	"github.com/tagbox/tagbox/internal/tberrors"
)

// normalizePair orders (a,b) so the unordered-pair uniqueness index in
// schema.go (UNIQUE(file_id_a, file_id_b)) actually enforces "one link per
// unordered pair" rather than allowing both (a,b) and (b,a).
func normalizePair(a, b string) (string, string) {
	if a <= b {
		return a, b
	}
	return b, a
}

// Link upserts a file_links row between a and b. Self-links are forbidden;
// re-linking an existing pair updates its relation rather than erroring.
func (c *Catalog) Link(a, b string, relation RelationType) error {
	if a == b {
		return tberrors.NewInvalidFileID(a)
	}
	lo, hi := normalizePair(a, b)

	tx, err := c.db.Begin()
	if err != nil {
		return tberrors.NewDatabase(err)
	}
	defer tx.Rollback()

	if err := verifyFileExists(tx, lo); err != nil {
		return err
	}
	if err := verifyFileExists(tx, hi); err != nil {
		return err
	}

	var existingID string
	err = tx.QueryRow(`SELECT id FROM file_links WHERE file_id_a = ? AND file_id_b = ?`, lo, hi).Scan(&existingID)
	switch {
	case err == sql.ErrNoRows:
		if _, err := tx.Exec(
			`INSERT INTO file_links (id, file_id_a, file_id_b, relation, created_at) VALUES (?, ?, ?, ?, ?)`,
			newID(), lo, hi, relation.String(), time.Now().UTC().Format(timeLayout),
		); err != nil {
			return tberrors.NewDatabase(err)
		}
	case err == nil:
		if _, err := tx.Exec(`UPDATE file_links SET relation = ? WHERE id = ?`, relation.String(), existingID); err != nil {
			return tberrors.NewDatabase(err)
		}
	default:
		return tberrors.NewDatabase(err)
	}

	if err := tx.Commit(); err != nil {
		return tberrors.NewDatabase(err)
	}
	return nil
}

// Unlink removes the edge between a and b. A missing edge is LinkNotFound.
func (c *Catalog) Unlink(a, b string) error {
	lo, hi := normalizePair(a, b)
	res, err := c.db.Exec(`DELETE FROM file_links WHERE file_id_a = ? AND file_id_b = ?`, lo, hi)
	if err != nil {
		return tberrors.NewDatabase(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return tberrors.NewLinkNotFound(a, b)
	}
	return nil
}

// LinksForFile returns every link touching id, in either position.
func (c *Catalog) LinksForFile(id string) ([]FileLink, error) {
	rows, err := c.db.Query(
		`SELECT id, file_id_a, file_id_b, relation, created_at FROM file_links
		 WHERE file_id_a = ? OR file_id_b = ?`, id, id)
	if err != nil {
		return nil, tberrors.NewDatabase(err)
	}
	defer rows.Close()

	var links []FileLink
	for rows.Next() {
		var (
			link      FileLink
			relation  string
			createdAt string
		)
		if err := rows.Scan(&link.ID, &link.FileIDA, &link.FileIDB, &relation, &createdAt); err != nil {
			return nil, tberrors.NewDatabase(err)
		}
		link.Relation = ParseRelationType(relation)
		link.CreatedAt, err = time.Parse(timeLayout, createdAt)
		if err != nil {
			return nil, tberrors.NewDatabase(err)
		}
		links = append(links, link)
	}
	return links, rows.Err()
}

func verifyFileExists(tx *sql.Tx, id string) error {
	var exists int
	err := tx.QueryRow(`SELECT COUNT(*) FROM files WHERE id = ? AND is_deleted = 0`, id).Scan(&exists)
	if err != nil {
		return tberrors.NewDatabase(err)
	}
	if exists == 0 {
		return tberrors.NewInvalidFileID(id)
	}
	return nil
}
