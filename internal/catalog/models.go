package catalog

import "time"

// FileEntry is the central catalog record. JSON field order matches the
// flattened record shape front-ends export as CSV, so they can reproduce
// that column order without re-deriving it.
type FileEntry struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Authors          []string   `json:"authors"`
	Year             *int       `json:"year,omitempty"`
	Publisher        string     `json:"publisher,omitempty"`
	Source           string     `json:"source,omitempty"`
	Category1        string     `json:"category1"`
	Category2        string     `json:"category2,omitempty"`
	Category3        string     `json:"category3,omitempty"`
	Tags             []string   `json:"tags"`
	RelativePath     string     `json:"relative_path"`
	OriginalFilename string     `json:"original_filename"`
	InitialHash      string     `json:"initial_hash"`
	CurrentHash      string     `json:"current_hash,omitempty"`
	Summary          string     `json:"summary,omitempty"`
	OriginalPath     string     `json:"original_path,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	LastAccessed     *time.Time `json:"last_accessed,omitempty"`
	IsDeleted        bool       `json:"is_deleted"`
	FileMetadata     string     `json:"file_metadata,omitempty"` // opaque JSON blob of raw extracted fields
	TypeMetadata     string     `json:"type_metadata,omitempty"` // opaque JSON blob, e.g. PDF page count
}

// NewFileEntry fields not yet known at import time (ids, timestamps) are
// filled in by InsertFile; callers populate the rest.
type NewFileEntry struct {
	Title            string
	Authors          []string
	Year             *int
	Publisher        string
	Source           string
	Category1        string
	Category2        string
	Category3        string
	Tags             []string
	Summary          string
	OriginalFilename string
	RelativePath     string
	InitialHash      string
	OriginalPath     string
	FileMetadata     string
	TypeMetadata     string
}

// FilePatch is a sparse update: nil fields are left untouched. A pointer to
// an empty-string/zero-value is a legitimate "clear this field" request.
type FilePatch struct {
	Title      *string
	Authors    *[]string
	Year       **int // outer pointer: "set"; inner pointer nil: "clear"
	Publisher  *string
	Source     *string
	Category1  *string
	Category2  *string
	Category3  *string
	Tags       *[]string
	Summary    *string
}

// PathDefiningFieldsChanged reports whether patch touches any field referenced
// by rename_template or classify_template — Editor uses this to
// decide whether rebuild_file_path is necessary after an update.
func (p FilePatch) PathDefiningFieldsChanged() bool {
	return p.Title != nil || p.Authors != nil || p.Year != nil ||
		p.Publisher != nil || p.Category1 != nil || p.Category2 != nil || p.Category3 != nil
}

// Author is a referenced-by-id person/organization.
type Author struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Aliases []string `json:"aliases"`
}

// Tag is a unique (case-insensitively), referenced-by-id label.
type Tag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// RelationType is a tagged union: a closed set of well-known kinds
// plus an open Custom(string) variant. Parsing is total — any unrecognized
// string becomes Custom, never an error.
type RelationType struct {
	kind   string
	custom string
}

var (
	RelationReferences  = RelationType{kind: "references"}
	RelationDerivedFrom = RelationType{kind: "derived_from"}
	RelationRelates     = RelationType{kind: "relates"}
	RelationDepends     = RelationType{kind: "depends"}
)

// CustomRelation builds the open Custom(string) variant.
func CustomRelation(name string) RelationType { return RelationType{kind: "custom", custom: name} }

// ParseRelationType is total: unknown strings become Custom(s).
func ParseRelationType(s string) RelationType {
	switch s {
	case "references":
		return RelationReferences
	case "derived_from":
		return RelationDerivedFrom
	case "relates":
		return RelationRelates
	case "depends":
		return RelationDepends
	case "":
		return RelationType{}
	default:
		return CustomRelation(s)
	}
}

// String renders the relation back to its persisted form.
func (r RelationType) String() string {
	if r.kind == "custom" {
		return r.custom
	}
	return r.kind
}

// FileLink is an undirected edge between two distinct files.
type FileLink struct {
	ID        string
	FileIDA   string
	FileIDB   string
	Relation  RelationType
	CreatedAt time.Time
}

// DBStats is a coarse introspection snapshot, rendered by the CLI's
// `db status` command.
type DBStats struct {
	SchemaVersion string
	FileCount     int
	DeletedCount  int
	AuthorCount   int
	TagCount      int
	LinkCount     int
}
