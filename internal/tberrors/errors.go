// Package tberrors defines the error taxonomy shared by every tagbox
// component. Callers distinguish error cases with errors.As against *Error,
// then switch on Kind — no component relies on string-matching an error's
// Error() text for control flow.
package tberrors

import "fmt"

// Kind identifies one of the error cases a tagbox operation can fail with.
type Kind int

const (
	Database Kind = iota
	Config
	IO
	Serialization
	TomlParse
	FileNotFound
	DuplicateHash
	InvalidQuery
	MetaInfoExtraction
	InvalidFileID
	PathGeneration
	LinkNotFound
	MissingField
)

func (k Kind) String() string {
	switch k {
	case Database:
		return "database"
	case Config:
		return "config"
	case IO:
		return "io"
	case Serialization:
		return "serialization"
	case TomlParse:
		return "toml_parse"
	case FileNotFound:
		return "file_not_found"
	case DuplicateHash:
		return "duplicate_hash"
	case InvalidQuery:
		return "invalid_query"
	case MetaInfoExtraction:
		return "meta_info_extraction"
	case InvalidFileID:
		return "invalid_file_id"
	case PathGeneration:
		return "path_generation"
	case LinkNotFound:
		return "link_not_found"
	case MissingField:
		return "missing_field"
	default:
		return "unknown"
	}
}

// Error is the concrete type behind every error tagbox components return.
// Structured fields carry context so front-ends can render actionable
// messages without parsing Error().
type Error struct {
	Kind Kind

	Path       string // FileNotFound, PathGeneration
	Hash       string // DuplicateHash
	ExistingID string // DuplicateHash, set when the colliding row is known
	Query      string // InvalidQuery
	Reason     string // MetaInfoExtraction, PathGeneration, Config
	ID         string // InvalidFileID
	FileIDA    string // LinkNotFound
	FileIDB    string // LinkNotFound
	Field      string // MissingField

	Err error // wrapped cause, if any
}

func (e *Error) Error() string {
	switch e.Kind {
	case FileNotFound:
		return fmt.Sprintf("file not found: %s", e.Path)
	case DuplicateHash:
		if e.ExistingID != "" {
			return fmt.Sprintf("duplicate hash %s (existing file %s)", e.Hash, e.ExistingID)
		}
		return fmt.Sprintf("duplicate hash %s", e.Hash)
	case InvalidQuery:
		return fmt.Sprintf("invalid query: %s", e.Query)
	case MetaInfoExtraction:
		return fmt.Sprintf("metadata extraction failed: %s", e.Reason)
	case InvalidFileID:
		return fmt.Sprintf("invalid file id: %s", e.ID)
	case PathGeneration:
		return fmt.Sprintf("path generation failed: %s", e.Reason)
	case LinkNotFound:
		return fmt.Sprintf("no link between %s and %s", e.FileIDA, e.FileIDB)
	case MissingField:
		return fmt.Sprintf("missing required field: %s", e.Field)
	case TomlParse:
		if e.Err != nil {
			return fmt.Sprintf("toml parse error: %v", e.Err)
		}
		return "toml parse error"
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s: %v", e.Kind, e.Err)
		}
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is(err, tberrors.New(kind)) match on Kind alone, which
// is convenient for sentinel-style comparisons in tests.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func New(kind Kind) *Error { return &Error{Kind: kind} }

func Wrap(kind Kind, err error) *Error { return &Error{Kind: kind, Err: err} }

func NewFileNotFound(path string) *Error { return &Error{Kind: FileNotFound, Path: path} }

func NewDuplicateHash(hash, existingID string) *Error {
	return &Error{Kind: DuplicateHash, Hash: hash, ExistingID: existingID}
}

func NewInvalidQuery(query string) *Error { return &Error{Kind: InvalidQuery, Query: query} }

func NewMetaInfoExtraction(reason string) *Error {
	return &Error{Kind: MetaInfoExtraction, Reason: reason}
}

func NewInvalidFileID(id string) *Error { return &Error{Kind: InvalidFileID, ID: id} }

func NewPathGeneration(reason string) *Error { return &Error{Kind: PathGeneration, Reason: reason} }

func NewLinkNotFound(a, b string) *Error { return &Error{Kind: LinkNotFound, FileIDA: a, FileIDB: b} }

func NewMissingField(field string) *Error { return &Error{Kind: MissingField, Field: field} }

func NewTomlParse(err error) *Error { return &Error{Kind: TomlParse, Err: err} }

func NewIO(err error) *Error { return &Error{Kind: IO, Err: err} }

func NewDatabase(err error) *Error { return &Error{Kind: Database, Err: err} }

func NewConfig(reason string) *Error { return &Error{Kind: Config, Reason: reason} }
