// Package tagbox is a personal/small-team document library: it ingests
// files, extracts bibliographic metadata, stores each at a deterministic
// path, and makes the library searchable through a typed query DSL. The
// internal components compose behind a single Library value threaded
// through every operation, rather than reading from process-wide globals.
package tagbox

import (
	"context"
	"log"
	"path/filepath"
	"sync"

	"github.com/tagbox/tagbox/internal/catalog"
	"github.com/tagbox/tagbox/internal/config"
	"github.com/tagbox/tagbox/internal/editor"
	"github.com/tagbox/tagbox/internal/fts"
	"github.com/tagbox/tagbox/internal/importer"
	"github.com/tagbox/tagbox/internal/metaextract"
	"github.com/tagbox/tagbox/internal/search"
	"github.com/tagbox/tagbox/internal/tberrors"
)

// Re-exported types so callers never need to import internal/* directly.
type (
	FileEntry       = catalog.FileEntry
	NewFileEntry    = catalog.NewFileEntry
	FilePatch       = catalog.FilePatch
	Author          = catalog.Author
	Tag             = catalog.Tag
	FileLink        = catalog.FileLink
	RelationType    = catalog.RelationType
	ImportMetadata  = metaextract.ImportMetadata
	ImportOptions   = importer.Options
	ImportResult    = importer.Result
	SearchOptions   = search.Options
	SearchResult    = search.Result
	RebuildResult   = editor.RebuildResult
	RebuildProgress = editor.Progress
	Config          = config.Config
	Error           = tberrors.Error
)

var (
	RelationReferences  = catalog.RelationReferences
	RelationDerivedFrom = catalog.RelationDerivedFrom
	RelationRelates     = catalog.RelationRelates
	RelationDepends     = catalog.RelationDepends
)

// CustomRelation builds an open Custom(name) relation kind.
func CustomRelation(name string) RelationType { return catalog.CustomRelation(name) }

// ParseRelationType is total: unrecognized strings become Custom.
func ParseRelationType(s string) RelationType { return catalog.ParseRelationType(s) }

// LoadConfig reads and validates the TOML configuration at path, falling
// back to defaults for any key the file omits.
func LoadConfig(path string) (*Config, error) {
	return config.LoadConfig(path)
}

// Library binds every component to one opened catalog + configuration, and
// is the handle every public operation below hangs off of.
type Library struct {
	cfg *config.Config
	cat *catalog.Catalog

	importer *importer.Importer
	editor   *editor.Editor
	searcher *search.Searcher
}

// InitDatabase opens (creating if necessary) the catalog database named by
// cfg.Database.Path, applying the configured journal/sync pragmas, and
// returns a Library ready for every other operation.
func InitDatabase(cfg *Config) (*Library, error) {
	tokenizer := fts.NewTokenizer(cfg.Search.FTSLanguage, logTokenizerFallback)

	cat, err := catalog.Open(cfg.Database, cfg.Search.FTSLanguage, tokenizer)
	if err != nil {
		return nil, err
	}

	return &Library{
		cfg:      cfg,
		cat:      cat,
		importer: importer.New(cat, cfg),
		editor:   editor.New(cat, cfg),
		searcher: search.New(cat, cfg.Search.EnableFTS),
	}, nil
}

// Close releases the underlying connection pool.
func (l *Library) Close() error { return l.cat.Close() }

// ExtractMetainfo runs MetaExtractor against path without importing
// anything.
func ExtractMetainfo(path string, cfg *Config) (*ImportMetadata, error) {
	return metaextract.Extract(path, cfg.Import.Metadata)
}

// ImportFile runs the full import sequence for one file. overrides, if
// non-nil, take precedence over every extracted field.
func (l *Library) ImportFile(ctx context.Context, path string, overrides *ImportMetadata, opts ImportOptions) (*FileEntry, error) {
	return l.importer.ImportFile(ctx, path, overrides, opts)
}

// ImportFiles batch-imports paths with bounded concurrency; per-file
// failures do not abort the batch.
func (l *Library) ImportFiles(ctx context.Context, paths []string, opts ImportOptions) []ImportResult {
	return l.importer.ImportFiles(ctx, paths, opts)
}

// Search parses and runs a DSL query with default pagination.
func (l *Library) Search(ctx context.Context, dsl string) (*SearchResult, error) {
	return l.searcher.Search(ctx, dsl, search.Options{Limit: l.cfg.Search.DefaultLimit})
}

// SearchAdvanced runs a DSL query with explicit pagination/sort options.
func (l *Library) SearchAdvanced(ctx context.Context, dsl string, opts SearchOptions) (*SearchResult, error) {
	if opts.Limit <= 0 {
		opts.Limit = l.cfg.Search.DefaultLimit
	}
	return l.searcher.Search(ctx, dsl, opts)
}

// FuzzySearch runs relaxed, prefix-plus-trigram-style matching over free
// text.
func (l *Library) FuzzySearch(ctx context.Context, text string, opts SearchOptions) (*SearchResult, error) {
	if opts.Limit <= 0 {
		opts.Limit = l.cfg.Search.DefaultLimit
	}
	return l.searcher.FuzzySearch(ctx, text, opts)
}

// RebuildSearchIndex truncates and re-streams the FTS index from every
// non-deleted file.
func (l *Library) RebuildSearchIndex(ctx context.Context) error {
	ids, err := l.cat.ListLiveFileIDs()
	if err != nil {
		return err
	}
	return l.cat.FTS().Rebuild(ctx, func(yield func(fts.Document) error) error {
		for _, id := range ids {
			entry, err := l.cat.GetFile(id)
			if err != nil {
				return err
			}
			doc := fts.Document{
				FileID:   entry.ID,
				Title:    entry.Title,
				Authors:  joinNonEmpty(entry.Authors),
				Tags:     joinNonEmpty(entry.Tags),
				Summary:  entry.Summary,
				Category: joinNonEmpty([]string{entry.Category1, entry.Category2, entry.Category3}),
			}
			if err := yield(doc); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetFile hydrates a single file entry by id.
func (l *Library) GetFile(id string) (*FileEntry, error) {
	return l.cat.GetFile(id)
}

// GetFilePath returns the absolute on-disk path of id's current file.
func (l *Library) GetFilePath(id string) (string, error) {
	entry, err := l.cat.GetFile(id)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(joinStoragePath(l.cfg.Import.Paths.StorageDir, entry.RelativePath))
	if err != nil {
		return "", tberrors.NewIO(err)
	}
	return abs, nil
}

// EditFile applies a sparse patch, relocating the file on disk if any
// path-defining field changed.
func (l *Library) EditFile(id string, patch FilePatch) (*FileEntry, error) {
	return l.editor.UpdateFile(id, patch)
}

// DeleteFile soft-deletes id: the row stays intact but is_deleted flips to
// true and its FTS document is removed. The on-disk file is left in place.
func (l *Library) DeleteFile(id string) error {
	return l.cat.SoftDelete(id)
}

// PurgeFile hard-deletes id: the file row, its FTS document, and any
// FileLink edges touching it are removed outright. This is a separate
// admin path, never invoked implicitly by any other operation. The
// on-disk file is left in place.
func (l *Library) PurgeFile(id string) error {
	return l.cat.HardDelete(id)
}

// CheckFilePath reports the expected relative path for id iff it differs
// from the current one.
func (l *Library) CheckFilePath(id string) (expected string, ok bool, err error) {
	return l.editor.CheckFilePath(id)
}

// RebuildFilePath moves id's on-disk file to its expected path if it has
// drifted; idempotent.
func (l *Library) RebuildFilePath(id string) (moved bool, err error) {
	return l.editor.RebuildFilePath(id)
}

// RebuildAllFiles scans every non-deleted file and applies (or, if
// dryRun, only reports) the moves needed to bring it back in line with the
// configured templates.
func (l *Library) RebuildAllFiles(ctx context.Context, dryRun bool, onProgress RebuildProgress) ([]RebuildResult, error) {
	return l.editor.RebuildAllFiles(ctx, dryRun, onProgress)
}

// LinkFiles upserts an undirected edge between a and b.
func (l *Library) LinkFiles(a, b string, relation RelationType) error {
	return l.cat.Link(a, b, relation)
}

// UnlinkFiles removes the edge between a and b.
func (l *Library) UnlinkFiles(a, b string) error {
	return l.cat.Unlink(a, b)
}

// LinksForFile lists every link touching id.
func (l *Library) LinksForFile(id string) ([]FileLink, error) {
	return l.cat.LinksForFile(id)
}

// CreateAuthor creates an Author row explicitly.
func (l *Library) CreateAuthor(name string, aliases []string) (*Author, error) {
	return l.cat.CreateAuthor(name, aliases)
}

// GetAuthor hydrates a single Author by id.
func (l *Library) GetAuthor(id string) (*Author, error) {
	return l.cat.GetAuthor(id)
}

// MergeAuthors rewrites every File<->Author edge from "from" to "to" and
// deletes "from".
func (l *Library) MergeAuthors(from, to string) error {
	return l.cat.MergeAuthors(from, to)
}

// Stats reports coarse catalog row counts and the schema version.
func (l *Library) Stats() (catalog.DBStats, error) {
	return l.cat.Stats()
}

func joinNonEmpty(values []string) string {
	out := ""
	for _, v := range values {
		if v == "" {
			continue
		}
		if out != "" {
			out += " "
		}
		out += v
	}
	return out
}

func joinStoragePath(storageDir, relativePath string) string {
	if storageDir == "" {
		return relativePath
	}
	return filepath.Join(storageDir, relativePath)
}

// tokenizerFallbackOnce guards logTokenizerFallback so a custom tokenizer
// that fails to load is only ever logged about once per process.
var tokenizerFallbackOnce sync.Once

// logTokenizerFallback is the one place in the whole module that imports
// log: core packages stay silent and return errors, and this edge logs a
// process-lifetime-once notice when a configured tokenizer degrades to
// the built-in one.
func logTokenizerFallback(reason string) {
	tokenizerFallbackOnce.Do(func() {
		log.Printf("tagbox: falling back to built-in FTS tokenizer: %s", reason)
	})
}
