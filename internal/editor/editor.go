// Package editor is the only non-import writer. It mutates
// catalog entries and relocates files on disk when path-defining fields
// change.
package editor

import (
	"context"
	"os"
	"path/filepath"

	"github.com/tagbox/tagbox/internal/catalog"
	"github.com/tagbox/tagbox/internal/config"
	"github.com/tagbox/tagbox/internal/pathgen"
	"github.com/tagbox/tagbox/internal/tberrors"
)

// Editor composes Catalog, PathGen, and the configured storage layout to
// implement update + relocate semantics.
type Editor struct {
	cat *catalog.Catalog
	cfg *config.Config
}

// New builds an Editor bound to cat and cfg.
func New(cat *catalog.Catalog, cfg *config.Config) *Editor {
	return &Editor{cat: cat, cfg: cfg}
}

// UpdateFile delegates to Catalog.UpdateFile; if the patch touched any
// path-defining field, it also rebuilds the on-disk path.
func (e *Editor) UpdateFile(id string, patch catalog.FilePatch) (*catalog.FileEntry, error) {
	pathMayHaveChanged, err := e.cat.UpdateFile(id, patch)
	if err != nil {
		return nil, err
	}
	if pathMayHaveChanged {
		if _, err := e.RebuildFilePath(id); err != nil {
			return nil, err
		}
	}
	return e.cat.GetFile(id)
}

// expectedRelativePath computes the relative path entry should live at per
// the configured templates, mirroring the rendering Importer performs at
// import time.
func (e *Editor) expectedRelativePath(entry *catalog.FileEntry) (string, error) {
	meta := pathgen.Metadata{
		Title:     entry.Title,
		Authors:   entry.Authors,
		Year:      entry.Year,
		Publisher: entry.Publisher,
		Category1: entry.Category1,
		Category2: entry.Category2,
		Category3: entry.Category3,
	}
	filename, err := pathgen.GenerateFilename(e.cfg.Import.Paths.RenameTemplate, entry.OriginalFilename, meta)
	if err != nil {
		return "", err
	}
	target, err := pathgen.GeneratePath(e.cfg.Import.Paths.ClassifyTemplate, e.cfg.Import.Paths.StorageDir, filename, meta)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(e.cfg.Import.Paths.StorageDir, target)
	if err != nil {
		return "", tberrors.NewPathGeneration(err.Error())
	}
	return rel, nil
}

// CheckFilePath returns the expected relative path for id iff it differs
// from the current one; ok is false when the file is already where it
// should be.
func (e *Editor) CheckFilePath(id string) (expected string, ok bool, err error) {
	entry, err := e.cat.GetFile(id)
	if err != nil {
		return "", false, err
	}
	expected, err = e.expectedRelativePath(entry)
	if err != nil {
		return "", false, err
	}
	if expected == entry.RelativePath {
		return "", false, nil
	}
	return expected, true, nil
}

// RebuildFilePath recomputes id's expected relative path; if it differs
// from the current one, it creates the parent directory, renames the
// on-disk file, prunes now-empty parent directories up to storage_dir, and
// updates files.relative_path. Idempotent: a second call finds nothing to
// move.
func (e *Editor) RebuildFilePath(id string) (moved bool, err error) {
	entry, err := e.cat.GetFile(id)
	if err != nil {
		return false, err
	}

	expectedRel, needsMove, err := e.CheckFilePath(id)
	if err != nil {
		return false, err
	}
	if !needsMove {
		return false, nil
	}

	oldAbs := filepath.Join(e.cfg.Import.Paths.StorageDir, entry.RelativePath)
	newAbs := filepath.Join(e.cfg.Import.Paths.StorageDir, expectedRel)

	if err := os.MkdirAll(filepath.Dir(newAbs), 0o755); err != nil {
		return false, tberrors.NewIO(err)
	}
	// Lock order: move the file on disk before touching the DB row.
	if err := os.Rename(oldAbs, newAbs); err != nil {
		return false, tberrors.NewIO(err)
	}

	if err := e.cat.UpdateRelativePath(id, expectedRel); err != nil {
		// Best-effort rollback of the move so a failed DB write doesn't
		// leave the file somewhere the catalog doesn't know about.
		os.Rename(newAbs, oldAbs)
		return false, err
	}

	pruneEmptyParents(filepath.Dir(oldAbs), e.cfg.Import.Paths.StorageDir)

	return true, nil
}

// pruneEmptyParents removes dir and its ancestors, stopping at (and never
// removing) root, as long as each is empty.
func pruneEmptyParents(dir, root string) {
	root = filepath.Clean(root)
	for dir = filepath.Clean(dir); dir != root && len(dir) > len(root); dir = filepath.Dir(dir) {
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			return
		}
		if err := os.Remove(dir); err != nil {
			return
		}
	}
}

// RebuildResult is one file's outcome from RebuildAllFiles — populated
// identically whether the move was applied or only reported.
type RebuildResult struct {
	ID      string
	OldPath string
	NewPath string
}

// Progress receives (current, total) updates during RebuildAllFiles.
type Progress func(current, total int)

// RebuildAllFiles iterates every non-deleted file, computing which need a
// move. If dryRun, moves are reported but not applied. Progress fires at a
// bounded cadence rather than once per file.
//
// State machine: Idle -> Scanning -> Planning -> (Applying | Reporting) ->
// Idle. Cancellation checked between files leaves the catalog consistent:
// a move either fully completes (file renamed, row updated) or doesn't
// happen at all.
func (e *Editor) RebuildAllFiles(ctx context.Context, dryRun bool, onProgress Progress) ([]RebuildResult, error) {
	ids, err := e.cat.ListLiveFileIDs()
	if err != nil {
		return nil, err
	}

	var results []RebuildResult
	total := len(ids)

	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		entry, err := e.cat.GetFile(id)
		if err != nil {
			return results, err
		}
		expectedRel, needsMove, err := e.CheckFilePath(id)
		if err != nil {
			return results, err
		}
		if needsMove {
			oldAbs := filepath.Join(e.cfg.Import.Paths.StorageDir, entry.RelativePath)
			newAbs := filepath.Join(e.cfg.Import.Paths.StorageDir, expectedRel)

			if !dryRun {
				if _, err := e.RebuildFilePath(id); err != nil {
					return results, err
				}
			}
			results = append(results, RebuildResult{ID: id, OldPath: oldAbs, NewPath: newAbs})
		}

		if onProgress != nil && progressDue(i, total) {
			onProgress(i+1, total)
		}
	}

	return results, nil
}

// progressDue bounds progress callback frequency to roughly every 1% of
// the run (at least every file for small batches), so a large rebuild
// doesn't flood a slow progress sink.
func progressDue(i, total int) bool {
	if total <= 100 {
		return true
	}
	step := total / 100
	return i%step == 0 || i == total-1
}
