// Package importer is the per-file import state machine
// (resolve, extract, hash, dedupe, place, catalog-insert) and its bounded,
// concurrent batch form. Stage one (hash + placement) runs on a
// worker pool; stage two (the catalog write) is serialized through a
// single writer goroutine to avoid SQLite write contention.
package importer

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/sourcegraph/conc/pool"

	"github.com/tagbox/tagbox/internal/catalog"
	"github.com/tagbox/tagbox/internal/config"
	"github.com/tagbox/tagbox/internal/hasher"
	"github.com/tagbox/tagbox/internal/metaextract"
	"github.com/tagbox/tagbox/internal/pathgen"
	"github.com/tagbox/tagbox/internal/tberrors"
)

// Options controls a single import beyond its metadata overrides.
type Options struct {
	// Move relocates the source file instead of copying it. Copy is the
	// default.
	Move bool
}

// Importer orchestrates MetaExtractor, Hasher, PathGen, and Catalog for
// both single-file and batch import.
type Importer struct {
	cat *catalog.Catalog
	cfg *config.Config
}

// New builds an Importer bound to cat and cfg.
func New(cat *catalog.Catalog, cfg *config.Config) *Importer {
	return &Importer{cat: cat, cfg: cfg}
}

// ImportFile runs the full single-file import sequence and returns
// the resulting catalog entry. overrides, if non-nil, win over every field
// MetaExtractor produced.
func (imp *Importer) ImportFile(ctx context.Context, path string, overrides *metaextract.ImportMetadata, opts Options) (*catalog.FileEntry, error) {
	placed, err := imp.stageOne(ctx, path, overrides, opts)
	if err != nil {
		return nil, err
	}
	return imp.stageTwo(placed)
}

// Result is one batch entry's outcome: exactly one of Entry or Err is
// set.
type Result struct {
	Path  string
	Entry *catalog.FileEntry
	Err   error
}

// ImportFiles runs every pre-insert stage across a bounded worker pool
// (CPU count, clamped to [1, 16]), then serializes the catalog inserts
// through a single writer. Per-file failures do not abort the batch;
// results are returned in input order regardless of completion order.
func (imp *Importer) ImportFiles(ctx context.Context, paths []string, opts Options) []Result {
	n := len(paths)
	results := make([]Result, n)

	type writeJob struct {
		idx         int
		path        string
		placed      *placement
		stageOneErr error
	}

	writeCh := make(chan writeJob, n)
	writerDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for job := range writeCh {
			if job.stageOneErr != nil {
				results[job.idx] = Result{Path: job.path, Err: job.stageOneErr}
				continue
			}
			entry, err := imp.stageTwo(job.placed)
			results[job.idx] = Result{Path: job.path, Entry: entry, Err: err}
		}
	}()

	p := pool.New().WithMaxGoroutines(imp.workerCount())
	for i, path := range paths {
		i, path := i, path
		p.Go(func() {
			placed, err := imp.stageOne(ctx, path, nil, opts)
			writeCh <- writeJob{idx: i, path: path, placed: placed, stageOneErr: err}
		})
	}
	p.Wait()
	close(writeCh)
	<-writerDone

	return results
}

// workerCount resolves the batch worker count: CPU count, clamped to
// [1, 16].
func (imp *Importer) workerCount() int {
	n := runtime.NumCPU()
	if n < 1 {
		n = 1
	}
	if n > 16 {
		n = 16
	}
	return n
}

// placement is everything stage one produces for a file that has not yet
// been committed to the catalog: its final metadata, where it landed on
// disk, and its hash.
type placement struct {
	metadata     metaextract.ImportMetadata
	targetPath   string
	relativePath string
	originalPath string
	originalName string
	hash         string
	typeMetadata string
}

// stageOne runs resolve, extract, hash, dedupe check, generate path, and
// place. It never touches the catalog beyond a read-only hash lookup, so
// it is safe to run on many goroutines at once.
func (imp *Importer) stageOne(ctx context.Context, path string, overrides *metaextract.ImportMetadata, opts Options) (*placement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, tberrors.NewIO(err)
	}
	if _, err := os.Stat(absPath); err != nil {
		if os.IsNotExist(err) {
			return nil, tberrors.NewFileNotFound(absPath)
		}
		return nil, tberrors.NewIO(err)
	}

	extracted, err := metaextract.Extract(absPath, imp.cfg.Import.Metadata)
	if err != nil {
		return nil, err
	}
	meta := extracted.Merge(overrides)

	algo := hasher.Algorithm(imp.cfg.Hash.Algorithm)
	hash, err := hasher.HashFile(absPath, algo)
	if err != nil {
		return nil, err
	}

	if existingID, ok, err := imp.cat.FindByHash(hash); err != nil {
		return nil, err
	} else if ok {
		return nil, tberrors.NewDuplicateHash(hash, existingID)
	}

	originalName := filepath.Base(absPath)
	filename, err := pathgen.GenerateFilename(imp.cfg.Import.Paths.RenameTemplate, originalName, toPathgenMeta(meta))
	if err != nil {
		return nil, err
	}
	target, err := pathgen.GeneratePath(imp.cfg.Import.Paths.ClassifyTemplate, imp.cfg.Import.Paths.StorageDir, filename, toPathgenMeta(meta))
	if err != nil {
		return nil, err
	}
	target = pathgen.ResolveCollision(target, fileExists)

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return nil, tberrors.NewIO(err)
	}
	if err := placeFile(absPath, target, opts.Move); err != nil {
		return nil, err
	}

	if imp.cfg.Hash.VerifyOnImport && !opts.Move {
		verifyHash, err := hasher.HashFile(target, algo)
		if err != nil {
			os.Remove(target)
			return nil, err
		}
		if verifyHash != hash {
			os.Remove(target)
			return nil, tberrors.NewIO(io.ErrUnexpectedEOF)
		}
	}

	relPath, err := filepath.Rel(imp.cfg.Import.Paths.StorageDir, target)
	if err != nil {
		relPath = target
	}

	var typeMeta string
	if pdfPageCount, err := pdfTypeMetadata(target); err == nil {
		typeMeta = pdfPageCount
	}

	return &placement{
		metadata:     meta,
		targetPath:   target,
		relativePath: relPath,
		originalPath: absPath,
		originalName: originalName,
		hash:         hash,
		typeMetadata: typeMeta,
	}, nil
}

// stageTwo runs the transactional catalog insert and its compensation:
// if the insert fails after the file was already placed, the placed file
// is deleted before the error is surfaced.
func (imp *Importer) stageTwo(p *placement) (*catalog.FileEntry, error) {
	fileMetaJSON, err := marshalAdditionalInfo(p.metadata.AdditionalInfo)
	if err != nil {
		os.Remove(p.targetPath)
		return nil, err
	}

	id, err := imp.cat.InsertFile(catalog.NewFileEntry{
		Title:            p.metadata.Title,
		Authors:          p.metadata.Authors,
		Year:             p.metadata.Year,
		Publisher:        p.metadata.Publisher,
		Source:           p.metadata.Source,
		Category1:        p.metadata.Category1,
		Category2:        p.metadata.Category2,
		Category3:        p.metadata.Category3,
		Tags:             p.metadata.Tags,
		Summary:          p.metadata.Summary,
		OriginalFilename: p.originalName,
		RelativePath:     p.relativePath,
		InitialHash:      p.hash,
		OriginalPath:     p.originalPath,
		FileMetadata:     fileMetaJSON,
		TypeMetadata:     p.typeMetadata,
	})
	if err != nil {
		os.Remove(p.targetPath)
		return nil, err
	}

	return imp.cat.GetFile(id)
}

func toPathgenMeta(m metaextract.ImportMetadata) pathgen.Metadata {
	return pathgen.Metadata{
		Title:     m.Title,
		Authors:   m.Authors,
		Year:      m.Year,
		Publisher: m.Publisher,
		Category1: m.Category1,
		Category2: m.Category2,
		Category3: m.Category3,
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// placeFile copies or moves src to dst per move.
func placeFile(src, dst string, move bool) error {
	if move {
		if err := os.Rename(src, dst); err == nil {
			return nil
		}
		// os.Rename fails across filesystems/devices; fall through to a
		// copy-then-remove so moving into storage_dir still works when
		// it's a different mount.
		if err := copyFile(src, dst); err != nil {
			return err
		}
		if err := os.Remove(src); err != nil {
			return tberrors.NewIO(err)
		}
		return nil
	}
	return copyFile(src, dst)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return tberrors.NewIO(err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return tberrors.NewIO(err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return tberrors.NewIO(err)
	}
	return out.Close()
}
