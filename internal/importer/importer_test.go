package importer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tagbox/tagbox/internal/catalog"
	"github.com/tagbox/tagbox/internal/config"
	"github.com/tagbox/tagbox/internal/tberrors"
)

func testConfig(t *testing.T, storageDir string) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Import.Paths.StorageDir = storageDir
	cfg.Import.Paths.RenameTemplate = "{title}_{authors}_{year}"
	cfg.Import.Paths.ClassifyTemplate = "{category1}/{filename}"
	cfg.Import.Metadata.DefaultCategory = "uncategorized"
	cfg.Hash.Algorithm = "sha256"
	return cfg
}

func writeSourceFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestImportFile_NoSidecar_FilenameHeuristic(t *testing.T) {
	srcDir := t.TempDir()
	storageDir := t.TempDir()
	cat := catalog.NewTestCatalog(t)
	cfg := testConfig(t, storageDir)

	src := writeSourceFile(t, srcDir, "Attention Is All You Need.pdf", "not really a pdf")

	imp := New(cat, cfg)
	entry, err := imp.ImportFile(context.Background(), src, nil, Options{})
	require.NoError(t, err)
	require.Equal(t, "Attention Is All You Need", entry.Title)
	require.Equal(t, "uncategorized", entry.Category1)

	onDisk := filepath.Join(storageDir, entry.RelativePath)
	_, err = os.Stat(onDisk)
	require.NoError(t, err)
}

func TestImportFile_Duplicate(t *testing.T) {
	srcDir := t.TempDir()
	storageDir := t.TempDir()
	cat := catalog.NewTestCatalog(t)
	cfg := testConfig(t, storageDir)
	imp := New(cat, cfg)

	src := writeSourceFile(t, srcDir, "paper.pdf", "identical bytes")

	_, err := imp.ImportFile(context.Background(), src, nil, Options{})
	require.NoError(t, err)

	src2 := writeSourceFile(t, srcDir, "paper_copy.pdf", "identical bytes")
	_, err = imp.ImportFile(context.Background(), src2, nil, Options{})
	require.Error(t, err)

	var tbErr *tberrors.Error
	require.ErrorAs(t, err, &tbErr)
	require.Equal(t, tberrors.DuplicateHash, tbErr.Kind)

	entries, err := filepath.Glob(filepath.Join(storageDir, "*", "*"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestImportFile_MissingSource(t *testing.T) {
	storageDir := t.TempDir()
	cat := catalog.NewTestCatalog(t)
	cfg := testConfig(t, storageDir)
	imp := New(cat, cfg)

	_, err := imp.ImportFile(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"), nil, Options{})
	require.Error(t, err)

	var tbErr *tberrors.Error
	require.ErrorAs(t, err, &tbErr)
	require.Equal(t, tberrors.FileNotFound, tbErr.Kind)
}

func TestImportFiles_BatchWithOneMissing(t *testing.T) {
	srcDir := t.TempDir()
	storageDir := t.TempDir()
	cat := catalog.NewTestCatalog(t)
	cfg := testConfig(t, storageDir)
	imp := New(cat, cfg)

	const total = 6
	paths := make([]string, 0, total+1)
	for i := 0; i < total; i++ {
		paths = append(paths, writeSourceFile(t, srcDir, filepathName(i), contentFor(i)))
	}
	paths = append(paths, filepath.Join(srcDir, "does-not-exist.pdf"))

	results := imp.ImportFiles(context.Background(), paths, Options{})
	require.Len(t, results, total+1)

	successes, failures := 0, 0
	for i, r := range results {
		require.Equal(t, paths[i], r.Path)
		if r.Err != nil {
			failures++
			continue
		}
		successes++
	}
	require.Equal(t, total, successes)
	require.Equal(t, 1, failures)

	var tbErr *tberrors.Error
	require.ErrorAs(t, results[total].Err, &tbErr)
	require.Equal(t, tberrors.FileNotFound, tbErr.Kind)
}

func filepathName(i int) string {
	return "doc" + string(rune('a'+i)) + ".pdf"
}

func contentFor(i int) string {
	return "content-" + string(rune('a'+i))
}
