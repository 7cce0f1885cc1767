package editor

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tagbox/tagbox/internal/catalog"
	"github.com/tagbox/tagbox/internal/config"
)

func testCfg(storageDir string) *config.Config {
	cfg := config.Default()
	cfg.Import.Paths.StorageDir = storageDir
	cfg.Import.Paths.RenameTemplate = "{title}_{authors}_{year}"
	cfg.Import.Paths.ClassifyTemplate = "{category1}/{filename}"
	return cfg
}

func seedFile(t *testing.T, cat *catalog.Catalog, storageDir, relPath, title string) string {
	t.Helper()
	abs := filepath.Join(storageDir, relPath)
	require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
	require.NoError(t, os.WriteFile(abs, []byte("stub"), 0o644))

	id, err := cat.InsertFile(catalog.NewFileEntry{
		Title:            title,
		Category1:        "papers",
		OriginalFilename: title + ".pdf",
		RelativePath:     relPath,
		InitialHash:      "hash-" + title,
	})
	require.NoError(t, err)
	return id
}

func TestUpdateFile_TitleChange_RebuildsPath(t *testing.T) {
	storageDir := t.TempDir()
	cat := catalog.NewTestCatalog(t)
	ed := New(cat, testCfg(storageDir))

	id := seedFile(t, cat, storageDir, "papers/Old_Title_unknown_unknown.pdf", "Old Title")

	newTitle := "New Title"
	entry, err := ed.UpdateFile(id, catalog.FilePatch{Title: &newTitle})
	require.NoError(t, err)
	require.Equal(t, "New Title", entry.Title)

	expectedRel := "papers/New_Title_unknown_unknown.pdf"
	require.Equal(t, expectedRel, entry.RelativePath)

	_, err = os.Stat(filepath.Join(storageDir, expectedRel))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(storageDir, "papers/Old_Title_unknown_unknown.pdf"))
	require.True(t, os.IsNotExist(err))
}

func TestRebuildFilePath_Idempotent(t *testing.T) {
	storageDir := t.TempDir()
	cat := catalog.NewTestCatalog(t)
	ed := New(cat, testCfg(storageDir))

	id := seedFile(t, cat, storageDir, "wrong/place.pdf", "A Title")

	moved, err := ed.RebuildFilePath(id)
	require.NoError(t, err)
	require.True(t, moved)

	movedAgain, err := ed.RebuildFilePath(id)
	require.NoError(t, err)
	require.False(t, movedAgain)
}

func TestCheckFilePath_NoDriftReportsFalse(t *testing.T) {
	storageDir := t.TempDir()
	cat := catalog.NewTestCatalog(t)
	ed := New(cat, testCfg(storageDir))

	id := seedFile(t, cat, storageDir, "papers/A_Title_unknown_unknown.pdf", "A Title")

	_, ok, err := ed.CheckFilePath(id)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRebuildAllFiles_DryRunDoesNotMove(t *testing.T) {
	storageDir := t.TempDir()
	cat := catalog.NewTestCatalog(t)
	ed := New(cat, testCfg(storageDir))

	seedFile(t, cat, storageDir, "wrong/one.pdf", "One")
	seedFile(t, cat, storageDir, "wrong/two.pdf", "Two")

	var progressCalls int
	results, err := ed.RebuildAllFiles(context.Background(), true, func(current, total int) {
		progressCalls++
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Greater(t, progressCalls, 0)

	_, err = os.Stat(filepath.Join(storageDir, "wrong/one.pdf"))
	require.NoError(t, err)
}

func TestRebuildAllFiles_AppliesMoves(t *testing.T) {
	storageDir := t.TempDir()
	cat := catalog.NewTestCatalog(t)
	ed := New(cat, testCfg(storageDir))

	seedFile(t, cat, storageDir, "wrong/one.pdf", "One")

	results, err := ed.RebuildAllFiles(context.Background(), false, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)

	_, err = os.Stat(results[0].NewPath)
	require.NoError(t, err)
	_, err = os.Stat(results[0].OldPath)
	require.True(t, os.IsNotExist(err))
}
