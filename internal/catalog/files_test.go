package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tagbox/tagbox/internal/tberrors"
)

func sampleEntry() NewFileEntry {
	return NewFileEntry{
		Title:            "Attention Is All You Need",
		Authors:          []string{"Vaswani", "Shazeer"},
		Category1:        "papers",
		Tags:             []string{"rust", "transformers"},
		OriginalFilename: "paper.pdf",
		RelativePath:     "papers/attention.pdf",
		InitialHash:      "deadbeef",
	}
}

func TestInsertAndGetFile(t *testing.T) {
	c := NewTestCatalog(t)

	id, err := c.InsertFile(sampleEntry())
	require.NoError(t, err)
	require.NotEmpty(t, id)

	entry, err := c.GetFile(id)
	require.NoError(t, err)
	assert.Equal(t, "Attention Is All You Need", entry.Title)
	assert.Equal(t, []string{"Vaswani", "Shazeer"}, entry.Authors)
	assert.Equal(t, []string{"rust", "transformers"}, entry.Tags)
	assert.False(t, entry.IsDeleted)
	assert.False(t, entry.UpdatedAt.Before(entry.CreatedAt))
}

func TestInsertFileDuplicateHash(t *testing.T) {
	c := NewTestCatalog(t)

	entry := sampleEntry()
	_, err := c.InsertFile(entry)
	require.NoError(t, err)

	entry.RelativePath = "papers/attention-2.pdf"
	_, err = c.InsertFile(entry)
	require.Error(t, err)

	var tberr *tberrors.Error
	require.ErrorAs(t, err, &tberr)
	assert.Equal(t, tberrors.DuplicateHash, tberr.Kind)
}

func TestInsertFileRequiresTitleAndCategory(t *testing.T) {
	c := NewTestCatalog(t)

	entry := sampleEntry()
	entry.Title = ""
	_, err := c.InsertFile(entry)
	require.Error(t, err)

	entry = sampleEntry()
	entry.Category1 = ""
	_, err = c.InsertFile(entry)
	require.Error(t, err)
}

func TestUpdateFileFlagsPathDefiningChange(t *testing.T) {
	c := NewTestCatalog(t)
	id, err := c.InsertFile(sampleEntry())
	require.NoError(t, err)

	newTitle := "A New Title"
	changed, err := c.UpdateFile(id, FilePatch{Title: &newTitle})
	require.NoError(t, err)
	assert.True(t, changed)

	entry, err := c.GetFile(id)
	require.NoError(t, err)
	assert.Equal(t, newTitle, entry.Title)

	newSummary := "a summary"
	changed, err = c.UpdateFile(id, FilePatch{Summary: &newSummary})
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestSoftDeleteHidesFromFutureHashLookup(t *testing.T) {
	c := NewTestCatalog(t)
	entry := sampleEntry()
	id, err := c.InsertFile(entry)
	require.NoError(t, err)

	require.NoError(t, c.SoftDelete(id))

	got, err := c.GetFile(id)
	require.NoError(t, err)
	assert.True(t, got.IsDeleted)

	// A new file reusing the same hash is now allowed (dedup key only
	// applies to non-deleted rows).
	entry.RelativePath = "papers/attention-again.pdf"
	_, err = c.InsertFile(entry)
	require.NoError(t, err)
}

func TestSoftDeleteUnknownID(t *testing.T) {
	c := NewTestCatalog(t)
	err := c.SoftDelete("missing")
	require.Error(t, err)
}

func TestStats(t *testing.T) {
	c := NewTestCatalog(t)
	_, err := c.InsertFile(sampleEntry())
	require.NoError(t, err)

	stats, err := c.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.FileCount)
	assert.Equal(t, 0, stats.DeletedCount)
	assert.Equal(t, 2, stats.AuthorCount)
	assert.Equal(t, 2, stats.TagCount)
}
