package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndGetAuthor(t *testing.T) {
	c := NewTestCatalog(t)

	author, err := c.CreateAuthor("Jane Doe", []string{"J. Doe"})
	require.NoError(t, err)
	require.NotEmpty(t, author.ID)

	got, err := c.GetAuthor(author.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", got.Name)
	assert.Equal(t, []string{"J. Doe"}, got.Aliases)
}

func TestMergeAuthorsRewritesEdges(t *testing.T) {
	c := NewTestCatalog(t)

	entry := sampleEntry()
	entry.Authors = []string{"Alice"}
	id, err := c.InsertFile(entry)
	require.NoError(t, err)

	file, err := c.GetFile(id)
	require.NoError(t, err)
	require.Equal(t, []string{"Alice"}, file.Authors)

	bob, err := c.CreateAuthor("Bob", nil)
	require.NoError(t, err)

	var aliceID string
	require.NoError(t, c.db.QueryRow(`SELECT id FROM authors WHERE name = 'Alice'`).Scan(&aliceID))

	require.NoError(t, c.MergeAuthors(aliceID, bob.ID))

	file, err = c.GetFile(id)
	require.NoError(t, err)
	assert.Equal(t, []string{"Bob"}, file.Authors)

	_, err = c.GetAuthor(aliceID)
	require.Error(t, err)
}

func TestMergeAuthorsRejectsSelfMerge(t *testing.T) {
	c := NewTestCatalog(t)
	a, err := c.CreateAuthor("Solo", nil)
	require.NoError(t, err)

	err = c.MergeAuthors(a.ID, a.ID)
	require.Error(t, err)
}
