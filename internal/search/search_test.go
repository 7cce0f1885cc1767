package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tagbox/tagbox/internal/catalog"
)

func seed(t *testing.T) *catalog.Catalog {
	t.Helper()
	c := catalog.NewTestCatalog(t)

	entries := []catalog.NewFileEntry{
		{Title: "Attention Is All You Need", Authors: []string{"Vaswani"}, Category1: "papers", Tags: []string{"transformers"}, OriginalFilename: "a.pdf", RelativePath: "papers/a.pdf", InitialHash: "h1"},
		{Title: "Deep Residual Learning", Authors: []string{"He"}, Category1: "papers", Tags: []string{"vision"}, OriginalFilename: "b.pdf", RelativePath: "papers/b.pdf", InitialHash: "h2"},
		{Title: "BERT Pretraining", Authors: []string{"Devlin"}, Category1: "papers", Tags: []string{"transformers", "nlp"}, OriginalFilename: "c.pdf", RelativePath: "papers/c.pdf", InitialHash: "h3"},
	}
	for _, e := range entries {
		_, err := c.InsertFile(e)
		require.NoError(t, err)
	}
	return c
}

func TestSearchMatchAllReturnsEverything(t *testing.T) {
	c := seed(t)
	s := New(c, true)

	res, err := s.Search(context.Background(), "*", Options{})
	require.NoError(t, err)
	assert.Equal(t, 3, res.TotalCount)
	assert.Len(t, res.Entries, 3)
}

func TestSearchBareTermMatchesTitle(t *testing.T) {
	c := seed(t)
	s := New(c, true)

	res, err := s.Search(context.Background(), "attention", Options{})
	require.NoError(t, err)
	require.Equal(t, 1, res.TotalCount)
	assert.Equal(t, "Attention Is All You Need", res.Entries[0].Title)
}

func TestSearchFieldScopedTag(t *testing.T) {
	c := seed(t)
	s := New(c, true)

	res, err := s.Search(context.Background(), "tag:transformers", Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, res.TotalCount)
}

func TestSearchNegativeTagExcludes(t *testing.T) {
	c := seed(t)
	s := New(c, true)

	res, err := s.Search(context.Background(), "-tag:nlp", Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, res.TotalCount)
	for _, e := range res.Entries {
		assert.NotContains(t, e.Tags, "nlp")
	}
}

func TestSearchNegativeBareTermExcludes(t *testing.T) {
	c := seed(t)
	s := New(c, true)

	res, err := s.Search(context.Background(), "-attention", Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, res.TotalCount)
	for _, e := range res.Entries {
		assert.NotEqual(t, "Attention Is All You Need", e.Title)
	}
}

func TestSearchPagination(t *testing.T) {
	c := seed(t)
	s := New(c, true)

	res, err := s.Search(context.Background(), "*", Options{Limit: 2, Offset: 0})
	require.NoError(t, err)
	assert.Equal(t, 3, res.TotalCount)
	assert.Len(t, res.Entries, 2)

	res, err = s.Search(context.Background(), "*", Options{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Len(t, res.Entries, 1)
}

func TestSearchSortByTitleAscending(t *testing.T) {
	c := seed(t)
	s := New(c, true)

	res, err := s.Search(context.Background(), "*", Options{SortBy: SortTitle})
	require.NoError(t, err)
	require.Len(t, res.Entries, 3)
	assert.Equal(t, "Attention Is All You Need", res.Entries[0].Title)
	assert.Equal(t, "BERT Pretraining", res.Entries[1].Title)
	assert.Equal(t, "Deep Residual Learning", res.Entries[2].Title)
}

func TestSearchExcludesDeletedByDefault(t *testing.T) {
	c := seed(t)
	s := New(c, true)

	res, err := s.Search(context.Background(), "*", Options{})
	require.NoError(t, err)
	id := res.Entries[0].ID
	require.NoError(t, c.SoftDelete(id))

	res, err = s.Search(context.Background(), "*", Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, res.TotalCount)

	res, err = s.Search(context.Background(), "*", Options{IncludeDeleted: true})
	require.NoError(t, err)
	assert.Equal(t, 3, res.TotalCount)
}

func TestFuzzySearchPrefixMatches(t *testing.T) {
	c := seed(t)
	s := New(c, true)

	res, err := s.FuzzySearch(context.Background(), "atten", Options{})
	require.NoError(t, err)
	require.Equal(t, 1, res.TotalCount)
	assert.Equal(t, "Attention Is All You Need", res.Entries[0].Title)
}

func TestFuzzySearchEmptyTextMatchesAll(t *testing.T) {
	c := seed(t)
	s := New(c, true)

	res, err := s.FuzzySearch(context.Background(), "  ", Options{})
	require.NoError(t, err)
	assert.Equal(t, 3, res.TotalCount)
}

func TestSearchWithFTSDisabledFallsBackToLike(t *testing.T) {
	c := seed(t)
	s := New(c, false)

	res, err := s.Search(context.Background(), "title:attention", Options{})
	require.NoError(t, err)
	require.Equal(t, 1, res.TotalCount)
	assert.Equal(t, "Attention Is All You Need", res.Entries[0].Title)

	res, err = s.Search(context.Background(), "tag:transformers", Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, res.TotalCount)
}

func TestFuzzySearchWithFTSDisabledFallsBackToLike(t *testing.T) {
	c := seed(t)
	s := New(c, false)

	res, err := s.FuzzySearch(context.Background(), "resid", Options{})
	require.NoError(t, err)
	require.Equal(t, 1, res.TotalCount)
	assert.Equal(t, "Deep Residual Learning", res.Entries[0].Title)
}
