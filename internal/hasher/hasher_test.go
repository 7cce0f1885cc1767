package hasher

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.txt")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestHashFileDeterministic(t *testing.T) {
	path := writeTemp(t, "hello tagbox")

	for _, algo := range []Algorithm{SHA256, Blake2b, Blake3, XXH364, XXH3128, MD5, SHA512} {
		h1, err := HashFile(path, algo)
		require.NoError(t, err)
		h2, err := HashFile(path, algo)
		require.NoError(t, err)
		assert.Equal(t, h1, h2, "algorithm %s must be deterministic", algo)
		assert.NotEmpty(t, h1)
	}
}

func TestHashFileDiffersByContent(t *testing.T) {
	a := writeTemp(t, "alpha")
	b := writeTemp(t, "beta")

	ha, err := HashFile(a, SHA256)
	require.NoError(t, err)
	hb, err := HashFile(b, SHA256)
	require.NoError(t, err)
	assert.NotEqual(t, ha, hb)
}

func TestHashFileMissing(t *testing.T) {
	_, err := HashFile(filepath.Join(t.TempDir(), "missing.pdf"), SHA256)
	require.Error(t, err)
}

func TestHashFileUnknownAlgorithm(t *testing.T) {
	path := writeTemp(t, "data")
	_, err := HashFile(path, Algorithm("crc32"))
	require.Error(t, err)
}

func TestValid(t *testing.T) {
	assert.True(t, Valid(SHA256))
	assert.False(t, Valid(Algorithm("crc32")))
}
