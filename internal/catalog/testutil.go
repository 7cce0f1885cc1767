package catalog

import (
	"testing"

	"github.com/tagbox/tagbox/internal/fts"
)

// NewTestCatalog opens an in-memory catalog with schema applied and
// registers cleanup.
func NewTestCatalog(t testing.TB) *Catalog {
	t.Helper()
	c, err := OpenMemory(fts.Identity)
	if err != nil {
		t.Fatalf("failed to open test catalog: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}
