package pathgen

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ResolveCollision appends a numeric suffix (name_1.ext, name_2.ext, …)
// to target until exists(candidate) reports false. The original target
// is returned unmodified if it is already free.
func ResolveCollision(target string, exists func(string) bool) string {
	if !exists(target) {
		return target
	}

	dir := filepath.Dir(target)
	ext := filepath.Ext(target)
	stem := strings.TrimSuffix(filepath.Base(target), ext)

	for n := 1; ; n++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, n, ext))
		if !exists(candidate) {
			return candidate
		}
	}
}
