// Package pathgen renders deterministic filenames and storage paths from
// import metadata and the configured templates. It is a pure function of
// its inputs.
package pathgen

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/tagbox/tagbox/internal/tberrors"
)

// Metadata is the subset of ImportMetadata that feeds path/filename
// rendering.
type Metadata struct {
	Title     string
	Authors   []string
	Year      *int
	Publisher string
	Category1 string
	Category2 string
	Category3 string
}

var placeholderRe = regexp.MustCompile(`\{([a-zA-Z0-9_]+)\}`)

// sanitizeChars are the characters that cannot appear in a generated
// filename.
var sanitizeChars = `/\?%*:|"<>.;`

// GenerateFilename renders rename_template against meta and the original
// filename, then sanitizes the result and reattaches the original
// extension. Authors formatting: empty→"unknown"; one→the name;
// two→"A_and_B"; ≥3→"A_et_al".
func GenerateFilename(renameTemplate, originalFilename string, meta Metadata) (string, error) {
	ext := filepath.Ext(originalFilename)
	vars := templateVars(meta)

	rendered := applyTemplate(renameTemplate, vars)
	sanitized := sanitizeFilename(rendered)
	if sanitized == "" {
		sanitized = "unnamed_file"
	}
	return sanitized + ext, nil
}

// GeneratePath renders classify_template against meta, substitutes
// {filename} with the already-rendered filename, and joins the result
// under storageDir. The return value is the target path (absolute when
// storageDir is); its component relative to storageDir is what Catalog
// stores.
func GeneratePath(classifyTemplate, storageDir, filename string, meta Metadata) (string, error) {
	vars := templateVars(meta)
	vars["filename"] = filename

	rendered := applyTemplate(classifyTemplate, vars)
	rendered = filepath.FromSlash(rendered)
	if rendered == "" {
		return "", tberrors.NewPathGeneration("classify_template rendered to an empty path")
	}
	return filepath.Join(storageDir, rendered), nil
}

func templateVars(meta Metadata) map[string]string {
	year := "unknown"
	if meta.Year != nil {
		year = strconv.Itoa(*meta.Year)
	}
	return map[string]string{
		"title":     meta.Title,
		"authors":   formatAuthors(meta.Authors),
		"year":      year,
		"publisher": orUnknown(meta.Publisher),
		"category1": meta.Category1,
		"category2": meta.Category2,
		"category3": meta.Category3,
	}
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "unknown"
	}
	return s
}

// formatAuthors implements the author-list formatting rule.
func formatAuthors(authors []string) string {
	switch len(authors) {
	case 0:
		return "unknown"
	case 1:
		return authors[0]
	case 2:
		return authors[0] + "_and_" + authors[1]
	default:
		return authors[0] + "_et_al"
	}
}

// applyTemplate is a two-pass renderer: scan for {name} tokens,
// look up in vars, leave unknown tokens literal.
func applyTemplate(tmpl string, vars map[string]string) string {
	return placeholderRe.ReplaceAllStringFunc(tmpl, func(tok string) string {
		name := tok[1 : len(tok)-1]
		if v, ok := vars[name]; ok {
			return v
		}
		return tok
	})
}

// sanitizeFilename replaces characters forbidden in filenames with "_" and
// trims whitespace. Whitespace runs also collapse to a single "_" so a
// multi-word title comes out underscore-joined rather than with bare
// spaces in the filename.
func sanitizeFilename(name string) string {
	var b strings.Builder
	lastWasSpace := false
	for _, r := range strings.TrimSpace(name) {
		switch {
		case strings.ContainsRune(sanitizeChars, r):
			b.WriteRune('_')
			lastWasSpace = false
		case r == ' ' || r == '\t' || r == '\n':
			if !lastWasSpace {
				b.WriteRune('_')
			}
			lastWasSpace = true
			continue
		default:
			b.WriteRune(r)
			lastWasSpace = false
		}
	}
	return b.String()
}
