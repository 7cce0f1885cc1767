// Package metaextract pulls ImportMetadata out of a source
// file by consulting, in priority order, a JSON sidecar, the PDF Info
// dictionary, and finally the bare filename. The core never invents
// metadata — a field absent from every source stays zero-valued, except
// Category1, which falls back to the configured default category.
package metaextract

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/tagbox/tagbox/internal/config"
	"github.com/tagbox/tagbox/internal/tberrors"
)

// ImportMetadata is the bibliographic record MetaExtractor produces, before
// Importer merges it with caller overrides and hands it to Catalog.
type ImportMetadata struct {
	Title          string
	Authors        []string
	Year           *int
	Publisher      string
	Source         string
	Category1      string
	Category2      string
	Category3      string
	Tags           []string
	Summary        string
	AdditionalInfo map[string]string
}

// Merge layers override on top of m: any non-zero field in override wins.
// Slices are replaced wholesale, not appended, since a caller supplying
// Tags means "use exactly these tags".
func (m ImportMetadata) Merge(override *ImportMetadata) ImportMetadata {
	if override == nil {
		return m
	}
	out := m
	if override.Title != "" {
		out.Title = override.Title
	}
	if len(override.Authors) > 0 {
		out.Authors = override.Authors
	}
	if override.Year != nil {
		out.Year = override.Year
	}
	if override.Publisher != "" {
		out.Publisher = override.Publisher
	}
	if override.Source != "" {
		out.Source = override.Source
	}
	if override.Category1 != "" {
		out.Category1 = override.Category1
	}
	if override.Category2 != "" {
		out.Category2 = override.Category2
	}
	if override.Category3 != "" {
		out.Category3 = override.Category3
	}
	if len(override.Tags) > 0 {
		out.Tags = override.Tags
	}
	if override.Summary != "" {
		out.Summary = override.Summary
	}
	if len(override.AdditionalInfo) > 0 {
		out.AdditionalInfo = override.AdditionalInfo
	}
	return out
}

// Extract pulls metadata from path, consulting sources in priority
// order: a same-stem .json sidecar (if cfg.PreferJSON), the PDF Info
// dictionary (if cfg.FallbackPDF and path is a PDF), then the filename
// heuristic. A field
// a higher-priority source already populated is never overwritten by a
// lower-priority one. Category1 defaults to cfg.DefaultCategory only if no
// source set it.
func Extract(path string, cfg config.ImportMetadataConfig) (*ImportMetadata, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, tberrors.NewMetaInfoExtraction(err.Error())
	}

	meta := &ImportMetadata{}

	if cfg.PreferJSON {
		sidecar, err := readSidecar(sidecarPath(path))
		if err != nil {
			return nil, err
		}
		if sidecar != nil {
			meta = mergeInto(meta, sidecar)
		}
	}

	if cfg.FallbackPDF && strings.EqualFold(filepath.Ext(path), ".pdf") && needsMore(meta) {
		// A .pdf that turns out not to be parseable PDF is treated as
		// having no Info dictionary, not as a failed extraction; the
		// filename fallback below still applies.
		if pdfMeta, err := readPDFInfo(path); err == nil && pdfMeta != nil {
			meta = mergeInto(meta, pdfMeta)
		}
	}

	if meta.Title == "" {
		meta.Title = filenameHeuristicTitle(path)
	}
	if meta.Category1 == "" {
		meta.Category1 = cfg.DefaultCategory
	}

	return meta, nil
}

// needsMore reports whether any field the PDF stage could fill is still
// empty, so a complete JSON sidecar skips opening the PDF at all.
func needsMore(m *ImportMetadata) bool {
	return m.Title == "" || len(m.Authors) == 0 || m.Year == nil || m.Summary == "" || len(m.Tags) == 0
}

// mergeInto copies every field set in from into base where base's own
// field is still zero-valued — a strict "first source wins" merge, the
// opposite direction from ImportMetadata.Merge's "override wins".
func mergeInto(base, from *ImportMetadata) *ImportMetadata {
	out := *base
	if out.Title == "" {
		out.Title = from.Title
	}
	if len(out.Authors) == 0 {
		out.Authors = from.Authors
	}
	if out.Year == nil {
		out.Year = from.Year
	}
	if out.Publisher == "" {
		out.Publisher = from.Publisher
	}
	if out.Source == "" {
		out.Source = from.Source
	}
	if out.Category1 == "" {
		out.Category1 = from.Category1
	}
	if out.Category2 == "" {
		out.Category2 = from.Category2
	}
	if out.Category3 == "" {
		out.Category3 = from.Category3
	}
	if len(out.Tags) == 0 {
		out.Tags = from.Tags
	}
	if out.Summary == "" {
		out.Summary = from.Summary
	}
	if len(out.AdditionalInfo) == 0 {
		out.AdditionalInfo = from.AdditionalInfo
	}
	return &out
}

// filenameHeuristicTitle is the final fallback: the file's stem,
// verbatim, with no authors and no year.
func filenameHeuristicTitle(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func sidecarPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + ".json"
}
