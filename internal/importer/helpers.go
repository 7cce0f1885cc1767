package importer

import (
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/tagbox/tagbox/internal/metaextract"
	"github.com/tagbox/tagbox/internal/tberrors"
)

// marshalAdditionalInfo serializes a sidecar's free-form additional_info
// map into File.file_metadata's opaque JSON blob. An empty map
// serializes to the empty string so the column stays NULL.
func marshalAdditionalInfo(info map[string]string) (string, error) {
	if len(info) == 0 {
		return "", nil
	}
	b, err := json.Marshal(info)
	if err != nil {
		return "", tberrors.Wrap(tberrors.Serialization, err)
	}
	return string(b), nil
}

// pdfTypeMetadataDoc is the shape of File.type_metadata for PDFs.
type pdfTypeMetadataDoc struct {
	PageCount int `json:"page_count"`
}

// pdfTypeMetadata returns the JSON-encoded type_metadata blob for a PDF
// file at target, or an error if target isn't a PDF or can't be read —
// callers treat that error as "no type metadata", not a hard failure.
func pdfTypeMetadata(target string) (string, error) {
	if !strings.EqualFold(filepath.Ext(target), ".pdf") {
		return "", tberrors.NewConfig("not a pdf")
	}
	pages, err := metaextract.PageCount(target)
	if err != nil {
		return "", err
	}
	b, err := json.Marshal(pdfTypeMetadataDoc{PageCount: pages})
	if err != nil {
		return "", tberrors.Wrap(tberrors.Serialization, err)
	}
	return string(b), nil
}
