package metaextract

import (
	"encoding/json"
	"os"

	"github.com/tagbox/tagbox/internal/tberrors"
)

// sidecarDoc mirrors the recognized JSON sidecar keys: title,
// authors[], year, publisher, source, category1..3, tags[], summary, plus
// an additional_info free-form map.
type sidecarDoc struct {
	Title          string            `json:"title"`
	Authors        []string          `json:"authors"`
	Year           *int              `json:"year"`
	Publisher      string            `json:"publisher"`
	Source         string            `json:"source"`
	Category1      string            `json:"category1"`
	Category2      string            `json:"category2"`
	Category3      string            `json:"category3"`
	Tags           []string          `json:"tags"`
	Summary        string            `json:"summary"`
	AdditionalInfo map[string]string `json:"additional_info"`
}

// readSidecar reads and parses the JSON sidecar at path, returning (nil,
// nil) if no sidecar exists — that's not a failure, just an absent source.
func readSidecar(path string) (*ImportMetadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, tberrors.NewMetaInfoExtraction("reading json sidecar: " + err.Error())
	}

	var doc sidecarDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, tberrors.NewMetaInfoExtraction("parsing json sidecar: " + err.Error())
	}

	return &ImportMetadata{
		Title:          doc.Title,
		Authors:        doc.Authors,
		Year:           doc.Year,
		Publisher:      doc.Publisher,
		Source:         doc.Source,
		Category1:      doc.Category1,
		Category2:      doc.Category2,
		Category3:      doc.Category3,
		Tags:           doc.Tags,
		Summary:        doc.Summary,
		AdditionalInfo: doc.AdditionalInfo,
	}, nil
}
