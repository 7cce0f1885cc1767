package metaextract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/tagbox/tagbox/internal/tberrors"
)

// authorSplitRe splits a PDF /Author string on the usual delimiters:
// semicolon, comma, ampersand, or the words "and"/"&".
var authorSplitRe = regexp.MustCompile(`\s*(?:;|,|&|\band\b)\s*`)

// creationDateYearRe pulls the four-digit year out of a PDF /CreationDate
// string of the form "D:YYYYMMDDHHmmSS...".
var creationDateYearRe = regexp.MustCompile(`D:(\d{4})`)

// readPDFInfo opens path and reads its Info dictionary's /Title, /Author,
// /Subject, /Keywords, and /CreationDate. /Subject becomes Summary,
// /Keywords becomes Tags (comma-split), /Author is split per
// authorSplitRe, and a year is parsed from /CreationDate. That year is only
// a fallback: the caller's first-source-wins merge keeps a year already
// known from a higher-priority source.
func readPDFInfo(path string) (meta *ImportMetadata, err error) {
	// ledongthuc/pdf panics on some malformed inputs rather than returning
	// an error; contain that here.
	defer func() {
		if r := recover(); r != nil {
			meta, err = nil, tberrors.NewMetaInfoExtraction(fmt.Sprintf("parsing pdf: %v", r))
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, tberrors.NewMetaInfoExtraction("opening pdf: " + err.Error())
	}
	defer f.Close()

	info := r.Trailer().Key("Info")
	if info.IsNull() {
		return &ImportMetadata{}, nil
	}

	meta = &ImportMetadata{}

	if title := info.Key("Title").Text(); title != "" {
		meta.Title = title
	}
	if author := info.Key("Author").Text(); author != "" {
		meta.Authors = splitAuthors(author)
	}
	if subject := info.Key("Subject").Text(); subject != "" {
		meta.Summary = subject
	}
	if keywords := info.Key("Keywords").Text(); keywords != "" {
		meta.Tags = splitKeywords(keywords)
	}
	if created := info.Key("CreationDate").Text(); created != "" {
		if y, ok := yearFromCreationDate(created); ok {
			meta.Year = &y
		}
	}

	return meta, nil
}

// PageCount opens path and returns its page count, used by Importer to
// populate the PDF-specific slice of File.type_metadata.
func PageCount(path string) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			n, err = 0, tberrors.NewMetaInfoExtraction(fmt.Sprintf("parsing pdf: %v", r))
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return 0, tberrors.NewMetaInfoExtraction("opening pdf: " + err.Error())
	}
	defer f.Close()
	return r.NumPage(), nil
}

func splitAuthors(raw string) []string {
	parts := authorSplitRe.Split(raw, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func splitKeywords(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func yearFromCreationDate(raw string) (int, bool) {
	m := creationDateYearRe.FindStringSubmatch(raw)
	if m == nil {
		return 0, false
	}
	y, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return y, true
}
