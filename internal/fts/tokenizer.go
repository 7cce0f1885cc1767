// Package fts is the full-text index over title/authors/summary/tags/
// category, keyed by file id, with an idempotent rebuild path.
package fts

import (
	"strings"
	"sync"

	"github.com/go-ego/gse"
)

// Tokenizer pre-segments text before it reaches FTS5's own tokenizer. The
// default (unicode61/simple/porter) tokenizers split on whitespace, which
// already works for space-delimited scripts; CJK text has no whitespace
// between words, so FtsIndex runs it through a segmenter first and lets
// FTS5 tokenize the space-joined result.
type Tokenizer interface {
	Segment(text string) string
}

// identityTokenizer passes text through unchanged — used for
// simple/unicode61/porter, where FTS5's built-in tokenizer is sufficient.
type identityTokenizer struct{}

func (identityTokenizer) Segment(text string) string { return text }

// Identity is the pass-through Tokenizer for non-CJK languages.
var Identity Tokenizer = identityTokenizer{}

// cjkTokenizer segments Chinese/Japanese/Korean text into space-joined
// tokens using gse's dictionary-based segmenter, so FTS5's own tokenizer —
// which only knows how to split on whitespace and punctuation — gets
// meaningful word boundaries instead of one long unbroken run of
// characters.
type cjkTokenizer struct {
	mu  sync.Mutex
	seg gse.Segmenter
}

// newCJKTokenizer loads gse's bundled dictionary once. If loading fails the
// caller falls back to Identity and logs once.
func newCJKTokenizer() (Tokenizer, error) {
	var seg gse.Segmenter
	if err := seg.LoadDict(); err != nil {
		return nil, err
	}
	return &cjkTokenizer{seg: seg}, nil
}

func (t *cjkTokenizer) Segment(text string) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	words := t.seg.CutSearch(text, true)
	return strings.Join(words, " ")
}

var (
	cjkOnce     sync.Once
	cjkInstance Tokenizer
	cjkLoadErr  error
)

// TokenizeClause maps the configured `search.fts_language` selector to
// the FTS5 tokenize argument files_fts is created with. "simple" is FTS5's
// ascii tokenizer (the closest analogue of the classic FTS3 simple
// tokenizer), "porter" stacks stemming on top of unicode61, and
// "custom-cjk" keeps unicode61 at the SQL layer — the gse segmenter
// pre-pass supplies the word boundaries before FTS5 ever sees the text.
func TokenizeClause(language string) string {
	switch language {
	case "simple":
		return "ascii"
	case "porter":
		return "porter unicode61"
	default:
		return "unicode61"
	}
}

// NewTokenizer resolves the configured `search.fts_language` selector to a
// Tokenizer. An unrecognized selector, or a CJK dictionary that fails to
// load, falls back to Identity.
func NewTokenizer(language string, logFallback func(reason string)) Tokenizer {
	if language != "custom-cjk" {
		return Identity
	}

	cjkOnce.Do(func() {
		cjkInstance, cjkLoadErr = newCJKTokenizer()
	})
	if cjkLoadErr != nil {
		if logFallback != nil {
			logFallback(cjkLoadErr.Error())
		}
		return Identity
	}
	return cjkInstance
}
