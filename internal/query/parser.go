package query

import (
	"strings"

	"github.com/tagbox/tagbox/internal/tberrors"
)

// Parse recursive-descends over whitespace-separated terms: each is either
// a bare word or field:value, with an optional leading "-" negation and
// optional double-quoting to preserve whitespace in value. The
// literal "*" as the entire query means "match all".
func Parse(dsl string) (*AST, error) {
	trimmed := strings.TrimSpace(dsl)
	if trimmed == "*" {
		return &AST{MatchAll: true}, nil
	}
	if trimmed == "" {
		return &AST{MatchAll: true}, nil
	}

	tokens, err := tokenize(trimmed)
	if err != nil {
		return nil, err
	}

	ast := &AST{}
	for _, tok := range tokens {
		term, err := parseTerm(tok)
		if err != nil {
			return nil, err
		}
		ast.Terms = append(ast.Terms, term)
	}
	return ast, nil
}

// tokenize splits on whitespace, treating a double-quoted span (possibly
// preceded by a field: prefix or a leading -) as one token that preserves
// its internal whitespace.
func tokenize(s string) ([]string, error) {
	var tokens []string
	var cur strings.Builder
	inQuote := false

	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"':
			inQuote = !inQuote
			cur.WriteByte(c)
		case (c == ' ' || c == '\t' || c == '\n' || c == '\r') && !inQuote:
			flush()
		default:
			cur.WriteByte(c)
		}
	}
	flush()

	if inQuote {
		return nil, tberrors.NewInvalidQuery(s)
	}
	return tokens, nil
}

// parseTerm interprets a single raw token as -?(field:)?value, unquoting
// value if it was double-quoted.
func parseTerm(tok string) (Term, error) {
	var term Term

	if strings.HasPrefix(tok, "-") {
		term.Negative = true
		tok = tok[1:]
	}
	if tok == "" {
		return Term{}, tberrors.NewInvalidQuery(tok)
	}

	if idx := findFieldColon(tok); idx >= 0 {
		fieldName := tok[:idx]
		if fieldName == "" {
			return Term{}, tberrors.NewInvalidQuery(tok)
		}
		field, ok := fieldNames[strings.ToLower(fieldName)]
		if !ok {
			return Term{}, tberrors.NewInvalidQuery(tok)
		}
		term.Field = field
		tok = tok[idx+1:]
	}

	value, err := unquote(tok)
	if err != nil {
		return Term{}, err
	}
	if value == "" {
		return Term{}, tberrors.NewInvalidQuery(tok)
	}
	term.Value = value
	return term, nil
}

// findFieldColon locates the colon introducing a field prefix. A colon
// inside an opening quote doesn't count — "a:b" has no field prefix once
// quoted, e.g. `"a:b"` is a bare quoted value.
func findFieldColon(tok string) int {
	if strings.HasPrefix(tok, `"`) {
		return -1
	}
	return strings.IndexByte(tok, ':')
}

// unquote strips a single layer of balanced double quotes, or returns
// InvalidQuery if the quoting is unterminated or empty.
func unquote(tok string) (string, error) {
	if !strings.HasPrefix(tok, `"`) {
		return tok, nil
	}
	if !strings.HasSuffix(tok, `"`) || len(tok) < 2 {
		return "", tberrors.NewInvalidQuery(tok)
	}
	return tok[1 : len(tok)-1], nil
}
