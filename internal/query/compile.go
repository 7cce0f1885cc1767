package query

import (
	"fmt"
	"strconv"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/tagbox/tagbox/internal/fts"
	"github.com/tagbox/tagbox/internal/tberrors"
)

// fieldColumn maps a matchable Field to its files_fts column name.
var fieldColumn = map[Field]string{
	Bare:     "",
	Title:    "title",
	AuthorF:  "authors",
	TagF:     "tags",
	Category: "category",
	Summary:  "summary",
}

// Compiled is the lowered form of an AST: an optional FTS5 MATCH expression
// and an optional SQL predicate over the files table, combined with AND by
// the caller.
type Compiled struct {
	// MatchAll is true iff the query should return every live file,
	// unfiltered (the "*" query, or an empty query).
	MatchAll bool

	// MatchExpr is the FTS5 MATCH expression covering bare/title/author/
	// tag/category/summary terms. Empty if the query had no such terms.
	MatchExpr string

	// Predicate is the squirrel condition covering scalar fields (year,
	// publisher, source, id, path), tag/author terms lowered to
	// NOT EXISTS/EXISTS subqueries, and negative free-text terms lowered
	// to NOT IN subqueries over files_fts. Nil if the query had no such
	// terms.
	Predicate sq.Sqlizer
}

// HasMatch reports whether Search should run an files_fts MATCH at all.
func (c *Compiled) HasMatch() bool { return c.MatchExpr != "" }

// HasPredicate reports whether Search should AND in Predicate.
func (c *Compiled) HasPredicate() bool { return c.Predicate != nil }

// Compile lowers ast to an FTS5 MATCH expression plus a squirrel SQL
// predicate. tokenizer segments free-text values the same way Index.Upsert
// segmented them at write time, so index and query tokens line up for
// non-default FTS languages (custom-cjk).
func Compile(ast *AST, tokenizer fts.Tokenizer) (*Compiled, error) {
	return compile(ast, tokenizer, true)
}

// CompileNoFTS lowers ast the same way Compile does, except every
// free-text term (bare/title/summary/category, plus positive author/tag)
// is lowered to a plain SQL LIKE/EXISTS predicate instead of an FTS5 MATCH
// fragment. Used when search.enable_fts is false so a query still runs as a pure SQL scan with no
// files_fts dependency at all.
func CompileNoFTS(ast *AST) (*Compiled, error) {
	return compile(ast, fts.Identity, false)
}

func compile(ast *AST, tokenizer fts.Tokenizer, useFTS bool) (*Compiled, error) {
	if ast.MatchAll || len(ast.Terms) == 0 {
		return &Compiled{MatchAll: true}, nil
	}
	if tokenizer == nil {
		tokenizer = fts.Identity
	}

	var matchFragments []string
	var predicates []sq.Sqlizer

	for _, term := range ast.Terms {
		switch term.Field {
		case Year:
			pred, err := scalarIntPredicate("year", term)
			if err != nil {
				return nil, err
			}
			predicates = append(predicates, pred)

		case Publisher:
			predicates = append(predicates, scalarTextPredicate("publisher", term))

		case Source:
			predicates = append(predicates, scalarTextPredicate("source", term))

		case ID:
			predicates = append(predicates, scalarExactPredicate("id", term))

		case Path:
			predicates = append(predicates, scalarLikePredicate("relative_path", term))

		case AuthorF:
			if term.Negative {
				predicates = append(predicates, notExistsEdge("file_authors", "author_id", "authors", term.Value))
				continue
			}
			if !useFTS {
				predicates = append(predicates, existsEdge("file_authors", "author_id", "authors", term.Value))
				continue
			}
			matchFragments = append(matchFragments, matchFragment(term, tokenizer))

		case TagF:
			if term.Negative {
				predicates = append(predicates, notExistsEdge("file_tags", "tag_id", "tags", term.Value))
				continue
			}
			if !useFTS {
				predicates = append(predicates, existsEdge("file_tags", "tag_id", "tags", term.Value))
				continue
			}
			matchFragments = append(matchFragments, matchFragment(term, tokenizer))

		default:
			// Bare, Title, Category, Summary: free-text terms.
			if !useFTS {
				predicates = append(predicates, scalarFreeTextPredicate(term))
				continue
			}
			if term.Negative {
				predicates = append(predicates, notMatchSubquery(matchFragment(term, tokenizer)))
				continue
			}
			matchFragments = append(matchFragments, matchFragment(term, tokenizer))
		}
	}

	compiled := &Compiled{MatchExpr: strings.Join(matchFragments, " ")}
	if len(predicates) > 0 {
		compiled.Predicate = sq.And(predicates)
	}
	return compiled, nil
}

// matchFragment renders one matchable term as an FTS5 MATCH fragment: an
// optional "column:" filter plus the tokenized, quote-escaped value.
func matchFragment(term Term, tokenizer fts.Tokenizer) string {
	var b strings.Builder
	if col := fieldColumn[term.Field]; col != "" {
		b.WriteString(col)
		b.WriteString(":")
	}
	b.WriteString(fts.EscapeMatchTerm(tokenizer.Segment(term.Value)))
	return b.String()
}

// notMatchSubquery lowers a negative free-text term to "this file's id is
// not in the document set matching fragment". FTS5's own NOT is a binary
// set operator, so a query consisting only of negative terms (or starting
// with one) has no valid MATCH rendering; excluding the matched set in SQL
// always does.
func notMatchSubquery(fragment string) sq.Sqlizer {
	return sq.Expr(`files.id NOT IN (SELECT file_id FROM files_fts WHERE files_fts MATCH ?)`, fragment)
}

// scalarIntPredicate lowers a year:N term to an equality predicate on the
// files.year column. A non-numeric value is InvalidQuery: year is the only
// field the DSL documents as integer-typed.
func scalarIntPredicate(column string, term Term) (sq.Sqlizer, error) {
	n, err := strconv.Atoi(term.Value)
	if err != nil {
		return nil, tberrors.NewInvalidQuery(fmt.Sprintf("field %q requires an integer value, got %q", column, term.Value))
	}
	if term.Negative {
		return sq.NotEq{column: n}, nil
	}
	return sq.Eq{column: n}, nil
}

// scalarTextPredicate lowers a case-insensitive equality predicate, used for
// publisher/source where exact-but-case-insensitive matching mirrors how
// these fields are typically looked up.
func scalarTextPredicate(column string, term Term) sq.Sqlizer {
	eq := sq.Expr(fmt.Sprintf("LOWER(%s) = LOWER(?)", column), term.Value)
	if term.Negative {
		return sq.Expr(fmt.Sprintf("NOT (LOWER(%s) = LOWER(?))", column), term.Value)
	}
	return eq
}

// scalarExactPredicate lowers a byte-exact equality predicate, used for id.
func scalarExactPredicate(column string, term Term) sq.Sqlizer {
	if term.Negative {
		return sq.NotEq{column: term.Value}
	}
	return sq.Eq{column: term.Value}
}

// scalarLikePredicate lowers a substring predicate, used for path.
func scalarLikePredicate(column string, term Term) sq.Sqlizer {
	like := "%" + escapeLike(term.Value) + "%"
	if term.Negative {
		return sq.Expr(fmt.Sprintf("%s NOT LIKE ? ESCAPE '\\'", column), like)
	}
	return sq.Expr(fmt.Sprintf("%s LIKE ? ESCAPE '\\'", column), like)
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}

// notExistsEdge lowers a negative author/tag term to "there is no edge from
// this file to an author/tag whose name equals value (case-insensitively)".
// The id column is compared as well only when value parses as an integer.
func notExistsEdge(edgeTable, edgeColumn, lookupTable, value string) sq.Sqlizer {
	match := "LOWER(l.name) = LOWER(?)"
	args := []interface{}{value}
	if _, err := strconv.Atoi(value); err == nil {
		match = "(l.id = ? OR LOWER(l.name) = LOWER(?))"
		args = []interface{}{value, value}
	}

	sub := fmt.Sprintf(
		`NOT EXISTS (
			SELECT 1 FROM %s e
			JOIN %s l ON l.id = e.%s
			WHERE e.file_id = files.id AND %s
		)`, edgeTable, lookupTable, edgeColumn, match)

	return sq.Expr(sub, args...)
}

// existsEdge is notExistsEdge's positive counterpart: "there is an edge from
// this file to an author/tag whose name equals value", with the same
// integer-only id comparison. Used by
// CompileNoFTS in place of matching the FTS authors/tags columns, since
// without files_fts the only way to test "file has this tag/author" is the
// relational edge itself.
func existsEdge(edgeTable, edgeColumn, lookupTable, value string) sq.Sqlizer {
	match := "LOWER(l.name) = LOWER(?)"
	args := []interface{}{value}
	if _, err := strconv.Atoi(value); err == nil {
		match = "(l.id = ? OR LOWER(l.name) = LOWER(?))"
		args = []interface{}{value, value}
	}

	sub := fmt.Sprintf(
		`EXISTS (
			SELECT 1 FROM %s e
			JOIN %s l ON l.id = e.%s
			WHERE e.file_id = files.id AND %s
		)`, edgeTable, lookupTable, edgeColumn, match)

	return sq.Expr(sub, args...)
}

// freeTextColumns maps the free-text Fields to the files columns
// CompileNoFTS tests with LIKE when no FTS index is available. Bare and
// Category span multiple columns; the rest are a single column.
var freeTextColumns = map[Field][]string{
	Bare:     {"title", "summary", "category1", "category2", "category3"},
	Title:    {"title"},
	Summary:  {"summary"},
	Category: {"category1", "category2", "category3"},
}

// scalarFreeTextPredicate lowers a bare/title/summary/category term to an
// OR-of-LIKE predicate across its mapped columns, used in place of an FTS
// MATCH fragment when search.enable_fts is false. Author/tag terms never
// reach here (handled by existsEdge/notExistsEdge above).
func scalarFreeTextPredicate(term Term) sq.Sqlizer {
	like := "%" + escapeLike(term.Value) + "%"
	cols := freeTextColumns[term.Field]
	if len(cols) == 0 {
		cols = freeTextColumns[Bare]
	}

	var clauses []string
	args := make([]interface{}, 0, len(cols))
	for _, col := range cols {
		clauses = append(clauses, fmt.Sprintf("%s LIKE ? ESCAPE '\\'", col))
		args = append(args, like)
	}
	expr := "(" + strings.Join(clauses, " OR ") + ")"
	if term.Negative {
		expr = "NOT " + expr
	}
	return sq.Expr(expr, args...)
}

