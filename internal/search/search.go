// Package search executes compiled queries against the catalog and FTS
// index, paginating and hydrating result rows.
package search

import (
	"context"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/tagbox/tagbox/internal/catalog"
	"github.com/tagbox/tagbox/internal/fts"
	"github.com/tagbox/tagbox/internal/query"
	"github.com/tagbox/tagbox/internal/tberrors"
)

// SortField is one of the DSL's documented sort_by values.
type SortField string

const (
	SortCreatedAt SortField = "created_at"
	SortUpdatedAt SortField = "updated_at"
	SortTitle     SortField = "title"
	SortYear      SortField = "year"
)

var sortColumns = map[SortField]string{
	SortCreatedAt: "created_at",
	SortUpdatedAt: "updated_at",
	SortTitle:     "title",
	SortYear:      "year",
}

// SortDirection is ascending or descending.
type SortDirection string

const (
	Ascending  SortDirection = "asc"
	Descending SortDirection = "desc"
)

// Options controls pagination and ordering. The zero value is a
// sensible default: offset 0, limit 20, rank/created_at sort, live files
// only.
type Options struct {
	Offset         int
	Limit          int
	SortBy         SortField
	SortDirection  SortDirection
	IncludeDeleted bool
}

// Result is the paginated, hydrated response shape.
type Result struct {
	Entries    []catalog.FileEntry
	TotalCount int
	Offset     int
	Limit      int
}

// Searcher executes compiled queries against a Catalog + FTS Index.
type Searcher struct {
	cat       *catalog.Catalog
	enableFTS bool
}

// New builds a Searcher bound to cat. enableFTS mirrors search.enable_fts:
// when false, Search/FuzzySearch never touch files_fts — every term
// lowers to a plain SQL LIKE/EXISTS predicate instead.
func New(cat *catalog.Catalog, enableFTS bool) *Searcher {
	return &Searcher{cat: cat, enableFTS: enableFTS}
}

// Search parses raw DSL text and runs it with opts.
func (s *Searcher) Search(ctx context.Context, dsl string, opts Options) (*Result, error) {
	ast, err := query.Parse(dsl)
	if err != nil {
		return nil, err
	}
	var compiled *query.Compiled
	if s.enableFTS {
		compiled, err = query.Compile(ast, s.cat.FTS().Tokenizer())
	} else {
		compiled, err = query.CompileNoFTS(ast)
	}
	if err != nil {
		return nil, err
	}
	return s.run(ctx, compiled, opts)
}

// FuzzySearch builds an implicit bare-term query with relaxed
// tokenization rather than the strict DSL grammar. Each whitespace-
// separated word in text becomes its own bare FTS5 prefix term (word*),
// which approximates trigram-style partial matching without requiring an
// FTS5 trigram tokenizer column the schema doesn't define.
func (s *Searcher) FuzzySearch(ctx context.Context, text string, opts Options) (*Result, error) {
	words := strings.Fields(text)
	if len(words) == 0 {
		return s.run(ctx, &query.Compiled{MatchAll: true}, opts)
	}

	if !s.enableFTS {
		// No files_fts to run a prefix MATCH against: approximate the same
		// intent with an OR-of-substring LIKE predicate per word across the
		// free-text columns.
		predicates := make([]sq.Sqlizer, 0, len(words))
		for _, w := range words {
			predicates = append(predicates, scalarFreeTextLike(w))
		}
		return s.run(ctx, &query.Compiled{Predicate: sq.And(predicates)}, opts)
	}

	fragments := make([]string, 0, len(words))
	for _, w := range words {
		fragments = append(fragments, fts.EscapeMatchTerm(s.cat.FTS().Tokenizer().Segment(w))+"*")
	}
	compiled := &query.Compiled{MatchExpr: strings.Join(fragments, " ")}
	return s.run(ctx, compiled, opts)
}

// scalarFreeTextLike matches FuzzySearch's non-FTS fallback predicate
// shape to query.scalarFreeTextPredicate's bare-term columns without
// exporting that helper across package boundaries.
func scalarFreeTextLike(word string) sq.Sqlizer {
	like := "%" + strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(word) + "%"
	cols := []string{"title", "summary", "category1", "category2", "category3"}
	clauses := make([]string, len(cols))
	args := make([]interface{}, len(cols))
	for i, col := range cols {
		clauses[i] = fmt.Sprintf("%s LIKE ? ESCAPE '\\'", col)
		args[i] = like
	}
	return sq.Expr("("+strings.Join(clauses, " OR ")+")", args...)
}

func (s *Searcher) run(ctx context.Context, compiled *query.Compiled, opts Options) (*Result, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	var rankOrder []string
	useFTSOrder := false
	if !compiled.MatchAll && compiled.HasMatch() {
		hits, err := s.cat.FTS().Search(ctx, compiled.MatchExpr)
		if err != nil {
			return nil, tberrors.NewInvalidQuery(compiled.MatchExpr)
		}
		rankOrder = make([]string, 0, len(hits))
		for _, h := range hits {
			rankOrder = append(rankOrder, h.FileID)
		}
		useFTSOrder = opts.SortBy == ""
	}

	where := func(b sq.SelectBuilder) sq.SelectBuilder {
		if !opts.IncludeDeleted {
			b = b.Where(sq.Eq{"is_deleted": 0})
		}
		if compiled.HasPredicate() {
			b = b.Where(compiled.Predicate)
		}
		if rankOrder != nil {
			b = b.Where(sq.Eq{"id": rankOrder})
		}
		return b
	}

	totalCount, err := s.countMatching(ctx, where)
	if err != nil {
		return nil, err
	}

	var ids []string
	if useFTSOrder {
		ids, err = s.idsInRankOrder(ctx, where, rankOrder)
	} else {
		ids, err = s.idsInColumnOrder(ctx, where, opts, limit, offset)
	}
	if err != nil {
		return nil, err
	}

	if useFTSOrder {
		if offset > len(ids) {
			offset = len(ids)
		}
		end := offset + limit
		if end > len(ids) {
			end = len(ids)
		}
		ids = ids[offset:end]
	}

	entries := make([]catalog.FileEntry, 0, len(ids))
	for _, id := range ids {
		entry, err := s.cat.GetFile(id)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}

	return &Result{Entries: entries, TotalCount: totalCount, Offset: offset, Limit: limit}, nil
}

func (s *Searcher) countMatching(ctx context.Context, where func(sq.SelectBuilder) sq.SelectBuilder) (int, error) {
	builder := where(psql().Select("COUNT(*)").From("files"))
	sqlStr, args, err := builder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count query: %w", err)
	}
	var count int
	if err := s.cat.DB().QueryRowContext(ctx, sqlStr, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count query failed: %w", err)
	}
	return count, nil
}

// idsInRankOrder fetches the candidate ids matching where and reorders them
// to rankOrder's bm25 order (most relevant first), since the SQL IN clause
// does not itself preserve FTS5's rank ordering.
func (s *Searcher) idsInRankOrder(ctx context.Context, where func(sq.SelectBuilder) sq.SelectBuilder, rankOrder []string) ([]string, error) {
	builder := where(psql().Select("id").From("files"))
	sqlStr, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build search query: %w", err)
	}

	rows, err := s.cat.DB().QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("search query failed: %w", err)
	}
	defer rows.Close()

	present := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan search row: %w", err)
		}
		present[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	ordered := make([]string, 0, len(present))
	for _, id := range rankOrder {
		if present[id] {
			ordered = append(ordered, id)
		}
	}
	return ordered, nil
}

// idsInColumnOrder fetches one page of ids ordered by opts.SortBy (default
// created_at DESC), pushing ORDER BY/LIMIT/OFFSET into SQL.
func (s *Searcher) idsInColumnOrder(ctx context.Context, where func(sq.SelectBuilder) sq.SelectBuilder, opts Options, limit, offset int) ([]string, error) {
	column := "created_at"
	direction := "DESC"
	if col, ok := sortColumns[opts.SortBy]; ok {
		column = col
	}
	if opts.SortDirection == Ascending {
		direction = "ASC"
	} else if opts.SortDirection == Descending {
		direction = "DESC"
	} else if opts.SortBy == SortTitle {
		direction = "ASC"
	}

	builder := where(psql().Select("id").From("files")).
		OrderBy(fmt.Sprintf("%s %s", column, direction)).
		Limit(uint64(limit)).
		Offset(uint64(offset))

	sqlStr, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build search query: %w", err)
	}

	rows, err := s.cat.DB().QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("search query failed: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan search row: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func psql() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Question)
}
