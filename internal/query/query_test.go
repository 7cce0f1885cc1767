package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tagbox/tagbox/internal/fts"
)

func TestParseMatchAll(t *testing.T) {
	ast, err := Parse("*")
	require.NoError(t, err)
	assert.True(t, ast.MatchAll)

	ast, err = Parse("   ")
	require.NoError(t, err)
	assert.True(t, ast.MatchAll)
}

func TestParseBareWord(t *testing.T) {
	ast, err := Parse("attention")
	require.NoError(t, err)
	require.Len(t, ast.Terms, 1)
	assert.Equal(t, Term{Field: Bare, Value: "attention"}, ast.Terms[0])
}

func TestParseFieldPrefix(t *testing.T) {
	ast, err := Parse("title:attention")
	require.NoError(t, err)
	require.Len(t, ast.Terms, 1)
	assert.Equal(t, Term{Field: Title, Value: "attention"}, ast.Terms[0])
}

func TestParseNegation(t *testing.T) {
	ast, err := Parse("-tag:draft")
	require.NoError(t, err)
	require.Len(t, ast.Terms, 1)
	assert.Equal(t, Term{Negative: true, Field: TagF, Value: "draft"}, ast.Terms[0])
}

func TestParseQuotedValuePreservesWhitespace(t *testing.T) {
	ast, err := Parse(`title:"attention is all you need"`)
	require.NoError(t, err)
	require.Len(t, ast.Terms, 1)
	assert.Equal(t, "attention is all you need", ast.Terms[0].Value)
}

func TestParseMultipleTerms(t *testing.T) {
	ast, err := Parse(`year:2017 author:vaswani -tag:draft "deep learning"`)
	require.NoError(t, err)
	require.Len(t, ast.Terms, 4)
	assert.Equal(t, Year, ast.Terms[0].Field)
	assert.Equal(t, AuthorF, ast.Terms[1].Field)
	assert.True(t, ast.Terms[2].Negative)
	assert.Equal(t, Bare, ast.Terms[3].Field)
	assert.Equal(t, "deep learning", ast.Terms[3].Value)
}

func TestParseRejectsUnterminatedQuote(t *testing.T) {
	_, err := Parse(`title:"unterminated`)
	require.Error(t, err)
}

func TestParseRejectsUnknownField(t *testing.T) {
	_, err := Parse("bogus:value")
	require.Error(t, err)
}

func TestParseRejectsEmptyFieldName(t *testing.T) {
	_, err := Parse(":value")
	require.Error(t, err)
}

func TestCompileMatchAll(t *testing.T) {
	ast, err := Parse("*")
	require.NoError(t, err)
	compiled, err := Compile(ast, fts.Identity)
	require.NoError(t, err)
	assert.True(t, compiled.MatchAll)
	assert.False(t, compiled.HasMatch())
	assert.False(t, compiled.HasPredicate())
}

func TestCompileBareAndFieldTermsProduceMatchExpr(t *testing.T) {
	ast, err := Parse(`attention title:transformers`)
	require.NoError(t, err)
	compiled, err := Compile(ast, fts.Identity)
	require.NoError(t, err)
	require.True(t, compiled.HasMatch())
	assert.Contains(t, compiled.MatchExpr, `"attention"`)
	assert.Contains(t, compiled.MatchExpr, `title:"transformers"`)
}

func TestCompileNegativeBareTermLowersToNotMatchSubquery(t *testing.T) {
	ast, err := Parse("-draft")
	require.NoError(t, err)
	compiled, err := Compile(ast, fts.Identity)
	require.NoError(t, err)
	assert.False(t, compiled.HasMatch())
	require.True(t, compiled.HasPredicate())

	sqlStr, args, err := compiled.Predicate.ToSql()
	require.NoError(t, err)
	assert.Contains(t, sqlStr, "NOT IN")
	assert.Contains(t, sqlStr, "files_fts")
	assert.Equal(t, []interface{}{`"draft"`}, args)
}

func TestCompileYearProducesIntPredicate(t *testing.T) {
	ast, err := Parse("year:2017")
	require.NoError(t, err)
	compiled, err := Compile(ast, fts.Identity)
	require.NoError(t, err)
	require.True(t, compiled.HasPredicate())

	sqlStr, args, err := compiled.Predicate.ToSql()
	require.NoError(t, err)
	assert.Contains(t, sqlStr, "year")
	assert.Equal(t, []interface{}{2017}, args)
}

func TestCompileYearRejectsNonNumeric(t *testing.T) {
	ast, err := Parse("year:twenty")
	require.NoError(t, err)
	_, err = Compile(ast, fts.Identity)
	require.Error(t, err)
}

func TestCompileNegativeTagLowersToNotExists(t *testing.T) {
	ast, err := Parse("-tag:draft")
	require.NoError(t, err)
	compiled, err := Compile(ast, fts.Identity)
	require.NoError(t, err)
	require.True(t, compiled.HasPredicate())
	assert.False(t, compiled.HasMatch())

	sqlStr, args, err := compiled.Predicate.ToSql()
	require.NoError(t, err)
	assert.Contains(t, sqlStr, "NOT EXISTS")
	assert.Contains(t, sqlStr, "file_tags")
	assert.Equal(t, []interface{}{"draft"}, args)
}

func TestCompilePathLowersToLikePredicate(t *testing.T) {
	ast, err := Parse("path:papers/2017")
	require.NoError(t, err)
	compiled, err := Compile(ast, fts.Identity)
	require.NoError(t, err)
	require.True(t, compiled.HasPredicate())

	sqlStr, args, err := compiled.Predicate.ToSql()
	require.NoError(t, err)
	assert.Contains(t, sqlStr, "relative_path")
	assert.Contains(t, sqlStr, "LIKE")
	assert.Equal(t, []interface{}{"%papers/2017%"}, args)
}

func TestCompileNoFTSNeverProducesMatchExpr(t *testing.T) {
	ast, err := Parse(`attention tag:rust -tag:legacy author:"Jane Doe"`)
	require.NoError(t, err)
	compiled, err := CompileNoFTS(ast)
	require.NoError(t, err)

	assert.False(t, compiled.HasMatch())
	require.True(t, compiled.HasPredicate())

	sqlStr, _, err := compiled.Predicate.ToSql()
	require.NoError(t, err)
	assert.Contains(t, sqlStr, "LIKE")
	assert.Contains(t, sqlStr, "EXISTS")
	assert.Contains(t, sqlStr, "NOT EXISTS")
}

func TestCompileNoFTSBareTermSpansFreeTextColumns(t *testing.T) {
	ast, err := Parse("attention")
	require.NoError(t, err)
	compiled, err := CompileNoFTS(ast)
	require.NoError(t, err)

	sqlStr, args, err := compiled.Predicate.ToSql()
	require.NoError(t, err)
	assert.Contains(t, sqlStr, "title LIKE")
	assert.Contains(t, sqlStr, "summary LIKE")
	assert.Contains(t, sqlStr, "category1 LIKE")
	assert.Equal(t, []interface{}{"%attention%", "%attention%", "%attention%", "%attention%", "%attention%"}, args)
}
