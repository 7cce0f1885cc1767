package pathgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateFilenameAuthorFormatting(t *testing.T) {
	year := 2017
	cases := []struct {
		name    string
		authors []string
		want    string
	}{
		{"none", nil, "Attention_Is_All_You_Need_unknown_2017.pdf"},
		{"one", []string{"Vaswani"}, "Attention_Is_All_You_Need_Vaswani_2017.pdf"},
		{"two", []string{"Vaswani", "Shazeer"}, "Attention_Is_All_You_Need_Vaswani_and_Shazeer_2017.pdf"},
		{"three", []string{"Vaswani", "Shazeer", "Parmar"}, "Attention_Is_All_You_Need_Vaswani_et_al_2017.pdf"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := GenerateFilename("{title}_{authors}_{year}", "paper.pdf", Metadata{
				Title:   "Attention Is All You Need",
				Authors: c.authors,
				Year:    &year,
			})
			require.NoError(t, err)
			assert.Equal(t, c.want, got)
		})
	}
}

func TestGenerateFilenameSanitizesForbiddenCharacters(t *testing.T) {
	got, err := GenerateFilename("{title}", "x.pdf", Metadata{Title: `A/B\C?D%E*F:G|H"I<J>K.L;M`})
	require.NoError(t, err)
	assert.Equal(t, "A_B_C_D_E_F_G_H_I_J_K_L_M.pdf", got)
}

func TestGenerateFilenameEmptyCollapsesToUnnamed(t *testing.T) {
	got, err := GenerateFilename("{title}", "x.pdf", Metadata{Title: "   "})
	require.NoError(t, err)
	assert.Equal(t, "unnamed_file.pdf", got)
}

func TestGenerateFilenameUnknownTokenLeftLiteral(t *testing.T) {
	got, err := GenerateFilename("{title}_{nonexistent}", "x.pdf", Metadata{Title: "Paper"})
	require.NoError(t, err)
	assert.Equal(t, "Paper_{nonexistent}.pdf", got)
}

func TestGeneratePathJoinsUnderStorageDir(t *testing.T) {
	got, err := GeneratePath("{category1}/{filename}", "/library", "Paper_unknown_unknown.pdf", Metadata{
		Category1: "papers",
	})
	require.NoError(t, err)
	assert.Equal(t, "/library/papers/Paper_unknown_unknown.pdf", got)
}

func TestDeterministic(t *testing.T) {
	meta := Metadata{Title: "Same Input", Authors: []string{"A", "B"}, Category1: "cat"}
	f1, err := GenerateFilename("{title}_{authors}", "x.pdf", meta)
	require.NoError(t, err)
	f2, err := GenerateFilename("{title}_{authors}", "x.pdf", meta)
	require.NoError(t, err)
	assert.Equal(t, f1, f2)

	p1, err := GeneratePath("{category1}/{filename}", "/lib", f1, meta)
	require.NoError(t, err)
	p2, err := GeneratePath("{category1}/{filename}", "/lib", f2, meta)
	require.NoError(t, err)
	assert.Equal(t, p1, p2)
}

func TestResolveCollisionAppendsNumericSuffix(t *testing.T) {
	taken := map[string]bool{
		"/lib/paper.pdf":   true,
		"/lib/paper_1.pdf": true,
	}
	got := ResolveCollision("/lib/paper.pdf", func(p string) bool { return taken[p] })
	assert.Equal(t, "/lib/paper_2.pdf", got)
}

func TestResolveCollisionReturnsTargetWhenFree(t *testing.T) {
	got := ResolveCollision("/lib/paper.pdf", func(string) bool { return false })
	assert.Equal(t, "/lib/paper.pdf", got)
}
