package tagger

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/pbaille/gardenlog/internal/catalog"
	"github.com/pbaille/gardenlog/internal/domain"
)

type fakeExpander map[string][]string

func (f fakeExpander) Expand(text string) []string { return f[text] }

func TestExtractTagIDs(t *testing.T) {
	tg := New(catalog.Definitions())

	tests := []struct {
		name string
		text string
		want []string
	}{
		{"prefix match on long keyword", "compré limones", []string{"limon"}},
		{"catalog order not text order", "lemon tree watered", []string{"riego", "arbol", "limon"}},
		{"same tags any token order", "watered lemon tree", []string{"riego", "arbol", "limon"}},
		{"multi-word phrase matches as substring", "I pruned the fruit trees", []string{"poda", "frutal"}},
		{"diacritics folded", "Sembré maíz y frijoles", []string{"siembra", "maiz", "frijol"}},
		{"short keyword needs whole word", "plant beans", []string{"frijol"}},
		{"short keyword next to punctuation", "ant,aphid!", []string{"plagas"}},
		{"no match", "went to the market", nil},
		{"blank", "   ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tg.ExtractTagIDs(tt.text)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ExtractTagIDs(%q) mismatch (-want +got):\n%s", tt.text, diff)
			}
		})
	}
}

func TestExtractTagIDs_Deterministic(t *testing.T) {
	tg := New(catalog.Definitions())
	first := tg.ExtractTagIDs("Planted seeds, watered the soil and pruned the orange tree")
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, tg.ExtractTagIDs("Planted seeds, watered the soil and pruned the orange tree"))
	}
	assert.Equal(t, []string{"siembra", "poda", "riego", "suelo", "semillas", "arbol", "naranja"}, first)
}

func TestExtractTagIDs_UsesExpansion(t *testing.T) {
	text := "Regué el jardín"
	exp := fakeExpander{text: {"regue", "regar", "jardin"}}

	withExpansion := New(catalog.Definitions(), WithExpander(exp))
	assert.Equal(t, []string{"riego"}, withExpansion.ExtractTagIDs(text))

	withoutExpansion := New(catalog.Definitions())
	assert.Empty(t, withoutExpansion.ExtractTagIDs(text))
}

func TestExtractTagIDs_ExpansionTokensAreNormalized(t *testing.T) {
	exp := fakeExpander{"x": {"  Árbol ", ""}}
	tg := New(catalog.Definitions(), WithExpander(exp))
	assert.Equal(t, []string{"arbol"}, tg.ExtractTagIDs("x"))
}

func TestExtractTagIDs_PrefixNeedsFiveRunes(t *testing.T) {
	defs := []domain.TagDefinition{
		{ID: "short", Keywords: []string{"pode"}},
		{ID: "long", Keywords: []string{"poda"}},
		{ID: "five", Keywords: []string{"prune"}},
	}
	tg := New(defs)

	assert.Empty(t, tg.ExtractTagIDs("podemos"))
	assert.Equal(t, []string{"five"}, tg.ExtractTagIDs("pruned"))
}

func TestWithExpander_NilKeepsDefault(t *testing.T) {
	tg := New(catalog.Definitions(), WithExpander(nil), WithLogger(nil))
	assert.Equal(t, []string{"arbol"}, tg.ExtractTagIDs("tree"))
}
