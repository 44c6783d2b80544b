package batch

import (
	"fmt"
	"strings"
	"testing"

	"docx_forensics/internal/docx"
	"docx_forensics/internal/forensics"
	"docx_forensics/internal/stats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	name     string
	author   string
	modifier string
	text     string
	catalog  []string
}

func newDocument(f fixture) *Document {
	md := docx.DocumentMetadata{
		Core: docx.Properties{},
		Extended: docx.CoreProperties{
			Author:         f.author,
			LastModifiedBy: f.modifier,
			Revision:       "1",
		},
	}
	text := f.text
	if text == "" {
		text = "Some ordinary paragraph text."
	}
	paragraphs := []docx.Paragraph{{ID: "p1", Runs: []docx.Run{{Text: text, RSID: "00A0"}}}}
	catalog := docx.NewRevisionCatalog(f.catalog...)
	s := stats.Compute(paragraphs, md, catalog)
	return &Document{
		Name:       f.name,
		Paragraphs: paragraphs,
		Metadata:   md,
		Catalog:    catalog,
		Statistics: s,
		Result:     forensics.NewScorer(forensics.DefaultThresholds(), nil).Score(s),
	}
}

func newContext(t *testing.T, fixtures ...fixture) *Context {
	t.Helper()
	bc := NewContext()
	for _, f := range fixtures {
		require.NoError(t, bc.Add(newDocument(f)))
	}
	return bc
}

func factorsOf(res *forensics.Result, rule forensics.Rule) []string {
	var out []string
	for _, f := range res.Findings {
		if f.Rule == rule.Name {
			out = append(out, f.Message)
		}
	}
	return out
}

func TestAuthorCollusion(t *testing.T) {
	bc := newContext(t,
		fixture{name: "a.docx", author: "Alice", modifier: "Mallory", catalog: []string{"01"}},
		fixture{name: "b.docx", author: "Alice", modifier: "Trent", catalog: []string{"02"}},
		fixture{name: "c.docx", author: "Carol", modifier: "Peggy", catalog: []string{"03"}},
	)

	out := NewCorrelator(DefaultOptions(), nil).Correlate(bc)

	for _, name := range []string{"a.docx", "b.docx"} {
		got := factorsOf(out.Results[name], forensics.RuleAuthorCollusion)
		require.Len(t, got, 1, name)
		assert.Contains(t, got[0], `"Alice"`)
	}
	assert.Contains(t, factorsOf(out.Results["a.docx"], forensics.RuleAuthorCollusion)[0], "b.docx")
	assert.Empty(t, factorsOf(out.Results["c.docx"], forensics.RuleAuthorCollusion))
	assert.Empty(t, factorsOf(out.Results["a.docx"], forensics.RuleModifierCollusion))
}

func TestNoAuthorCollusionWhenAuthorsDistinct(t *testing.T) {
	bc := newContext(t,
		fixture{name: "a.docx", author: "Alice", modifier: "Alice", catalog: []string{"01"}},
		fixture{name: "b.docx", author: "Bob", modifier: "Bob", catalog: []string{"02"}},
		fixture{name: "c.docx", author: "Carol", modifier: "Carol", catalog: []string{"03"}},
	)

	out := NewCorrelator(DefaultOptions(), nil).Correlate(bc)
	for _, name := range bc.Names() {
		assert.Empty(t, factorsOf(out.Results[name], forensics.RuleAuthorCollusion), name)
		assert.Empty(t, out.Results[name].Factors, name)
		assert.Equal(t, 0, out.Results[name].RawScore)
	}
}

func TestModifierCollusion(t *testing.T) {
	bc := newContext(t,
		fixture{name: "a.docx", author: "Alice", modifier: "Editor", catalog: []string{"01"}},
		fixture{name: "b.docx", author: "Bob", modifier: "Editor", catalog: []string{"02"}},
	)

	out := NewCorrelator(DefaultOptions(), nil).Correlate(bc)
	for _, name := range bc.Names() {
		got := factorsOf(out.Results[name], forensics.RuleModifierCollusion)
		require.Len(t, got, 1)
		assert.Contains(t, got[0], `"Editor"`)
	}
}

func TestAuthorModifierCrossPollinationFiresBothDirections(t *testing.T) {
	bc := newContext(t,
		fixture{name: "a.docx", author: "X", modifier: "Y", catalog: []string{"01"}},
		fixture{name: "b.docx", author: "Y", modifier: "X", catalog: []string{"02"}},
	)

	out := NewCorrelator(DefaultOptions(), nil).Correlate(bc)
	for _, name := range bc.Names() {
		res := out.Results[name]
		assert.True(t, res.Triggered(forensics.RuleAuthorAsModifier.Name), name)
		assert.True(t, res.Triggered(forensics.RuleModifierAsAuthor.Name), name)
		assert.False(t, res.Triggered(forensics.RuleAuthorCollusion.Name), name)
		// different_author 15 from the first pass plus 25 + 25.
		assert.Equal(t, 65, res.RawScore, name)
	}
}

func TestAuthorAsModifierIgnoresOwnDocument(t *testing.T) {
	bc := newContext(t,
		fixture{name: "a.docx", author: "Same", modifier: "Same", catalog: []string{"01"}},
		fixture{name: "b.docx", author: "Other", modifier: "Other", catalog: []string{"02"}},
	)
	out := NewCorrelator(DefaultOptions(), nil).Correlate(bc)
	assert.False(t, out.Results["a.docx"].Triggered(forensics.RuleAuthorAsModifier.Name))
	assert.False(t, out.Results["a.docx"].Triggered(forensics.RuleModifierAsAuthor.Name))
}

func TestSharedRevisions(t *testing.T) {
	bc := newContext(t,
		fixture{name: "b.docx", author: "B", modifier: "B", catalog: []string{"00A1", "00B2", "00C3"}},
		fixture{name: "a.docx", author: "A", modifier: "A", catalog: []string{"00B2", "00C3"}},
		fixture{name: "c.docx", author: "C", modifier: "C", catalog: []string{"00D4"}},
	)

	out := NewCorrelator(DefaultOptions(), nil).Correlate(bc)
	assert.Equal(t, map[string][]string{
		"00B2": {"a.docx", "b.docx"},
		"00C3": {"a.docx", "b.docx"},
	}, out.SharedRevisions)

	got := factorsOf(out.Results["a.docx"], forensics.RuleSharedRevisions)
	require.Len(t, got, 1)
	assert.Contains(t, got[0], "00B2, 00C3")
	assert.True(t, out.Results["b.docx"].Triggered(forensics.RuleSharedRevisions.Name))
	assert.False(t, out.Results["c.docx"].Triggered(forensics.RuleSharedRevisions.Name))
}

func TestCharsPerRunOutlier(t *testing.T) {
	var fixtures []fixture
	for i := range 5 {
		fixtures = append(fixtures, fixture{
			name:    fmt.Sprintf("doc%d.docx", i),
			author:  fmt.Sprintf("author%d", i),
			text:    strings.Repeat("x", 10),
			catalog: []string{fmt.Sprintf("0%d", i)},
		})
	}
	fixtures = append(fixtures, fixture{name: "odd.docx", author: "odd", text: strings.Repeat("y", 100), catalog: []string{"99"}})
	for i := range fixtures {
		fixtures[i].modifier = fixtures[i].author
	}
	bc := newContext(t, fixtures...)

	out := NewCorrelator(DefaultOptions(), nil).Correlate(bc)
	got := factorsOf(out.Results["odd.docx"], forensics.RuleCharsPerRunOutlier)
	require.Len(t, got, 1)
	assert.Contains(t, got[0], "100.00 average characters per run")
	for i := range 5 {
		name := fmt.Sprintf("doc%d.docx", i)
		assert.Empty(t, out.Results[name].Factors, name)
	}
	// Every document has one word and one declared revision, so density has no spread.
	assert.False(t, out.Results["odd.docx"].Triggered(forensics.RuleRevisionDensityOutlier.Name))
}

func TestRevisionDensityOutlier(t *testing.T) {
	words := func(n int) string {
		return strings.TrimSpace(strings.Repeat("word ", n))
	}
	var fixtures []fixture
	for i := range 5 {
		name := fmt.Sprintf("doc%d.docx", i)
		fixtures = append(fixtures, fixture{name: name, author: name, modifier: name, text: words(10), catalog: []string{fmt.Sprintf("0%d", i)}})
	}
	fixtures = append(fixtures, fixture{name: "dense.docx", author: "dense", modifier: "dense", text: words(900), catalog: []string{"99"}})
	bc := newContext(t, fixtures...)

	out := NewCorrelator(DefaultOptions(), nil).Correlate(bc)
	dense := out.Results["dense.docx"]
	got := factorsOf(dense, forensics.RuleRevisionDensityOutlier)
	require.Len(t, got, 1)
	assert.Equal(t, "Revision density is a batch outlier: 900 words per revision session (z-score 2.24).", got[0])
	for _, f := range dense.Findings {
		if f.Rule == forensics.RuleRevisionDensityOutlier.Name {
			assert.Equal(t, 20, f.Weight)
		}
	}
	// Per-document density (20) plus both batch outliers (20 + 15).
	assert.Equal(t, 55, dense.RawScore)
	assert.Equal(t, 295, dense.MaxScore)
	for i := range 5 {
		name := fmt.Sprintf("doc%d.docx", i)
		assert.False(t, out.Results[name].Triggered(forensics.RuleRevisionDensityOutlier.Name), name)
	}
}

func TestStatisticalRulesCanBeDisabled(t *testing.T) {
	var fixtures []fixture
	for i := range 6 {
		text := "short"
		if i == 5 {
			text = strings.Repeat("z", 400)
		}
		name := fmt.Sprintf("d%d.docx", i)
		fixtures = append(fixtures, fixture{name: name, author: name, modifier: name, text: text, catalog: []string{name}})
	}
	bc := newContext(t, fixtures...)

	c := NewCorrelator(Options{ZScore: 2, Statistical: false}, nil)
	out := c.Correlate(bc)
	assert.False(t, out.Results["d5.docx"].Triggered(forensics.RuleCharsPerRunOutlier.Name))
	assert.Equal(t, 260, c.Rules().MaxScore())
	assert.Equal(t, 260, out.Results["d5.docx"].MaxScore)
}

func TestOutliersNeedTwoValidDocuments(t *testing.T) {
	bc := newContext(t, fixture{name: "only.docx", author: "A", modifier: "A", text: strings.Repeat("q", 900), catalog: []string{"01"}})
	out := NewCorrelator(DefaultOptions(), nil).Correlate(bc)
	assert.Empty(t, out.Results["only.docx"].Factors)
	assert.Empty(t, out.SharedRevisions)
}

func TestCorrelateKeepsFirstPassResults(t *testing.T) {
	bc := newContext(t,
		fixture{name: "a.docx", author: "Alice", modifier: "Bob", catalog: []string{"01"}},
		fixture{name: "b.docx", author: "Alice", modifier: "Carol", catalog: []string{"01"}},
	)
	first, _ := bc.Get("a.docx")
	require.Equal(t, 15, first.Result.RawScore)

	out := NewCorrelator(DefaultOptions(), nil).Correlate(bc)

	assert.Equal(t, 15, first.Result.RawScore)
	assert.Equal(t, 120, first.Result.MaxScore)
	assert.Equal(t, []string{"Author and Last Modified By are different."}, first.Result.Factors)

	augmented := out.Results["a.docx"]
	// different_author 15, author_collusion 30, shared_revisions 30.
	assert.Equal(t, 75, augmented.RawScore)
	assert.Equal(t, 295, augmented.MaxScore)
	assert.Equal(t, 25.42, augmented.NormalizedScore)
	assert.Equal(t, first.Result.Factors[0], augmented.Factors[0])
}

func TestContextRejectsDuplicates(t *testing.T) {
	bc := NewContext()
	require.NoError(t, bc.Add(newDocument(fixture{name: "a.docx"})))
	assert.Error(t, bc.Add(newDocument(fixture{name: "a.docx"})))
	assert.Error(t, bc.Add(&Document{Name: "broken.docx"}))
	assert.Equal(t, []string{"a.docx"}, bc.Names())

	_, ok := bc.Get("missing.docx")
	assert.False(t, ok)
}
