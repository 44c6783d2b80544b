package stats

import (
	"math"
	"strings"
	"testing"

	"docx_forensics/internal/docx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func para(id string, runs ...docx.Run) docx.Paragraph {
	return docx.Paragraph{ID: id, Runs: runs}
}

func TestComputeAggregates(t *testing.T) {
	paragraphs := []docx.Paragraph{
		para("a", docx.Run{Text: "Hello world", RSID: "01"}, docx.Run{Text: " again", RSID: "02"}),
		para("b"),
		para("c", docx.Run{Text: strings.Repeat("long ", 8), RSID: "01"}, docx.Run{Text: "untracked"}),
	}
	catalog := docx.NewRevisionCatalog("01", "02", "03", "04")

	s := Compute(paragraphs, docx.DocumentMetadata{}, catalog)

	assert.Equal(t, 3, s.ParagraphCount)
	assert.Equal(t, []int{11, 6, 40, 9}, s.CharsPerRun)
	assert.Equal(t, map[string]int{"01": 51, "02": 6}, s.CharsPerRevision)
	assert.Equal(t, []int{51, 6}, s.RevisionCharList())
	assert.Equal(t, 51, s.LargestRevisionChars())
	assert.Equal(t, 66, s.TotalChars)
	assert.Equal(t, 2+1+8+1, s.WordCount)
	// "a" has 17 chars and "b" has none; "c" has 49.
	assert.Equal(t, 2, s.ShortParagraphCount)
	assert.Equal(t, 2, s.UsedRevisionCount())
	assert.Equal(t, 4, s.DeclaredRevisionCount())
	assert.InDelta(t, 66.0/4, s.AvgCharsPerDeclaredRevision(), 1e-9)
	assert.InDelta(t, 57.0/2, s.AvgCharsPerUsedRevision(), 1e-9)
	assert.InDelta(t, 66.0/4, s.AvgCharsPerRun(), 1e-9)
}

func TestUndeclaredRevisions(t *testing.T) {
	paragraphs := []docx.Paragraph{
		para("a", docx.Run{Text: "declared", RSID: "01"}, docx.Run{Text: "stray", RSID: "7F"}),
		para("b", docx.Run{Text: "again", RSID: "7F"}, docx.Run{Text: "other", RSID: "80"}),
	}
	s := Compute(paragraphs, docx.DocumentMetadata{}, docx.NewRevisionCatalog("01", "02"))

	assert.Equal(t, 2, s.UndeclaredRevisionCount())
	summary := s.Summary()
	assert.Equal(t, 2, summary.UndeclaredRevisions)
	assert.Equal(t, 10, summary.LargestRevisionChars)
	assert.Equal(t, 0, Compute(nil, docx.DocumentMetadata{}, docx.RevisionCatalog{}).Summary().LargestRevisionChars)
}

func TestComputeShortParagraphThreshold(t *testing.T) {
	paragraphs := []docx.Paragraph{
		para("a", docx.Run{Text: strings.Repeat("x", 29)}),
		para("b", docx.Run{Text: strings.Repeat("x", 30)}),
		para("c"),
	}
	assert.Equal(t, 2, Compute(paragraphs, docx.DocumentMetadata{}, docx.RevisionCatalog{}).ShortParagraphCount)

	calc := Calculator{ShortParagraphThreshold: 10}
	assert.Equal(t, 1, calc.Compute(paragraphs, docx.DocumentMetadata{}, docx.RevisionCatalog{}).ShortParagraphCount)
}

func TestComputeCountsCharactersNotBytes(t *testing.T) {
	s := Compute([]docx.Paragraph{para("a", docx.Run{Text: "naïve café"})}, docx.DocumentMetadata{}, docx.RevisionCatalog{})
	assert.Equal(t, []int{10}, s.CharsPerRun)
}

func TestWordCountInvariantUnderParagraphOrder(t *testing.T) {
	paragraphs := []docx.Paragraph{
		para("a", docx.Run{Text: "one two three"}),
		para("b", docx.Run{Text: "  four\tfive\nsix  "}, docx.Run{Text: ""}),
		para("c", docx.Run{Text: "seven"}),
	}
	reversed := []docx.Paragraph{paragraphs[2], paragraphs[1], paragraphs[0]}

	forward := Compute(paragraphs, docx.DocumentMetadata{}, docx.RevisionCatalog{})
	backward := Compute(reversed, docx.DocumentMetadata{}, docx.RevisionCatalog{})
	assert.Equal(t, 7, forward.WordCount)
	assert.Equal(t, forward.WordCount, backward.WordCount)
}

func TestSummaryRoundsAverages(t *testing.T) {
	paragraphs := []docx.Paragraph{
		para("a", docx.Run{Text: "ab", RSID: "1"}, docx.Run{Text: "c", RSID: "2"}, docx.Run{Text: "d e", RSID: "3"}),
	}
	s := Compute(paragraphs, docx.DocumentMetadata{}, docx.NewRevisionCatalog("1", "2", "3"))
	sum := s.Summary()

	assert.Equal(t, 6, sum.TotalCharacters)
	assert.Equal(t, 4, sum.TotalWords)
	assert.Equal(t, 3, sum.TotalRuns)
	assert.Equal(t, 3, sum.UniqueRevisions)
	assert.Equal(t, 3, sum.DeclaredRevisions)
	assert.Equal(t, 2.0, sum.AvgCharsPerUsedRevision)
	assert.Equal(t, 1.33, sum.AvgWordsPerRevision)
	assert.Equal(t, 1.33, sum.AvgWordsPerRun)
}

func TestUpperFenceAndOutliers(t *testing.T) {
	lengths := []int{6, 11, 6, 11, 6, 11, 6, 11, 6, 11, 6, 11, 6, 11, 6, 11, 6, 11, 6, 11, 500, 18}

	fence := UpperFence(lengths, DefaultIQRMultiplier)
	assert.InDelta(t, 18.5, fence, 1e-9)
	assert.Equal(t, []int{500}, Outliers(lengths, DefaultIQRMultiplier))
}

func TestOutliersConsistentSample(t *testing.T) {
	lengths := make([]int, 20)
	for i := range lengths {
		lengths[i] = 130
	}
	assert.Empty(t, Outliers(lengths, DefaultIQRMultiplier))
}

func TestOutliersEmpty(t *testing.T) {
	assert.Equal(t, 0.0, UpperFence(nil, DefaultIQRMultiplier))
	assert.Empty(t, Outliers(nil, DefaultIQRMultiplier))
}

func TestMeanStd(t *testing.T) {
	mean, sd := MeanStd([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	assert.Equal(t, 5.0, mean)
	assert.Equal(t, 2.0, sd)

	mean, sd = MeanStd([]float64{3})
	require.Equal(t, 3.0, mean)
	assert.Equal(t, 0.0, sd)
}

func TestRound(t *testing.T) {
	assert.Equal(t, 12.35, Round(12.345000001, 2))
	assert.Equal(t, 3.0, Round(2.5, 0))
	assert.True(t, math.IsInf(Round(math.Inf(1), 2), 1))
}
