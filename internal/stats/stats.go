// Package stats derives aggregate metrics from extracted paragraphs.
package stats

import (
	"math"
	"strings"

	"docx_forensics/internal/docx"
)

const DefaultShortParagraphThreshold = 30

// Statistics is computed once from an immutable snapshot and never mutated.
type Statistics struct {
	Metadata docx.DocumentMetadata
	Catalog  docx.RevisionCatalog

	ParagraphCount      int
	ShortParagraphCount int
	WordCount           int
	TotalChars          int

	// CharsPerRevision sums run lengths keyed by resolved run RSID. Runs without one
	// are not counted.
	CharsPerRevision map[string]int
	// RevisionOrder lists CharsPerRevision keys in first-use order.
	RevisionOrder []string
	// CharsPerRun holds one length per run, in document order.
	CharsPerRun []int
}

type Calculator struct {
	ShortParagraphThreshold int
}

func Compute(paragraphs []docx.Paragraph, metadata docx.DocumentMetadata, catalog docx.RevisionCatalog) *Statistics {
	return Calculator{ShortParagraphThreshold: DefaultShortParagraphThreshold}.Compute(paragraphs, metadata, catalog)
}

func (c Calculator) Compute(paragraphs []docx.Paragraph, metadata docx.DocumentMetadata, catalog docx.RevisionCatalog) *Statistics {
	threshold := c.ShortParagraphThreshold
	if threshold <= 0 {
		threshold = DefaultShortParagraphThreshold
	}

	s := &Statistics{
		Metadata:         metadata,
		Catalog:          catalog,
		ParagraphCount:   len(paragraphs),
		CharsPerRevision: map[string]int{},
		CharsPerRun:      []int{},
	}
	for _, p := range paragraphs {
		paragraphChars := 0
		for _, r := range p.Runs {
			n := r.CharCount()
			paragraphChars += n
			s.TotalChars += n
			s.CharsPerRun = append(s.CharsPerRun, n)
			s.WordCount += len(strings.Fields(r.Text))
			if r.RSID == "" {
				continue
			}
			if _, seen := s.CharsPerRevision[r.RSID]; !seen {
				s.RevisionOrder = append(s.RevisionOrder, r.RSID)
			}
			s.CharsPerRevision[r.RSID] += n
		}
		if paragraphChars < threshold {
			s.ShortParagraphCount++
		}
	}
	return s
}

func (s *Statistics) RunCount() int {
	return len(s.CharsPerRun)
}

// UsedRevisionCount is the number of distinct RSIDs carried by runs.
func (s *Statistics) UsedRevisionCount() int {
	return len(s.CharsPerRevision)
}

// DeclaredRevisionCount is the size of the settings catalog.
func (s *Statistics) DeclaredRevisionCount() int {
	return s.Catalog.Len()
}

// RevisionCharList returns per-revision character totals in first-use order.
func (s *Statistics) RevisionCharList() []int {
	out := make([]int, len(s.RevisionOrder))
	for i, rsid := range s.RevisionOrder {
		out[i] = s.CharsPerRevision[rsid]
	}
	return out
}

// LargestRevisionChars is the biggest per-revision character total.
func (s *Statistics) LargestRevisionChars() int {
	largest := 0
	for _, n := range s.RevisionCharList() {
		largest = max(largest, n)
	}
	return largest
}

// UndeclaredRevisionCount counts RSIDs carried by runs but absent from the catalog.
func (s *Statistics) UndeclaredRevisionCount() int {
	n := 0
	for _, rsid := range s.RevisionOrder {
		if !s.Catalog.Contains(rsid) {
			n++
		}
	}
	return n
}

// AvgCharsPerDeclaredRevision divides every run character by the catalog size.
func (s *Statistics) AvgCharsPerDeclaredRevision() float64 {
	return ratio(float64(s.TotalChars), s.DeclaredRevisionCount())
}

// AvgCharsPerUsedRevision divides characters of RSID-bearing runs by the number of
// RSIDs those runs actually use.
func (s *Statistics) AvgCharsPerUsedRevision() float64 {
	total := 0
	for _, n := range s.CharsPerRevision {
		total += n
	}
	return ratio(float64(total), s.UsedRevisionCount())
}

func (s *Statistics) AvgCharsPerRun() float64 {
	return ratio(float64(s.TotalChars), s.RunCount())
}

// WordsPerDeclaredRevision is the density the per-document and batch rules use.
func (s *Statistics) WordsPerDeclaredRevision() float64 {
	return ratio(float64(s.WordCount), s.DeclaredRevisionCount())
}

// Summary is the display snapshot of the key aggregates.
type Summary struct {
	TotalCharacters             int     `json:"total_characters_count"`
	TotalWords                  int     `json:"total_word_count"`
	TotalParagraphs             int     `json:"total_paragraph_count"`
	ShortParagraphs             int     `json:"short_paragraph_count"`
	TotalRuns                   int     `json:"total_runs_count"`
	UniqueRevisions             int     `json:"unique_rsid_count"`
	DeclaredRevisions           int     `json:"declared_rsid_count"`
	UndeclaredRevisions         int     `json:"undeclared_rsid_count"`
	LargestRevisionChars        int     `json:"largest_rsid_chars"`
	AvgCharsPerUsedRevision     float64 `json:"average_chars_per_rsid"`
	AvgCharsPerDeclaredRevision float64 `json:"average_chars_per_declared_rsid"`
	AvgCharsPerRun              float64 `json:"average_chars_per_run"`
	AvgWordsPerRevision         float64 `json:"average_words_per_rsid"`
	AvgWordsPerRun              float64 `json:"average_words_per_run"`
}

func (s *Statistics) Summary() Summary {
	return Summary{
		TotalCharacters:             s.TotalChars,
		TotalWords:                  s.WordCount,
		TotalParagraphs:             s.ParagraphCount,
		ShortParagraphs:             s.ShortParagraphCount,
		TotalRuns:                   s.RunCount(),
		UniqueRevisions:             s.UsedRevisionCount(),
		DeclaredRevisions:           s.DeclaredRevisionCount(),
		UndeclaredRevisions:         s.UndeclaredRevisionCount(),
		LargestRevisionChars:        s.LargestRevisionChars(),
		AvgCharsPerUsedRevision:     Round(s.AvgCharsPerUsedRevision(), 2),
		AvgCharsPerDeclaredRevision: Round(s.AvgCharsPerDeclaredRevision(), 2),
		AvgCharsPerRun:              Round(s.AvgCharsPerRun(), 2),
		AvgWordsPerRevision:         Round(ratio(float64(s.WordCount), s.UsedRevisionCount()), 2),
		AvgWordsPerRun:              Round(ratio(float64(s.WordCount), s.RunCount()), 2),
	}
}

func ratio(num float64, den int) float64 {
	if den <= 0 {
		return 0
	}
	return num / float64(den)
}

// Round rounds half away from zero to the given number of decimals.
func Round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
