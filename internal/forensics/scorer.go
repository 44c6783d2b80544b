// Package forensics scores a document's statistics against the weighted rule table.
package forensics

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"docx_forensics/internal/diag"
	"docx_forensics/internal/stats"
)

// Thresholds parameterize the per-document predicates.
type Thresholds struct {
	IQRMultiplier        float64
	WritingSpeedWPM      float64
	MinWritingMinutes    float64
	RevisionDensityWords float64
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		IQRMultiplier:        stats.DefaultIQRMultiplier,
		WritingSpeedWPM:      200,
		MinWritingMinutes:    1,
		RevisionDensityWords: 500,
	}
}

type check struct {
	rule Rule
	eval func(s *stats.Statistics, t Thresholds) (string, bool)
}

var documentChecks = []check{
	{RuleDifferentAuthor, differentAuthor},
	{RuleModifiedBeforeCreated, modifiedBeforeCreated},
	{RuleMissingMetadata, missingMetadata},
	{RuleLongRunOutlier, longRunOutlier},
	{RuleWritingSpeed, writingSpeed},
	{RuleRevisionDensity, revisionDensity},
}

type Scorer struct {
	thresholds Thresholds
	logger     *slog.Logger
}

func NewScorer(t Thresholds, logger *slog.Logger) *Scorer {
	if logger == nil {
		logger = diag.Discard()
	}
	return &Scorer{thresholds: t, logger: logger}
}

func (s *Scorer) Rules() Registry {
	return DocumentRules()
}

// Score runs every per-document rule in table order and normalizes against the
// per-document maximum.
func (s *Scorer) Score(st *stats.Statistics) *Result {
	res := NewResult(st.Summary())
	for _, c := range documentChecks {
		msg, fired := c.eval(st, s.thresholds)
		if !fired {
			continue
		}
		s.logger.Debug("rule triggered", "rule", c.rule.Name, "weight", c.rule.Weight)
		res.Add(c.rule, msg)
	}
	res.Normalize(s.Rules().MaxScore())
	return res
}

func differentAuthor(s *stats.Statistics, _ Thresholds) (string, bool) {
	author, modifier := s.Metadata.Author(), s.Metadata.LastModifiedBy()
	if author == "" || modifier == "" || author == modifier {
		return "", false
	}
	return "Author and Last Modified By are different.", true
}

func modifiedBeforeCreated(s *stats.Statistics, _ Thresholds) (string, bool) {
	created, ok := s.Metadata.Created()
	if !ok {
		return "", false
	}
	modified, ok := s.Metadata.Modified()
	if !ok || !modified.Before(created) {
		return "", false
	}
	return "Document was last modified before it was created.", true
}

func missingMetadata(s *stats.Statistics, _ Thresholds) (string, bool) {
	var missing []string
	if s.Metadata.Author() == "" {
		missing = append(missing, "Author")
	}
	if s.Metadata.LastModifiedBy() == "" {
		missing = append(missing, "Last Modified By")
	}
	if s.Metadata.Revision() == "" {
		missing = append(missing, "Revision")
	}
	if len(missing) == 0 {
		return "", false
	}
	return fmt.Sprintf("Missing key metadata: %s.", strings.Join(missing, ", ")), true
}

func longRunOutlier(s *stats.Statistics, t Thresholds) (string, bool) {
	outliers := stats.Outliers(s.CharsPerRun, t.IQRMultiplier)
	if len(outliers) == 0 {
		return "", false
	}
	longest := outliers[0]
	for _, n := range outliers[1:] {
		longest = max(longest, n)
	}
	return fmt.Sprintf(
		"%d unusually long text run(s) detected (longest %d characters, upper bound %.2f).",
		len(outliers), longest, stats.UpperFence(s.CharsPerRun, t.IQRMultiplier),
	), true
}

func writingSpeed(s *stats.Statistics, t Thresholds) (string, bool) {
	created, ok := s.Metadata.Created()
	if !ok {
		return "", false
	}
	modified, ok := s.Metadata.Modified()
	if !ok {
		return "", false
	}
	minutes := modified.Sub(created).Minutes()
	if minutes <= t.MinWritingMinutes || s.WordCount == 0 {
		return "", false
	}
	wpm := float64(s.WordCount) / minutes
	if wpm <= t.WritingSpeedWPM {
		return "", false
	}
	return fmt.Sprintf(
		"Suspicious writing speed: %d words per minute (%d words in %d minutes, threshold %d).",
		int(math.Round(wpm)), s.WordCount, int(math.Round(minutes)), int(math.Round(t.WritingSpeedWPM)),
	), true
}

// revisionDensity divides by the declared catalog size.
func revisionDensity(s *stats.Statistics, t Thresholds) (string, bool) {
	revisions := s.DeclaredRevisionCount()
	if revisions == 0 || s.WordCount == 0 {
		return "", false
	}
	density := s.WordsPerDeclaredRevision()
	if density <= t.RevisionDensityWords {
		return "", false
	}
	return fmt.Sprintf(
		"Suspicious RSID density: %d words per revision session (%d words, %d sessions, threshold %d).",
		int(math.Round(density)), s.WordCount, revisions, int(math.Round(t.RevisionDensityWords)),
	), true
}
