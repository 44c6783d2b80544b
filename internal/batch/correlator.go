package batch

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"docx_forensics/internal/diag"
	"docx_forensics/internal/docx"
	"docx_forensics/internal/forensics"
	"docx_forensics/internal/stats"
)

const DefaultZScore = 2.0

type Options struct {
	// ZScore is the threshold above which a statistical batch outlier fires.
	ZScore float64
	// Statistical enables the revision-density and chars-per-run outlier rules.
	Statistical bool
}

func DefaultOptions() Options {
	return Options{ZScore: DefaultZScore, Statistical: true}
}

// Outcome is the second-pass result of one batch.
type Outcome struct {
	Results         map[string]*forensics.Result `json:"results"`
	SharedRevisions map[string][]string          `json:"shared_rsids"`
}

type Correlator struct {
	opts   Options
	logger *slog.Logger
}

func NewCorrelator(opts Options, logger *slog.Logger) *Correlator {
	if logger == nil {
		logger = diag.Discard()
	}
	if opts.ZScore <= 0 {
		opts.ZScore = DefaultZScore
	}
	return &Correlator{opts: opts, logger: logger}
}

// Rules is the rule set the batch-augmented scores are normalized against.
func (c *Correlator) Rules() forensics.Registry {
	return forensics.BatchRules(c.opts.Statistical)
}

// Correlate evaluates every cross-document rule. Each document gets an augmented
// copy of its first-pass Result, re-normalized over the batch rule set.
func (c *Correlator) Correlate(bc *Context) *Outcome {
	out := &Outcome{
		Results:         make(map[string]*forensics.Result, bc.Len()),
		SharedRevisions: bc.SharedRevisions(),
	}
	for _, doc := range bc.Documents() {
		out.Results[doc.Name] = doc.Result.Clone()
	}

	c.identityRules(bc, out)
	c.sharedRevisionRule(bc, out)
	if c.opts.Statistical {
		c.outlierRule(bc, out, forensics.RuleRevisionDensityOutlier, revisionDensity, func(v, z float64) string {
			return fmt.Sprintf("Revision density is a batch outlier: %.0f words per revision session (z-score %.2f).", v, z)
		})
		c.outlierRule(bc, out, forensics.RuleCharsPerRunOutlier, charsPerRun, func(v, z float64) string {
			return fmt.Sprintf("Characters per run is a batch outlier: %.2f average characters per run (z-score %.2f).", v, z)
		})
	}

	maxScore := c.Rules().MaxScore()
	for _, res := range out.Results {
		res.Normalize(maxScore)
	}
	c.logger.Debug("batch correlated",
		"documents", bc.Len(),
		"shared_revisions", len(out.SharedRevisions),
		"max_score", maxScore,
	)
	return out
}

func (c *Correlator) identityRules(bc *Context, out *Outcome) {
	authors := bc.byIdentity(docx.DocumentMetadata.Author)
	modifiers := bc.byIdentity(docx.DocumentMetadata.LastModifiedBy)

	for _, doc := range bc.Documents() {
		res := out.Results[doc.Name]
		author, modifier := doc.Metadata.Author(), doc.Metadata.LastModifiedBy()

		if author != "" {
			if others := without(authors[author], doc.Name); len(others) > 0 {
				res.Add(forensics.RuleAuthorCollusion, fmt.Sprintf(
					"Author %q is shared with other documents in this batch: %s.", author, strings.Join(others, ", ")))
			}
		}
		if modifier != "" {
			if others := without(modifiers[modifier], doc.Name); len(others) > 0 {
				res.Add(forensics.RuleModifierCollusion, fmt.Sprintf(
					"Last Modified By %q is shared with other documents in this batch: %s.", modifier, strings.Join(others, ", ")))
			}
		}
		if author != "" {
			if others := without(modifiers[author], doc.Name); len(others) > 0 {
				res.Add(forensics.RuleAuthorAsModifier, fmt.Sprintf(
					"Author %q is the last modifier of other documents in this batch: %s.", author, strings.Join(others, ", ")))
			}
		}
		if modifier != "" {
			if others := without(authors[modifier], doc.Name); len(others) > 0 {
				res.Add(forensics.RuleModifierAsAuthor, fmt.Sprintf(
					"Last Modified By %q is the author of other documents in this batch: %s.", modifier, strings.Join(others, ", ")))
			}
		}
	}
}

func (c *Correlator) sharedRevisionRule(bc *Context, out *Outcome) {
	perDoc := map[string][]string{}
	for rsid, names := range out.SharedRevisions {
		for _, name := range names {
			perDoc[name] = append(perDoc[name], rsid)
		}
	}
	for _, doc := range bc.Documents() {
		values := perDoc[doc.Name]
		if len(values) == 0 {
			continue
		}
		slices.Sort(values)
		out.Results[doc.Name].Add(forensics.RuleSharedRevisions, fmt.Sprintf(
			"Shares %d revision identifier(s) with other documents in this batch: %s.", len(values), strings.Join(values, ", ")))
	}
}

// metric returns a document's value and whether it is defined.
type metric func(s *stats.Statistics) (float64, bool)

func revisionDensity(s *stats.Statistics) (float64, bool) {
	if s.DeclaredRevisionCount() == 0 || s.WordCount == 0 {
		return 0, false
	}
	return s.WordsPerDeclaredRevision(), true
}

func charsPerRun(s *stats.Statistics) (float64, bool) {
	if s.RunCount() == 0 {
		return 0, false
	}
	return s.AvgCharsPerRun(), true
}

// outlierRule flags documents whose metric z-score exceeds the threshold. It needs
// at least two documents with a defined metric and a non-zero spread.
func (c *Correlator) outlierRule(bc *Context, out *Outcome, rule forensics.Rule, m metric, message func(v, z float64) string) {
	var names []string
	var values []float64
	for _, doc := range bc.Documents() {
		if v, ok := m(doc.Statistics); ok {
			names = append(names, doc.Name)
			values = append(values, v)
		}
	}
	if len(values) < 2 {
		return
	}
	mean, sd := stats.MeanStd(values)
	if sd == 0 {
		return
	}
	for i, v := range values {
		z := (v - mean) / sd
		if z > c.opts.ZScore {
			out.Results[names[i]].Add(rule, message(v, z))
		}
	}
}

func without(names []string, self string) []string {
	var out []string
	for _, n := range names {
		if n != self {
			out = append(out, n)
		}
	}
	return out
}
