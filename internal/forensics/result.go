package forensics

import (
	"slices"

	"docx_forensics/internal/stats"
)

type Finding struct {
	Rule    string `json:"rule"`
	Weight  int    `json:"weight"`
	Message string `json:"message"`
}

// Result is the suspicion record of one document for one scoring pass.
type Result struct {
	RawScore        int           `json:"total_score"`
	NormalizedScore float64       `json:"score"`
	MaxScore        int           `json:"max_score"`
	Factors         []string      `json:"factors"`
	Findings        []Finding     `json:"findings"`
	Statistics      stats.Summary `json:"statistics"`
}

func NewResult(summary stats.Summary) *Result {
	return &Result{Factors: []string{}, Findings: []Finding{}, Statistics: summary}
}

// Add records a triggered rule. Factors are append-only.
func (r *Result) Add(rule Rule, message string) {
	r.RawScore += rule.Weight
	r.Factors = append(r.Factors, message)
	r.Findings = append(r.Findings, Finding{Rule: rule.Name, Weight: rule.Weight, Message: message})
}

// Normalize rescales RawScore to 0-100 against maxScore, rounded to 2 decimals.
func (r *Result) Normalize(maxScore int) {
	r.MaxScore = maxScore
	if maxScore <= 0 {
		r.NormalizedScore = 0
		return
	}
	r.NormalizedScore = stats.Round(float64(r.RawScore)/float64(maxScore)*100, 2)
}

func (r *Result) Triggered(name string) bool {
	return slices.ContainsFunc(r.Findings, func(f Finding) bool { return f.Rule == name })
}

func (r *Result) Clone() *Result {
	out := *r
	out.Factors = slices.Clone(r.Factors)
	out.Findings = slices.Clone(r.Findings)
	return &out
}
