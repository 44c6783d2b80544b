package render

import (
	"fmt"
	"slices"
	"strings"

	"docx_forensics/internal/forensics"

	"github.com/charmbracelet/lipgloss"
)

var (
	lowColor    = lipgloss.Color("#4ECDC4")
	mediumColor = lipgloss.Color("#FFE66D")
	highColor   = lipgloss.Color("#FF6B6B")
	subtleColor = lipgloss.Color("#666666")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(highColor)

	labelStyle = lipgloss.NewStyle().
			Foreground(subtleColor).
			Width(34)

	factorStyle = lipgloss.NewStyle().
			PaddingLeft(2)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#333")).
			Padding(0, 1)

	swatchStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#222222")).
			Padding(0, 1)
)

// ScoreStyle picks a color band for a normalized score.
func ScoreStyle(score float64) lipgloss.Style {
	style := lipgloss.NewStyle().Bold(true)
	switch {
	case score >= 50:
		return style.Foreground(highColor)
	case score >= 25:
		return style.Foreground(mediumColor)
	default:
		return style.Foreground(lowColor)
	}
}

// Report renders one document's result for the terminal.
func Report(name string, res *forensics.Result, legend []LegendEntry) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(name))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Suspicion score: %s (%d of %d points)\n",
		ScoreStyle(res.NormalizedScore).Render(fmt.Sprintf("%.2f", res.NormalizedScore)),
		res.RawScore, res.MaxScore)

	if len(res.Factors) == 0 {
		b.WriteString(factorStyle.Render("No suspicious factors."))
		b.WriteString("\n")
	}
	for _, f := range res.Findings {
		b.WriteString(factorStyle.Render(fmt.Sprintf("+%-3d %s", f.Weight, f.Message)))
		b.WriteString("\n")
	}

	s := res.Statistics
	rows := [][2]string{
		{"Paragraphs", fmt.Sprint(s.TotalParagraphs)},
		{"Short paragraphs", fmt.Sprint(s.ShortParagraphs)},
		{"Runs", fmt.Sprint(s.TotalRuns)},
		{"Words", fmt.Sprint(s.TotalWords)},
		{"Characters", fmt.Sprint(s.TotalCharacters)},
		{"Revisions used / declared", fmt.Sprintf("%d / %d", s.UniqueRevisions, s.DeclaredRevisions)},
		{"Undeclared revisions", fmt.Sprint(s.UndeclaredRevisions)},
		{"Largest revision (chars)", fmt.Sprint(s.LargestRevisionChars)},
		{"Avg chars per used revision", fmt.Sprintf("%.2f", s.AvgCharsPerUsedRevision)},
		{"Avg chars per declared revision", fmt.Sprintf("%.2f", s.AvgCharsPerDeclaredRevision)},
		{"Avg chars per run", fmt.Sprintf("%.2f", s.AvgCharsPerRun)},
		{"Avg words per revision", fmt.Sprintf("%.2f", s.AvgWordsPerRevision)},
	}
	lines := make([]string, len(rows))
	for i, row := range rows {
		lines[i] = lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(row[0]), row[1])
	}
	b.WriteString(boxStyle.Render(strings.Join(lines, "\n")))
	b.WriteString("\n")

	if len(legend) > 0 {
		swatches := make([]string, len(legend))
		for i, e := range legend {
			swatches[i] = swatchStyle.Background(lipgloss.Color(e.Color)).Render(fmt.Sprintf("%s %d", e.RSID, e.Chars))
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, swatches...))
		b.WriteString("\n")
	}
	return b.String()
}

// SharedRevisionsReport lists revision identifiers declared by several documents.
func SharedRevisionsReport(shared map[string][]string) string {
	if len(shared) == 0 {
		return lipgloss.NewStyle().Foreground(subtleColor).Render("No shared revision identifiers between the documents.") + "\n"
	}
	keys := make([]string, 0, len(shared))
	for k := range shared {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var b strings.Builder
	b.WriteString(titleStyle.Render("Shared revision identifiers"))
	b.WriteString("\n")
	for _, k := range keys {
		fmt.Fprintf(&b, "%s %s\n", labelStyle.Render(k), strings.Join(shared[k], ", "))
	}
	return b.String()
}
