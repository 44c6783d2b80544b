// Package render presents extracted paragraphs: an HTML reconstruction with one
// pastel color per revision session, and a terminal report of scoring results.
package render

import (
	"cmp"
	"crypto/md5"
	"embed"
	"fmt"
	"html/template"
	"io"
	"math/big"
	"slices"

	"docx_forensics/internal/docx"

	"github.com/lucasb-eyer/go-colorful"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var documentTemplate = template.Must(template.ParseFS(templateFS, "templates/document.html.tmpl"))

const (
	pastelSaturation = 0.3
	pastelValue      = 0.95
)

// RevisionColor maps a revision identifier to a pastel hex color. A non-empty salt
// (the document name) gives the same identifier a different, reproducible color
// per document.
func RevisionColor(salt, rsid string) string {
	key := rsid
	if salt != "" {
		key = salt + "_" + rsid
	}
	sum := md5.Sum([]byte(key))
	hue := new(big.Int).Mod(new(big.Int).SetBytes(sum[:]), big.NewInt(360)).Int64()

	c := colorful.Hsv(float64(hue), pastelSaturation, pastelValue)
	return fmt.Sprintf("#%02x%02x%02x", uint8(c.R*255), uint8(c.G*255), uint8(c.B*255))
}

type BlockRun struct {
	Text     string
	RSID     string
	Color    string
	Inserted bool
	Style    template.CSS
}

// Block is one rendered paragraph.
type Block struct {
	ID    string
	Empty bool
	Runs  []BlockRun
}

type LegendEntry struct {
	RSID  string
	Color string
	Chars int
	Style template.CSS
}

type Reconstructor struct {
	documentName string
}

func NewReconstructor(documentName string) *Reconstructor {
	return &Reconstructor{documentName: documentName}
}

// Colors assigns a color to every revision identifier used by a run.
func (r *Reconstructor) Colors(paragraphs []docx.Paragraph) map[string]string {
	colors := map[string]string{}
	for _, p := range paragraphs {
		for _, run := range p.Runs {
			if run.RSID == "" {
				continue
			}
			if _, ok := colors[run.RSID]; !ok {
				colors[run.RSID] = RevisionColor(r.documentName, run.RSID)
			}
		}
	}
	return colors
}

// Blocks returns one block per paragraph, in input order.
func (r *Reconstructor) Blocks(paragraphs []docx.Paragraph) []Block {
	colors := r.Colors(paragraphs)
	blocks := make([]Block, 0, len(paragraphs))
	for _, p := range paragraphs {
		b := Block{ID: p.ID, Empty: p.IsEmpty(), Runs: make([]BlockRun, 0, len(p.Runs))}
		for _, run := range p.Runs {
			br := BlockRun{Text: run.Text, RSID: run.RSID, Inserted: run.InsertionRSID != ""}
			if color, ok := colors[run.RSID]; ok {
				br.Color = color
				br.Style = backgroundStyle(color)
			}
			b.Runs = append(b.Runs, br)
		}
		blocks = append(blocks, b)
	}
	return blocks
}

// Legend lists the revisions used by runs with their color and character total,
// largest first.
func (r *Reconstructor) Legend(paragraphs []docx.Paragraph) []LegendEntry {
	chars := map[string]int{}
	for _, p := range paragraphs {
		for _, run := range p.Runs {
			if run.RSID != "" {
				chars[run.RSID] += run.CharCount()
			}
		}
	}
	out := make([]LegendEntry, 0, len(chars))
	for rsid, color := range r.Colors(paragraphs) {
		out = append(out, LegendEntry{RSID: rsid, Color: color, Chars: chars[rsid], Style: backgroundStyle(color)})
	}
	slices.SortFunc(out, func(a, b LegendEntry) int {
		if a.Chars != b.Chars {
			return b.Chars - a.Chars
		}
		return cmp.Compare(a.RSID, b.RSID)
	})
	return out
}

// RenderHTML writes a standalone HTML page reconstructing the paragraphs.
func (r *Reconstructor) RenderHTML(w io.Writer, paragraphs []docx.Paragraph) error {
	data := struct {
		Title  string
		Legend []LegendEntry
		Blocks []Block
	}{
		Title:  r.documentName,
		Legend: r.Legend(paragraphs),
		Blocks: r.Blocks(paragraphs),
	}
	if err := documentTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	return nil
}

// backgroundStyle is only ever built from colors produced by RevisionColor.
func backgroundStyle(color string) template.CSS {
	return template.CSS("background-color: " + color)
}
