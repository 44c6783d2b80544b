// Package docx turns the XML parts of a word-processor package into paragraph,
// run, revision-catalog and metadata records.
//
// Paragraph IDs synthesized for paragraphs that lack a w14:paraId have the form
// "placeholder_<index>", where index is the paragraph's position among the
// element children of the body. Whitespace text between elements is not counted,
// so pretty-printed and compact serializations of one body get the same indexes.
// They are stable for a given document structure
// but carry no meaning across documents and must not be compared between them.
package docx

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

const PlaceholderPrefix = "placeholder_"

// Run is the smallest text span. RSID is already resolved: a run without its own
// identifier carries its paragraph's.
type Run struct {
	Text          string `json:"text"`
	RSID          string `json:"rsid,omitempty"`
	InsertionRSID string `json:"insertion_rsid,omitempty"`
}

func (r Run) CharCount() int {
	return utf8.RuneCountInString(r.Text)
}

type Paragraph struct {
	ID          string `json:"id"`
	RSID        string `json:"rsid,omitempty"`
	DefaultRSID string `json:"default_rsid,omitempty"`
	Runs        []Run  `json:"runs"`
	RawMarkup   string `json:"xml,omitempty"`
}

func PlaceholderID(index int) string {
	return PlaceholderPrefix + strconv.Itoa(index)
}

func (p Paragraph) IsPlaceholder() bool {
	return strings.HasPrefix(p.ID, PlaceholderPrefix)
}

func (p Paragraph) IsEmpty() bool {
	return len(p.Runs) == 0
}

func (p Paragraph) CharCount() int {
	total := 0
	for _, r := range p.Runs {
		total += r.CharCount()
	}
	return total
}

func (p Paragraph) Text() string {
	var b strings.Builder
	for _, r := range p.Runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

// Extraction is everything the scorer needs from one document.
type Extraction struct {
	Paragraphs []Paragraph      `json:"paragraphs"`
	Catalog    RevisionCatalog  `json:"settings_rsids"`
	Metadata   DocumentMetadata `json:"metadata"`
}
