package docx

import (
	"strings"
	"time"
	"unicode"

	"docx_forensics/internal/ingest"
)

var pdfDateLayouts = map[int]string{
	4:  "2006",
	6:  "200601",
	8:  "20060102",
	10: "2006010215",
	12: "200601021504",
	14: "20060102150405",
}

// ParsePDFDate reads the "D:YYYYMMDDHHmmSS" form. The zone suffix is dropped, as
// for package timestamps.
func ParsePDFDate(raw string) Timestamp {
	raw = strings.TrimSpace(raw)
	ts := Timestamp{Raw: raw}
	digits := strings.TrimPrefix(raw, "D:")
	end := strings.IndexFunc(digits, func(r rune) bool { return !unicode.IsDigit(r) })
	if end >= 0 {
		digits = digits[:end]
	}
	layout, ok := pdfDateLayouts[len(digits)]
	if !ok {
		return ts
	}
	if t, err := time.ParseInLocation(layout, digits, time.UTC); err == nil {
		ts.Time = t
	}
	return ts
}

// FromPDF maps a PDF onto the extraction model: Info entries become core and app
// properties, and every text line becomes a paragraph with one run and no
// revision identifier. The catalog is always empty.
func FromPDF(doc *ingest.PDFDocument) *Extraction {
	core := Properties{}
	app := map[string]string{}
	for key, value := range doc.Info {
		switch key {
		case ingest.PDFAuthor:
			core["creator"] = value
		case ingest.PDFTitle:
			core["title"] = value
		case ingest.PDFSubject:
			core["subject"] = value
		case ingest.PDFKeywords:
			core["keywords"] = value
		case ingest.PDFCreationDate:
			core["created"] = ParsePDFDate(value)
		case ingest.PDFModDate:
			core["modified"] = ParsePDFDate(value)
		case ingest.PDFCreator:
			app["Application"] = value
		case ingest.PDFProducer:
			app["Producer"] = value
		}
	}

	paragraphs := make([]Paragraph, len(doc.Lines))
	for i, line := range doc.Lines {
		paragraphs[i] = Paragraph{ID: PlaceholderID(i), Runs: []Run{{Text: line}}}
	}
	return &Extraction{
		Paragraphs: paragraphs,
		Metadata:   DocumentMetadata{Core: core, App: app, Custom: map[string]any{}},
	}
}
