package ingest

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Info dictionary keys read from a PDF trailer.
const (
	PDFAuthor       = "Author"
	PDFCreator      = "Creator"
	PDFProducer     = "Producer"
	PDFTitle        = "Title"
	PDFSubject      = "Subject"
	PDFKeywords     = "Keywords"
	PDFCreationDate = "CreationDate"
	PDFModDate      = "ModDate"
)

var pdfInfoKeys = []string{PDFAuthor, PDFCreator, PDFProducer, PDFTitle, PDFSubject, PDFKeywords, PDFCreationDate, PDFModDate}

// PDFDocument carries what a PDF can offer the scorer: its Info dictionary and
// page text split into lines. PDFs have no revision-session markers.
type PDFDocument struct {
	Info  map[string]string
	Lines []string
	Pages int
}

func parsePDF(raw []byte) (doc *PDFDocument, err error) {
	// The reader panics on some truncated cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = fmt.Errorf("open pdf: %w: %v", ErrNotPackage, r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w: %v", ErrNotPackage, err)
	}

	doc = &PDFDocument{Info: map[string]string{}, Pages: r.NumPage()}
	info := r.Trailer().Key("Info")
	if !info.IsNull() {
		for _, key := range pdfInfoKeys {
			v := info.Key(key)
			if v.IsNull() {
				continue
			}
			if text := strings.TrimSpace(v.Text()); text != "" {
				doc.Info[key] = text
			}
		}
	}

	var b strings.Builder
	for i := 1; i <= doc.Pages; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		content, pageErr := p.GetPlainText(nil)
		if pageErr != nil {
			continue
		}
		b.WriteString(content)
		b.WriteString("\n")
	}
	doc.Lines = normalizeWhitespace(b.String())
	return doc, nil
}
