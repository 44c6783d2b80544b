package docx

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// Local element and attribute names. Namespaces are ignored: documents in the
// wild mix prefixes, and only the local part identifies the construct.
const (
	bodyTag        = "body"
	paragraphTag   = "p"
	runTag         = "r"
	textTag        = "t"
	insertionTag   = "ins"
	paraIDAttr     = "paraId"
	rsidAttr       = "rsidR"
	rsidDefaultAtt = "rsidRDefault"
)

// ExtractParagraphs walks the direct children of the document body and returns one
// Paragraph per w:p, in body order. A document without a body yields no paragraphs.
func ExtractParagraphs(documentXML []byte) ([]Paragraph, error) {
	return NewExtractor(nil, false).Paragraphs(documentXML)
}

func (e *Extractor) Paragraphs(documentXML []byte) ([]Paragraph, error) {
	dec := xml.NewDecoder(bytes.NewReader(documentXML))
	paragraphs := []Paragraph{}

	inBody := false
	index := 0
	for {
		offset := dec.InputOffset()
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if !inBody {
				if t.Name.Local == bodyTag {
					inBody = true
				}
				continue
			}
			if t.Name.Local != paragraphTag {
				if err := dec.Skip(); err != nil {
					return nil, fmt.Errorf("skip body child %d: %w", index, err)
				}
				index++
				continue
			}
			p, err := e.readParagraph(dec, t, index, documentXML, offset)
			if err != nil {
				return nil, err
			}
			paragraphs = append(paragraphs, p)
			index++
		case xml.EndElement:
			if inBody && t.Name.Local == bodyTag {
				e.debug("document body walked", "children", index, "paragraphs", len(paragraphs))
				return paragraphs, nil
			}
		}
	}

	if !inBody {
		e.debug("no body element found in document")
	}
	return paragraphs, nil
}

type runState struct {
	slot      int
	rsid      string
	inserted  bool
	hasText   bool
	inText    bool
	textDepth int
	text      strings.Builder
}

// readParagraph consumes tokens up to the paragraph's end element. Runs are found at
// any depth so text inside hyperlinks, tracked insertions and text boxes is counted.
// A run nested in another run (a text box inside a drawing) is recorded on its own;
// each run keeps the first w:t that is not inside a nested run. Runs are emitted in
// the order their start elements appear.
func (e *Extractor) readParagraph(dec *xml.Decoder, start xml.StartElement, index int, raw []byte, offset int64) (Paragraph, error) {
	p := Paragraph{Runs: []Run{}}
	p.ID, _ = attr(start, paraIDAttr)
	p.RSID, _ = attr(start, rsidAttr)
	p.DefaultRSID, _ = attr(start, rsidDefaultAtt)
	if p.ID == "" {
		p.ID = PlaceholderID(index)
		e.debug("paragraph has no id, using placeholder", "index", index, "id", p.ID)
	}

	depth := 1
	insertions := 0
	var (
		open  []*runState
		slots []*Run
	)
	current := func() *runState {
		if len(open) == 0 {
			return nil
		}
		return open[len(open)-1]
	}
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return Paragraph{}, fmt.Errorf("decode paragraph %d: %w", index, err)
		}
		run := current()
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			switch {
			case t.Name.Local == insertionTag:
				insertions++
			case t.Name.Local == runTag:
				next := &runState{slot: len(slots), rsid: p.RSID, inserted: insertions > 0}
				if v, ok := attr(t, rsidAttr); ok {
					next.rsid = v
				}
				slots = append(slots, nil)
				open = append(open, next)
			case t.Name.Local == textTag && run != nil && !run.hasText:
				run.hasText = true
				run.inText = true
				run.textDepth = depth
			}
		case xml.CharData:
			if run != nil && run.inText {
				run.text.Write(t)
			}
		case xml.EndElement:
			switch {
			case run != nil && run.inText && depth == run.textDepth:
				run.inText = false
			case t.Name.Local == runTag && run != nil:
				if run.hasText {
					finished := run.finish()
					slots[run.slot] = &finished
				}
				open = open[:len(open)-1]
			case t.Name.Local == insertionTag && insertions > 0:
				insertions--
			}
			depth--
		}
	}
	for _, r := range slots {
		if r != nil {
			p.Runs = append(p.Runs, *r)
		}
	}

	p.RawMarkup = string(raw[offset:dec.InputOffset()])
	e.debug("paragraph extracted", "index", index, "id", p.ID, "rsid", p.RSID, "runs", len(p.Runs))
	return p, nil
}

func (r *runState) finish() Run {
	out := Run{Text: r.text.String(), RSID: r.rsid}
	if r.inserted {
		out.InsertionRSID = r.rsid
	}
	return out
}

func attr(el xml.StartElement, local string) (string, bool) {
	for _, a := range el.Attr {
		if a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}
