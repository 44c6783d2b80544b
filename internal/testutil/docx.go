// Package testutil builds in-memory .docx fixtures for tests.
package testutil

import (
	"archive/zip"
	"bytes"
	"fmt"
	"sort"
	"strings"
	"testing"
)

const xmlHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`

const wordNS = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" ` +
	`xmlns:w14="http://schemas.microsoft.com/office/word/2010/wordml"`

// BuildDOCX zips the given parts (archive path -> XML body) into a .docx byte slice.
// Parts are written in sorted order so fixtures are byte-stable.
func BuildDOCX(t testing.TB, parts map[string]string) []byte {
	t.Helper()
	names := make([]string, 0, len(parts))
	for name := range parts {
		names = append(names, name)
	}
	sort.Strings(names)

	var b bytes.Buffer
	zw := zip.NewWriter(&b)
	for _, name := range names {
		f, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create zip entry %s: %v", name, err)
		}
		body := parts[name]
		if !strings.HasPrefix(body, "<?xml") {
			body = xmlHeader + body
		}
		if _, err := f.Write([]byte(body)); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return b.Bytes()
}

// Document wraps body children in a namespaced w:document/w:body.
func Document(children ...string) string {
	return `<w:document ` + wordNS + `><w:body>` + strings.Join(children, "") + `</w:body></w:document>`
}

// Paragraph renders a w:p. Empty id or rsid omits the attribute.
func Paragraph(id, rsid string, runs ...string) string {
	var attrs strings.Builder
	if id != "" {
		fmt.Fprintf(&attrs, ` w14:paraId="%s"`, id)
	}
	if rsid != "" {
		fmt.Fprintf(&attrs, ` w:rsidR="%s"`, rsid)
	}
	return `<w:p` + attrs.String() + `>` + strings.Join(runs, "") + `</w:p>`
}

// Run renders a w:r with a w:t. Empty rsid omits the attribute.
func Run(rsid, text string) string {
	attr := ""
	if rsid != "" {
		attr = fmt.Sprintf(` w:rsidR="%s"`, rsid)
	}
	return `<w:r` + attr + `><w:rPr><w:b/></w:rPr><w:t xml:space="preserve">` + text + `</w:t></w:r>`
}

// Settings renders a settings part declaring the given revision values.
// The first value becomes the rsidRoot.
func Settings(values ...string) string {
	var b strings.Builder
	b.WriteString(`<w:settings ` + wordNS + `><w:rsids>`)
	for i, v := range values {
		if i == 0 {
			fmt.Fprintf(&b, `<w:rsidRoot w:val="%s"/>`, v)
		}
		fmt.Fprintf(&b, `<w:rsid w:val="%s"/>`, v)
	}
	b.WriteString(`</w:rsids></w:settings>`)
	return b.String()
}

// Core renders docProps/core.xml; empty values are omitted.
func Core(creator, lastModifiedBy, revision, created, modified string) string {
	var b strings.Builder
	b.WriteString(`<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" ` +
		`xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:dcterms="http://purl.org/dc/terms/" ` +
		`xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">`)
	if creator != "" {
		fmt.Fprintf(&b, `<dc:creator>%s</dc:creator>`, creator)
	}
	if lastModifiedBy != "" {
		fmt.Fprintf(&b, `<cp:lastModifiedBy>%s</cp:lastModifiedBy>`, lastModifiedBy)
	}
	if revision != "" {
		fmt.Fprintf(&b, `<cp:revision>%s</cp:revision>`, revision)
	}
	if created != "" {
		fmt.Fprintf(&b, `<dcterms:created xsi:type="dcterms:W3CDTF">%s</dcterms:created>`, created)
	}
	if modified != "" {
		fmt.Fprintf(&b, `<dcterms:modified xsi:type="dcterms:W3CDTF">%s</dcterms:modified>`, modified)
	}
	b.WriteString(`</cp:coreProperties>`)
	return b.String()
}

// Doc is a convenience for a package with body, settings and core properties.
type Doc struct {
	Body     []string
	Settings []string
	Author   string
	Modifier string
	Revision string
	Created  string
	Modified string
}

func (d Doc) Build(t testing.TB) []byte {
	t.Helper()
	parts := map[string]string{
		"word/document.xml": Document(d.Body...),
		"docProps/core.xml": Core(d.Author, d.Modifier, d.Revision, d.Created, d.Modified),
	}
	if len(d.Settings) > 0 {
		parts["word/settings.xml"] = Settings(d.Settings...)
	}
	return BuildDOCX(t, parts)
}
