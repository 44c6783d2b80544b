package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type Kind string

const (
	KindDOCX Kind = "docx"
	KindPDF  Kind = "pdf"
)

// Parsed is one uploaded file after intake. Exactly one of Package or PDF is set,
// matching Kind.
type Parsed struct {
	Name    string
	Title   string
	Kind    Kind
	Size    int
	Package *Package
	PDF     *PDFDocument
}

func ParseFile(path string) (*Parsed, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return Parse(filepath.Base(path), raw)
}

// Parse dispatches on the file extension of name; the bytes are never streamed.
func Parse(name string, raw []byte) (*Parsed, error) {
	ext := strings.ToLower(filepath.Ext(name))
	parsed := &Parsed{
		Name:  name,
		Title: strings.TrimSuffix(filepath.Base(name), filepath.Ext(name)),
		Size:  len(raw),
	}

	switch ext {
	case ".docx", ".docm", ".dotx":
		pkg, err := OpenPackage(raw)
		if err != nil {
			return nil, err
		}
		parsed.Kind = KindDOCX
		parsed.Package = pkg
	case ".pdf":
		doc, err := parsePDF(raw)
		if err != nil {
			return nil, err
		}
		parsed.Kind = KindPDF
		parsed.PDF = doc
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, ext)
	}
	return parsed, nil
}

func normalizeWhitespace(text string) []string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, strings.Join(strings.Fields(line), " "))
	}
	return out
}
