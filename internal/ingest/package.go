package ingest

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
)

// Archive-internal paths of the parts the extractor reads.
const (
	PartDocument = "word/document.xml"
	PartSettings = "word/settings.xml"
	PartApp      = "docProps/app.xml"
	PartCore     = "docProps/core.xml"
	PartCustom   = "docProps/custom.xml"
)

var (
	ErrNotPackage      = errors.New("not a document package")
	ErrMissingDocument = errors.New("word/document.xml not found")
	ErrUnsupportedType = errors.New("unsupported file type")
)

var packageParts = []string{PartDocument, PartSettings, PartApp, PartCore, PartCustom}

// Package holds the raw bytes of the XML parts read from a .docx archive.
// Optional parts that the archive does not contain are simply absent.
type Package struct {
	parts map[string][]byte
}

// NewPackage builds a Package from already-extracted parts. Unknown names are kept.
func NewPackage(parts map[string][]byte) *Package {
	p := &Package{parts: make(map[string][]byte, len(parts))}
	for name, raw := range parts {
		p.parts[name] = raw
	}
	return p
}

func (p *Package) Part(name string) []byte {
	if p == nil {
		return nil
	}
	return p.parts[name]
}

func (p *Package) Has(name string) bool {
	if p == nil {
		return false
	}
	_, ok := p.parts[name]
	return ok
}

// Names lists the parts present, in the fixed read order.
func (p *Package) Names() []string {
	out := make([]string, 0, len(packageParts))
	for _, name := range packageParts {
		if p.Has(name) {
			out = append(out, name)
		}
	}
	return out
}

// OpenPackage reads the revision-relevant parts out of a .docx archive held in memory.
// A missing word/document.xml is an error; every other part is optional.
func OpenPackage(raw []byte) (*Package, error) {
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, fmt.Errorf("open docx zip: %w: %v", ErrNotPackage, err)
	}

	wanted := make(map[string]struct{}, len(packageParts))
	for _, name := range packageParts {
		wanted[name] = struct{}{}
	}

	pkg := &Package{parts: map[string][]byte{}}
	for _, f := range zr.File {
		if _, ok := wanted[f.Name]; !ok {
			continue
		}
		data, err := readZipFile(f)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w: %v", f.Name, ErrNotPackage, err)
		}
		pkg.parts[f.Name] = data
	}
	if len(pkg.parts[PartDocument]) == 0 {
		return nil, ErrMissingDocument
	}
	return pkg, nil
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
