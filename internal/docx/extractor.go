package docx

import (
	"context"
	"fmt"
	"log/slog"

	"docx_forensics/internal/diag"
	"docx_forensics/internal/ingest"
)

// Extractor reads a Package into an Extraction. When trace is set, per-paragraph
// decisions are logged at debug level.
type Extractor struct {
	logger *slog.Logger
	trace  bool
}

func NewExtractor(logger *slog.Logger, trace bool) *Extractor {
	if logger == nil {
		logger = diag.Discard()
	}
	return &Extractor{logger: logger, trace: trace}
}

// Extract builds paragraphs, the revision catalog and metadata. Absent optional parts
// yield empty results; malformed XML in any part is returned as an error.
func (e *Extractor) Extract(pkg *ingest.Package) (*Extraction, error) {
	paragraphs, err := e.Paragraphs(pkg.Part(ingest.PartDocument))
	if err != nil {
		return nil, err
	}
	catalog, err := ExtractRevisionCatalog(pkg.Part(ingest.PartSettings))
	if err != nil {
		return nil, err
	}
	metadata, err := ExtractMetadata(pkg)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("document extracted",
		"paragraphs", len(paragraphs),
		"declared_revisions", catalog.Len(),
		"parts", pkg.Names(),
	)
	return &Extraction{Paragraphs: paragraphs, Catalog: catalog, Metadata: metadata}, nil
}

// ExtractMetadata reads the core, app and custom property parts. Each is optional.
func ExtractMetadata(pkg *ingest.Package) (DocumentMetadata, error) {
	core, err := ExtractCoreProperties(pkg.Part(ingest.PartCore))
	if err != nil {
		return DocumentMetadata{}, err
	}
	extended, err := ExtractExtendedProperties(pkg.Part(ingest.PartCore))
	if err != nil {
		return DocumentMetadata{}, err
	}
	app, err := ExtractAppProperties(pkg.Part(ingest.PartApp))
	if err != nil {
		return DocumentMetadata{}, err
	}
	custom, err := ExtractCustomProperties(pkg.Part(ingest.PartCustom))
	if err != nil {
		return DocumentMetadata{}, err
	}
	return DocumentMetadata{Core: core, Extended: extended, App: app, Custom: custom}, nil
}

func (e *Extractor) debug(msg string, args ...any) {
	if !e.trace {
		return
	}
	e.logger.Log(context.Background(), slog.LevelDebug, msg, args...)
}

// ExtractBytes is a convenience for callers holding the raw .docx bytes.
func (e *Extractor) ExtractBytes(raw []byte) (*Extraction, error) {
	pkg, err := ingest.OpenPackage(raw)
	if err != nil {
		return nil, fmt.Errorf("open package: %w", err)
	}
	return e.Extract(pkg)
}
