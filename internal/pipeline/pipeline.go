// Package pipeline runs the request-scoped analysis: extraction and per-document
// scoring for every upload, then batch correlation over the complete first pass.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"docx_forensics/internal/batch"
	"docx_forensics/internal/config"
	"docx_forensics/internal/diag"
	"docx_forensics/internal/docx"
	"docx_forensics/internal/forensics"
	"docx_forensics/internal/ingest"
	"docx_forensics/internal/stats"
)

var ErrEmptyBatch = errors.New("no documents to analyze")

// DocumentError names the upload that aborted a batch.
type DocumentError struct {
	Name string
	Err  error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("analyze %s: %v", e.Name, e.Err)
}

func (e *DocumentError) Unwrap() error {
	return e.Err
}

// Upload is one in-memory file.
type Upload struct {
	Name string
	Data []byte
}

type DocumentReport struct {
	Name       string                `json:"name"`
	Kind       ingest.Kind           `json:"kind"`
	Paragraphs []docx.Paragraph      `json:"paragraphs"`
	Catalog    docx.RevisionCatalog  `json:"settings_rsids"`
	Metadata   docx.DocumentMetadata `json:"metadata"`
	Suspicion  *forensics.Result     `json:"suspicion"`
	// BatchSuspicion is the batch-augmented result; nil outside a batch.
	BatchSuspicion *forensics.Result `json:"batch_suspicion,omitempty"`

	Statistics *stats.Statistics `json:"-"`
}

// Final is the batch-augmented result when there is one, else the per-document one.
func (r *DocumentReport) Final() *forensics.Result {
	if r.BatchSuspicion != nil {
		return r.BatchSuspicion
	}
	return r.Suspicion
}

type BatchReport struct {
	ID              string              `json:"id,omitempty"`
	Documents       []*DocumentReport   `json:"documents"`
	SharedRevisions map[string][]string `json:"shared_rsids"`
	MaxScore        int                 `json:"max_score"`
}

type Pipeline struct {
	calculator stats.Calculator
	extractor  *docx.Extractor
	scorer     *forensics.Scorer
	correlator *batch.Correlator
	logger     *slog.Logger
	onAnalyzed func(name string)
}

func New(cfg config.Config, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = diag.Discard()
	}
	return &Pipeline{
		calculator: cfg.Calculator(),
		extractor:  docx.NewExtractor(logger, cfg.Logging.TraceExtraction),
		scorer:     forensics.NewScorer(cfg.Thresholds(), logger),
		correlator: batch.NewCorrelator(cfg.BatchOptions(), logger),
		logger:     logger,
	}
}

// OnAnalyzed registers a callback invoked after each first-pass document.
func (p *Pipeline) OnAnalyzed(fn func(name string)) {
	p.onAnalyzed = fn
}

// Analyze extracts and scores a single upload.
func (p *Pipeline) Analyze(ctx context.Context, up Upload) (*DocumentReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	parsed, err := ingest.Parse(up.Name, up.Data)
	if err != nil {
		return nil, err
	}

	var ex *docx.Extraction
	switch parsed.Kind {
	case ingest.KindPDF:
		ex = docx.FromPDF(parsed.PDF)
	default:
		ex, err = p.extractor.Extract(parsed.Package)
		if err != nil {
			return nil, err
		}
	}

	st := p.calculator.Compute(ex.Paragraphs, ex.Metadata, ex.Catalog)
	res := p.scorer.Score(st)
	p.logger.Info("document scored",
		"document", up.Name,
		"kind", parsed.Kind,
		"paragraphs", len(ex.Paragraphs),
		"score", res.NormalizedScore,
		"factors", len(res.Factors),
	)
	return &DocumentReport{
		Name:       up.Name,
		Kind:       parsed.Kind,
		Paragraphs: ex.Paragraphs,
		Catalog:    ex.Catalog,
		Metadata:   ex.Metadata,
		Suspicion:  res,
		Statistics: st,
	}, nil
}

// Run analyzes uploads in order and, for two or more, correlates them. The first
// failing upload aborts the whole run with a *DocumentError.
func (p *Pipeline) Run(ctx context.Context, uploads []Upload) (*BatchReport, error) {
	if len(uploads) == 0 {
		return nil, ErrEmptyBatch
	}

	bc := batch.NewContext()
	report := &BatchReport{
		Documents:       make([]*DocumentReport, 0, len(uploads)),
		SharedRevisions: map[string][]string{},
		MaxScore:        p.scorer.Rules().MaxScore(),
	}
	for _, up := range uploads {
		doc, err := p.Analyze(ctx, up)
		if err != nil {
			p.logger.Error("batch aborted", "document", up.Name, "error", err)
			return nil, &DocumentError{Name: up.Name, Err: err}
		}
		if err := bc.Add(&batch.Document{
			Name:       doc.Name,
			Paragraphs: doc.Paragraphs,
			Metadata:   doc.Metadata,
			Catalog:    doc.Catalog,
			Statistics: doc.Statistics,
			Result:     doc.Suspicion,
		}); err != nil {
			return nil, &DocumentError{Name: up.Name, Err: err}
		}
		report.Documents = append(report.Documents, doc)
		if p.onAnalyzed != nil {
			p.onAnalyzed(doc.Name)
		}
	}

	if bc.Len() < 2 {
		return report, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	outcome := p.correlator.Correlate(bc)
	for _, doc := range report.Documents {
		doc.BatchSuspicion = outcome.Results[doc.Name]
	}
	report.SharedRevisions = outcome.SharedRevisions
	report.MaxScore = p.correlator.Rules().MaxScore()
	return report, nil
}
