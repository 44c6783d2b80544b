// Package workspace lays out report output on disk: one directory per run holding
// the JSON report and the reconstructed HTML documents.
package workspace

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const BaseDirName = "DocxForensics"

type RunInfo struct {
	ID         string
	Root       string
	ReportPath string
	HTMLDir    string
}

func EnsureDefault() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home: %w", err)
	}
	return EnsureAt(filepath.Join(home, BaseDirName))
}

func EnsureAt(base string) (string, error) {
	if err := os.MkdirAll(filepath.Join(base, "runs"), 0o755); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", base, err)
	}
	return base, nil
}

// NewRunID returns a random run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// CreateRun makes runs/<id>/html under root. An empty id gets a fresh one.
func CreateRun(root, id string) (*RunInfo, error) {
	if id == "" {
		id = NewRunID()
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("invalid run id %q: %w", id, err)
	}
	runRoot := filepath.Join(root, "runs", id)
	htmlDir := filepath.Join(runRoot, "html")
	if err := os.MkdirAll(htmlDir, 0o755); err != nil {
		return nil, fmt.Errorf("create run dir: %w", err)
	}
	return &RunInfo{
		ID:         id,
		Root:       runRoot,
		ReportPath: filepath.Join(runRoot, "report.json"),
		HTMLDir:    htmlDir,
	}, nil
}

// HTMLPath is where the reconstruction of a document is written.
func (r *RunInfo) HTMLPath(documentName string) string {
	return filepath.Join(r.HTMLDir, sanitizeName(documentName)+".html")
}

func SaveReport(path string, report any) error {
	raw, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// sanitizeName flattens a document name into one file name. Path segments, as
// used for documents sharing a base name, are joined with underscores.
func sanitizeName(name string) string {
	var parts []string
	for _, seg := range strings.Split(filepath.ToSlash(strings.TrimSpace(name)), "/") {
		if seg == "" || seg == "." || seg == ".." {
			continue
		}
		parts = append(parts, seg)
	}
	if len(parts) == 0 {
		return "document"
	}
	return strings.Join(parts, "_")
}
