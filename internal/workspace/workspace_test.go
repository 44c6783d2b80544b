package workspace

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestCreateRun(t *testing.T) {
	base := filepath.Join(t.TempDir(), BaseDirName)
	root, err := EnsureAt(base)
	if err != nil {
		t.Fatalf("ensure workspace: %v", err)
	}

	run, err := CreateRun(root, "")
	if err != nil {
		t.Fatalf("create run: %v", err)
	}
	if run.ID == "" {
		t.Fatal("expected generated run id")
	}
	if _, err := os.Stat(run.HTMLDir); err != nil {
		t.Fatalf("expected html dir %s: %v", run.HTMLDir, err)
	}

	if err := SaveReport(run.ReportPath, map[string]int{"documents": 2}); err != nil {
		t.Fatalf("save report: %v", err)
	}
	raw, err := os.ReadFile(run.ReportPath)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	var got map[string]int
	if err := json.Unmarshal(raw, &got); err != nil || got["documents"] != 2 {
		t.Fatalf("unexpected report %s: %v", raw, err)
	}
}

func TestCreateRunRejectsBadID(t *testing.T) {
	if _, err := CreateRun(t.TempDir(), "../escape"); err == nil {
		t.Fatal("expected invalid run id error")
	}
}

func TestHTMLPathSanitizesName(t *testing.T) {
	run := &RunInfo{HTMLDir: "/out/html"}
	if got := run.HTMLPath("essay.docx"); got != filepath.Join("/out/html", "essay.docx.html") {
		t.Fatalf("unexpected path %s", got)
	}
	if got := run.HTMLPath("../../etc/essay.docx"); got != filepath.Join("/out/html", "etc_essay.docx.html") {
		t.Fatalf("unexpected path %s", got)
	}
	first, second := run.HTMLPath("first/report.docx"), run.HTMLPath("second/report.docx")
	if first == second {
		t.Fatalf("documents sharing a base name map to one file %s", first)
	}
	if got := run.HTMLPath(""); got != filepath.Join("/out/html", "document.html") {
		t.Fatalf("unexpected path %s", got)
	}
}
