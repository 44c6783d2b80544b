package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"docx_forensics/internal/db"
	"docx_forensics/internal/pipeline"
	"docx_forensics/internal/render"
	"docx_forensics/internal/workspace"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

func (a *app) analyzeCmd() *cobra.Command {
	var (
		asJSON   bool
		withHTML bool
		outDir   string
		progress bool
		workers  int
	)
	cmd := &cobra.Command{
		Use:   "analyze FILE...",
		Short: "Score documents and correlate them as one batch",
		Long: `Analyze extracts every file, scores it on its own and, when two or more files
are given, correlates them as one batch. The first unreadable file aborts the run.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uploads, err := pipeline.LoadFiles(args, workers)
			if err != nil {
				return err
			}

			p := pipeline.New(a.cfg, a.logger)
			if progress {
				bar := progressbar.NewOptions(len(uploads),
					progressbar.OptionSetWriter(cmd.ErrOrStderr()),
					progressbar.OptionShowCount(),
					progressbar.OptionSetWidth(40),
					progressbar.OptionSetDescription("Analyzing documents"),
					progressbar.OptionClearOnFinish(),
				)
				p.OnAnalyzed(func(string) { _ = bar.Add(1) })
				defer func() { _ = bar.Finish() }()
			}

			report, err := p.Run(cmd.Context(), uploads)
			if err != nil {
				return err
			}
			report.ID = workspace.NewRunID()

			if withHTML || outDir != "" {
				if err := a.writeRun(report, outDir, withHTML); err != nil {
					return err
				}
			}
			if a.cfg.Archive.Path != "" {
				if err := db.PersistRun(a.cfg.Archive.Path, runRecord(report)); err != nil {
					return err
				}
				a.logger.Info("run archived", "run", report.ID, "archive", a.cfg.Archive.Path)
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			a.printReport(cmd.OutOrStdout(), report)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full report as JSON")
	cmd.Flags().BoolVar(&withHTML, "html", false, "write an HTML reconstruction per document")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "workspace directory for reports (default: $HOME/"+workspace.BaseDirName+")")
	cmd.Flags().BoolVar(&progress, "progress", false, "show a progress bar")
	cmd.Flags().IntVar(&workers, "workers", 0, "concurrent file readers (default: number of CPUs)")
	return cmd
}

func (a *app) printReport(w io.Writer, report *pipeline.BatchReport) {
	for _, doc := range report.Documents {
		legend := render.NewReconstructor(a.salt(doc.Name)).Legend(doc.Paragraphs)
		fmt.Fprintln(w, render.Report(doc.Name, doc.Final(), legend))
	}
	if len(report.Documents) > 1 {
		fmt.Fprint(w, render.SharedRevisionsReport(report.SharedRevisions))
	}
}

// writeRun stores report.json and, with html set, one reconstruction per document
// under a fresh run directory.
func (a *app) writeRun(report *pipeline.BatchReport, outDir string, html bool) error {
	var (
		root string
		err  error
	)
	if outDir != "" {
		root, err = workspace.EnsureAt(outDir)
	} else {
		root, err = workspace.EnsureDefault()
	}
	if err != nil {
		return err
	}
	run, err := workspace.CreateRun(root, report.ID)
	if err != nil {
		return err
	}
	if err := workspace.SaveReport(run.ReportPath, report); err != nil {
		return err
	}
	if html {
		for _, doc := range report.Documents {
			if err := writeHTML(run.HTMLPath(doc.Name), render.NewReconstructor(a.salt(doc.Name)), doc); err != nil {
				return err
			}
		}
	}
	a.logger.Info("run written", "run", run.ID, "dir", run.Root)
	return nil
}

func writeHTML(path string, r *render.Reconstructor, doc *pipeline.DocumentReport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := r.RenderHTML(f, doc.Paragraphs); err != nil {
		f.Close()
		return fmt.Errorf("render %s: %w", doc.Name, err)
	}
	return f.Close()
}

func runRecord(report *pipeline.BatchReport) db.RunRecord {
	rec := db.RunRecord{
		ID:              report.ID,
		CreatedAt:       time.Now(),
		MaxScore:        report.MaxScore,
		SharedRevisions: report.SharedRevisions,
		Documents:       make([]db.DocumentRecord, 0, len(report.Documents)),
	}
	for _, doc := range report.Documents {
		rec.Documents = append(rec.Documents, db.DocumentRecord{
			Name:           doc.Name,
			Kind:           string(doc.Kind),
			Author:         doc.Metadata.Author(),
			LastModifiedBy: doc.Metadata.LastModifiedBy(),
			Suspicion:      doc.Suspicion,
			BatchSuspicion: doc.BatchSuspicion,
		})
	}
	return rec
}
