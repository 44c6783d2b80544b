package main

import (
	"fmt"
	"io"
	"os"

	"docx_forensics/internal/pipeline"
	"docx_forensics/internal/render"

	"github.com/spf13/cobra"
)

func (a *app) renderCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "render FILE",
		Short: "Reconstruct a document as HTML colored by revision session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.analyzeOne(cmd, args[0])
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create %s: %w", output, err)
				}
				defer f.Close()
				w = f
			}
			return render.NewReconstructor(a.salt(doc.Name)).RenderHTML(w, doc.Paragraphs)
		},
	}
	cmd.Flags().StringVarP(&output, "out", "o", "", "write the HTML to this file instead of stdout")
	return cmd
}

func (a *app) analyzeOne(cmd *cobra.Command, path string) (*pipeline.DocumentReport, error) {
	uploads, err := pipeline.LoadFiles([]string{path}, 1)
	if err != nil {
		return nil, err
	}
	return pipeline.New(a.cfg, a.logger).Analyze(cmd.Context(), uploads[0])
}
