package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"docx_forensics/internal/config"
	"docx_forensics/internal/diag"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var version = "dev"

// app carries what PersistentPreRunE resolves for the subcommands.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     config.Config
	logger  *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}
	root := &cobra.Command{
		Use:   "docxscan",
		Short: "Forensic scoring of document revision sessions",
		Long: `docxscan extracts the revision-session identifiers (RSIDs) recorded in DOCX
files, scores each document against authorship heuristics, and correlates a
batch of documents to surface shared authors, modifiers and revision sessions.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.initConfig,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default: $HOME/.config/docxscan/config.yaml)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "console", "log format (console, json)")
	flags.Bool("trace", false, "log every extracted paragraph and run")
	flags.String("archive", "", "SQLite archive of scored runs")

	_ = a.v.BindPFlag("logging.level", flags.Lookup("log-level"))
	_ = a.v.BindPFlag("logging.format", flags.Lookup("log-format"))
	_ = a.v.BindPFlag("logging.trace_extraction", flags.Lookup("trace"))
	_ = a.v.BindPFlag("archive.path", flags.Lookup("archive"))

	root.AddCommand(a.analyzeCmd())
	root.AddCommand(a.renderCmd())
	root.AddCommand(a.catalogCmd())
	root.AddCommand(a.historyCmd())
	root.AddCommand(versionCmd())
	return root
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		slog.Info("Received interrupt signal, shutting down")
		cancel()
	}()

	err := newRootCmd().ExecuteContext(ctx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (a *app) initConfig(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	logger, err := diag.NewLogger(cmd.ErrOrStderr(), cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	slog.SetDefault(logger)
	a.cfg = cfg
	a.logger = logger
	return nil
}

// salt is the color key for a document: its name, or nothing when colors are
// shared across documents.
func (a *app) salt(documentName string) string {
	if a.cfg.Render.SaltColors {
		return documentName
	}
	return ""
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "docxscan %s\n", version)
		},
	}
}
