package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/serptools/queryaudit/internal/audit"
	"github.com/serptools/queryaudit/internal/clock/system"
	"github.com/serptools/queryaudit/internal/export"
	"github.com/serptools/queryaudit/internal/fetcher"
	"github.com/serptools/queryaudit/internal/htmlparse"
	"github.com/serptools/queryaudit/internal/ingest"
	"github.com/serptools/queryaudit/internal/progress"
	"github.com/serptools/queryaudit/internal/progress/sinks"
)

func newAnalyzeCmd() *cobra.Command {
	var (
		inputPath  string
		outputPath string
		termsFlag  string
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run a one-shot analysis of a GSC CSV export",
		Long: `Reads a Google Search Console performance export, filters branded
queries, fetches every distinct landing page, and writes a CSV reporting where
each selected query appears on its page.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAnalyze(cmd.Context(), inputPath, outputPath, termsFlag)
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "path to the GSC CSV export (required)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "seo_analysis_results.csv", "path for the results CSV")
	cmd.Flags().StringVar(&termsFlag, "branded-terms", "", "comma-separated branded terms to exclude (overrides config)")
	cmd.MarkFlagRequired("input") //nolint:errcheck // flag exists

	return cmd
}

func runAnalyze(ctx context.Context, inputPath, outputPath, termsFlag string) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	in, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer in.Close() //nolint:errcheck // read-only file

	rows, err := ingest.ReadRows(in)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	logger.Info("loaded rows", zap.Int("count", len(rows)), zap.String("path", inputPath))

	terms := cfg.Analysis.BrandedTerms
	if termsFlag != "" {
		terms = strings.Split(termsFlag, ",")
	}
	filtered := audit.FilterBranded(rows, terms)
	if len(filtered) < len(rows) {
		logger.Info("excluded branded queries", zap.Int("removed", len(rows)-len(filtered)))
	}

	hub := progress.NewHub(progress.Config{Logger: logger}, sinks.NewLogSink(logger))
	defer hub.Close(context.Background()) //nolint:errcheck // best-effort drain

	analyzer := buildAnalyzer(hub)
	session := audit.NewSession()

	summary, err := analyzer.Run(ctx, session, filtered)
	if err != nil {
		return fmt.Errorf("run analysis: %w", err)
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer out.Close() //nolint:errcheck // flushed by WriteCSV

	if err := export.WriteCSV(out, session.Records()); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	logger.Info("analysis complete",
		zap.String("output", outputPath),
		zap.Int("urls", summary.URLCount),
		zap.Int("records", summary.RecordCount),
		zap.Float64("avg_records_per_url", summary.AvgPerURL),
		zap.Int("failed_fetches", summary.FailedFetches),
	)
	return nil
}

func buildAnalyzer(hub *progress.Hub) *audit.Analyzer {
	cache := fetcher.NewCache(cfg.CacheTTL(), system.New())
	f := fetcher.New(fetcher.Config{
		UserAgent: cfg.Analysis.UserAgent,
		Timeout:   cfg.FetchTimeout(),
	}, cache)
	parser := htmlparse.New()
	return audit.New(f, parser, hub, audit.Config{Concurrency: cfg.Analysis.Concurrency}, logger)
}
