package cli

import (
	"fmt"

	"resumelens/internal/common"
	"resumelens/internal/storage"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [resume-file | s3://bucket/key]",
	Short: "Analyze a resume and print the report",
	Long: `Analyze a resume and report contact details, detected sections, matched
skills, employment history and gaps, grammar issues and an overall score.

The input is a local PDF, DOCX, DOC or TXT file, or an object in the
configured S3-compatible store given as s3://bucket/key.

Use --as-of to pin the date that "Present" resolves to, which makes gap
reports reproducible.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		if analyzeConfig.OutputFormat == "" {
			analyzeConfig.OutputFormat = cfg.App.DefaultFormat
		}
		return common.ValidateOutputFormat(analyzeConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runAnalyze,
}

var analyzeConfig common.CommandConfig

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	analyzeCmd.Flags().StringVar(&analyzeConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")
	analyzeCmd.Flags().StringVar(&analyzeConfig.InputFormat, "input-format", "", "Document format override: pdf, docx, doc, or txt")
	analyzeCmd.Flags().StringVar(&analyzeConfig.AsOf, "as-of", "", "Resolve \"Present\" as this date (YYYY-MM-DD)")

	_ = analyzeCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		return common.GetSupportedFormats(cfg.App.SupportedFormats), cobra.ShellCompDirectiveNoFileComp
	})
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := getConfigFromContext(ctx)
	logger := getLoggerFromContext(ctx)

	clock, err := common.ParseAsOf(analyzeConfig.AsOf, cfg.Analysis.Location())
	if err != nil {
		return err
	}

	rt, err := common.NewRuntime(ctx, cfg, logger, common.WithClock(clock))
	if err != nil {
		return fmt.Errorf("failed to initialize analyzer: %w", err)
	}

	var store common.Fetcher
	if storage.IsS3URI(args[0]) {
		s3Store, err := storage.New(ctx, cfg.Storage, logger)
		if err != nil {
			return err
		}
		store = s3Store
	}
	source := common.NewDocumentSource(common.NewFileProcessor(logger), store)

	if err := common.RunAnalyzeCommand(ctx, logger, analyzeConfig, args[0], source, rt.Analyzer.AnalyzeDocument); err != nil {
		return fmt.Errorf("failed to analyze resume: %w", err)
	}
	return nil
}
