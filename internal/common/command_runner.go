package common

import (
	"context"
	"time"

	"resumelens/internal/errors"
	"resumelens/internal/types"
)

// AnalyzeFunc runs the analysis pipeline on one document
type AnalyzeFunc func(context.Context, types.Document) (*types.AnalysisResult, error)

// RunAnalyzeCommand encapsulates the analyze command: load the document,
// analyze it and write the formatted result.
func RunAnalyzeCommand(
	ctx context.Context,
	logger *errors.Logger,
	cmdConfig CommandConfig,
	input string,
	source *DocumentSource,
	analyze AnalyzeFunc,
) error {
	outputHandler := NewOutputHandler(logger)

	doc, err := source.Load(ctx, input, cmdConfig.InputFormat)
	if err != nil {
		return err
	}

	logger.Info("Starting resume analysis",
		"input", input,
		"format", doc.Format,
		"bytes", len(doc.Data),
		"output_format", cmdConfig.OutputFormat)

	start := time.Now()
	result, err := analyze(ctx, doc)
	if err != nil {
		return err
	}

	logger.Info("Resume analysis finished",
		"score", result.Score,
		"warnings", len(result.Warnings),
		"duration", time.Since(start))

	return outputHandler.HandleOutput(result, cmdConfig)
}
