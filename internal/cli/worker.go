package cli

import (
	"fmt"

	"resumelens/internal/common"
	"resumelens/internal/queue"
	"resumelens/internal/storage"

	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Consume analysis jobs from RabbitMQ",
	Long: `Run the queue worker. Each job names a document in the S3-compatible
store; the worker downloads it, analyzes it and publishes the outcome to
the result exchange with routing key analysis.<jobId>.

Job message:
  {"jobId": "...", "bucket": "...", "key": "...", "filename": "...", "format": "pdf"}`,
	RunE: runWorker,
}

var workerConcurrency int

func init() {
	workerCmd.Flags().IntVarP(&workerConcurrency, "concurrency", "c", 0, "Number of concurrent consumers (default from config)")
}

func runWorker(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := getConfigFromContext(ctx)
	logger := getLoggerFromContext(ctx)

	rt, err := common.NewRuntime(ctx, cfg, logger, common.WithObservability(Version))
	if err != nil {
		return err
	}
	defer shutdownRuntime(rt, logger)

	store, err := storage.New(ctx, cfg.Storage, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize document store: %w", err)
	}

	processor := queue.NewProcessor(store, rt.Analyzer, logger,
		queue.WithTracer(rt.Observability.Tracer("resumelens.queue")))
	return queue.NewWorker(cfg.Queue, processor, logger).Run(ctx, workerConcurrency)
}
