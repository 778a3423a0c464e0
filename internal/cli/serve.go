package cli

import (
	"context"
	"fmt"
	"time"

	"resumelens/internal/common"
	"resumelens/internal/errors"
	"resumelens/internal/server"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP analysis server",
	Long: `Start an HTTP server that analyzes uploaded resumes.

Available endpoints:
- GET /: Upload page
- POST /analyze: Analyze a resume (multipart field "resume")
- GET /health: Health check including grammar service state
- GET /stats: Server limits and analysis counters

TLS Configuration:
- Use --tls-mode to set TLS mode: disabled, server
- Use --cert-file and --key-file for TLS certificates`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringP("port", "p", "", "Port to listen on (default from config)")
	serveCmd.Flags().String("host", "", "Host to bind to (default from config)")
	serveCmd.Flags().String("tls-mode", "", "TLS mode: disabled, server (overrides config)")
	serveCmd.Flags().String("cert-file", "", "Server certificate file (PEM, overrides config)")
	serveCmd.Flags().String("key-file", "", "Server private key file (PEM, overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := getConfigFromContext(ctx)
	logger := getLoggerFromContext(ctx)

	overrides := []struct {
		flag   string
		target *string
	}{
		{"port", &cfg.Server.Port},
		{"host", &cfg.Server.Host},
		{"tls-mode", &cfg.Server.TLS.Mode},
		{"cert-file", &cfg.Server.TLS.CertFile},
		{"key-file", &cfg.Server.TLS.KeyFile},
	}
	for _, o := range overrides {
		if cmd.Flags().Changed(o.flag) {
			*o.target, _ = cmd.Flags().GetString(o.flag)
		}
	}

	// Validate TLS configuration after applying overrides
	if err := cfg.ValidateTLSConfig(); err != nil {
		return fmt.Errorf("invalid TLS configuration: %w", err)
	}

	rt, err := common.NewRuntime(ctx, cfg, logger, common.WithObservability(Version))
	if err != nil {
		return err
	}
	defer shutdownRuntime(rt, logger)

	srv := server.NewServer(cfg, Version, server.Dependencies{
		Analyzer:      rt.Analyzer,
		Grammar:       rt.Grammar,
		Observability: rt.Observability,
		Recorder:      rt.Recorder,
	}, logger)
	return srv.Start(ctx)
}

func shutdownRuntime(rt *common.Runtime, logger *errors.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := rt.Shutdown(ctx); err != nil {
		logger.Warn("Failed to flush telemetry", "error", err)
	}
}
