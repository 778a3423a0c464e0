package server

import (
	"context"
	"time"

	"resumelens/internal/config"
	"resumelens/internal/errors"
	"resumelens/internal/observability"
	"resumelens/internal/types"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// DocumentAnalyzer runs the analysis pipeline on an uploaded document
type DocumentAnalyzer interface {
	AnalyzeDocument(ctx context.Context, doc types.Document) (*types.AnalysisResult, error)
}

// GrammarStatus reports the state of the grammar provider
type GrammarStatus interface {
	Stats() map[string]any
	IsHealthy() bool
}

// CounterSource exposes process-local analysis counters
type CounterSource interface {
	Snapshot() observability.Counters
}

// Server holds configuration for the HTTP server
type Server struct {
	Host    string
	Port    string
	Version string

	// Full application configuration
	AppConfig *config.Config

	// TLS Configuration
	TLSConfig config.TLSConfig

	// Certificate hot reload, nil unless TLS auto-reload is active
	CertReloader *CertReloader

	// Timeout configurations
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// Upload limits
	MaxRequestSize    int64
	AllowedExtensions []string

	Analyzer DocumentAnalyzer
	Grammar  GrammarStatus
	Counters CounterSource

	Observability *observability.ObservabilityManager
	Recorder      *observability.Recorder

	Logger *errors.Logger
}

// Dependencies are the collaborators a Server serves requests with
type Dependencies struct {
	Analyzer      DocumentAnalyzer
	Grammar       GrammarStatus
	Observability *observability.ObservabilityManager
	Recorder      *observability.Recorder
}

// NewServer creates a new Server instance from the application configuration
func NewServer(appCfg *config.Config, version string, deps Dependencies, logger *errors.Logger) *Server {
	s := &Server{
		Host:              appCfg.Server.Host,
		Port:              appCfg.Server.Port,
		Version:           version,
		AppConfig:         appCfg,
		TLSConfig:         appCfg.Server.TLS,
		ReadTimeout:       appCfg.Server.ReadTimeout,
		WriteTimeout:      appCfg.Server.WriteTimeout,
		IdleTimeout:       appCfg.Server.IdleTimeout,
		ShutdownTimeout:   appCfg.Server.ShutdownTimeout,
		MaxRequestSize:    appCfg.App.MaxFileSize,
		AllowedExtensions: appCfg.Server.AllowedExtensions,
		Analyzer:          deps.Analyzer,
		Grammar:           deps.Grammar,
		Observability:     deps.Observability,
		Recorder:          deps.Recorder,
		Logger:            logger,
	}
	if deps.Recorder != nil {
		s.Counters = deps.Recorder
	}
	if s.ShutdownTimeout <= 0 {
		s.ShutdownTimeout = 30 * time.Second
	}
	return s
}
