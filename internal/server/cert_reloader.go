package server

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"sync"
	"time"

	"resumelens/internal/config"
	"resumelens/internal/errors"
)

const (
	certCriticalThreshold = 24 * time.Hour
	certWarningThreshold  = 7 * 24 * time.Hour
)

// CertRecorder receives certificate reload events
type CertRecorder interface {
	RecordCertReload(ctx context.Context, success bool, notAfter time.Time)
}

// CertReloader serves the current server certificate and swaps it when the
// files on disk change.
type CertReloader struct {
	mu sync.RWMutex

	cert     *tls.Certificate
	notAfter time.Time

	lastReloadTime    time.Time
	lastReloadError   string
	reloadCount       int64
	reloadFailures    int64
	lastReloadSuccess bool

	config   config.TLSConfig
	watcher  *CertWatcher
	recorder CertRecorder
	logger   *errors.Logger
}

// NewCertReloader creates a reloader for tlsConfig. recorder may be nil.
func NewCertReloader(tlsConfig config.TLSConfig, recorder CertRecorder, logger *errors.Logger) *CertReloader {
	if logger == nil {
		logger = errors.NewDiscardLogger()
	}
	return &CertReloader{config: tlsConfig, recorder: recorder, logger: logger}
}

// Start loads the initial certificate and begins watching the files when
// auto-reload is configured for file-based certificates.
func (cr *CertReloader) Start() error {
	if err := cr.Reload(); err != nil {
		return fmt.Errorf("failed to load initial certificates: %w", err)
	}

	reload := cr.config.AutoReload
	if !reload.Enabled || !reload.FileWatcher.Enabled || !cr.config.CertificatesFromFiles() {
		return nil
	}

	watcher, err := NewCertWatcher([]string{cr.config.CertFile, cr.config.KeyFile},
		reload.FileWatcher.DebounceDelay, cr.triggerReload, cr.logger)
	if err != nil {
		return err
	}
	if err := watcher.Start(); err != nil {
		return fmt.Errorf("failed to start certificate watcher: %w", err)
	}
	cr.watcher = watcher
	return nil
}

// Stop stops the file watcher, if any
func (cr *CertReloader) Stop() error {
	if cr.watcher == nil {
		return nil
	}
	return cr.watcher.Stop()
}

// GetCertificate implements tls.Config.GetCertificate
func (cr *CertReloader) GetCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	cr.mu.RLock()
	defer cr.mu.RUnlock()
	if cr.cert == nil {
		return nil, fmt.Errorf("no server certificate loaded")
	}
	return cr.cert, nil
}

// Reload reads the certificate pair again. The previous certificate stays
// in service when loading fails.
func (cr *CertReloader) Reload() error {
	cert, notAfter, err := cr.loadCertificatePair()

	cr.mu.Lock()
	cr.reloadCount++
	cr.lastReloadTime = time.Now()
	cr.lastReloadSuccess = err == nil
	if err != nil {
		cr.reloadFailures++
		cr.lastReloadError = err.Error()
	} else {
		cr.cert = &cert
		cr.notAfter = notAfter
		cr.lastReloadError = ""
	}
	cr.mu.Unlock()

	if cr.recorder != nil {
		cr.recorder.RecordCertReload(context.Background(), err == nil, notAfter)
	}
	if err != nil {
		return err
	}

	cr.logger.Info("Certificates loaded", "server_cert_expiry", notAfter)
	return nil
}

func (cr *CertReloader) triggerReload() {
	cr.logger.Info("Certificate reload triggered by file watcher")
	if err := cr.Reload(); err != nil {
		cr.logger.LogError(err, "Failed to reload certificates")
	}
}

// loadCertificatePair loads the key pair from Vault content or files
func (cr *CertReloader) loadCertificatePair() (tls.Certificate, time.Time, error) {
	var (
		cert tls.Certificate
		err  error
	)
	switch {
	case cr.config.CertContent != "" && cr.config.KeyContent != "":
		cert, err = tls.X509KeyPair([]byte(cr.config.CertContent), []byte(cr.config.KeyContent))
	case cr.config.CertificatesFromFiles():
		cert, err = tls.LoadX509KeyPair(cr.config.CertFile, cr.config.KeyFile)
	default:
		return tls.Certificate{}, time.Time{}, fmt.Errorf("TLS certificate and key are required (provide either files or content)")
	}
	if err != nil {
		return tls.Certificate{}, time.Time{}, fmt.Errorf("failed to load server cert/key: %w", err)
	}

	if len(cert.Certificate) == 0 {
		return cert, time.Time{}, nil
	}
	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		return tls.Certificate{}, time.Time{}, fmt.Errorf("failed to parse server certificate: %w", err)
	}
	cert.Leaf = leaf
	return cert, leaf.NotAfter, nil
}

// CheckExpiry returns the time until the server certificate expires
func (cr *CertReloader) CheckExpiry() (time.Duration, error) {
	cr.mu.RLock()
	defer cr.mu.RUnlock()
	if cr.notAfter.IsZero() {
		return 0, fmt.Errorf("no certificates loaded")
	}
	return time.Until(cr.notAfter), nil
}

// Status reports certificate health for the health endpoint
func (cr *CertReloader) Status() map[string]any {
	certStatus := make(map[string]any)

	timeToExpiry, err := cr.CheckExpiry()
	if err != nil {
		certStatus["healthy"] = false
		certStatus["error"] = fmt.Sprintf("Failed to check certificate expiry: %v", err)
		return certStatus
	}

	certStatus["time_to_expiry_hours"] = int(timeToExpiry.Hours())

	switch {
	case timeToExpiry <= 0:
		certStatus["healthy"] = false
		certStatus["status"] = "expired"
	case timeToExpiry <= certCriticalThreshold:
		certStatus["healthy"] = false
		certStatus["status"] = "critical"
	case timeToExpiry <= certWarningThreshold:
		certStatus["healthy"] = true
		certStatus["status"] = "warning"
	default:
		certStatus["healthy"] = true
		certStatus["status"] = "ok"
	}

	cr.mu.RLock()
	certStatus["reloads"] = map[string]any{
		"count":        cr.reloadCount,
		"failures":     cr.reloadFailures,
		"last_time":    cr.lastReloadTime,
		"last_success": cr.lastReloadSuccess,
		"last_error":   cr.lastReloadError,
		"file_watcher": cr.watcher != nil && cr.watcher.IsRunning(),
	}
	cr.mu.RUnlock()

	return certStatus
}
