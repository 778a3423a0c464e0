package server

import (
	"crypto/tls"
	"fmt"
	"net/http"
)

// configureTLS sets up TLS configuration based on the mode
func (s *Server) configureTLS(httpServer *http.Server) error {
	switch s.TLSConfig.Mode {
	case "server":
		return s.configureServerTLS(httpServer)
	case "disabled", "":
		fmt.Printf("Starting server on http://%s\n", httpServer.Addr)
		fmt.Println("TLS mode: Disabled (HTTP only)")
		return nil
	default:
		return fmt.Errorf("invalid TLS mode: %s (must be 'disabled' or 'server')", s.TLSConfig.Mode)
	}
}

// configureServerTLS sets up server-only TLS with a reloadable certificate
func (s *Server) configureServerTLS(httpServer *http.Server) error {
	fmt.Printf("Starting server with HTTPS on https://%s\n", httpServer.Addr)

	var recorder CertRecorder
	if s.Recorder != nil {
		recorder = s.Recorder
	}
	reloader := NewCertReloader(s.TLSConfig, recorder, s.Logger)
	if err := reloader.Start(); err != nil {
		return fmt.Errorf("failed to set up TLS: %w", err)
	}
	s.CertReloader = reloader

	httpServer.TLSConfig = s.buildTLSConfig(reloader)
	s.displayAutoReloadInfo()
	return nil
}

// buildTLSConfig creates the TLS configuration
func (s *Server) buildTLSConfig(reloader *CertReloader) *tls.Config {
	tlsConfig := &tls.Config{
		MinVersion:     tlsVersion(s.TLSConfig.MinVersion),
		GetCertificate: reloader.GetCertificate,
		ClientAuth:     tls.NoClientCert,
	}

	if len(s.TLSConfig.CipherSuites) > 0 {
		suites := make([]uint16, 0, len(s.TLSConfig.CipherSuites))
		for _, name := range s.TLSConfig.CipherSuites {
			if id := getCipherSuiteID(name); id != 0 {
				suites = append(suites, id)
			} else {
				s.Logger.Warn("Ignoring unknown cipher suite", "cipher_suite", name)
			}
		}
		tlsConfig.CipherSuites = suites
	}

	return tlsConfig
}

func tlsVersion(v string) uint16 {
	if v == "1.3" {
		return tls.VersionTLS13
	}
	return tls.VersionTLS12
}

// displayAutoReloadInfo shows auto-reload configuration
func (s *Server) displayAutoReloadInfo() {
	reload := s.TLSConfig.AutoReload
	if reload.Enabled && reload.FileWatcher.Enabled && s.TLSConfig.CertificatesFromFiles() {
		fmt.Println("TLS auto-reload: ENABLED (file watching)")
		return
	}
	fmt.Println("TLS auto-reload: DISABLED")
}

// getCipherSuiteID returns the cipher suite ID for a given name
func getCipherSuiteID(name string) uint16 {
	for _, suite := range tls.CipherSuites() {
		if suite.Name == name {
			return suite.ID
		}
	}
	return 0
}
