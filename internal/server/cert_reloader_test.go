package server

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"resumelens/internal/config"
	"resumelens/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type certEvent struct {
	success  bool
	notAfter time.Time
}

type fakeCertRecorder struct {
	mu     sync.Mutex
	events []certEvent
}

func (f *fakeCertRecorder) RecordCertReload(_ context.Context, success bool, notAfter time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, certEvent{success: success, notAfter: notAfter})
}

func (f *fakeCertRecorder) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

// selfSignedPEM returns a certificate and key valid for validFor
func selfSignedPEM(t *testing.T, validFor time.Duration) ([]byte, []byte, time.Time) {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	notAfter := time.Now().Add(validFor).Truncate(time.Second).UTC()
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(time.Now().UnixNano()),
		Subject:      pkix.Name{CommonName: "localhost"},
		DNSNames:     []string{"localhost"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     notAfter,
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)
	keyDER, err := x509.MarshalECPrivateKey(key)
	require.NoError(t, err)

	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER})
	return certPEM, keyPEM, notAfter
}

func writeCertFiles(t *testing.T, dir string, validFor time.Duration) (string, string, time.Time) {
	t.Helper()
	certPEM, keyPEM, notAfter := selfSignedPEM(t, validFor)
	certFile := filepath.Join(dir, "server.crt")
	keyFile := filepath.Join(dir, "server.key")
	require.NoError(t, os.WriteFile(certFile, certPEM, 0o600))
	require.NoError(t, os.WriteFile(keyFile, keyPEM, 0o600))
	return certFile, keyFile, notAfter
}

func TestCertReloaderFromContent(t *testing.T) {
	certPEM, keyPEM, notAfter := selfSignedPEM(t, 30*24*time.Hour)
	recorder := &fakeCertRecorder{}

	cr := NewCertReloader(config.TLSConfig{
		Mode:        "server",
		CertContent: string(certPEM),
		KeyContent:  string(keyPEM),
	}, recorder, errors.NewDiscardLogger())
	require.NoError(t, cr.Start())
	defer func() { _ = cr.Stop() }()

	cert, err := cr.GetCertificate(&tls.ClientHelloInfo{})
	require.NoError(t, err)
	require.NotNil(t, cert.Leaf)
	assert.Equal(t, notAfter, cert.Leaf.NotAfter.UTC())

	status := cr.Status()
	assert.Equal(t, true, status["healthy"])
	assert.Equal(t, "ok", status["status"])
	require.Equal(t, 1, recorder.count())
	assert.True(t, recorder.events[0].success)
}

func TestCertReloaderStatusThresholds(t *testing.T) {
	tests := []struct {
		name        string
		validFor    time.Duration
		wantHealthy bool
		wantStatus  string
	}{
		{name: "valid", validFor: 90 * 24 * time.Hour, wantHealthy: true, wantStatus: "ok"},
		{name: "expiring within a week", validFor: 3 * 24 * time.Hour, wantHealthy: true, wantStatus: "warning"},
		{name: "expiring within a day", validFor: 2 * time.Hour, wantHealthy: false, wantStatus: "critical"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			certPEM, keyPEM, _ := selfSignedPEM(t, tt.validFor)
			cr := NewCertReloader(config.TLSConfig{CertContent: string(certPEM), KeyContent: string(keyPEM)}, nil, nil)
			require.NoError(t, cr.Reload())

			status := cr.Status()
			assert.Equal(t, tt.wantHealthy, status["healthy"])
			assert.Equal(t, tt.wantStatus, status["status"])
		})
	}
}

func TestCertReloaderKeepsCertificateOnFailure(t *testing.T) {
	dir := t.TempDir()
	certFile, keyFile, _ := writeCertFiles(t, dir, 30*24*time.Hour)
	recorder := &fakeCertRecorder{}

	cr := NewCertReloader(config.TLSConfig{CertFile: certFile, KeyFile: keyFile}, recorder, nil)
	require.NoError(t, cr.Reload())
	before, err := cr.GetCertificate(nil)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(certFile, []byte("not a certificate"), 0o600))
	assert.Error(t, cr.Reload())

	after, err := cr.GetCertificate(nil)
	require.NoError(t, err)
	assert.Same(t, before, after)
	require.Equal(t, 2, recorder.count())
	assert.False(t, recorder.events[1].success)
}

func TestCertReloaderWithoutCertificate(t *testing.T) {
	cr := NewCertReloader(config.TLSConfig{}, nil, nil)
	assert.Error(t, cr.Start())
	_, err := cr.GetCertificate(nil)
	assert.Error(t, err)
	assert.Equal(t, false, cr.Status()["healthy"])
}

func TestCertReloaderWatchesFiles(t *testing.T) {
	dir := t.TempDir()
	certFile, keyFile, _ := writeCertFiles(t, dir, 30*24*time.Hour)

	cr := NewCertReloader(config.TLSConfig{
		CertFile: certFile,
		KeyFile:  keyFile,
		AutoReload: config.AutoReloadConfig{
			Enabled: true,
			FileWatcher: config.FileWatcherConfig{
				Enabled:       true,
				DebounceDelay: 20 * time.Millisecond,
			},
		},
	}, nil, errors.NewDiscardLogger())
	require.NoError(t, cr.Start())
	defer func() { _ = cr.Stop() }()
	require.NotNil(t, cr.watcher)
	assert.True(t, cr.watcher.IsRunning())

	first, err := cr.CheckExpiry()
	require.NoError(t, err)

	// mod times need to move forward on coarse filesystems
	time.Sleep(50 * time.Millisecond)
	writeCertFiles(t, dir, 365*24*time.Hour)

	assert.Eventually(t, func() bool {
		expiry, err := cr.CheckExpiry()
		return err == nil && expiry > first+24*time.Hour
	}, 5*time.Second, 25*time.Millisecond)
}

func TestCertWatcherRequiresFiles(t *testing.T) {
	_, err := NewCertWatcher([]string{"", ""}, 0, func() {}, nil)
	assert.Error(t, err)
}
