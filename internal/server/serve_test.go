package server

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mithrel/quire/internal/db"
	"github.com/mithrel/quire/internal/journal"
)

// writeCert writes a self-signed certificate valid between notBefore and notAfter.
func writeCert(t *testing.T, notBefore, notAfter time.Time) (string, string) {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "localhost"},
		DNSNames:     []string{"localhost"},
		NotBefore:    notBefore,
		NotAfter:     notAfter,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)
	keyDER, err := x509.MarshalECPrivateKey(key)
	require.NoError(t, err)

	dir := t.TempDir()
	certPath := filepath.Join(dir, "cert.pem")
	keyPath := filepath.Join(dir, "key.pem")
	require.NoError(t, os.WriteFile(certPath, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}), 0o600))
	require.NoError(t, os.WriteFile(keyPath, pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER}), 0o600))
	return certPath, keyPath
}

func TestBuildFileTLS(t *testing.T) {
	now := time.Now()

	cert, key := writeCert(t, now.Add(-time.Hour), now.Add(time.Hour))
	conf, err := BuildFileTLS(cert, key)
	require.NoError(t, err)
	assert.Len(t, conf.Certificates, 1)
	assert.Contains(t, conf.NextProtos, "h2")

	cert, key = writeCert(t, now.Add(-2*time.Hour), now.Add(-time.Hour))
	_, err = BuildFileTLS(cert, key)
	assert.ErrorContains(t, err, "expired")

	_, err = BuildFileTLS("", key)
	assert.Error(t, err)
}

func TestBuildCertMagicTLSRequiresDomain(t *testing.T) {
	_, _, err := BuildCertMagicTLS(context.Background(), CertMagicConfig{})
	assert.Error(t, err)
}

func TestServeStopsOnCancel(t *testing.T) {
	store, err := db.Open(context.Background(), "memory://")
	require.NoError(t, err)
	cfg := viper.New()
	cfg.Set("server.shutdown_timeout", "1s")
	srv := New(cfg, journal.New(store), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServeReleasesListenersOnStartupError(t *testing.T) {
	// hold the UDP port so the HTTP/3 listener cannot bind
	udp, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	defer udp.Close()
	addr := udp.LocalAddr().String()

	store, err := db.Open(context.Background(), "memory://")
	require.NoError(t, err)
	now := time.Now()
	cert, key := writeCert(t, now.Add(-time.Hour), now.Add(time.Hour))
	cfg := viper.New()
	cfg.Set("tls.cert_file", cert)
	cfg.Set("tls.key_file", key)
	cfg.Set("tls.http3", true)
	srv := New(cfg, journal.New(store), nil)

	done := make(chan error, 1)
	go func() { done <- srv.Serve(context.Background(), addr) }()
	select {
	case err := <-done:
		require.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server kept running after the http3 listener failed")
	}

	// the TCP listener was closed with it
	ln, err := net.Listen("tcp", addr)
	require.NoError(t, err)
	_ = ln.Close()
}

func TestCertMagicConfigFromSettings(t *testing.T) {
	cfg := viper.New()
	cfg.Set("tls.domain", "journal.example.com")
	cfg.Set("tls.email", "ops@example.com")
	cfg.Set("tls.storage_dir", "/var/lib/quire/certs")
	cfg.Set("tls.ca", "https://acme-staging-v02.api.letsencrypt.org/directory")
	srv := New(cfg, nil, nil)

	assert.Equal(t, CertMagicConfig{
		Domain:     "journal.example.com",
		Email:      "ops@example.com",
		StorageDir: "/var/lib/quire/certs",
		CA:         "https://acme-staging-v02.api.letsencrypt.org/directory",
	}, srv.certMagicConfig())
}
