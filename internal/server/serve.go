package server

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/quic-go/quic-go/http3"
)

// Serve listens on addr until ctx is cancelled, then shuts down gracefully.
// TLS comes from tls.domain (ACME) or tls.cert_file/tls.key_file; without
// either the server speaks plain HTTP. tls.http3 adds a QUIC listener on the
// same address.
func (s *Server) Serve(ctx context.Context, addr string) error {
	tlsConf, challenge, err := s.tlsConfig(ctx)
	if err != nil {
		return err
	}
	handler := s.Router()
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		TLSConfig:         tlsConf,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	errc := make(chan error, 3)
	go func() {
		if tlsConf != nil {
			errc <- srv.ServeTLS(ln, "", "")
			return
		}
		errc <- srv.Serve(ln)
	}()
	s.log.Info(ctx, "http server listening", "addr", ln.Addr().String(), "tls", tlsConf != nil)

	var h3 *http3.Server
	if tlsConf != nil && s.cfg.GetBool("tls.http3") {
		h3 = &http3.Server{
			Addr:      addr,
			Handler:   handler,
			TLSConfig: http3.ConfigureTLSConfig(tlsConf.Clone()),
		}
		go func() { errc <- h3.ListenAndServe() }()
		s.log.Info(ctx, "http3 server listening", "addr", addr)
	}

	var acme *http.Server
	if challenge != nil {
		acme = &http.Server{Addr: ":80", Handler: challenge, ReadHeaderTimeout: 5 * time.Second}
		go func() { errc <- acme.ListenAndServe() }()
	}

	// closeAll stops every listener started above.
	closeAll := func() {
		if h3 != nil {
			_ = h3.Close()
		}
		if acme != nil {
			_ = acme.Close()
		}
		_ = srv.Close()
	}

	select {
	case <-ctx.Done():
	case err := <-errc:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			closeAll()
			return err
		}
	}

	s.log.Info(context.Background(), "server is shutting down")
	sctx, cancel := shutdownContext(s.cfg.GetDuration("server.shutdown_timeout"))
	defer cancel()
	if h3 != nil {
		_ = h3.Close()
	}
	if acme != nil {
		_ = acme.Shutdown(sctx)
	}
	if err := srv.Shutdown(sctx); err != nil {
		return err
	}
	s.log.Info(context.Background(), "server stopped")
	return nil
}

func (s *Server) tlsConfig(ctx context.Context) (*tls.Config, http.Handler, error) {
	if domain := s.cfg.GetString("tls.domain"); domain != "" {
		return BuildCertMagicTLS(ctx, s.certMagicConfig())
	}
	if cert := s.cfg.GetString("tls.cert_file"); cert != "" {
		conf, err := BuildFileTLS(cert, s.cfg.GetString("tls.key_file"))
		return conf, nil, err
	}
	return nil, nil, nil
}

func (s *Server) certMagicConfig() CertMagicConfig {
	return CertMagicConfig{
		Domain:     s.cfg.GetString("tls.domain"),
		Email:      s.cfg.GetString("tls.email"),
		StorageDir: s.cfg.GetString("tls.storage_dir"),
		CA:         s.cfg.GetString("tls.ca"),
	}
}

// shutdownContext bounds graceful shutdown.
func shutdownContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return context.WithTimeout(context.Background(), timeout)
}
