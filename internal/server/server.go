// Package server exposes the generator and the logo proxy over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-jd2pdf"
	"github.com/alnah/go-jd2pdf/internal/hostguard"
	"github.com/alnah/go-jd2pdf/internal/logo"
)

// Defaults applied to zero Config fields.
const (
	DefaultAddr            = ":8080"
	DefaultMaxBodyBytes    = 1 << 20
	DefaultRatePerHost     = 2
	DefaultBurst           = 4
	DefaultShutdownTimeout = 15 * time.Second
)

// Route paths.
const (
	PathProxyImage = logo.ProxyPath
	PathJobPDF     = "/api/v1/jobs/pdf"
	PathHealth     = "/healthz"
)

// DocumentGenerator renders one job description.
type DocumentGenerator interface {
	Generate(ctx context.Context, in jd2pdf.Input) (*jd2pdf.Document, error)
}

// ImageFetcher downloads an image server-side.
type ImageFetcher interface {
	Fetch(ctx context.Context, rawURL string) (*logo.Image, error)
}

// Compile-time interface checks.
var (
	_ DocumentGenerator = (*jd2pdf.Generator)(nil)
	_ ImageFetcher      = (*logo.FetchStrategy)(nil)
)

// Config controls listening and request limits.
type Config struct {
	Addr            string
	AllowedHosts    []string // proxy-image hosts; empty allows any public host
	RatePerHost     float64
	Burst           int
	MaxBodyBytes    int64
	ShutdownTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.RatePerHost <= 0 {
		c.RatePerHost = DefaultRatePerHost
	}
	if c.Burst <= 0 {
		c.Burst = DefaultBurst
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = DefaultShutdownTimeout
	}
	return c
}

// Server serves the HTTP API.
type Server struct {
	cfg     Config
	gen     DocumentGenerator
	images  ImageFetcher
	hosts   *hostguard.Policy
	limiter *logo.HostLimiter
	logger  *zap.Logger
	handler http.Handler
}

// New builds a Server. A nil logger discards logs.
func New(cfg Config, gen DocumentGenerator, images ImageFetcher, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg = cfg.withDefaults()
	s := &Server{
		cfg:     cfg,
		gen:     gen,
		images:  images,
		hosts:   hostguard.New(cfg.AllowedHosts),
		limiter: logo.NewHostLimiter(cfg.RatePerHost, cfg.Burst),
		logger:  logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET "+PathProxyImage, s.handleProxyImage)
	mux.HandleFunc("POST "+PathJobPDF, s.handleJobPDF)
	mux.HandleFunc("GET "+PathHealth, s.handleHealth)

	s.handler = Chain(mux, RequestID, AccessLog(logger), Recover(logger))
	return s
}

// Handler returns the root handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully,
// waiting up to ShutdownTimeout for in-flight requests.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      5 * time.Minute, // rendering is slow
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", zap.String("addr", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	<-errCh
	return nil
}
