package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/mchmarny/navshell/pkg/logger"
	"github.com/mchmarny/navshell/pkg/metric"
)

const (
	// DefaultPort is the default HTTP server port.
	DefaultPort = 9876

	// DefaultReadTimeout is the maximum duration for reading the entire request,
	// including the body.
	DefaultReadTimeout = 10 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request
	// when keep-alives are enabled.
	DefaultIdleTimeout = 60 * time.Second

	// DefaultShutdownTimeout is the maximum duration to wait for active connections
	// to close during shutdown.
	DefaultShutdownTimeout = 5 * time.Second

	// DefaultMaxHeaderBytes limits the size of request headers.
	DefaultMaxHeaderBytes = 1 << 20 // 1 MB
)

// Server defines the HTTP server that hosts the application shell, its
// metrics and its health check.
// Implementations must support graceful shutdown via context cancellation.
type Server interface {
	// Serve starts the HTTP server and blocks until the context is canceled.
	// Returns nil on graceful shutdown.
	Serve(ctx context.Context) error

	// Handle registers handler for pattern. Safe to call before Serve.
	Handle(pattern string, handler http.Handler)

	// Registry is the server's own prometheus registry.
	Registry() *prometheus.Registry

	// Handler returns the root handler, mostly for tests.
	Handler() http.Handler

	// IsRunning returns true once the socket is bound and until the server stops.
	IsRunning() bool
}

// HealthChecker defines the interface for components that can report their health status.
// It backs the /healthz endpoint registered by WithHealthCheck.
//
// Implementations should return nil if healthy, or an error describing the problem.
// The check runs on every request and should stay lightweight.
type HealthChecker interface {
	Healthy(ctx context.Context) error
}

// HealthCheckerFunc adapts a function to HealthChecker.
type HealthCheckerFunc func(ctx context.Context) error

// Healthy calls f(ctx).
func (f HealthCheckerFunc) Healthy(ctx context.Context) error { return f(ctx) }

// server is the internal implementation of the Server interface.
// It wraps http.Server with lifecycle state and a private metrics registry.
type server struct {
	mux             *http.ServeMux       // Routes shell pages, menu handlers and the API
	port            int                  // Port to listen on
	readTimeout     time.Duration        // Maximum duration for reading requests
	writeTimeout    time.Duration        // Maximum duration for writing responses
	idleTimeout     time.Duration        // Maximum idle time for keep-alive connections
	shutdownTimeout time.Duration        // Grace period for shutdown
	maxHeaderBytes  int                  // Maximum header size in bytes
	errLog          *log.Logger          // Bridges http.Server errors into slog
	tlsConfig       *TLSConfig           // Optional TLS configuration
	mu              sync.RWMutex         // Protects running and handler registration
	running         bool                 // Set while the listener is accepting connections
	registry        *prometheus.Registry // Registry served by WithPrometheusMetrics
}

// TLSConfig contains the certificate and key file paths for TLS/HTTPS support.
type TLSConfig struct {
	CertFile string // Path to the TLS certificate file
	KeyFile  string // Path to the TLS private key file
}

// Option is a functional option for configuring the Server.
// Options run in order, so later options override earlier ones.
type Option func(*server)

// WithPort sets the port number for the HTTP server.
// If not specified, DefaultPort (9876) is used.
func WithPort(port int) Option {
	return func(s *server) { s.port = port }
}

// WithReadTimeout sets the maximum duration for reading the entire request.
// This includes reading the request headers and body.
// If not specified, DefaultReadTimeout (10s) is used.
func WithReadTimeout(d time.Duration) Option {
	return func(s *server) { s.readTimeout = d }
}

// WithWriteTimeout sets the maximum duration before timing out writes of the response.
// Page rendering happens inside this window.
// If not specified, DefaultWriteTimeout (10s) is used.
func WithWriteTimeout(d time.Duration) Option {
	return func(s *server) { s.writeTimeout = d }
}

// WithIdleTimeout sets the maximum time to wait for the next request when keep-alives are enabled.
// If not specified, DefaultIdleTimeout (60s) is used.
func WithIdleTimeout(d time.Duration) Option {
	return func(s *server) { s.idleTimeout = d }
}

// WithShutdownTimeout sets the maximum duration to wait for graceful shutdown.
// In-flight requests still running after it are dropped.
// If not specified, DefaultShutdownTimeout (5s) is used.
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *server) { s.shutdownTimeout = d }
}

// WithMaxHeaderBytes sets the maximum number of bytes to read from request headers.
// If not specified, DefaultMaxHeaderBytes (1 MB) is used.
func WithMaxHeaderBytes(n int) Option {
	return func(s *server) { s.maxHeaderBytes = n }
}

// WithHandler registers a custom HTTP handler for the specified pattern.
// Multiple handlers can be registered by calling this option multiple times.
//
// Example:
//
//	status := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
//	    w.Write([]byte("ok"))
//	})
//	srv := server.New(server.WithHandler("GET /status", status))
func WithHandler(pattern string, handler http.Handler) Option {
	return func(s *server) {
		s.mux.Handle(pattern, handler)
	}
}

// WithHealthCheck adds a health check endpoint at /healthz backed by hc.
// A nil hc is always healthy.
//
// The endpoint returns:
//   - 200 OK with body "ok" when hc reports healthy
//   - 503 Service Unavailable with the error text otherwise
//
// Example:
//
//	srv := server.New(server.WithHealthCheck(server.HealthCheckerFunc(
//	    func(ctx context.Context) error { return nil },
//	)))
func WithHealthCheck(hc HealthChecker) Option {
	return func(s *server) {
		s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			if hc != nil {
				if err := hc.Healthy(r.Context()); err != nil {
					slog.Warn("health check failed", "error", err)
					w.WriteHeader(http.StatusServiceUnavailable)
					_, _ = w.Write([]byte(err.Error()))
					return
				}
			}
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
		})
	}
}

// WithPrometheusMetrics serves the server registry at /metrics.
// Counters created with metric.NewCounter against Registry() show up there.
func WithPrometheusMetrics() Option {
	return func(s *server) {
		s.mux.Handle("GET /metrics", metric.Handler(s.registry))
	}
}

// WithTLS configures the server to use TLS with the provided certificate and key files.
// The certificate is loaded when Serve starts; a bad pair fails Serve.
//
// Example:
//
//	srv := server.New(
//	    server.WithPort(8443),
//	    server.WithTLS(server.TLSConfig{
//	        CertFile: "/path/to/cert.pem",
//	        KeyFile:  "/path/to/key.pem",
//	    }),
//	)
func WithTLS(cfg TLSConfig) Option {
	return func(s *server) {
		s.tlsConfig = &cfg
	}
}

// New creates a new HTTP server with the provided options.
//
// Default configuration:
//   - Port: 9876
//   - ReadTimeout: 10s
//   - WriteTimeout: 10s
//   - IdleTimeout: 60s
//   - ShutdownTimeout: 5s
//   - MaxHeaderBytes: 1 MB
//
// Example:
//
//	srv := server.New(
//	    server.WithPort(9876),
//	    server.WithPrometheusMetrics(),
//	    server.WithHealthCheck(nil),
//	)
func New(opts ...Option) Server {
	// Each server gets its own registry so tests do not collide.
	reg := prometheus.NewRegistry()

	s := &server{
		port:            DefaultPort,
		readTimeout:     DefaultReadTimeout,
		writeTimeout:    DefaultWriteTimeout,
		idleTimeout:     DefaultIdleTimeout,
		shutdownTimeout: DefaultShutdownTimeout,
		maxHeaderBytes:  DefaultMaxHeaderBytes,
		mux:             http.NewServeMux(),
		registry:        reg,
		errLog:          logger.NewLogLogger(slog.LevelError),
	}

	for _, opt := range opts {
		opt(s)
	}

	slog.Info("server initialized",
		"port", s.port,
		"read_timeout", s.readTimeout,
		"write_timeout", s.writeTimeout)

	return s
}

// Handle registers an HTTP handler for the specified pattern.
// It is safe to call from multiple goroutines.
//
// Example:
//
//	srv := server.New()
//	srv.Handle("GET /api/menu", menuHandler)
func (s *server) Handle(pattern string, handler http.Handler) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.mux.Handle(pattern, handler)
}

// Registry returns the prometheus registry owned by this server.
func (s *server) Registry() *prometheus.Registry {
	return s.registry
}

// Handler returns the root multiplexer. Tests drive it with httptest.
func (s *server) Handler() http.Handler {
	return s.mux
}

// IsRunning returns true if the server is currently accepting connections.
// It is safe to call from multiple goroutines.
//
// The server is considered running once the socket is bound and until
// Serve returns. It is false before the listener exists and after shutdown.
//
// Example:
//
//	go srv.Serve(ctx)
//	for !srv.IsRunning() {
//	    time.Sleep(10 * time.Millisecond)
//	}
func (s *server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.running
}

// Serve starts the HTTP server and blocks until the context is canceled or an error occurs.
//
// The server uses errgroup to manage two goroutines:
//  1. Server goroutine: serves the bound listener, wrapped in TLS when configured
//  2. Shutdown goroutine: waits for context cancellation and starts a graceful shutdown
//
// When the context is canceled, the shutdown goroutine:
//   - Calls Shutdown() bounded by shutdownTimeout
//   - Lets in-flight requests finish inside that window
//   - Logs how long the shutdown took
//
// This method returns:
//   - nil on graceful shutdown
//   - An error if the listener cannot be bound, the TLS pair cannot be loaded,
//     or the server stops with anything other than http.ErrServerClosed
//
// Example:
//
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
//	defer stop()
//
//	if err := srv.Serve(ctx); err != nil {
//	    slog.Error("server failed", "error", err)
//	}
func (s *server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:           fmt.Sprintf(":%d", s.port),
		Handler:        s.mux,
		ReadTimeout:    s.readTimeout,
		WriteTimeout:   s.writeTimeout,
		IdleTimeout:    s.idleTimeout,
		MaxHeaderBytes: s.maxHeaderBytes,
		ErrorLog:       s.errLog,
	}

	// Bind first so running is only set once the socket exists.
	listener, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}

	if s.tlsConfig != nil {
		cert, certErr := tls.LoadX509KeyPair(s.tlsConfig.CertFile, s.tlsConfig.KeyFile)
		if certErr != nil {
			listener.Close()
			return fmt.Errorf("failed to load TLS certificate: %w", certErr)
		}

		listener = tls.NewListener(listener, &tls.Config{
			Certificates: []tls.Certificate{cert},
			MinVersion:   tls.VersionTLS12,
		})

		slog.Info("starting TLS server", "addr", srv.Addr)
	} else {
		slog.Info("starting server", "addr", srv.Addr)
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.mu.Lock()
		s.running = true
		s.mu.Unlock()

		defer func() {
			s.mu.Lock()
			s.running = false
			s.mu.Unlock()
		}()

		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()

		slog.Info("shutting down server", "grace_period", s.shutdownTimeout)

		shutdownStart := time.Now()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}

		slog.Info("server shutdown complete", "duration", time.Since(shutdownStart))

		return nil
	})

	return g.Wait()
}
