package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"golang.org/x/net/http2"

	"github.com/gooddata/grizzly/pkg/config"
	"github.com/gooddata/grizzly/pkg/logging"
)

// eventBuffer is the capacity of the event channel.
const eventBuffer = 8

// Server is the default Engine: an HTTPS listener in front of Handler.
type Server struct {
	cfg config.Configuration
	log *slog.Logger
	out io.Writer
	tls *TLSManager

	events chan Event
	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	httpServer *http.Server
	handler    *Handler
	watcher    *StubWatcher
	boundPort  int
}

// ServerOption is a functional option for configuring a Server.
type ServerOption func(*Server)

// WithLogger sets the operational logger for the server.
func WithLogger(log *slog.Logger) ServerOption {
	return func(s *Server) {
		if log != nil {
			s.log = log
		}
	}
}

// WithOutput sets where ReportBoundAddress writes. Defaults to os.Stdout.
func WithOutput(w io.Writer) ServerOption {
	return func(s *Server) {
		if w != nil {
			s.out = w
		}
	}
}

// NewServer creates a Server for cfg. Nothing is bound until Start.
func NewServer(cfg config.Configuration, opts ...ServerOption) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		cfg:    cfg,
		log:    logging.Nop(),
		out:    os.Stdout,
		tls:    NewTLSManager(cfg),
		events: make(chan Event, eventBuffer),
		ctx:    ctx,
		cancel: cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Events returns the lifecycle event channel.
func (s *Server) Events() <-chan Event {
	return s.events
}

// Start attempts to bind cfg.Port in the background. The result is
// delivered on Events tagged with attempt.
func (s *Server) Start(attempt int, cfg config.Configuration) {
	go s.start(attempt, cfg)
}

func (s *Server) start(attempt int, cfg config.Configuration) {
	log := s.log.With("attempt", attempt, "port", cfg.Port)

	var stubs *StubTable
	if cfg.HasStub() {
		var err error
		stubs, err = LoadStubs(cfg.Stub)
		if err != nil {
			s.emit(Event{Kind: EventFailed, Attempt: attempt, Err: &EngineError{Code: CodeStub, Op: "load stubs", Err: err}})
			return
		}
		log.Debug("stubs loaded", "path", cfg.Stub, "count", stubs.Len())
	}

	tlsConfig, err := s.tls.BuildConfig()
	if err != nil {
		s.emit(Event{Kind: EventFailed, Attempt: attempt, Err: &EngineError{Code: CodeTLS, Op: "tls setup", Err: err}})
		return
	}

	handler := NewHandler(cfg, stubs, s.log)
	srv := &http.Server{
		Handler:           handler,
		TLSConfig:         tlsConfig,
		ReadHeaderTimeout: 30 * time.Second,
	}
	if err := http2.ConfigureServer(srv, &http2.Server{}); err != nil {
		s.emit(Event{Kind: EventFailed, Attempt: attempt, Err: &EngineError{Code: CodeTLS, Op: "http2 setup", Err: err}})
		return
	}

	//nolint:gosec // listens on all interfaces like the backend it stands in for
	ln, err := net.Listen("tcp", cfg.Address())
	if err != nil {
		log.Debug("bind failed", "error", err)
		s.emit(Failed(attempt, "listen", err))
		return
	}

	port := cfg.Port
	if addr, ok := ln.Addr().(*net.TCPAddr); ok {
		port = addr.Port
	}

	s.mu.Lock()
	if s.ctx.Err() != nil {
		// Shutdown ran while this attempt was binding.
		s.mu.Unlock()
		_ = ln.Close()
		log.Debug("bound after shutdown, releasing port")
		return
	}
	s.cfg = cfg
	s.httpServer = srv
	s.handler = handler
	s.boundPort = port
	s.mu.Unlock()

	go func() {
		if err := srv.ServeTLS(ln, "", ""); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTPS server error", "error", err)
			s.emit(Event{Kind: EventFailed, Attempt: attempt, Err: &EngineError{Code: CodeServe, Op: "serve", Err: err}})
		}
	}()

	if cfg.HasStub() {
		s.watchStubs(cfg.Stub)
	}

	log.Info("engine bound", "backend", cfg.BackendHost, "self_signed", s.tls.SelfSigned())
	s.emit(Started(attempt))
}

// watchStubs starts the stub reloader once per Server.
func (s *Server) watchStubs(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watcher != nil || s.ctx.Err() != nil {
		return
	}

	w, err := NewStubWatcher(path, s.log)
	if err != nil {
		s.log.Warn("stub hot reload disabled", "error", err)
		return
	}
	s.watcher = w
	go w.Watch(s.ctx, func(table *StubTable) {
		s.mu.Lock()
		h := s.handler
		s.mu.Unlock()
		if h != nil {
			h.SetStubs(table)
		}
	})
}

// emit delivers ev unless the server has been shut down.
func (s *Server) emit(ev Event) {
	select {
	case s.events <- ev:
	case <-s.ctx.Done():
	}
}

// BoundPort returns the port of the active listener, or 0.
func (s *Server) BoundPort() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.boundPort
}

// ReportBoundAddress prints the listening notice.
func (s *Server) ReportBoundAddress() {
	s.mu.Lock()
	port := s.boundPort
	backend := s.cfg.BackendHost
	s.mu.Unlock()

	fmt.Fprintf(s.out, "Grizzly server listening on https://localhost:%d (backend %s)\n", port, backend)
}

// Shutdown stops the listener and the stub watcher.
func (s *Server) Shutdown(ctx context.Context) error {
	s.cancel()

	s.mu.Lock()
	srv := s.httpServer
	w := s.watcher
	s.httpServer = nil
	s.watcher = nil
	s.boundPort = 0
	s.mu.Unlock()

	var errs []error
	if w != nil {
		if err := w.Close(); err != nil {
			errs = append(errs, fmt.Errorf("stub watcher close: %w", err))
		}
	}
	if srv != nil {
		if err := srv.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("HTTPS shutdown: %w", err))
		}
	}
	return errors.Join(errs...)
}
