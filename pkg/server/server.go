package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

const homePage = `<html>
<head><title>CloudWatch Exporter</title></head>
<body>
<h1>CloudWatch Exporter</h1>
<p><a href="/metrics">Metrics</a></p>
</body>
</html>`

// Reloader triggers a configuration reload. Implemented by the collector.
type Reloader interface {
	Reload() error
}

// Config holds the HTTP server settings.
type Config struct {
	ListenAddress string
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	IdleTimeout   time.Duration
}

// Server serves the exporter's HTTP surface.
type Server struct {
	config     Config
	handler    http.Handler
	reloader   Reloader
	logger     *slog.Logger
	httpServer *http.Server

	shutdownOnce sync.Once
	shutdownChan chan struct{}
}

// New creates a server exposing metricsHandler at /metrics and wiring
// reloader to /-/reload and SIGHUP.
func New(cfg Config, metricsHandler http.Handler, reloader Reloader) *Server {
	if cfg.ListenAddress == "" {
		cfg.ListenAddress = ":9106"
	}
	if cfg.WriteTimeout == 0 {
		// Scrape passes block on upstream API calls; leave generous room.
		cfg.WriteTimeout = 120 * time.Second
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 30 * time.Second
	}
	return &Server{
		config:       cfg,
		handler:      metricsHandler,
		reloader:     reloader,
		logger:       slog.Default().With("component", "server"),
		shutdownChan: make(chan struct{}),
	}
}

// Start starts the HTTP server and blocks until shutdown.
func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:         s.config.ListenAddress,
		Handler:      s.routes(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting exporter server", "address", s.config.ListenAddress)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigChan)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("context cancelled, shutting down")
			return s.Shutdown(context.Background())
		case sig := <-sigChan:
			if sig == syscall.SIGHUP {
				s.logger.Info("received SIGHUP, reloading configuration")
				if err := s.reloader.Reload(); err != nil {
					s.logger.Error("reload failed", "error", err)
				}
				continue
			}
			s.logger.Info("received shutdown signal", "signal", sig.String())
			return s.Shutdown(context.Background())
		case err := <-errChan:
			return err
		case <-s.shutdownChan:
			return nil
		}
	}
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		err = s.httpServer.Shutdown(shutdownCtx)
		close(s.shutdownChan)
	})
	return err
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", s.handler)
	mux.HandleFunc("/-/reload", s.handleReload)
	mux.HandleFunc("/-/healthy", s.handleHealth)
	mux.HandleFunc("/-/ready", s.handleHealth)
	mux.HandleFunc("/", s.handleHome)
	return mux
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := s.reloader.Reload(); err != nil {
		s.logger.Error("reload failed", "error", err)
		http.Error(w, fmt.Sprintf("reload failed: %v", err), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, homePage)
}
