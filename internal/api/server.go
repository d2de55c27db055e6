package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/antowkas/oracle-hanabi-live-bot/internal/game"
	"github.com/antowkas/oracle-hanabi-live-bot/internal/infrastructure/config"
	"github.com/antowkas/oracle-hanabi-live-bot/internal/infrastructure/logging"
	"github.com/antowkas/oracle-hanabi-live-bot/internal/observe"
	"github.com/antowkas/oracle-hanabi-live-bot/internal/supervisor"
)

// Server timeouts.
const (
	// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
	// to complete during shutdown.
	gracefulShutdownTimeout = 10 * time.Second

	readTimeout  = 10 * time.Second
	writeTimeout = 10 * time.Second
	idleTimeout  = 60 * time.Second

	// healthCheckTimeout bounds each backend check of /health.
	healthCheckTimeout = 2 * time.Second
)

// BotSource is the part of the supervisor the API reads.
type BotSource interface {
	Stats() []supervisor.Stats
	Tables(name string) ([]game.TableState, error)
}

// ActionJournal reads the game journal.
type ActionJournal interface {
	Actions(ctx context.Context, bot string, tableID, limit int) ([]observe.ActionRecord, error)
	TableCount(ctx context.Context, bot string) (int, error)
}

// HealthChecker is implemented by every optional backend.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config  config.APIConfig
	Logger  *logging.Logger
	Bots    BotSource
	Journal ActionJournal            // optional
	Checks  map[string]HealthChecker // optional, reported by /health
	Version string
}

// Server is the HTTP status server.
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
type Server struct {
	cfg      config.APIConfig
	logger   *logging.Logger
	bots     BotSource
	journal  ActionJournal
	checks   map[string]HealthChecker
	version  string
	server   *http.Server
	listener net.Listener

	closeOnce sync.Once
	closeErr  error
	stopped   chan struct{}
}

// New creates a new API server with the given dependencies.
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Bots == nil {
		return nil, fmt.Errorf("bot source is required")
	}

	return &Server{
		cfg:     deps.Config,
		logger:  deps.Logger,
		bots:    deps.Bots,
		journal: deps.Journal,
		checks:  deps.Checks,
		version: deps.Version,
		stopped: make(chan struct{}),
	}, nil
}

// Start binds the listener and serves in a background goroutine until ctx
// is cancelled or Close is called. A bind failure (port in use) is
// returned immediately.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	s.listener = ln

	s.server = &http.Server{
		Handler:           s.buildRouter(),
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	go func() {
		s.logger.Info("API server starting", "address", ln.Addr().String())
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	go func() {
		select {
		case <-ctx.Done():
			if err := s.Close(); err != nil {
				s.logger.Error("error closing API server", "error", err)
			}
		case <-s.stopped:
		}
	}()

	return nil
}

// Addr returns the bound address, or "" before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Close gracefully shuts down the API server. Later calls return the
// first call's result.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	s.closeOnce.Do(func() {
		defer close(s.stopped)

		ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
		defer cancel()

		s.logger.Info("API server shutting down")
		if err := s.server.Shutdown(ctx); err != nil {
			s.closeErr = fmt.Errorf("shutting down API server: %w", err)
		}
	})
	return s.closeErr
}
