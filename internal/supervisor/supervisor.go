package supervisor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/antowkas/oracle-hanabi-live-bot/internal/game"
	"github.com/antowkas/oracle-hanabi-live-bot/internal/infrastructure/config"
	"github.com/antowkas/oracle-hanabi-live-bot/internal/infrastructure/logging"
)

// Status represents the supervision state of one bot.
type Status string

// Bot statuses.
const (
	StatusStarting   Status = "starting"
	StatusRunning    Status = "running"
	StatusRestarting Status = "restarting"
	StatusStopped    Status = "stopped"
)

// Authenticator exchanges credentials for a session cookie.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (string, error)
}

// Instance is one constructed bot.
type Instance interface {
	Run(ctx context.Context) error
	Tables() []game.TableState
}

// Builder constructs an instance for bot from a fresh cookie.
type Builder func(bot config.BotConfig, cookie string, logger *logging.Logger) (Instance, error)

// Config contains supervisor settings.
type Config struct {
	Bots []config.BotConfig

	// RestartDelay is the fixed wait before a failed bot is started again.
	RestartDelay time.Duration
}

// botState is the live record of one supervised bot.
type botState struct {
	cfg       config.BotConfig
	status    Status
	session   string
	restarts  int
	lastError error
	startTime time.Time
	instance  Instance
}

// Supervisor runs and restarts bots.
//
// Thread Safety:
//   - Stats and Tables are safe for concurrent use with Run.
type Supervisor struct {
	cfg    Config
	auth   Authenticator
	build  Builder
	logger *logging.Logger

	mu   sync.RWMutex
	bots map[string]*botState
}

// New creates a supervisor for cfg.Bots.
func New(cfg Config, auth Authenticator, build Builder, logger *logging.Logger) *Supervisor {
	bots := make(map[string]*botState, len(cfg.Bots))
	for _, b := range cfg.Bots {
		bots[b.Username] = &botState{cfg: b, status: StatusStopped}
	}
	return &Supervisor{
		cfg:    cfg,
		auth:   auth,
		build:  build,
		logger: logger,
		bots:   bots,
	}
}

// Run supervises every bot until ctx is cancelled. It returns nil on
// cancellation; a bot failing never stops its siblings.
func (s *Supervisor) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, b := range s.cfg.Bots {
		g.Go(func() error {
			s.supervise(ctx, b)
			return nil
		})
	}
	return g.Wait()
}

// supervise is the restart loop of one bot.
func (s *Supervisor) supervise(ctx context.Context, bot config.BotConfig) {
	logger := s.logger.With("bot", bot.Username)
	logger.Info("starting supervisor", "strategy", bot.Strategy)

	for {
		err := s.runOnce(ctx, bot, logger)

		if ctx.Err() != nil {
			s.setStatus(bot.Username, StatusStopped, nil)
			logger.Info("supervisor stopped")
			return
		}
		if err == nil {
			err = ErrInstanceExited
		}

		s.mu.Lock()
		st := s.bots[bot.Username]
		st.restarts++
		attempt := st.restarts
		s.mu.Unlock()
		s.setStatus(bot.Username, StatusRestarting, err)

		logger.Error("bot crashed, restarting",
			"error", err,
			"attempt", attempt,
			"delay", s.cfg.RestartDelay.String(),
		)

		timer := time.NewTimer(s.cfg.RestartDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			s.setStatus(bot.Username, StatusStopped, nil)
			logger.Info("supervisor stopped")
			return
		case <-timer.C:
		}
	}
}

// runOnce authenticates, builds and runs one instance.
func (s *Supervisor) runOnce(ctx context.Context, bot config.BotConfig, logger *logging.Logger) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrInstancePanic, r)
		}
		s.setInstance(bot.Username, nil)
	}()

	session := uuid.NewString()
	s.mu.Lock()
	st := s.bots[bot.Username]
	st.status = StatusStarting
	st.session = session
	s.mu.Unlock()

	cookie, err := s.auth.Authenticate(ctx, bot.Username, bot.Password)
	if err != nil {
		return err
	}
	if cookie == "" {
		return ErrEmptyCredential
	}

	inst, err := s.build(bot, cookie, logger.With("session", session))
	if err != nil {
		return fmt.Errorf("building instance: %w", err)
	}

	s.setInstance(bot.Username, inst)
	return inst.Run(ctx)
}

func (s *Supervisor) setInstance(name string, inst Instance) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.bots[name]
	st.instance = inst
	if inst != nil {
		st.status = StatusRunning
		st.startTime = time.Now()
	}
}

func (s *Supervisor) setStatus(name string, status Status, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.bots[name]
	st.status = status
	if err != nil {
		st.lastError = err
	}
}

// Stats contains supervision statistics for one bot.
type Stats struct {
	Name         string        `json:"name"`
	Strategy     string        `json:"strategy"`
	Status       Status        `json:"status"`
	Session      string        `json:"session,omitempty"`
	Uptime       time.Duration `json:"uptime,omitempty"`
	RestartCount int           `json:"restart_count"`
	LastError    string        `json:"last_error,omitempty"`
}

// Stats returns statistics for every bot, in configuration order.
func (s *Supervisor) Stats() []Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Stats, 0, len(s.cfg.Bots))
	for _, b := range s.cfg.Bots {
		st := s.bots[b.Username]
		stats := Stats{
			Name:         b.Username,
			Strategy:     b.Strategy,
			Status:       st.status,
			Session:      st.session,
			RestartCount: st.restarts,
		}
		if st.status == StatusRunning {
			stats.Uptime = time.Since(st.startTime)
		}
		if st.lastError != nil {
			stats.LastError = st.lastError.Error()
		}
		out = append(out, stats)
	}
	return out
}

// Tables returns the tables tracked by a running bot.
func (s *Supervisor) Tables(name string) ([]game.TableState, error) {
	s.mu.RLock()
	st, ok := s.bots[name]
	var inst Instance
	if ok {
		inst = st.instance
	}
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBot, name)
	}
	if inst == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotRunning, name)
	}
	return inst.Tables(), nil
}
