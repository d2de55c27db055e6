package connection

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/antowkas/oracle-hanabi-live-bot/internal/eventbus"
	"github.com/antowkas/oracle-hanabi-live-bot/internal/events"
	"github.com/antowkas/oracle-hanabi-live-bot/internal/infrastructure/config"
	"github.com/antowkas/oracle-hanabi-live-bot/internal/protocol"
)

const (
	// writeTimeout bounds a single frame write.
	writeTimeout = 10 * time.Second

	// maxLoggedFrame caps how much of an outbound frame is logged at debug level.
	maxLoggedFrame = 256
)

// State is the connection manager lifecycle state.
type State string

// Connection states.
const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
	StateStopped      State = "stopped"
)

// Logger is the logging interface used by the connection manager.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Sender sends one command to the server.
// Failures are logged by the implementation; callers may ignore the error.
type Sender interface {
	Send(ctx context.Context, command string, payload any) error
}

// Ensure Manager implements Sender.
var _ Sender = (*Manager)(nil)

// Manager owns one websocket session and keeps it alive.
//
// Thread Safety:
//   - Send and State are safe for concurrent use.
//   - Run must be called at most once.
type Manager struct {
	cfg     config.ServerConfig
	cookie  string
	bus     *eventbus.Bus
	logger  Logger
	dialer  *websocket.Dialer
	backoff *Backoff

	mu    sync.RWMutex
	state State
	conn  *websocket.Conn

	// writeMu serialises frame writes; gorilla allows one concurrent writer.
	writeMu sync.Mutex
}

// New creates a manager for the given server. cookie is sent verbatim as
// the Cookie header of every handshake.
func New(cfg config.ServerConfig, cookie string, bus *eventbus.Bus, logger Logger) *Manager {
	return &Manager{
		cfg:    cfg,
		cookie: cookie,
		bus:    bus,
		logger: logger,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: cfg.HandshakeTimeout,
		},
		backoff: NewBackoff(cfg.Reconnect.BaseDelay, cfg.Reconnect.MaxDelay),
		state:   StateDisconnected,
	}
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// IsConnected reports whether a session is established.
func (m *Manager) IsConnected() bool {
	return m.State() == StateConnected
}

// Run connects and reconnects until ctx is cancelled. The first attempt is
// immediate; every failed attempt or lost session waits for the next backoff
// delay, and a successful connect resets the backoff. Each transition is
// published as ConnectionChanged, failed attempts included. Run returns nil on
// cancellation and leaves the manager in StateStopped.
func (m *Manager) Run(ctx context.Context) error {
	defer m.setState(StateStopped)

	var delay time.Duration
	for {
		if delay > 0 && !sleep(ctx, delay) {
			return nil
		}
		if ctx.Err() != nil {
			return nil
		}

		m.setState(StateConnecting)
		m.logger.Info("connecting to server", "url", m.cfg.WSURL)

		conn, err := m.dial(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			delay = m.backoff.Next()
			m.setState(StateDisconnected)
			m.logger.Warn("connection attempt failed", "error", err, "retry_in", delay.String())
			m.bus.Publish(ctx, events.ConnectionChanged{Connected: false, Err: err, RetryIn: delay})
			continue
		}

		m.backoff.Reset()
		m.attach(conn)
		m.logger.Info("connected to server", "url", m.cfg.WSURL)
		m.bus.Publish(ctx, events.ConnectionChanged{Connected: true})

		err = m.receive(ctx, conn)
		m.detach()
		conn.Close() //nolint:errcheck // Best-effort close, session already gone

		if ctx.Err() != nil {
			return nil
		}

		delay = m.backoff.Next()
		m.logger.Warn("connection lost", "error", err, "retry_in", delay.String())
		m.bus.Publish(ctx, events.ConnectionChanged{Connected: false, Err: err, RetryIn: delay})
	}
}

// dial performs one websocket handshake.
func (m *Manager) dial(ctx context.Context) (*websocket.Conn, error) {
	header := http.Header{}
	if m.cookie != "" {
		header.Set("Cookie", m.cookie)
	}

	conn, resp, err := m.dialer.DialContext(ctx, m.cfg.WSURL, header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close() //nolint:errcheck // Handshake body is not used
	}
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("%w: status %d: %w", ErrDialFailed, resp.StatusCode, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrDialFailed, err)
	}
	return conn, nil
}

// receive reads frames until the session fails or ctx is cancelled.
// Text frames are published in arrival order, one at a time.
func (m *Manager) receive(ctx context.Context, conn *websocket.Conn) error {
	// Cancellation unblocks ReadMessage by closing the socket.
	stop := context.AfterFunc(ctx, func() {
		conn.Close() //nolint:errcheck // Unblocks the reader
	})
	defer stop()

	done := make(chan struct{})
	defer close(done)

	if m.cfg.PingInterval > 0 {
		deadline := m.cfg.PingInterval + m.cfg.PongTimeout
		//nolint:errcheck // Best-effort deadline on connection setup
		conn.SetReadDeadline(time.Now().Add(deadline))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(deadline))
		})
		go m.heartbeat(conn, done)
	}

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		if m.cfg.PingInterval > 0 {
			// Any server frame proves the session is alive.
			//nolint:errcheck // Best-effort deadline reset
			conn.SetReadDeadline(time.Now().Add(m.cfg.PingInterval + m.cfg.PongTimeout))
		}
		if msgType != websocket.TextMessage {
			continue
		}
		m.bus.Publish(ctx, events.RawMessage{Text: string(data)})
	}
}

// heartbeat pings the server until done is closed or a ping fails.
func (m *Manager) heartbeat(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(m.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			// WriteControl may run concurrently with WriteMessage.
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(m.cfg.PongTimeout)); err != nil {
				m.logger.Debug("heartbeat ping failed", "error", err)
				return
			}
		}
	}
}

// Send encodes and writes one command frame. While no session is
// established the command is dropped; every failure is logged here and
// also returned for callers that care.
func (m *Manager) Send(_ context.Context, command string, payload any) error {
	m.mu.RLock()
	conn := m.conn
	m.mu.RUnlock()

	if conn == nil {
		m.logger.Error("dropping command, not connected", "command", command)
		return ErrNotConnected
	}

	frame, err := protocol.Encode(command, payload)
	if err != nil {
		m.logger.Error("dropping command, encode failed", "command", command, "error", err)
		return err
	}

	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	//nolint:errcheck // Best-effort deadline; write error caught below
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		m.logger.Error("sending command failed", "command", command, "error", err)
		return fmt.Errorf("%w: %w", ErrSendFailed, err)
	}

	m.logger.Debug("sent command", "frame", truncate(string(frame), maxLoggedFrame))
	return nil
}

func (m *Manager) attach(conn *websocket.Conn) {
	m.mu.Lock()
	m.conn = conn
	m.state = StateConnected
	m.mu.Unlock()
}

func (m *Manager) detach() {
	m.mu.Lock()
	m.conn = nil
	m.state = StateDisconnected
	m.mu.Unlock()
}

func (m *Manager) setState(s State) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
}

// sleep waits for d. It returns false if ctx was cancelled first.
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
