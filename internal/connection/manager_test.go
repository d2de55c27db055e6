package connection

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/antowkas/oracle-hanabi-live-bot/internal/eventbus"
	"github.com/antowkas/oracle-hanabi-live-bot/internal/events"
	"github.com/antowkas/oracle-hanabi-live-bot/internal/infrastructure/config"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// fakeServer is a websocket endpoint that records what it receives.
type fakeServer struct {
	*httptest.Server

	accepted atomic.Int32
	cookies  chan string
	received chan string

	// onConnect runs for every accepted session; returning closes it.
	onConnect func(fs *fakeServer, conn *websocket.Conn, n int32)
}

func newFakeServer(t *testing.T, onConnect func(fs *fakeServer, conn *websocket.Conn, n int32)) *fakeServer {
	t.Helper()
	fs := &fakeServer{
		cookies:   make(chan string, 16),
		received:  make(chan string, 16),
		onConnect: onConnect,
	}
	upgrader := websocket.Upgrader{}
	fs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		fs.cookies <- r.Header.Get("Cookie")
		n := fs.accepted.Add(1)
		fs.onConnect(fs, conn, n)
	}))
	t.Cleanup(fs.Close)
	return fs
}

func (fs *fakeServer) wsURL() string {
	return "ws" + strings.TrimPrefix(fs.URL, "http")
}

func testServerConfig(url string) config.ServerConfig {
	return config.ServerConfig{
		WSURL: url,
		Reconnect: config.ReconnectConfig{
			BaseDelay: 10 * time.Millisecond,
			MaxDelay:  40 * time.Millisecond,
		},
		HandshakeTimeout: time.Second,
	}
}

// readAll forwards every text frame the server reads to received.
func (fs *fakeServer) readAll(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		fs.received <- string(data)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

// changeRecorder collects ConnectionChanged events from a bus.
type changeRecorder struct {
	mu      sync.Mutex
	changes []events.ConnectionChanged
}

func recordChanges(bus *eventbus.Bus) *changeRecorder {
	r := &changeRecorder{}
	eventbus.On(bus, func(_ context.Context, ev events.ConnectionChanged) error {
		r.mu.Lock()
		r.changes = append(r.changes, ev)
		r.mu.Unlock()
		return nil
	})
	return r
}

func (r *changeRecorder) snapshot() []events.ConnectionChanged {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.ConnectionChanged(nil), r.changes...)
}

func (r *changeRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.changes)
}

func TestManager_PublishesTextFramesInOrder(t *testing.T) {
	fs := newFakeServer(t, func(_ *fakeServer, conn *websocket.Conn, _ int32) {
		conn.WriteMessage(websocket.TextMessage, []byte(`welcome {"username":"oraclehlb1"}`))
		conn.WriteMessage(websocket.BinaryMessage, []byte{0x01, 0x02})
		conn.WriteMessage(websocket.TextMessage, []byte(`chat {"msg":"hi"}`))
		// Hold the session open until the client leaves.
		conn.ReadMessage()
	})

	bus := eventbus.New("test")
	var mu sync.Mutex
	var frames []string
	eventbus.On(bus, func(_ context.Context, ev events.RawMessage) error {
		mu.Lock()
		frames = append(frames, ev.Text)
		mu.Unlock()
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	mgr := New(testServerConfig(fs.wsURL()), "hanabi.sid=abc", bus, nopLogger{})
	done := make(chan error, 1)
	go func() { done <- mgr.Run(ctx) }()

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(frames) == 2
	})

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run() = %v, want nil on cancellation", err)
	}
	if mgr.State() != StateStopped {
		t.Errorf("State() = %q, want %q", mgr.State(), StateStopped)
	}

	mu.Lock()
	defer mu.Unlock()
	want := []string{`welcome {"username":"oraclehlb1"}`, `chat {"msg":"hi"}`}
	for i := range want {
		if frames[i] != want[i] {
			t.Errorf("frame %d = %q, want %q", i, frames[i], want[i])
		}
	}
	if got := <-fs.cookies; got != "hanabi.sid=abc" {
		t.Errorf("Cookie header = %q, want %q", got, "hanabi.sid=abc")
	}
}

func TestManager_SendWhileDisconnected(t *testing.T) {
	mgr := New(testServerConfig("ws://127.0.0.1:1"), "", eventbus.New("test"), nopLogger{})

	err := mgr.Send(context.Background(), "chatPM", map[string]any{"msg": "pong"})
	if !errors.Is(err, ErrNotConnected) {
		t.Errorf("Send() error = %v, want ErrNotConnected", err)
	}
	if mgr.State() != StateDisconnected {
		t.Errorf("State() = %q, want %q", mgr.State(), StateDisconnected)
	}
}

func TestManager_SendWritesFrame(t *testing.T) {
	fs := newFakeServer(t, func(fs *fakeServer, conn *websocket.Conn, _ int32) {
		fs.readAll(conn)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mgr := New(testServerConfig(fs.wsURL()), "", eventbus.New("test"), nopLogger{})
	go mgr.Run(ctx)
	waitFor(t, mgr.IsConnected)

	if err := mgr.Send(ctx, "getGameInfo2", map[string]any{"tableID": 5}); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	select {
	case got := <-fs.received:
		if got != `getGameInfo2 {"tableID":5}` {
			t.Errorf("server received %q", got)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("server received nothing")
	}
}

func TestManager_ReconnectsAfterLoss(t *testing.T) {
	fs := newFakeServer(t, func(_ *fakeServer, conn *websocket.Conn, n int32) {
		if n == 1 {
			// Drop the first session immediately.
			return
		}
		conn.ReadMessage()
	})

	bus := eventbus.New("test")
	var mu sync.Mutex
	var changes []events.ConnectionChanged
	eventbus.On(bus, func(_ context.Context, ev events.ConnectionChanged) error {
		mu.Lock()
		changes = append(changes, ev)
		mu.Unlock()
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mgr := New(testServerConfig(fs.wsURL()), "", bus, nopLogger{})
	go mgr.Run(ctx)

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(changes) >= 3
	})

	mu.Lock()
	defer mu.Unlock()
	if !changes[0].Connected || changes[1].Connected || !changes[2].Connected {
		t.Errorf("connection changes = %+v, want up, down, up", changes)
	}
	if changes[1].RetryIn != 10*time.Millisecond {
		t.Errorf("first retry delay = %v, want base delay", changes[1].RetryIn)
	}
}

func TestManager_RetriesFailedHandshake(t *testing.T) {
	var attempts atomic.Int32
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		conn.ReadMessage()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mgr := New(testServerConfig("ws"+strings.TrimPrefix(srv.URL, "http")), "", eventbus.New("test"), nopLogger{})
	go mgr.Run(ctx)

	waitFor(t, mgr.IsConnected)
	if got := attempts.Load(); got != 3 {
		t.Errorf("handshake attempts = %d, want 3", got)
	}
}

func TestManager_StopsWhileWaitingToRetry(t *testing.T) {
	cfg := testServerConfig("ws://127.0.0.1:1")
	cfg.Reconnect.BaseDelay = time.Hour
	cfg.Reconnect.MaxDelay = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	mgr := New(cfg, "", eventbus.New("test"), nopLogger{})
	done := make(chan error, 1)
	go func() { done <- mgr.Run(ctx) }()

	waitFor(t, func() bool { return mgr.State() == StateDisconnected })
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() = %v, want nil", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not stop during backoff wait")
	}
}

func TestManager_HeartbeatKeepsSessionAlive(t *testing.T) {
	fs := newFakeServer(t, func(_ *fakeServer, conn *websocket.Conn, _ int32) {
		// The default ping handler answers pongs while reading.
		conn.ReadMessage()
	})

	cfg := testServerConfig(fs.wsURL())
	cfg.PingInterval = 20 * time.Millisecond
	cfg.PongTimeout = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mgr := New(cfg, "", eventbus.New("test"), nopLogger{})
	go mgr.Run(ctx)
	waitFor(t, mgr.IsConnected)

	time.Sleep(200 * time.Millisecond)

	if !mgr.IsConnected() {
		t.Error("session dropped despite pongs")
	}
	if got := fs.accepted.Load(); got != 1 {
		t.Errorf("sessions = %d, want 1", got)
	}
}

func TestManager_FailedDialPublishesDisconnect(t *testing.T) {
	bus := eventbus.New("test")
	rec := recordChanges(bus)

	ctx, cancel := context.WithCancel(context.Background())
	mgr := New(testServerConfig("ws://127.0.0.1:1"), "", bus, nopLogger{})
	done := make(chan error, 1)
	go func() { done <- mgr.Run(ctx) }()

	waitFor(t, func() bool { return rec.count() >= 4 })
	cancel()
	<-done

	changes := rec.snapshot()
	wantDelays := []time.Duration{10 * time.Millisecond, 20 * time.Millisecond, 40 * time.Millisecond, 40 * time.Millisecond}
	for i, want := range wantDelays {
		ev := changes[i]
		if ev.Connected {
			t.Errorf("change %d reports connected", i)
		}
		if !errors.Is(ev.Err, ErrDialFailed) {
			t.Errorf("change %d error = %v, want ErrDialFailed", i, ev.Err)
		}
		if ev.RetryIn != want {
			t.Errorf("change %d RetryIn = %v, want %v", i, ev.RetryIn, want)
		}
	}
}

func TestManager_MissingPongsDropSession(t *testing.T) {
	release := make(chan struct{})
	fs := newFakeServer(t, func(_ *fakeServer, _ *websocket.Conn, _ int32) {
		// Never read, so pings are never answered.
		<-release
	})
	t.Cleanup(func() { close(release) })

	cfg := testServerConfig(fs.wsURL())
	cfg.PingInterval = 50 * time.Millisecond
	cfg.PongTimeout = 50 * time.Millisecond

	bus := eventbus.New("test")
	rec := recordChanges(bus)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mgr := New(cfg, "", bus, nopLogger{})
	go mgr.Run(ctx)

	waitFor(t, func() bool { return rec.count() >= 3 })

	changes := rec.snapshot()
	if !changes[0].Connected || changes[1].Connected || !changes[2].Connected {
		t.Fatalf("connection changes = %+v, want up, down, up", changes[:3])
	}
	var netErr net.Error
	if !errors.As(changes[1].Err, &netErr) || !netErr.Timeout() {
		t.Errorf("disconnect error = %v, want read timeout", changes[1].Err)
	}
	if got := fs.accepted.Load(); got < 2 {
		t.Errorf("sessions = %d, want a reconnect", got)
	}
}
