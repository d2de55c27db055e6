package login

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// SessionCookie is the cookie the server sets on a successful login.
	SessionCookie = "hanabi.sid"

	// clientVersion identifies the client kind to the server.
	clientVersion = "bot"

	defaultTimeout = 15 * time.Second
)

// Logger defines the logging interface for the authenticator.
type Logger interface {
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Authenticator performs form logins against one URL.
//
// Thread Safety:
//   - Safe for concurrent use; bots share one Authenticator.
type Authenticator struct {
	url    string
	client *http.Client
	logger Logger
}

// New creates an Authenticator. A nil client gets a default with a timeout.
func New(authURL string, client *http.Client, logger Logger) *Authenticator {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	if logger == nil {
		logger = noopLogger{}
	}
	return &Authenticator{url: authURL, client: client, logger: logger}
}

// Authenticate logs in and returns the Cookie header value
// ("hanabi.sid=<value>"). Any failure, including a missing cookie, is
// reported as ErrAuthFailed.
func (a *Authenticator) Authenticate(ctx context.Context, username, password string) (string, error) {
	a.logger.Info("authenticating", "username", username)

	form := url.Values{
		"username": {username},
		"password": {password},
		"version":  {clientVersion},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.url, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("%w: building request: %w", ErrAuthFailed, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.client.Do(req)
	if err != nil {
		a.logger.Error("authentication request failed", "username", username, "error", err)
		return "", fmt.Errorf("%w: %w", ErrAuthFailed, err)
	}
	defer resp.Body.Close()
	//nolint:errcheck // Drain so the connection can be reused
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		a.logger.Error("authentication rejected", "username", username, "status", resp.StatusCode)
		return "", fmt.Errorf("%w: status %d", ErrAuthFailed, resp.StatusCode)
	}

	for _, c := range resp.Cookies() {
		if c.Name == SessionCookie && c.Value != "" {
			a.logger.Info("authentication successful", "username", username)
			return SessionCookie + "=" + c.Value, nil
		}
	}

	a.logger.Error("session cookie missing from login response", "username", username)
	return "", fmt.Errorf("%w: no %s cookie", ErrAuthFailed, SessionCookie)
}
