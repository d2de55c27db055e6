package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/antowkas/oracle-hanabi-live-bot/internal/infrastructure/config"
)

// logFilePermissions is the permission mode for the log file.
const logFilePermissions = 0o600

// Logger wraps slog.Logger with bot-specific functionality.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Logger struct {
	*slog.Logger
	closer io.Closer
}

// New creates a new Logger with the specified configuration.
//
// It configures:
//   - Output destination (stdout, stderr or a log file mirrored to stdout)
//   - Output format (JSON for production, text for development)
//   - Log level filtering
//   - Default fields (service name, version)
//
// A file output that cannot be opened falls back to stderr and the
// returned error describes why.
func New(cfg config.LoggingConfig, version string) (*Logger, error) {
	output, closer, err := openOutput(cfg, os.Stdout)

	opts := &slog.HandlerOptions{
		Level: parseLevel(cfg.Level),
	}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "text":
		handler = slog.NewTextHandler(output, opts)
	default:
		handler = slog.NewJSONHandler(output, opts)
	}

	handler = handler.WithAttrs([]slog.Attr{
		slog.String("service", "oraclehlb"),
		slog.String("version", version),
	})

	return &Logger{
		Logger: slog.New(handler),
		closer: closer,
	}, err
}

// openOutput resolves the configured writer. File output is teed to console
// so an operator watching the process still sees every record.
func openOutput(cfg config.LoggingConfig, console io.Writer) (io.Writer, io.Closer, error) {
	switch strings.ToLower(cfg.Output) {
	case "stderr":
		return os.Stderr, nil, nil
	case "file":
		if cfg.File.Path == "" {
			return os.Stderr, nil, fmt.Errorf("logging.file.path is required for file output")
		}
		if err := os.MkdirAll(filepath.Dir(cfg.File.Path), 0o750); err != nil {
			return os.Stderr, nil, fmt.Errorf("creating log directory: %w", err)
		}
		f, err := os.OpenFile(cfg.File.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, logFilePermissions)
		if err != nil {
			return os.Stderr, nil, fmt.Errorf("opening log file: %w", err)
		}
		return io.MultiWriter(console, f), f, nil
	default:
		return console, nil, nil
	}
}

// parseLevel converts a string log level to slog.Level.
//
// Supported levels: debug, info, warn, error
// Defaults to info if unrecognised.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// With returns a new Logger with additional default attributes.
//
// Example:
//
//	botLogger := logger.With("bot", "oraclehlb1")
//	botLogger.Info("connected") // Includes bot=oraclehlb1
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		Logger: l.Logger.With(args...),
	}
}

// Close releases the log file, if one was opened.
func (l *Logger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

// Default creates a default logger for use before configuration is loaded.
//
// This logger outputs to stdout in JSON format at info level.
func Default() *Logger {
	l, _ := New(config.LoggingConfig{ //nolint:errcheck // stdout output cannot fail
		Level:  "info",
		Format: "json",
		Output: "stdout",
	}, "dev")
	return l
}
