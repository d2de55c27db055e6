// Package logging provides structured logging for the bot.
//
// This package wraps Go's standard log/slog package to provide
// consistent, structured logging across every bot instance.
//
// # Features
//
//   - JSON output for production (machine-parsable)
//   - Text output for development (human-readable)
//   - Optional file output, mirrored to stdout
//   - Default fields (service, version) on all log entries
//   - Level-based filtering (debug, info, warn, error)
//
// # Configuration
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr, file
//	  file:
//	    path: "./logs/oraclehlb.log"
//
// # Usage
//
//	logger, err := logging.New(cfg.Logging, "1.0.0")
//	logger.Info("bot started", "bot", "oraclehlb1")
//
// # Security
//
// Never log passwords or session cookies.
package logging
