// Package config handles loading and validating the bot configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Loading secrets from an optional .env file
//   - Overriding with ORACLEHLB_* environment variables
//   - Resolving each bot password from <USERNAME>_PASSWORD
//   - Validation of required fields
//
// Security Considerations:
//   - Bot passwords should be set via environment variables or .env, not YAML
//   - BotConfig implements slog.LogValuer so passwords never reach the logs
//
// Configuration is loaded once at startup and never re-read.
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
