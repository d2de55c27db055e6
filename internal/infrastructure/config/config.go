package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// envPrefix is the prefix for every environment override.
const envPrefix = "ORACLEHLB_"

// passwordEnvSuffix is appended to the upper-cased username to find a bot password.
const passwordEnvSuffix = "_PASSWORD"

// Config is the root configuration structure for the bot process.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Supervisor SupervisorConfig `yaml:"supervisor"`
	Bots       []BotConfig      `yaml:"bots"`
	Logging    LoggingConfig    `yaml:"logging"`
	API        APIConfig        `yaml:"api"`
	MQTT       MQTTConfig       `yaml:"mqtt"`
	InfluxDB   InfluxDBConfig   `yaml:"influxdb"`
	Journal    JournalConfig    `yaml:"journal"`
}

// ServerConfig describes the game server endpoints and connection policy.
type ServerConfig struct {
	WSURL            string          `yaml:"ws_url"`
	AuthURL          string          `yaml:"auth_url"`
	Reconnect        ReconnectConfig `yaml:"reconnect"`
	PingInterval     time.Duration   `yaml:"ping_interval"`
	PongTimeout      time.Duration   `yaml:"pong_timeout"`
	HandshakeTimeout time.Duration   `yaml:"handshake_timeout"`
}

// ReconnectConfig contains the websocket reconnection backoff bounds.
type ReconnectConfig struct {
	BaseDelay time.Duration `yaml:"base_delay"`
	MaxDelay  time.Duration `yaml:"max_delay"`
}

// SupervisorConfig contains bot restart settings.
type SupervisorConfig struct {
	// RestartDelay is the fixed wait between a bot crash and its restart.
	// Zero means "same as server.reconnect.base_delay".
	RestartDelay time.Duration `yaml:"restart_delay"`
}

// BotConfig describes one bot account.
type BotConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Strategy string `yaml:"strategy"`
}

// LogValue keeps the password out of structured logs.
func (b BotConfig) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("username", b.Username),
		slog.String("strategy", b.Strategy),
	)
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string            `yaml:"level"`
	Format string            `yaml:"format"`
	Output string            `yaml:"output"`
	File   FileLoggingConfig `yaml:"file"`
}

// FileLoggingConfig contains file-based logging settings.
type FileLoggingConfig struct {
	Path string `yaml:"path"`
}

// APIConfig contains the status HTTP server settings.
type APIConfig struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
}

// MQTTConfig contains MQTT broker connection settings for presence reporting.
type MQTTConfig struct {
	Enabled bool             `yaml:"enabled"`
	Broker  MQTTBrokerConfig `yaml:"broker"`
	Auth    MQTTAuthConfig   `yaml:"auth"`
	QoS     int              `yaml:"qos"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// InfluxDBConfig contains InfluxDB connection settings for bot telemetry.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// JournalConfig contains the SQLite game journal settings.
type JournalConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// envOverrides lists every value that may be set from the environment.
// Unset variables leave the file value untouched.
type envOverrides struct {
	WSURL        string        `env:"WS_URL"`
	AuthURL      string        `env:"AUTH_URL"`
	BaseDelay    time.Duration `env:"RECONNECT_BASE_DELAY"`
	MaxDelay     time.Duration `env:"RECONNECT_MAX_DELAY"`
	RestartDelay time.Duration `env:"RESTART_DELAY"`
	LogLevel     string        `env:"LOG_LEVEL"`
	LogFormat    string        `env:"LOG_FORMAT"`
	MQTTHost     string        `env:"MQTT_HOST"`
	MQTTUsername string        `env:"MQTT_USERNAME"`
	MQTTPassword string        `env:"MQTT_PASSWORD"`
	InfluxToken  string        `env:"INFLUXDB_TOKEN"`
	JournalPath  string        `env:"JOURNAL_PATH"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. A .env file, if present (never overrides variables already set)
//  4. Environment variables (override file values)
//  5. Bot passwords from <USERNAME>_PASSWORD
//
// Environment variables follow the pattern: ORACLEHLB_KEY
// For example: ORACLEHLB_WS_URL, ORACLEHLB_LOG_LEVEL
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	applyBotPasswords(cfg)

	if cfg.Supervisor.RestartDelay == 0 {
		cfg.Supervisor.RestartDelay = cfg.Server.Reconnect.BaseDelay
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			WSURL:   "wss://hanab.live/ws",
			AuthURL: "https://hanab.live/login",
			Reconnect: ReconnectConfig{
				BaseDelay: 2 * time.Second,
				MaxDelay:  60 * time.Second,
			},
			PingInterval:     30 * time.Second,
			PongTimeout:      10 * time.Second,
			HandshakeTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		API: APIConfig{
			Host: "127.0.0.1",
			Port: 8090,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "oraclehlb",
			},
			QoS: 1,
		},
		InfluxDB: InfluxDBConfig{
			BatchSize:     100,
			FlushInterval: 10,
		},
		Journal: JournalConfig{
			Path:        "./data/journal.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
	}
}

// loadDotEnv loads ORACLEHLB_DOTENV (default ".env") into the process
// environment. A missing file is not an error.
func loadDotEnv() error {
	path := os.Getenv(envPrefix + "DOTENV")
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) error {
	var o envOverrides
	if err := env.ParseWithOptions(&o, env.Options{Prefix: envPrefix}); err != nil {
		return fmt.Errorf("parsing environment: %w", err)
	}

	setString(&cfg.Server.WSURL, o.WSURL)
	setString(&cfg.Server.AuthURL, o.AuthURL)
	setDuration(&cfg.Server.Reconnect.BaseDelay, o.BaseDelay)
	setDuration(&cfg.Server.Reconnect.MaxDelay, o.MaxDelay)
	setDuration(&cfg.Supervisor.RestartDelay, o.RestartDelay)
	setString(&cfg.Logging.Level, o.LogLevel)
	setString(&cfg.Logging.Format, o.LogFormat)
	setString(&cfg.MQTT.Broker.Host, o.MQTTHost)
	setString(&cfg.MQTT.Auth.Username, o.MQTTUsername)
	setString(&cfg.MQTT.Auth.Password, o.MQTTPassword)
	setString(&cfg.InfluxDB.Token, o.InfluxToken)
	setString(&cfg.Journal.Path, o.JournalPath)

	return nil
}

// applyBotPasswords fills each bot password from <USERNAME>_PASSWORD.
// The environment wins over a password written in the file.
func applyBotPasswords(cfg *Config) {
	for i := range cfg.Bots {
		name := PasswordEnvVar(cfg.Bots[i].Username)
		if v := os.Getenv(name); v != "" {
			cfg.Bots[i].Password = v
		}
	}
}

// PasswordEnvVar returns the environment variable holding a bot's password.
func PasswordEnvVar(username string) string {
	return strings.ToUpper(username) + passwordEnvSuffix
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v time.Duration) {
	if v != 0 {
		*dst = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.Server.WSURL == "" {
		errs = append(errs, "server.ws_url is required")
	}
	if c.Server.AuthURL == "" {
		errs = append(errs, "server.auth_url is required")
	}
	if c.Server.Reconnect.BaseDelay <= 0 {
		errs = append(errs, "server.reconnect.base_delay must be positive")
	}
	if c.Server.Reconnect.MaxDelay < c.Server.Reconnect.BaseDelay {
		errs = append(errs, "server.reconnect.max_delay must not be less than base_delay")
	}
	if c.Supervisor.RestartDelay < 0 {
		errs = append(errs, "supervisor.restart_delay must not be negative")
	}

	if len(c.Bots) == 0 {
		errs = append(errs, "at least one bot is required")
	}
	seen := make(map[string]bool, len(c.Bots))
	for i, b := range c.Bots {
		if b.Username == "" {
			errs = append(errs, fmt.Sprintf("bots[%d].username is required", i))
			continue
		}
		if seen[b.Username] {
			errs = append(errs, fmt.Sprintf("bots[%d].username %q is duplicated", i, b.Username))
		}
		seen[b.Username] = true
		if b.Password == "" {
			errs = append(errs, fmt.Sprintf("password for bot %q not found (set %s)", b.Username, PasswordEnvVar(b.Username)))
		}
		if b.Strategy == "" {
			errs = append(errs, fmt.Sprintf("bots[%d].strategy is required", i))
		}
	}

	if c.API.Enabled && (c.API.Port < 1 || c.API.Port > 65535) {
		errs = append(errs, "api.port must be between 1 and 65535")
	}
	if c.MQTT.Enabled && (c.MQTT.QoS < 0 || c.MQTT.QoS > 2) {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.InfluxDB.Enabled && c.InfluxDB.URL == "" {
		errs = append(errs, "influxdb.url is required when influxdb is enabled")
	}
	if c.Journal.Enabled && c.Journal.Path == "" {
		errs = append(errs, "journal.path is required when the journal is enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}
