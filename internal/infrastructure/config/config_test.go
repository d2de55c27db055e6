package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// writeConfig writes content into a temporary config file and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

// isolateDotEnv points the .env lookup at a file that does not exist.
func isolateDotEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ORACLEHLB_DOTENV", filepath.Join(t.TempDir(), "missing.env"))
}

func TestLoad_ValidConfig(t *testing.T) {
	isolateDotEnv(t)
	t.Setenv("ORACLEHLB1_PASSWORD", "from-env")

	configPath := writeConfig(t, `
server:
  ws_url: "ws://localhost:9000/ws"
  reconnect:
    base_delay: 3s
    max_delay: 30s
bots:
  - username: oraclehlb1
    strategy: SimpleStrategy
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.WSURL != "ws://localhost:9000/ws" {
		t.Errorf("Server.WSURL = %q, want %q", cfg.Server.WSURL, "ws://localhost:9000/ws")
	}
	if cfg.Server.AuthURL != "https://hanab.live/login" {
		t.Errorf("Server.AuthURL = %q, want default", cfg.Server.AuthURL)
	}
	if cfg.Server.Reconnect.BaseDelay != 3*time.Second {
		t.Errorf("BaseDelay = %v, want 3s", cfg.Server.Reconnect.BaseDelay)
	}
	if cfg.Supervisor.RestartDelay != 3*time.Second {
		t.Errorf("RestartDelay = %v, want base delay 3s", cfg.Supervisor.RestartDelay)
	}
	if len(cfg.Bots) != 1 || cfg.Bots[0].Password != "from-env" {
		t.Errorf("Bots = %+v, want one bot with env password", cfg.Bots)
	}
}

func TestLoad_DotEnvPassword(t *testing.T) {
	dir := t.TempDir()
	dotenv := filepath.Join(dir, ".env")
	if err := os.WriteFile(dotenv, []byte("DOTENVBOT_PASSWORD=secret\n"), 0600); err != nil {
		t.Fatalf("failed to write .env: %v", err)
	}
	t.Setenv("ORACLEHLB_DOTENV", dotenv)
	// godotenv writes into the process environment; clean it up afterwards.
	t.Cleanup(func() { os.Unsetenv("DOTENVBOT_PASSWORD") })

	cfg, err := Load(writeConfig(t, `
bots:
  - username: dotenvbot
    strategy: SimpleStrategy
`))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Bots[0].Password != "secret" {
		t.Errorf("Password = %q, want %q", cfg.Bots[0].Password, "secret")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolateDotEnv(t)
	t.Setenv("ORACLEHLB_WS_URL", "ws://override/ws")
	t.Setenv("ORACLEHLB_RECONNECT_MAX_DELAY", "90s")
	t.Setenv("ORACLEHLB_RESTART_DELAY", "7s")
	t.Setenv("ORACLEHLB_LOG_LEVEL", "debug")

	cfg, err := Load(writeConfig(t, `
server:
  ws_url: "ws://file/ws"
bots:
  - username: bot
    password: pw
    strategy: SimpleStrategy
`))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.WSURL != "ws://override/ws" {
		t.Errorf("WSURL = %q, want env override", cfg.Server.WSURL)
	}
	if cfg.Server.Reconnect.MaxDelay != 90*time.Second {
		t.Errorf("MaxDelay = %v, want 90s", cfg.Server.Reconnect.MaxDelay)
	}
	if cfg.Supervisor.RestartDelay != 7*time.Second {
		t.Errorf("RestartDelay = %v, want 7s", cfg.Supervisor.RestartDelay)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "invalid: [yaml: content"))
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_MissingPassword(t *testing.T) {
	isolateDotEnv(t)

	_, err := Load(writeConfig(t, `
bots:
  - username: nopassbot
    strategy: SimpleStrategy
`))
	if err == nil {
		t.Fatal("Load() expected error for missing password, got nil")
	}
	if !strings.Contains(err.Error(), "NOPASSBOT_PASSWORD") {
		t.Errorf("error = %v, want it to name NOPASSBOT_PASSWORD", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		cfg := defaultConfig()
		cfg.Bots = []BotConfig{{Username: "a", Password: "p", Strategy: "SimpleStrategy"}}
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid config", mutate: func(*Config) {}},
		{name: "no bots", mutate: func(c *Config) { c.Bots = nil }, wantErr: true},
		{name: "missing ws url", mutate: func(c *Config) { c.Server.WSURL = "" }, wantErr: true},
		{name: "zero base delay", mutate: func(c *Config) { c.Server.Reconnect.BaseDelay = 0 }, wantErr: true},
		{
			name:    "max below base",
			mutate:  func(c *Config) { c.Server.Reconnect.MaxDelay = time.Second },
			wantErr: true,
		},
		{
			name: "duplicate usernames",
			mutate: func(c *Config) {
				c.Bots = append(c.Bots, BotConfig{Username: "a", Password: "p", Strategy: "x"})
			},
			wantErr: true,
		},
		{name: "missing strategy", mutate: func(c *Config) { c.Bots[0].Strategy = "" }, wantErr: true},
		{
			name:    "api enabled with bad port",
			mutate:  func(c *Config) { c.API.Enabled = true; c.API.Port = 0 },
			wantErr: true,
		},
		{
			name:    "influxdb enabled without url",
			mutate:  func(c *Config) { c.InfluxDB.Enabled = true },
			wantErr: true,
		},
		{
			name:    "mqtt disabled ignores qos",
			mutate:  func(c *Config) { c.MQTT.QoS = 5 },
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPasswordEnvVar(t *testing.T) {
	if got := PasswordEnvVar("oracleHLB1"); got != "ORACLEHLB1_PASSWORD" {
		t.Errorf("PasswordEnvVar() = %q, want %q", got, "ORACLEHLB1_PASSWORD")
	}
}
