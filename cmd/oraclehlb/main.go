// oraclehlb runs a fleet of bots on hanab.live.
//
// Each configured account logs in, keeps a websocket session open and plays
// its turns with the configured strategy. A supervisor restarts any bot that
// fails. Presence (MQTT), telemetry (InfluxDB), the game journal (SQLite)
// and the status API are optional and never stop the bots when unavailable.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/antowkas/oracle-hanabi-live-bot/internal/api"
	"github.com/antowkas/oracle-hanabi-live-bot/internal/bot"
	"github.com/antowkas/oracle-hanabi-live-bot/internal/eventbus"
	"github.com/antowkas/oracle-hanabi-live-bot/internal/infrastructure/config"
	"github.com/antowkas/oracle-hanabi-live-bot/internal/infrastructure/database"
	"github.com/antowkas/oracle-hanabi-live-bot/internal/infrastructure/influxdb"
	"github.com/antowkas/oracle-hanabi-live-bot/internal/infrastructure/logging"
	"github.com/antowkas/oracle-hanabi-live-bot/internal/infrastructure/mqtt"
	"github.com/antowkas/oracle-hanabi-live-bot/internal/login"
	"github.com/antowkas/oracle-hanabi-live-bot/internal/observe"
	"github.com/antowkas/oracle-hanabi-live-bot/internal/strategy"
	"github.com/antowkas/oracle-hanabi-live-bot/internal/supervisor"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// defaultConfigPath is used when ORACLEHLB_CONFIG is unset.
const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// It returns nil once ctx is cancelled and every bot has stopped.
func run(ctx context.Context) error {
	log := logging.Default()
	log.Info("starting oraclehlb",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log, err = logging.New(cfg.Logging, version)
	if err != nil {
		log.Warn("log output unavailable, using stderr", "error", err)
	}
	defer log.Close() //nolint:errcheck // Nothing left to report to
	log.Info("configuration loaded", "path", configPath, "bots", len(cfg.Bots))

	// Every strategy name must resolve before any bot connects.
	registry := strategy.DefaultRegistry()
	names := make([]string, 0, len(cfg.Bots))
	for _, b := range cfg.Bots {
		names = append(names, b.Strategy)
	}
	if err := registry.Check(names...); err != nil {
		return fmt.Errorf("checking strategies: %w", err)
	}

	global := eventbus.New("global")
	global.SetLogger(log)

	backends := connectBackends(ctx, cfg, log)
	defer backends.close(log)

	build := func(b config.BotConfig, cookie string, logger *logging.Logger) (supervisor.Instance, error) {
		strat, err := registry.New(b.Strategy, logger)
		if err != nil {
			return nil, err
		}
		inst, err := bot.New(bot.Config{
			Name:      b.Username,
			Cookie:    cookie,
			Server:    cfg.Server,
			Strategy:  strat,
			Global:    global,
			Observers: backends.observers,
		}, logger)
		if err != nil {
			return nil, err
		}
		return inst, nil
	}

	auth := login.New(cfg.Server.AuthURL, nil, log)
	sup := supervisor.New(supervisor.Config{
		Bots:         cfg.Bots,
		RestartDelay: cfg.Supervisor.RestartDelay,
	}, auth, build, log)

	if cfg.API.Enabled {
		server, err := startAPI(ctx, cfg.API, log, sup, backends)
		if err != nil {
			return err
		}
		defer func() {
			if closeErr := server.Close(); closeErr != nil {
				log.Error("error closing API server", "error", closeErr)
			}
		}()
	}

	log.Info("oraclehlb started")
	err = sup.Run(ctx)
	log.Info("oraclehlb stopped")
	return err
}

// getConfigPath returns ORACLEHLB_CONFIG or the default path.
func getConfigPath() string {
	if path := os.Getenv("ORACLEHLB_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// backends holds the optional outside systems the bots report to.
type backends struct {
	mqtt      *mqtt.Client
	influx    *influxdb.Client
	db        *database.DB
	journal   *observe.Journal
	observers []bot.Observer
}

// connectBackends connects every enabled backend. A backend that cannot be
// reached is logged and left out.
func connectBackends(ctx context.Context, cfg *config.Config, log *logging.Logger) *backends {
	b := &backends{}

	if cfg.MQTT.Enabled {
		client, err := mqtt.Connect(cfg.MQTT)
		if err != nil {
			log.Warn("MQTT unavailable, presence disabled", "error", err)
		} else {
			log.Info("MQTT connected",
				"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
				"client_id", cfg.MQTT.Broker.ClientID,
			)
			presence := observe.NewPresence(client, log)
			client.SetOnConnect(func() {
				log.Info("MQTT (re)connected, republishing bot status")
				presence.Republish()
			})
			client.SetOnDisconnect(func(err error) {
				log.Warn("MQTT connection lost", "error", err)
			})
			b.mqtt = client
			b.observers = append(b.observers, presence)
		}
	}

	if cfg.InfluxDB.Enabled {
		client, err := influxdb.Connect(ctx, cfg.InfluxDB, log)
		if err != nil {
			log.Warn("InfluxDB unavailable, telemetry disabled", "error", err)
		} else {
			log.Info("InfluxDB connected", "url", cfg.InfluxDB.URL, "bucket", cfg.InfluxDB.Bucket)
			b.influx = client
			b.observers = append(b.observers, observe.NewTelemetry(client))
		}
	}

	if cfg.Journal.Enabled {
		if err := b.openJournal(ctx, cfg.Journal); err != nil {
			log.Warn("journal unavailable", "error", err)
		} else {
			log.Info("journal opened", "path", cfg.Journal.Path)
			b.observers = append(b.observers, b.journal)
		}
	}

	return b
}

func (b *backends) openJournal(ctx context.Context, cfg config.JournalConfig) error {
	db, err := database.Open(database.Config{
		Path:        cfg.Path,
		WALMode:     cfg.WALMode,
		BusyTimeout: cfg.BusyTimeout,
	})
	if err != nil {
		return err
	}

	journal, err := observe.NewJournal(ctx, db)
	if err != nil {
		db.Close() //nolint:errcheck // Best effort cleanup on error path
		return err
	}
	b.db = db
	b.journal = journal
	return nil
}

// checks returns the health checks of the connected backends.
func (b *backends) checks() map[string]api.HealthChecker {
	checks := make(map[string]api.HealthChecker)
	if b.mqtt != nil {
		checks["mqtt"] = b.mqtt
	}
	if b.influx != nil {
		checks["influxdb"] = b.influx
	}
	if b.db != nil {
		checks["journal"] = b.db
	}
	return checks
}

func (b *backends) close(log *logging.Logger) {
	if b.influx != nil {
		log.Info("closing InfluxDB")
		if err := b.influx.Close(); err != nil {
			log.Error("error closing InfluxDB", "error", err)
		}
	}
	if b.db != nil {
		log.Info("closing journal")
		if err := b.db.Close(); err != nil {
			log.Error("error closing journal", "error", err)
		}
	}
	if b.mqtt != nil {
		log.Info("disconnecting from MQTT")
		if err := b.mqtt.Close(); err != nil {
			log.Error("error closing MQTT", "error", err)
		}
	}
}

func startAPI(ctx context.Context, cfg config.APIConfig, log *logging.Logger, sup *supervisor.Supervisor, b *backends) (*api.Server, error) {
	deps := api.Deps{
		Config:  cfg,
		Logger:  log,
		Bots:    sup,
		Checks:  b.checks(),
		Version: version,
	}
	// A nil *Journal must not become a non-nil interface.
	if b.journal != nil {
		deps.Journal = b.journal
	}

	server, err := api.New(deps)
	if err != nil {
		return nil, fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return nil, fmt.Errorf("starting API server: %w", err)
	}
	return server, nil
}
