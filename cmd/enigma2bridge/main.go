// Enigma2 Bridge - receiver to MQTT/HTTP sync service
//
// This is the main entry point for the Enigma2 bridge. The bridge polls
// an Enigma2 set-top box over its OpenWebif HTTP interface, mirrors the
// receiver's attributes into local items, and exposes them over MQTT,
// a REST API and a WebSocket feed. Commands flow the other way: remote
// control codes, channel zaps and on-screen messages are accepted from
// MQTT and HTTP and dispatched to the receiver.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/nerrad567/enigma2-bridge/migrations"

	"github.com/nerrad567/enigma2-bridge/internal/api"
	"github.com/nerrad567/enigma2-bridge/internal/bridge"
	"github.com/nerrad567/enigma2-bridge/internal/infrastructure/config"
	"github.com/nerrad567/enigma2-bridge/internal/infrastructure/database"
	"github.com/nerrad567/enigma2-bridge/internal/infrastructure/influxdb"
	"github.com/nerrad567/enigma2-bridge/internal/infrastructure/logging"
	"github.com/nerrad567/enigma2-bridge/internal/infrastructure/mqtt"
	"github.com/nerrad567/enigma2-bridge/internal/item"
	"github.com/nerrad567/enigma2-bridge/internal/openwebif"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

// changeWriteTimeout bounds the per-change history write.
const changeWriteTimeout = 5 * time.Second

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Enigma2 bridge",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	historyRepo := item.NewSQLiteHistoryRepository(db.DB)

	// Build the item registry from configuration
	registry := item.NewRegistry()
	items, err := buildItems(cfg, registry)
	if err != nil {
		return fmt.Errorf("building items: %w", err)
	}
	log.Info("item registry initialised", "items", registry.Count())

	// Create the receiver client and subscribe the configured bindings
	br, err := buildBridge(cfg, items, log)
	if err != nil {
		return fmt.Errorf("building receiver bridge: %w", err)
	}

	// Named command bindings (addressable via API and MQTT)
	commands := buildCommands(cfg)

	// Connect to MQTT broker (optional)
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)

		mqttClient.SetLogger(log)
		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})

		if subErr := subscribeCommands(ctx, mqttClient, br, commands, cfg.Receiver.DeviceID, log); subErr != nil {
			return fmt.Errorf("subscribing to MQTT commands: %w", subErr)
		}
	} else {
		log.Info("MQTT disabled")
	}

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})

		// Record cycle durations and failure counts
		br.SetOnCycle(func(cycle string, duration time.Duration, failures int) {
			influxClient.WriteCycleMetric(cfg.Receiver.DeviceID, cycle, duration, failures)
		})
	} else {
		log.Info("InfluxDB disabled")
	}

	// Fan item changes out to history, MQTT and InfluxDB
	wireChangeFanout(registry, historyRepo, mqttClient, influxClient, cfg.Receiver.DeviceID, log)

	// Prune old history entries in the background
	if retention := cfg.Database.GetHistoryRetention(); retention > 0 {
		go pruneHistoryLoop(ctx, historyRepo, retention, log)
		log.Info("history pruning enabled", "retention_days", cfg.Database.HistoryRetentionDays)
	}

	// Start the polling engine
	if startErr := br.Start(ctx); startErr != nil {
		return fmt.Errorf("starting receiver bridge: %w", startErr)
	}
	defer func() {
		log.Info("stopping receiver bridge")
		br.Stop()
	}()
	log.Info("receiver bridge started",
		"receiver", fmt.Sprintf("%s:%d", cfg.Receiver.Host, cfg.Receiver.Port),
		"cycle", cfg.Receiver.GetCycle(),
		"fast_cycle", cfg.Receiver.GetFastCycle(),
	)

	// Announce device availability (retained; cleared on shutdown)
	if mqttClient != nil {
		topics := mqtt.Topics{}
		availTopic := topics.Availability(cfg.Receiver.DeviceID)
		if pubErr := mqttClient.PublishRetained(availTopic, []byte("online")); pubErr != nil {
			log.Warn("availability publish failed", "error", pubErr)
		}
		defer func() {
			//nolint:errcheck // Best-effort offline announcement during shutdown
			mqttClient.PublishRetained(availTopic, []byte("offline"))
		}()
	}

	// Start API server (optional)
	if cfg.API.Enabled {
		apiServer, apiErr := api.New(api.Deps{
			Config:   cfg.API,
			WS:       cfg.WebSocket,
			Logger:   log,
			Registry: registry,
			Bridge:   br,
			Commands: commands,
			History:  historyRepo,
			Version:  version,
		})
		if apiErr != nil {
			return fmt.Errorf("creating API server: %w", apiErr)
		}
		if startErr := apiServer.Start(ctx); startErr != nil {
			return fmt.Errorf("starting API server: %w", startErr)
		}
		defer func() {
			if closeErr := apiServer.Close(); closeErr != nil {
				log.Error("error closing API server", "error", closeErr)
			}
		}()
		log.Info("API server started", "address", fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port))
	} else {
		log.Info("API server disabled")
	}

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls will run in reverse order:
	// 1. API server
	// 2. Receiver bridge
	// 3. InfluxDB (if enabled)
	// 4. MQTT (if enabled)
	// 5. Database

	log.Info("Enigma2 bridge stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses ENIGMA2_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("ENIGMA2_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// buildItems creates and registers the configured items.
//
// Returns:
//   - map[string]*item.Item: Items keyed by identifier
//   - error: If a kind fails to parse or an identifier is duplicated
func buildItems(cfg *config.Config, registry *item.Registry) (map[string]*item.Item, error) {
	items := make(map[string]*item.Item, len(cfg.Items))
	for _, ic := range cfg.Items {
		kind, err := item.ParseKind(ic.Kind)
		if err != nil {
			return nil, fmt.Errorf("item %q: %w", ic.ID, err)
		}

		it := item.New(ic.ID, kind)
		if err := registry.Register(it); err != nil {
			return nil, err
		}
		items[ic.ID] = it
	}
	return items, nil
}

// buildBridge creates the OpenWebif client, the receiver device and its
// bindings, and the polling engine.
func buildBridge(cfg *config.Config, items map[string]*item.Item, log *logging.Logger) (*bridge.Bridge, error) {
	client := openwebif.New(openwebif.Options{
		Host:      cfg.Receiver.Host,
		Port:      cfg.Receiver.Port,
		SSL:       cfg.Receiver.SSL,
		VerifyTLS: cfg.Receiver.VerifyTLS,
		Username:  cfg.Receiver.Username,
		Password:  cfg.Receiver.Password,
		Timeout:   cfg.Receiver.GetTimeout(),
	})

	dev := bridge.NewDevice(cfg.Receiver.DeviceID, client)
	for _, ic := range cfg.Items {
		binding := bridge.Binding{
			DataType: bridge.DataType(ic.DataType),
			Page:     openwebif.Page(ic.Page),
			Item:     items[ic.ID],
		}
		if err := dev.Subscribe(binding); err != nil {
			return nil, fmt.Errorf("item %q: %w", ic.ID, err)
		}
	}

	return bridge.New(bridge.Options{
		Device:    dev,
		Cycle:     cfg.Receiver.GetCycle(),
		FastCycle: cfg.Receiver.GetFastCycle(),
		Logger:    log.With("component", "bridge"),
	})
}

// buildCommands converts the configured command declarations into
// dispatchable bindings keyed by identifier.
func buildCommands(cfg *config.Config) map[string]bridge.CommandBinding {
	commands := make(map[string]bridge.CommandBinding, len(cfg.Commands))
	for _, cc := range cfg.Commands {
		commands[cc.ID] = bridge.CommandBinding{
			Command: cc.Command,
			SRef:    cc.SRef,
		}
	}
	return commands
}

// mqttRemotePayload is the JSON body accepted on the remote command channel.
type mqttRemotePayload struct {
	Command int `json:"command"`
}

// mqttZapPayload is the JSON body accepted on the zap command channel.
type mqttZapPayload struct {
	SRef string `json:"sref"`
}

// mqttMessagePayload is the JSON body accepted on the message command channel.
type mqttMessagePayload struct {
	Text    string `json:"text"`
	Type    int    `json:"type"`
	Timeout int    `json:"timeout"`
}

// subscribeCommands wires the device's MQTT command channels to the bridge
// dispatcher. Plain (non-JSON) payloads on the remote channel are also
// accepted when they name a configured command binding.
func subscribeCommands(ctx context.Context, client *mqtt.Client, br *bridge.Bridge, commands map[string]bridge.CommandBinding, deviceID string, log *logging.Logger) error {
	topics := mqtt.Topics{}

	return client.Subscribe(topics.AllCommands(deviceID), 1, func(topic string, payload []byte) error {
		parts := strings.Split(topic, "/")
		channel := parts[len(parts)-1]

		switch channel {
		case "remote":
			return handleRemoteCommand(ctx, br, commands, payload, log)
		case "zap":
			var zap mqttZapPayload
			if err := json.Unmarshal(payload, &zap); err != nil || zap.SRef == "" {
				log.Warn("invalid zap payload", "topic", topic)
				return nil
			}
			return br.Dispatch(ctx, bridge.CommandBinding{SRef: zap.SRef}, item.HistorySourceMQTT)
		case "message":
			var msg mqttMessagePayload
			if err := json.Unmarshal(payload, &msg); err != nil || msg.Text == "" {
				log.Warn("invalid message payload", "topic", topic)
				return nil
			}
			_, err := br.SendMessage(ctx, msg.Text, openwebif.MessageType(msg.Type), msg.Timeout)
			return err
		default:
			log.Warn("unknown command channel", "topic", topic)
			return nil
		}
	})
}

// handleRemoteCommand dispatches a remote channel payload: either a JSON
// command code or the name of a configured command binding.
func handleRemoteCommand(ctx context.Context, br *bridge.Bridge, commands map[string]bridge.CommandBinding, payload []byte, log *logging.Logger) error {
	var remote mqttRemotePayload
	if err := json.Unmarshal(payload, &remote); err == nil && remote.Command > 0 {
		return br.Dispatch(ctx, bridge.CommandBinding{Command: remote.Command}, item.HistorySourceMQTT)
	}

	name := strings.TrimSpace(string(payload))
	if cmd, ok := commands[name]; ok {
		return br.Dispatch(ctx, cmd, item.HistorySourceMQTT)
	}

	log.Warn("invalid remote payload", "payload", string(payload))
	return nil
}

// wireChangeFanout relays item changes to the history repository, retained
// MQTT state topics and InfluxDB telemetry.
func wireChangeFanout(registry *item.Registry, history item.HistoryRepository, mqttClient *mqtt.Client, influxClient *influxdb.Client, deviceID string, log *logging.Logger) {
	topics := mqtt.Topics{}

	registry.OnChange(func(change item.Change) {
		ctx, cancel := context.WithTimeout(context.Background(), changeWriteTimeout)
		defer cancel()

		if err := history.RecordChange(ctx, change); err != nil {
			log.Warn("history write failed", "item_id", change.ID, "error", err)
		}

		if mqttClient != nil {
			payload, err := json.Marshal(change)
			if err == nil {
				topic := topics.ItemState(deviceID, change.ID)
				if pubErr := mqttClient.PublishRetained(topic, payload); pubErr != nil {
					log.Warn("state publish failed", "item_id", change.ID, "error", pubErr)
				}
			}
		}

		if influxClient != nil {
			switch v := change.Value.(type) {
			case int64:
				influxClient.WriteItemMetric(deviceID, change.ID, float64(v))
			case float64:
				influxClient.WriteItemMetric(deviceID, change.ID, v)
			}
		}
	})
}

// historyPruneInterval is how often old history entries are deleted.
const historyPruneInterval = 24 * time.Hour

// pruneHistoryLoop deletes history entries older than the retention window,
// once at startup and then daily, until ctx is cancelled.
func pruneHistoryLoop(ctx context.Context, repo *item.SQLiteHistoryRepository, retention time.Duration, log *logging.Logger) {
	prune := func() {
		deleted, err := repo.PruneHistory(ctx, retention)
		if err != nil {
			log.Warn("history pruning failed", "error", err)
			return
		}
		if deleted > 0 {
			log.Info("history pruned", "deleted", deleted)
		}
	}

	prune()

	ticker := time.NewTicker(historyPruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			prune()
		}
	}
}

// healthCheck verifies all infrastructure connections are healthy.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - db: Database connection to check
//   - mqttClient: MQTT client to check (may be nil if disabled)
//   - influxClient: InfluxDB client to check (may be nil if disabled)
//
// Returns:
//   - error: First health check failure, or nil if all healthy
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	// Receiver health is implicit: cycle failures are logged per binding
	// and never abort the engine.

	return nil
}
