package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the Enigma2 bridge.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Receiver  ReceiverConfig  `yaml:"receiver"`
	Items     []ItemConfig    `yaml:"items"`
	Commands  []CommandConfig `yaml:"commands"`
	Database  DatabaseConfig  `yaml:"database"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	API       APIConfig       `yaml:"api"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ReceiverConfig contains connection settings for the Enigma2 set-top box.
// The OpenWebif plugin must be installed on the receiver.
type ReceiverConfig struct {
	// Host is the IP address or hostname of the receiver.
	Host string `yaml:"host"`

	// Port is the OpenWebif port (http: 80, https: 443 on most images).
	Port int `yaml:"port"`

	// SSL selects https instead of http for device requests.
	SSL bool `yaml:"ssl"`

	// VerifyTLS enables certificate verification for https connections.
	// Most receivers ship self-signed certificates, so this defaults to false.
	VerifyTLS bool `yaml:"verify_tls"`

	// Username and Password are the OpenWebif digest-auth credentials.
	Username string `yaml:"username"`
	Password string `yaml:"password"`

	// DeviceID is the internal identifier of the receiver. It appears in
	// MQTT topics and log output.
	DeviceID string `yaml:"device_id"`

	// Cycle is the slow refresh interval in seconds.
	Cycle int `yaml:"cycle"`

	// FastCycle is the fast refresh interval in seconds for volatile
	// attributes (volume, current event, standby state).
	FastCycle int `yaml:"fast_cycle"`

	// Timeout is the per-request HTTP timeout in seconds.
	Timeout int `yaml:"timeout"`
}

// ItemConfig declares a subscribed receiver attribute bound to a local item.
type ItemConfig struct {
	// ID is the local item identifier (unique across items and commands).
	ID string `yaml:"id"`

	// DataType is the receiver attribute tag (e.g. "e2instandby",
	// "current_volume", "e2model").
	DataType string `yaml:"data_type"`

	// Page optionally pins the attribute to a specific endpoint page
	// (about, powerstate, subservices, deviceinfo). When empty, the
	// page is derived from the data type.
	Page string `yaml:"page,omitempty"`

	// Kind is the local value kind: "bool", "num" or "text".
	Kind string `yaml:"kind"`
}

// CommandConfig declares a writable command item. Exactly one of Command
// or SRef must be set.
type CommandConfig struct {
	// ID is the local item identifier.
	ID string `yaml:"id"`

	// Command is a remote-control command identifier (e.g. 105 for power
	// toggle, 114/115 for volume down/up).
	Command int `yaml:"command,omitempty"`

	// SRef is an Enigma2 service reference for channel changes (zap).
	SRef string `yaml:"sref,omitempty"`
}

// DatabaseConfig contains SQLite database settings for item history.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`

	// HistoryRetentionDays bounds how long item change history is kept.
	// Entries older than this are pruned daily. Zero disables pruning.
	HistoryRetentionDays int `yaml:"history_retention_days"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
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

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
	MaxAttempts  int `yaml:"max_attempts"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Enabled  bool             `yaml:"enabled"`
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
}

// APITimeoutConfig contains HTTP timeout settings in seconds.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// WebSocketConfig contains WebSocket server settings.
type WebSocketConfig struct {
	Path           string `yaml:"path"`
	MaxMessageSize int    `yaml:"max_message_size"`
	PingInterval   int    `yaml:"ping_interval"`
	PongTimeout    int    `yaml:"pong_timeout"`
}

// InfluxDBConfig contains InfluxDB connection settings for numeric item
// telemetry. Optional; the bridge runs fully without it.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: ENIGMA2_SECTION_KEY
// For example: ENIGMA2_RECEIVER_HOST, ENIGMA2_MQTT_PASSWORD
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Receiver: ReceiverConfig{
			Host:      "dreambox",
			Port:      80,
			SSL:       false,
			VerifyTLS: false,
			DeviceID:  "enigma2",
			Cycle:     300,
			FastCycle: 10,
			Timeout:   10,
		},
		Database: DatabaseConfig{
			Path:                 "./data/enigma2bridge.db",
			WALMode:              true,
			BusyTimeout:          5,
			HistoryRetentionDays: 90,
		},
		MQTT: MQTTConfig{
			Enabled: true,
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "enigma2-bridge",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
				MaxAttempts:  0,
			},
		},
		API: APIConfig{
			Enabled: true,
			Host:    "0.0.0.0",
			Port:    8080,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		WebSocket: WebSocketConfig{
			Path:           "/ws",
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: ENIGMA2_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Receiver
	if v := os.Getenv("ENIGMA2_RECEIVER_HOST"); v != "" {
		cfg.Receiver.Host = v
	}
	if v := os.Getenv("ENIGMA2_RECEIVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Receiver.Port = port
		}
	}
	if v := os.Getenv("ENIGMA2_RECEIVER_USERNAME"); v != "" {
		cfg.Receiver.Username = v
	}
	if v := os.Getenv("ENIGMA2_RECEIVER_PASSWORD"); v != "" {
		cfg.Receiver.Password = v
	}

	// Database
	if v := os.Getenv("ENIGMA2_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// MQTT
	if v := os.Getenv("ENIGMA2_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("ENIGMA2_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("ENIGMA2_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// API
	if v := os.Getenv("ENIGMA2_API_HOST"); v != "" {
		cfg.API.Host = v
	}

	// InfluxDB
	if v := os.Getenv("ENIGMA2_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// Receiver validation
	if c.Receiver.Host == "" {
		errs = append(errs, "receiver.host is required")
	}
	if c.Receiver.Port < 1 || c.Receiver.Port > 65535 {
		errs = append(errs, "receiver.port must be between 1 and 65535")
	}
	if c.Receiver.DeviceID == "" {
		errs = append(errs, "receiver.device_id is required")
	}
	if c.Receiver.Cycle < 1 {
		errs = append(errs, "receiver.cycle must be at least 1 second")
	}
	if c.Receiver.FastCycle < 1 {
		errs = append(errs, "receiver.fast_cycle must be at least 1 second")
	}
	if c.Receiver.Timeout < 1 {
		errs = append(errs, "receiver.timeout must be at least 1 second")
	}

	// Item validation
	seen := make(map[string]bool)
	for i, item := range c.Items {
		if item.ID == "" {
			errs = append(errs, fmt.Sprintf("items[%d].id is required", i))
			continue
		}
		if seen[item.ID] {
			errs = append(errs, fmt.Sprintf("items[%d].id %q is duplicated", i, item.ID))
		}
		seen[item.ID] = true
		if item.DataType == "" {
			errs = append(errs, fmt.Sprintf("items[%d].data_type is required", i))
		}
		switch item.Kind {
		case "bool", "num", "text":
		default:
			errs = append(errs, fmt.Sprintf("items[%d].kind must be bool, num or text", i))
		}
	}
	for i, cmd := range c.Commands {
		if cmd.ID == "" {
			errs = append(errs, fmt.Sprintf("commands[%d].id is required", i))
			continue
		}
		if seen[cmd.ID] {
			errs = append(errs, fmt.Sprintf("commands[%d].id %q is duplicated", i, cmd.ID))
		}
		seen[cmd.ID] = true
		if cmd.Command == 0 && cmd.SRef == "" {
			errs = append(errs, fmt.Sprintf("commands[%d] needs either command or sref", i))
		}
		if cmd.Command != 0 && cmd.SRef != "" {
			errs = append(errs, fmt.Sprintf("commands[%d] cannot set both command and sref", i))
		}
	}

	// Database validation
	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}
	if c.Database.HistoryRetentionDays < 0 {
		errs = append(errs, "database.history_retention_days cannot be negative")
	}

	// MQTT validation
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	// API validation
	if c.API.Enabled && (c.API.Port < 1 || c.API.Port > 65535) {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetCycle returns the slow refresh interval as a Duration.
func (c *ReceiverConfig) GetCycle() time.Duration {
	return time.Duration(c.Cycle) * time.Second
}

// GetFastCycle returns the fast refresh interval as a Duration.
func (c *ReceiverConfig) GetFastCycle() time.Duration {
	return time.Duration(c.FastCycle) * time.Second
}

// GetTimeout returns the device request timeout as a Duration.
func (c *ReceiverConfig) GetTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// GetHistoryRetention returns the history retention window as a Duration.
// Zero means pruning is disabled.
func (c *DatabaseConfig) GetHistoryRetention() time.Duration {
	return time.Duration(c.HistoryRetentionDays) * 24 * time.Hour
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}
