package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/psbattle/engine/internal/queue"
)

// FileName is the config file looked up in the config directory.
const FileName = "psbattle.cfg.json"

// EnvPrefix prefixes environment overrides: PSBATTLE_LOGLEVEL, PSBATTLE_SERVER_URL...
const EnvPrefix = "PSBATTLE"

// MemoryConfig holds in-memory/JSON storage backend settings
type MemoryConfig struct {
	OutputDir      string `json:"outputDir" mapstructure:"outputDir"`
	CompressOutput bool   `json:"compressOutput" mapstructure:"compressOutput"`
}

// SQLiteConfig holds the sqlite battle log settings
type SQLiteConfig struct {
	Path string `json:"path" mapstructure:"path"`
}

// DBConfig holds the postgres connection settings
type DBConfig struct {
	Host     string `json:"host" mapstructure:"host"`
	Port     string `json:"port" mapstructure:"port"`
	Username string `json:"username" mapstructure:"username"`
	Password string `json:"password" mapstructure:"password"`
	Database string `json:"database" mapstructure:"database"`
}

// DSN renders the postgres connection string.
func (c DBConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Host, c.Port, c.Username, c.Password, c.Database)
}

// StreamConfig holds the live feed server settings
type StreamConfig struct {
	URL    string `json:"url" mapstructure:"url"`
	Secret string `json:"secret" mapstructure:"secret"`
}

// StorageConfig selects and configures the battle log backend.
type StorageConfig struct {
	Type   string       `json:"type" mapstructure:"type"` // memory, sqlite, postgres, stream or none
	Memory MemoryConfig `json:"memory" mapstructure:"memory"`
	SQLite SQLiteConfig `json:"sqlite" mapstructure:"sqlite"`
	Stream StreamConfig `json:"stream" mapstructure:"stream"`
	DB     DBConfig     `json:"db" mapstructure:"db"`
}

// InfluxConfig holds the influx writer settings
type InfluxConfig struct {
	Enabled  bool
	URL      string
	Token    string
	Org      string
	Bucket   string
	Interval time.Duration
}

// GraylogConfig holds the gelf log shipping settings
type GraylogConfig struct {
	Enabled bool
	Address string
}

// OTelConfig holds the metrics export settings
type OTelConfig struct {
	Enabled  bool
	Interval time.Duration
}

// MonitorConfig holds the status file settings
type MonitorConfig struct {
	Enabled  bool
	Interval time.Duration
}

// ServerConfig holds the websocket endpoint settings
type ServerConfig struct {
	URL       string
	Reconnect bool
	Backoff   time.Duration
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	setDefaults()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}

	return nil
}

// LoadDefaults sets defaults and env overrides without a config file.
func LoadDefaults() {
	setDefaults()
}

func setDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./psbattlelogs")

	viper.SetDefault("server.url", "wss://sim3.psim.us/showdown/websocket")
	viper.SetDefault("server.reconnect", true)
	viper.SetDefault("server.backoff", "2s")

	viper.SetDefault("pacing.minor", "750ms")
	viper.SetDefault("pacing.major", "1500ms")
	viper.SetDefault("pacing.loopToLastTurn", true)

	viper.SetDefault("storage.type", "memory")
	viper.SetDefault("storage.memory.outputDir", "./battles")
	viper.SetDefault("storage.memory.compressOutput", true)
	viper.SetDefault("storage.sqlite.path", "./battles.db")
	viper.SetDefault("storage.stream.url", "ws://localhost:5000/api/v1/stream")
	viper.SetDefault("storage.stream.secret", "")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "psbattle")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "supersecrettoken")
	viper.SetDefault("influx.org", "psbattle")
	viper.SetDefault("influx.bucket", "battles")
	viper.SetDefault("influx.flushInterval", "1s")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.exportInterval", "30s")

	viper.SetDefault("monitor.enabled", true)
	viper.SetDefault("monitor.interval", "5s")

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// PacingConfig returns the action queue pacing.
func PacingConfig() queue.Pacing {
	return queue.Pacing{
		Minor:          viper.GetDuration("pacing.minor"),
		Major:          viper.GetDuration("pacing.major"),
		LoopToLastTurn: viper.GetBool("pacing.loopToLastTurn"),
	}
}

// GetStorageConfig returns the battle log backend settings.
func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Type: strings.ToLower(viper.GetString("storage.type")),
		Memory: MemoryConfig{
			OutputDir:      viper.GetString("storage.memory.outputDir"),
			CompressOutput: viper.GetBool("storage.memory.compressOutput"),
		},
		SQLite: SQLiteConfig{
			Path: viper.GetString("storage.sqlite.path"),
		},
		Stream: StreamConfig{
			URL:    viper.GetString("storage.stream.url"),
			Secret: viper.GetString("storage.stream.secret"),
		},
		DB: DBConfig{
			Host:     viper.GetString("db.host"),
			Port:     viper.GetString("db.port"),
			Username: viper.GetString("db.username"),
			Password: viper.GetString("db.password"),
			Database: viper.GetString("db.database"),
		},
	}
}

// GetInfluxConfig returns the influx writer settings.
func GetInfluxConfig() InfluxConfig {
	return InfluxConfig{
		Enabled: viper.GetBool("influx.enabled"),
		URL: fmt.Sprintf("%s://%s:%s",
			viper.GetString("influx.protocol"),
			viper.GetString("influx.host"),
			viper.GetString("influx.port")),
		Token:    viper.GetString("influx.token"),
		Org:      viper.GetString("influx.org"),
		Bucket:   viper.GetString("influx.bucket"),
		Interval: viper.GetDuration("influx.flushInterval"),
	}
}

// GetGraylogConfig returns the gelf settings.
func GetGraylogConfig() GraylogConfig {
	return GraylogConfig{
		Enabled: viper.GetBool("graylog.enabled"),
		Address: viper.GetString("graylog.address"),
	}
}

// GetServerConfig returns the websocket endpoint settings.
func GetServerConfig() ServerConfig {
	return ServerConfig{
		URL:       viper.GetString("server.url"),
		Reconnect: viper.GetBool("server.reconnect"),
		Backoff:   viper.GetDuration("server.backoff"),
	}
}

// GetOTelConfig returns the metrics export settings.
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:  viper.GetBool("otel.enabled"),
		Interval: viper.GetDuration("otel.exportInterval"),
	}
}

// GetMonitorConfig returns the status file settings.
func GetMonitorConfig() MonitorConfig {
	return MonitorConfig{
		Enabled:  viper.GetBool("monitor.enabled"),
		Interval: viper.GetDuration("monitor.interval"),
	}
}
