// Package config loads server configuration from a YAML file and
// ROOTSETUP_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/text/language"
)

// EnvPrefix prefixes every environment override, e.g. ROOTSETUP_STORAGE_DRIVER
const EnvPrefix = "ROOTSETUP"

// Storage drivers
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config is the complete server configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
	Catalog CatalogConfig `mapstructure:"catalog"`
	Storage StorageConfig `mapstructure:"storage"`
	Setup   SetupConfig   `mapstructure:"setup"`
	Replay  ReplayConfig  `mapstructure:"replay"`
}

// ServerConfig configures the HTTP side of the server
type ServerConfig struct {
	WebSocket       WebSocketConfig `mapstructure:"websocket"`
	ShutdownTimeout time.Duration   `mapstructure:"shutdown_timeout"`
	MaxSessions     int             `mapstructure:"max_sessions"`
}

// WebSocketConfig configures the websocket endpoint
type WebSocketConfig struct {
	Address        string        `mapstructure:"address"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	PingInterval   time.Duration `mapstructure:"ping_interval"`
}

// LoggingConfig selects the zap level and encoder
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CatalogConfig points at a component catalog. An empty path uses the
// embedded catalog.
type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

// StorageConfig selects where session state is persisted
type StorageConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// SetupConfig holds the defaults new setups start with
type SetupConfig struct {
	// Seed makes every setup reproducible; 0 draws a fresh seed at startup
	Seed                 int64 `mapstructure:"seed"`
	FixedFirstPlayer     bool  `mapstructure:"fixed_first_player"`
	DefaultPlayerCount   int   `mapstructure:"default_player_count"`
	DefaultLandmarkCount int   `mapstructure:"default_landmark_count"`
	// Language is the BCP 47 tag component lists are collated by
	Language string `mapstructure:"language"`
}

// ReplayConfig controls replay recording
type ReplayConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Directory string `mapstructure:"directory"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.websocket.address", ":8080")
	v.SetDefault("server.websocket.allowed_origins", []string{})
	v.SetDefault("server.websocket.write_timeout", 10*time.Second)
	v.SetDefault("server.websocket.ping_interval", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 15*time.Second)
	v.SetDefault("server.max_sessions", 1000)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("catalog.path", "")

	v.SetDefault("storage.driver", DriverMemory)
	v.SetDefault("storage.dsn", "")

	v.SetDefault("setup.seed", 0)
	v.SetDefault("setup.fixed_first_player", false)
	v.SetDefault("setup.default_player_count", 4)
	v.SetDefault("setup.default_landmark_count", 1)
	v.SetDefault("setup.language", "en")

	v.SetDefault("replay.enabled", false)
	v.SetDefault("replay.directory", "replays")
}

// Load reads the configuration at path. A missing file is not an error;
// defaults and environment overrides still apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for values the server cannot run with
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverMemory:
	case DriverSQLite, DriverPostgres:
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage.dsn is required for driver %q", c.Storage.Driver)
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	if n := c.Setup.DefaultPlayerCount; n < 1 || n > 6 {
		return fmt.Errorf("setup.default_player_count %d outside [1, 6]", n)
	}
	if n := c.Setup.DefaultLandmarkCount; n < 0 || n > 2 {
		return fmt.Errorf("setup.default_landmark_count %d outside [0, 2]", n)
	}
	if _, err := language.Parse(c.Setup.Language); err != nil {
		return fmt.Errorf("setup.language: %w", err)
	}
	if c.Server.WebSocket.Address == "" {
		return errors.New("server.websocket.address is required")
	}
	if c.Replay.Enabled && c.Replay.Directory == "" {
		return errors.New("replay.directory is required when replays are enabled")
	}
	return nil
}
