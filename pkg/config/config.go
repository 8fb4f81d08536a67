// Package config loads and validates the receiver configuration from a file
// and environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/rain-foundation/pyth-solana-receiver-sdk/pkg/price"
)

// Config holds all configuration settings for the application
type Config struct {
	Environment string         `mapstructure:"environment"`
	LogLevel    string         `mapstructure:"log_level"`
	LogFile     string         `mapstructure:"log_file"`
	Database    DatabaseConfig `mapstructure:"database"`
	RPC         RPCConfig      `mapstructure:"rpc"`
	Monitor     MonitorConfig  `mapstructure:"monitor"`
	Feeds       []FeedConfig   `mapstructure:"feeds"`
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL          string        `mapstructure:"url"`
	MaxConns     int           `mapstructure:"max_conns"`
	Timeout      time.Duration `mapstructure:"timeout"`
	SSLMode      string        `mapstructure:"ssl_mode"`
	Embedded     bool          `mapstructure:"embedded"`
	EmbeddedPort uint32        `mapstructure:"embedded_port"`
	DataDir      string        `mapstructure:"data_dir"`
}

// RPCConfig holds Solana RPC settings
type RPCConfig struct {
	Endpoint   string        `mapstructure:"endpoint"`
	Commitment string        `mapstructure:"commitment"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// MonitorConfig holds polling settings
type MonitorConfig struct {
	Schedule   string        `mapstructure:"schedule"`
	PruneAfter time.Duration `mapstructure:"prune_after"`
}

// FeedConfig describes one monitored price feed
type FeedConfig struct {
	// Account is the base58 address of the price update account.
	Account string `mapstructure:"account"`

	// ID is the hex feed id the account must carry.
	ID string `mapstructure:"id"`

	// Alias is a human-readable name used in logs.
	Alias string `mapstructure:"alias"`

	// MaximumAgeSeconds is the staleness bound for this feed.
	MaximumAgeSeconds uint64 `mapstructure:"maximum_age_seconds"`

	// MinSignatures, when set, accepts partially verified updates with at
	// least this many checked signatures. When unset, full verification is
	// required.
	MinSignatures *uint8 `mapstructure:"min_signatures"`
}

// RequiredLevel returns the verification level this feed's consumers demand.
func (f FeedConfig) RequiredLevel() price.VerificationLevel {
	if f.MinSignatures != nil {
		return price.PartialVerification(*f.MinSignatures)
	}
	return price.FullVerification()
}

// Load reads the configuration file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, will rely on defaults and env vars
	}

	v.SetEnvPrefix("PYTH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setDefaults sets default values for all configuration options
func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "logs/receiver.log")

	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.timeout", "30s")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.embedded", false)
	v.SetDefault("database.embedded_port", 5433)
	v.SetDefault("database.data_dir", "./data/postgres")

	v.SetDefault("rpc.endpoint", "https://api.mainnet-beta.solana.com")
	v.SetDefault("rpc.commitment", "finalized")
	v.SetDefault("rpc.timeout", "10s")

	v.SetDefault("monitor.schedule", "@every 10s")
	v.SetDefault("monitor.prune_after", "24h")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := c.validateDatabase(); err != nil {
		return fmt.Errorf("database config: %w", err)
	}
	if err := c.validateRPC(); err != nil {
		return fmt.Errorf("rpc config: %w", err)
	}
	if err := c.validateMonitor(); err != nil {
		return fmt.Errorf("monitor config: %w", err)
	}
	for i, feed := range c.Feeds {
		if err := feed.validate(); err != nil {
			return fmt.Errorf("feed %d: %w", i, err)
		}
	}
	return nil
}

func (c *Config) validateDatabase() error {
	if c.Database.URL == "" && !c.Database.Embedded {
		return fmt.Errorf("database URL cannot be empty unless embedded mode is enabled")
	}
	if c.Database.MaxConns <= 0 {
		return fmt.Errorf("max_conns must be positive")
	}
	if c.Database.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.Database.Embedded && (c.Database.EmbeddedPort == 0 || c.Database.EmbeddedPort > 65535) {
		return fmt.Errorf("invalid embedded port: %d", c.Database.EmbeddedPort)
	}
	return nil
}

func (c *Config) validateRPC() error {
	if c.RPC.Endpoint == "" {
		return fmt.Errorf("endpoint cannot be empty")
	}
	switch c.RPC.Commitment {
	case "processed", "confirmed", "finalized":
	default:
		return fmt.Errorf("invalid commitment: %q", c.RPC.Commitment)
	}
	if c.RPC.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}

func (c *Config) validateMonitor() error {
	if c.Monitor.Schedule == "" {
		return fmt.Errorf("schedule cannot be empty")
	}
	if c.Monitor.PruneAfter < 0 {
		return fmt.Errorf("prune_after cannot be negative")
	}
	return nil
}

func (f FeedConfig) validate() error {
	if _, err := solana.PublicKeyFromBase58(f.Account); err != nil {
		return fmt.Errorf("invalid account address %q: %w", f.Account, err)
	}
	if _, err := price.ParseFeedID(f.ID); err != nil {
		return fmt.Errorf("invalid feed id %q: %w", f.ID, err)
	}
	if f.MaximumAgeSeconds == 0 {
		return fmt.Errorf("maximum_age_seconds must be positive")
	}
	return nil
}

// GetLogLevel returns a zap log level based on the configured string
func (c *Config) GetLogLevel() zap.AtomicLevel {
	level := zap.NewAtomicLevel()
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		level.SetLevel(zap.DebugLevel)
	case "info":
		level.SetLevel(zap.InfoLevel)
	case "warn":
		level.SetLevel(zap.WarnLevel)
	case "error":
		level.SetLevel(zap.ErrorLevel)
	default:
		level.SetLevel(zap.InfoLevel)
	}
	return level
}

// IsDevelopment returns true if the environment is set to development
func (c *Config) IsDevelopment() bool {
	return strings.ToLower(c.Environment) == "development"
}
