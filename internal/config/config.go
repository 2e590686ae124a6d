// Package config loads server configuration from a YAML file with
// environment variable overrides.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root server configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	AI       AIConfig       `mapstructure:"ai"`
	Cards    CardsConfig    `mapstructure:"cards"`
	Privacy  PrivacyConfig  `mapstructure:"privacy"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AllowAllOrigins bool          `mapstructure:"allow_all_origins"`
}

// DatabaseConfig configures the PostgreSQL match store. Persistence
// is optional: an empty URL runs the server without it.
type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// LoggingConfig configures zap.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json or console
}

// PrivacyConfig relaxes projection redaction. All false in normal
// play; reveal flags exist for debugging and replay review.
type PrivacyConfig struct {
	RevealHands     bool `mapstructure:"reveal_hands"`
	RevealFaceDown  bool `mapstructure:"reveal_face_down"`
	RevealDeckOrder bool `mapstructure:"reveal_deck_order"`
}

// CardsConfig points at the card database file.
type CardsConfig struct {
	Path string `mapstructure:"path"`
}

// AIConfig configures the built-in computer opponent.
type AIConfig struct {
	Difficulty string        `mapstructure:"difficulty"`
	ThinkDelay time.Duration `mapstructure:"think_delay"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.allow_all_origins", false)

	v.SetDefault("database.url", "")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.connect_timeout", 5*time.Second)
	v.SetDefault("database.max_conn_lifetime", time.Hour)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("ai.difficulty", "HARD")
	v.SetDefault("ai.think_delay", 800*time.Millisecond)

	v.SetDefault("cards.path", "data/cards.json")

	v.SetDefault("privacy.reveal_hands", false)
	v.SetDefault("privacy.reveal_face_down", false)
	v.SetDefault("privacy.reveal_deck_order", false)
}

// Load reads configuration from the given path. A missing file is not
// an error; defaults and DUEL_* environment variables still apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix("DUEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !isNotExist(err) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func isNotExist(err error) bool {
	return strings.Contains(err.Error(), "no such file")
}

func (c *Config) validate() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging level %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("invalid logging format %q", c.Logging.Format)
	}
	if c.Server.Address == "" {
		return fmt.Errorf("server address must not be empty")
	}
	return nil
}
