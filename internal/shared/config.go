package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Database   DatabaseConfig   `toml:"database"`
	Codec      CodecConfig      `toml:"codec"`
	Classifier ClassifierConfig `toml:"classifier"`
	Server     ServerConfig     `toml:"server"`
	Log        LogConfig        `toml:"log"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path          string `toml:"path"`
	MaxOpenConns  int    `toml:"max_open_conns"`
	MaxIdleConns  int    `toml:"max_idle_conns"`
	JournalMode   string `toml:"journal_mode"`
	BusyTimeoutMS int    `toml:"busy_timeout_ms"`
}

// CodecConfig selects the compression applied to stored payloads.
type CodecConfig struct {
	Compression string `toml:"compression"`
	Level       int    `toml:"level"`
}

// ClassifierConfig contains the settings used when a model is bootstrapped.
type ClassifierConfig struct {
	Labels         []string `toml:"labels"`
	Alpha          float64  `toml:"alpha"`
	MinTokenLength int      `toml:"min_token_length"`
	StopWords      []string `toml:"stop_words"`
}

// ServerConfig contains HTTP API settings. A zero RequestsPerSecond disables rate limiting.
type ServerConfig struct {
	Addr              string  `toml:"addr"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks the values that cannot be defaulted.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("%w: database.path is required", ErrInvalidConfig)
	}
	if c.Classifier.Alpha <= 0 {
		return fmt.Errorf("%w: classifier.alpha must be positive, got %v", ErrInvalidConfig, c.Classifier.Alpha)
	}
	if c.Server.RequestsPerSecond < 0 || c.Server.Burst < 0 {
		return fmt.Errorf("%w: server rate limit must not be negative", ErrInvalidConfig)
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

// LogLevel parses the configured log level.
func (c *Config) LogLevel() (log.Level, error) {
	if c.Log.Level == "" {
		return log.InfoLevel, nil
	}
	level, err := log.ParseLevel(strings.ToLower(c.Log.Level))
	if err != nil {
		return log.InfoLevel, fmt.Errorf("%w: log.level %q", ErrInvalidConfig, c.Log.Level)
	}
	return level, nil
}
