package config

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Switcher  SwitcherConfig  `mapstructure:"switcher"`
	API       APIConfig       `mapstructure:"api"`
	OSC       OSCConfig       `mapstructure:"osc"`
	Discovery DiscoveryConfig `mapstructure:"discovery"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Simulator SimulatorConfig `mapstructure:"simulator"`
	Client    ClientConfig    `mapstructure:"client"`

	// Internal viper instance
	v *viper.Viper
}

// SwitcherConfig holds the session settings read at connect time
type SwitcherConfig struct {
	Address            string  `mapstructure:"address"`
	ProgramInput       string  `mapstructure:"program_input"`
	PreviewInput       string  `mapstructure:"preview_input"`
	TransitionPosition float64 `mapstructure:"transition_position"`
	AutoConnect        bool    `mapstructure:"auto_connect"`
	TickIntervalMillis int     `mapstructure:"tick_interval_ms"`
	// ReconnectInterval in seconds; 0 disables automatic reconnects
	ReconnectInterval int `mapstructure:"reconnect_interval"`
}

// APIConfig represents the HTTP API configuration
type APIConfig struct {
	ListenAddress string   `mapstructure:"listen_address"`
	APIKeys       []APIKey `mapstructure:"api_keys"`
	// RequestsPerMinute is the per-IP rate limit; 0 disables limiting
	RequestsPerMinute int `mapstructure:"requests_per_minute"`
}

// APIKey is a statically configured API key
type APIKey struct {
	Name     string `mapstructure:"name"`
	Key      string `mapstructure:"key"`
	Disabled bool   `mapstructure:"disabled"`
}

// OSCConfig represents the OSC control surface configuration
type OSCConfig struct {
	// ListenAddress is empty to disable the OSC surface
	ListenAddress string `mapstructure:"listen_address"`
	// FeedbackAddress receives session changes as OSC messages; empty disables feedback
	FeedbackAddress string `mapstructure:"feedback_address"`
}

// DiscoveryConfig represents the zeroconf discovery configuration
type DiscoveryConfig struct {
	Timeout int `mapstructure:"timeout"` // Browse duration in seconds
}

// LoggingConfig represents the logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SimulatorConfig configures the in-process simulated switcher
type SimulatorConfig struct {
	// Enabled dials the simulator instead of the network
	Enabled bool `mapstructure:"enabled"`
	// Fixture is a YAML fixture path and implies Enabled; empty uses the built-in switcher
	Fixture string `mapstructure:"fixture"`
}

// Active reports whether the daemon should use the simulator
func (c SimulatorConfig) Active() bool {
	return c.Enabled || c.Fixture != ""
}

// ClientConfig is read by switcherctl
type ClientConfig struct {
	APIURL string `mapstructure:"api_url"`
	APIKey string `mapstructure:"api_key"`
}

// TickInterval returns the validated session tick cadence
func (c SwitcherConfig) TickInterval() time.Duration {
	return ValidateTickInterval(c.TickIntervalMillis)
}

// ReconnectEvery returns the host reconnect interval, zero when disabled
func (c SwitcherConfig) ReconnectEvery() time.Duration {
	if c.ReconnectInterval <= 0 {
		return 0
	}
	return time.Duration(c.ReconnectInterval) * time.Second
}

// BrowseTimeout returns the zeroconf browse duration
func (c DiscoveryConfig) BrowseTimeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultDiscoveryTimeout
	}
	return time.Duration(c.Timeout) * time.Second
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("switcher.address", "")
	v.SetDefault("switcher.program_input", "")
	v.SetDefault("switcher.preview_input", "")
	v.SetDefault("switcher.transition_position", 0.0)
	v.SetDefault("switcher.auto_connect", false)
	v.SetDefault("switcher.tick_interval_ms", int(DefaultTickInterval/time.Millisecond))
	v.SetDefault("switcher.reconnect_interval", 0)
	v.SetDefault("api.listen_address", DefaultAPIListenAddress)
	v.SetDefault("api.requests_per_minute", 600)
	v.SetDefault("osc.listen_address", "")
	v.SetDefault("osc.feedback_address", "")
	v.SetDefault("discovery.timeout", int(DefaultDiscoveryTimeout/time.Second))
	v.SetDefault("logging.level", LogLevelInfo)
	v.SetDefault("logging.format", LogFormatText)
	v.SetDefault("simulator.enabled", false)
	v.SetDefault("simulator.fixture", "")
	v.SetDefault("client.api_url", DefaultClientAPIURL)
	v.SetDefault("client.api_key", "")
}

// Load loads configuration from a file and environment variables.
// A missing file is not an error; defaults are used instead.
func Load(configName, configFile string) (*Config, error) {
	return LoadWith(viper.New(), configName, configFile)
}

// LoadWith is Load using a caller-provided viper instance, so flags bound by
// the caller take precedence over file values.
func LoadWith(v *viper.Viper, configName, configFile string) (*Config, error) {
	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		slog.Debug("Using config file from command line", "path", configFile)
	} else {
		configPath := GetConfigPath(configName)
		v.SetConfigFile(configPath)
		if _, err := os.Stat(configPath); err == nil {
			slog.Info("Using default config file", "path", configPath)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{v: v}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	cfg.Logging.Level = strings.ToLower(cfg.Logging.Level)
	cfg.Logging.Format = strings.ToLower(cfg.Logging.Format)

	return cfg, nil
}

// FindAPIKey returns the configured key matching key
func (c *Config) FindAPIKey(key string) (APIKey, bool) {
	for _, k := range c.API.APIKeys {
		if k.Key != "" && subtle.ConstantTimeCompare([]byte(k.Key), []byte(key)) == 1 {
			return k, true
		}
	}
	return APIKey{}, false
}

// Get retrieves a raw value from the configuration
func (c *Config) Get(key string) any {
	if c.v == nil {
		return nil
	}
	return c.v.Get(key)
}
