package config

import "time"

// Common constants shared between daemon and client
const (
	// ConfigDirName is the name of the config directory within XDG_CONFIG_HOME
	ConfigDirName = "switcherd"

	// DaemonConfigFilename is the base filename for daemon config
	DaemonConfigFilename = "switcherd.yaml"

	// ClientConfigFilename is the base filename for client config
	ClientConfigFilename = "switcherctl.yaml"

	// EnvPrefix is the prefix for environment variable overrides (SWITCHERD_API_LISTEN_ADDRESS, ...)
	EnvPrefix = "SWITCHERD"

	// DefaultAPIListenAddress is the default HTTP API listen address
	DefaultAPIListenAddress = ":9124"

	// DefaultClientAPIURL is where switcherctl looks for the daemon
	DefaultClientAPIURL = "http://127.0.0.1:9124"

	// DefaultOSCListenAddress is the default OSC control surface listen address
	DefaultOSCListenAddress = ":8765"

	// DefaultGatewayPort is the port assumed when a switcher address has none
	DefaultGatewayPort = 9910
)

// Default timeouts and intervals
const (
	// DefaultTickInterval is the cadence of the session liveness/refresh tick
	DefaultTickInterval = 100 * time.Millisecond

	// MinTickInterval is the minimum allowed tick interval
	MinTickInterval = 10 * time.Millisecond

	// DefaultDiscoveryTimeout is how long a zeroconf browse runs
	DefaultDiscoveryTimeout = 3 * time.Second

	// DefaultDeviceTimeout bounds a single request to the switcher gateway
	DefaultDeviceTimeout = 2 * time.Second
)

// Control constraints
const (
	// MinTransitionPosition is the start of the transition lever travel
	MinTransitionPosition = 0.0

	// MaxTransitionPosition is the end of the transition lever travel
	MaxTransitionPosition = 1.0

	// MaxTransitionFrames bounds the auto transition rate accepted by the API
	MaxTransitionFrames = 250
)

// Logging constants
const (
	// LogLevelDebug represents debug log level
	LogLevelDebug = "debug"

	// LogLevelInfo represents info log level
	LogLevelInfo = "info"

	// LogLevelWarn represents warning log level
	LogLevelWarn = "warn"

	// LogLevelError represents error log level
	LogLevelError = "error"

	// LogFormatText represents text log format
	LogFormatText = "text"

	// LogFormatJSON represents JSON log format
	LogFormatJSON = "json"
)
