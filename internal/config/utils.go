package config

import (
	"os"
	"path/filepath"
	"time"
)

// GetConfigBaseDir returns the base directory for configuration files
func GetConfigBaseDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		// For system service, XDG_CONFIG_HOME is set to /etc/switcherd
		// so we return it directly without appending ConfigDirName
		if dir == "/etc/switcherd" {
			return dir
		}
		return filepath.Join(dir, ConfigDirName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", ConfigDirName)
}

// GetConfigPath returns the full path to a configuration file
func GetConfigPath(filename string) string {
	return filepath.Join(GetConfigBaseDir(), filename)
}

// GetDaemonConfigPath returns the full path to the daemon configuration file
func GetDaemonConfigPath() string {
	return GetConfigPath(DaemonConfigFilename)
}

// GetClientConfigPath returns the full path to the client configuration file
func GetClientConfigPath() string {
	return GetConfigPath(ClientConfigFilename)
}

// ValidateTickInterval converts a millisecond tick interval, clamped to the minimum allowed value
func ValidateTickInterval(intervalMillis int) time.Duration {
	if intervalMillis <= 0 {
		return DefaultTickInterval
	}
	d := time.Duration(intervalMillis) * time.Millisecond
	if d < MinTickInterval {
		return MinTickInterval
	}
	return d
}

// ClampTransitionPosition limits a transition position to the lever travel
func ClampTransitionPosition(position float64) float64 {
	if position < MinTransitionPosition {
		return MinTransitionPosition
	}
	if position > MaxTransitionPosition {
		return MaxTransitionPosition
	}
	return position
}
