package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestGetConfigBaseDir(t *testing.T) {
	tests := []struct {
		name           string
		xdgConfigHome  string
		expectedSuffix string
	}{
		{
			name:           "system_service",
			xdgConfigHome:  "/etc/switcherd",
			expectedSuffix: "/etc/switcherd",
		},
		{
			name:           "user_default",
			xdgConfigHome:  "",
			expectedSuffix: "/.config/switcherd",
		},
		{
			name:           "user_custom_xdg",
			xdgConfigHome:  "/home/user/myconfigs",
			expectedSuffix: "/home/user/myconfigs/switcherd",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("XDG_CONFIG_HOME", tt.xdgConfigHome)

			result := GetConfigBaseDir()

			if tt.name == "user_default" {
				if !filepath.IsAbs(result) || !strings.HasSuffix(result, tt.expectedSuffix) {
					t.Errorf("GetConfigBaseDir() = %v, expected to end with %v", result, tt.expectedSuffix)
				}
			} else if result != tt.expectedSuffix {
				t.Errorf("GetConfigBaseDir() = %v, expected %v", result, tt.expectedSuffix)
			}
		})
	}
}

func TestGetDaemonConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/cfg")
	if got := GetDaemonConfigPath(); got != "/tmp/cfg/switcherd/switcherd.yaml" {
		t.Errorf("GetDaemonConfigPath() = %v", got)
	}
	if got := GetClientConfigPath(); got != "/tmp/cfg/switcherd/switcherctl.yaml" {
		t.Errorf("GetClientConfigPath() = %v", got)
	}
}

func TestValidateTickInterval(t *testing.T) {
	tests := []struct {
		input    int
		expected time.Duration
	}{
		{0, DefaultTickInterval},
		{-5, DefaultTickInterval},
		{1, MinTickInterval},
		{10, 10 * time.Millisecond},
		{250, 250 * time.Millisecond},
	}

	for _, tt := range tests {
		if got := ValidateTickInterval(tt.input); got != tt.expected {
			t.Errorf("ValidateTickInterval(%d) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestClampTransitionPosition(t *testing.T) {
	tests := []struct {
		input    float64
		expected float64
	}{
		{-0.5, 0},
		{0, 0},
		{0.42, 0.42},
		{1, 1},
		{3, 1},
	}

	for _, tt := range tests {
		if got := ClampTransitionPosition(tt.input); got != tt.expected {
			t.Errorf("ClampTransitionPosition(%v) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}
