package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/jmylchreest/switcherd/internal/config"
	"github.com/jmylchreest/switcherd/internal/server"
	"github.com/jmylchreest/switcherd/internal/utils"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

// flagBindings maps command line flags to configuration keys.
var flagBindings = map[string]string{
	"log-level":    "logging.level",
	"log-format":   "logging.format",
	"address":      "switcher.address",
	"auto-connect": "switcher.auto_connect",
	"listen":       "api.listen_address",
	"osc":          "osc.listen_address",
	"osc-feedback": "osc.feedback_address",
	"simulate":     "simulator.enabled",
	"fixture":      "simulator.fixture",
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("switcherd", pflag.ContinueOnError)
	fs.String("config", "", fmt.Sprintf("Path to config file (default %s)", config.GetDaemonConfigPath()))
	fs.String("log-level", config.LogLevelInfo, "Log level (debug, info, warn, error)")
	fs.String("log-format", config.LogFormatText, "Log format (text, json)")
	fs.String("address", "", "Switcher gateway address (host or host:port)")
	fs.Bool("auto-connect", false, "Connect to the switcher on startup")
	fs.String("listen", config.DefaultAPIListenAddress, "HTTP API listen address")
	fs.String("osc", "", "OSC control surface listen address")
	fs.Lookup("osc").NoOptDefVal = config.DefaultOSCListenAddress
	fs.String("osc-feedback", "", "Send session changes as OSC to host:port")
	fs.Bool("simulate", false, "Drive the built-in simulated switcher instead of hardware")
	fs.String("fixture", "", "Simulator fixture YAML (implies --simulate)")
	fs.Bool("version", false, "Print version and exit")
	return fs
}

// loadConfig parses args and loads the daemon configuration. Flags take
// precedence over the environment, which takes precedence over the file.
func loadConfig(fs *pflag.FlagSet, args []string) (*config.Config, error) {
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	for flag, key := range flagBindings {
		if err := v.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return nil, fmt.Errorf("failed to bind --%s: %w", flag, err)
		}
	}

	configFile, _ := fs.GetString("config")
	return config.LoadWith(v, config.DaemonConfigFilename, configFile)
}

// run serves until ctx is cancelled, then shuts the server down.
func run(ctx context.Context, logger *slog.Logger, cfg *config.Config) error {
	srv, err := server.New(logger, cfg, server.Options{
		Build: server.BuildInfo{Version: version, Commit: commit, BuildDate: buildDate},
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	if err := srv.Start(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	<-ctx.Done()
	logger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Stop(shutdownCtx)
}

func main() {
	fs := newFlagSet()
	cfg, err := loadConfig(fs, os.Args[1:])
	if err != nil {
		if err == pflag.ErrHelp {
			return
		}
		utils.SetupErrorLogger().Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	if showVersion, _ := fs.GetBool("version"); showVersion {
		fmt.Printf("switcherd %s (commit %s, built %s)\n", version, commit, buildDate)
		return
	}

	logger := utils.SetupLogger(cfg.Logging.Level, cfg.Logging.Format)
	utils.SetAsDefaultLogger(logger)

	logger.Info("Starting switcherd",
		"version", version,
		"commit", commit,
		"buildDate", buildDate,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, cfg); err != nil {
		logger.Error("switcherd exited with error", "error", err)
		os.Exit(1)
	}
}
