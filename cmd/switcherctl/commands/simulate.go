package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/switcherd/internal/config"
	"github.com/jmylchreest/switcherd/internal/simulator"
)

type simulateOptions struct {
	fixture   string
	listen    string
	advertise string
	watch     bool
}

// newSimulateCommand creates the simulate command
func newSimulateCommand() *cobra.Command {
	opts := simulateOptions{}
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a simulated switcher gateway",
		Long: "Serve the switcher gateway protocol from an in-memory switcher so switcherd " +
			"can be developed and demonstrated without hardware.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runSimulator(ctx, getLoggerFromCmd(cmd), opts, func(addr net.Addr) {
				pterm.Success.Printf("Simulated switcher listening on %s\n", addr)
			})
		},
	}
	cmd.Flags().StringVarP(&opts.fixture, "fixture", "f", "", "YAML fixture describing the switcher (default: built-in four camera switcher)")
	cmd.Flags().StringVarP(&opts.listen, "listen", "l", fmt.Sprintf(":%d", config.DefaultGatewayPort), "Gateway listen address")
	cmd.Flags().StringVar(&opts.advertise, "advertise", "", "Advertise over mDNS under this instance name")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "Reload the fixture's inputs when the file changes")
	return cmd
}

// runSimulator serves a simulated gateway until ctx is cancelled. ready is
// called with the bound address once the listener is up.
func runSimulator(ctx context.Context, logger *slog.Logger, opts simulateOptions, ready func(net.Addr)) error {
	fixture, err := simulator.LoadFixture(opts.fixture)
	if err != nil {
		return err
	}
	sim := simulator.New(logger, fixture)

	ln, err := net.Listen("tcp", opts.listen)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", opts.listen, err)
	}

	srv := &http.Server{
		Handler:           sim.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	if opts.advertise != "" {
		port := ln.Addr().(*net.TCPAddr).Port
		zc, err := sim.Advertise(opts.advertise, port)
		if err != nil {
			ln.Close()
			return err
		}
		defer zc.Shutdown()
	}

	if opts.watch && opts.fixture != "" {
		go func() {
			if err := simulator.WatchFixture(ctx, logger, opts.fixture, sim); err != nil {
				logger.Error("simulator: fixture watch failed", "error", err)
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	logger.Info("simulator: gateway started", "address", ln.Addr().String(), "product", fixture.Product)
	if ready != nil {
		ready(ln.Addr())
	}

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("gateway server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("gateway shutdown failed: %w", err)
	}
	logger.Info("simulator: gateway stopped")
	return nil
}
