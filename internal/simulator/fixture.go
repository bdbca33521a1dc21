package simulator

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/switcherd/pkg/switcher"
)

// Fixture describes a simulated switcher.
type Fixture struct {
	Product       string         `yaml:"product"`
	MixTransition bool           `yaml:"mix_transition"`
	Rate          uint32         `yaml:"rate"`
	Program       int64          `yaml:"program"`
	Preview       int64          `yaml:"preview"`
	Inputs        []FixtureInput `yaml:"inputs"`
}

// FixtureInput is one simulated input.
type FixtureInput struct {
	ID   int64  `yaml:"id"`
	Name string `yaml:"name"`
}

func (f Fixture) switcherInputs() []switcher.Input {
	out := make([]switcher.Input, 0, len(f.Inputs))
	for _, in := range f.Inputs {
		out = append(out, switcher.Input{ID: switcher.InputID(in.ID), Name: in.Name})
	}
	return out
}

// DefaultFixture is a small four-camera switcher.
func DefaultFixture() Fixture {
	return Fixture{
		Product:       "Simulated Switcher",
		MixTransition: true,
		Rate:          25,
		Program:       1,
		Preview:       2,
		Inputs: []FixtureInput{
			{ID: 1, Name: "Cam1"},
			{ID: 2, Name: "Cam2"},
			{ID: 3, Name: "Cam3"},
			{ID: 4, Name: "Cam4"},
			{ID: 1000, Name: "Color Bars"},
		},
	}
}

// LoadFixture reads a YAML fixture. An empty path returns DefaultFixture.
func LoadFixture(path string) (Fixture, error) {
	if path == "" {
		return DefaultFixture(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Fixture{}, fmt.Errorf("failed to read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Fixture{}, fmt.Errorf("failed to parse fixture %s: %w", path, err)
	}
	if f.Product == "" {
		f.Product = DefaultFixture().Product
	}
	return f, nil
}

// WatchFixture reloads the simulator's inputs whenever path changes, until
// ctx is cancelled. Editors that replace the file are handled by watching the
// containing directory.
func WatchFixture(ctx context.Context, logger *slog.Logger, path string, sim *Switcher) error {
	if logger == nil {
		logger = slog.Default()
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}
	logger.Info("simulator: watching fixture", "path", abs)

	// Writes arrive in bursts; reload once they settle.
	const settle = 50 * time.Millisecond
	var debounce *time.Timer
	var debounceC <-chan time.Time
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.NewTimer(settle)
			debounceC = debounce.C
		case <-debounceC:
			debounceC = nil
			f, err := LoadFixture(abs)
			if err != nil {
				logger.Warn("simulator: fixture reload failed", "path", abs, "error", err)
				continue
			}
			sim.Reload(f)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("simulator: watcher error", "error", err)
		}
	}
}
