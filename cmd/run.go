package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/abhisek/cardiofola/internal/engine"
	"github.com/abhisek/cardiofola/internal/logging"
	"github.com/abhisek/cardiofola/internal/store"
	"github.com/abhisek/cardiofola/internal/tracker"
)

// engineConfig loads --config if given, otherwise the environment, then
// applies --seed.
func engineConfig(cmd *cobra.Command) (engine.Config, error) {
	var (
		cfg engine.Config
		err error
	)
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		cfg, err = engine.LoadConfigFile(path)
		if err != nil {
			return cfg, err
		}
	} else {
		cfg = engine.ConfigFromEnv()
	}

	if cmd.Flags().Changed("seed") {
		cfg.Seed, _ = cmd.Flags().GetUint64("seed")
	}
	return cfg, cfg.Validate()
}

// openStore opens the event store unless --no-record is set, in which case
// it returns nil.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	if off, _ := cmd.Flags().GetBool("no-record"); off {
		return nil, nil
	}
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}

// newEngine builds an engine recording to st when st is non-nil.
func newEngine(cmd *cobra.Command, st *store.Store) (*engine.Engine, error) {
	cfg, err := engineConfig(cmd)
	if err != nil {
		return nil, fmt.Errorf("engine config: %w", err)
	}
	opts := []engine.Option{engine.WithLogger(logging.New("engine"))}
	if st != nil {
		opts = append(opts, engine.WithRecorder(st.EventRepo()))
	}
	return engine.New(cfg, opts...)
}

// runTracker opens the store, builds the engine, and launches the TUI.
// Logs go to a file next to the database so they don't corrupt the screen.
func runTracker(cmd *cobra.Command) error {
	ctx := cmd.Context()

	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return fmt.Errorf("resolve DB path: %w", err)
	}
	logFile, err := os.OpenFile(filepath.Join(filepath.Dir(dbPath), "cardiofola.log"),
		os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()
	initLogging(cmd, logFile)

	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	if st != nil {
		defer st.Close()
	}

	eng, err := newEngine(cmd, st)
	if err != nil {
		return err
	}
	defer eng.Close()

	return tracker.Run(ctx, eng)
}
