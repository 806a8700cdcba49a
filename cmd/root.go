package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/cardiofola/internal/logging"
	"github.com/abhisek/cardiofola/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "cardiofola",
	Short: "Cardiovascular risk tracker",
	Long:  "Cardiofola trains a small risk classifier on synthetic vitals and assesses heart rate, blood pressure, age and cholesterol readings.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initLogging(cmd, nil)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTracker(cmd)
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("db", "", "Path to SQLite database file (overrides CARDIOFOLA_DB env var)")
	pf.String("config", "", "Path to a YAML engine config file")
	pf.Uint64("seed", 0, "Seed for reproducible training (0 = random, overrides CARDIOFOLA_SEED)")
	pf.String("log-level", "", "Log level: debug, info, warn, error (overrides CARDIOFOLA_LOG_LEVEL)")
	pf.String("log-format", "text", "Log format: text or json")
	pf.Bool("no-record", false, "Do not record training runs in the database")

	rootCmd.AddCommand(assessCmd)
	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(trackCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(versionCmd)
}

// initLogging configures slog from the persistent flags. A nil w logs to
// stderr.
func initLogging(cmd *cobra.Command, w *os.File) {
	level, _ := cmd.Flags().GetString("log-level")
	if level == "" {
		level = os.Getenv("CARDIOFOLA_LOG_LEVEL")
	}
	if level == "" {
		level = "warn"
	}
	format, _ := cmd.Flags().GetString("log-format")

	if w == nil {
		logging.Init(logging.ParseLevel(level), format)
		return
	}
	logging.Init(logging.ParseLevel(level), format, w)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then CARDIOFOLA_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}
