package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/cardiofola/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect recorded training runs",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent training runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		failed, _ := cmd.Flags().GetBool("failed")

		s, err := openRunsStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		runs, err := s.EventRepo().QueryTrainingRuns(cmd.Context(), store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("query runs: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(runs) == 0 {
			fmt.Fprintln(out, "No training runs found.")
			return nil
		}

		fmt.Fprintf(out, "%-5s  %-19s  %-8s  %-3s  %-6s  %-7s  %-7s  %-8s  %s\n",
			"ID", "Timestamp", "Run", "Try", "Epochs", "Loss", "ValAcc", "Ms", "OK")
		fmt.Fprintln(out, strings.Repeat("─", 84))

		for _, r := range runs {
			if failed && r.Success {
				continue
			}
			ok := "✓"
			if !r.Success {
				ok = "✗"
			}
			fmt.Fprintf(out, "%-5d  %-19s  %-8s  %-3d  %-6d  %-7.4f  %-7.4f  %-8d  %s\n",
				r.ID,
				r.Timestamp.Local().Format("2006-01-02 15:04:05"),
				shortID(r.RunID),
				r.Attempt,
				r.Epochs,
				r.FinalLoss,
				r.FinalValAccuracy,
				r.DurationMs,
				ok,
			)
		}
		return nil
	},
}

var runsViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "View a training run with its per-epoch history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var id int
		if _, err := fmt.Sscanf(args[0], "%d", &id); err != nil {
			return fmt.Errorf("invalid ID %q: %w", args[0], err)
		}

		s, err := openRunsStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		r, err := s.EventRepo().GetTrainingRun(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("get run: %w", err)
		}
		if r == nil {
			return fmt.Errorf("run %d not found", id)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "ID:        %d\n", r.ID)
		fmt.Fprintf(out, "Time:      %s\n", r.Timestamp.Local().Format("2006-01-02 15:04:05"))
		fmt.Fprintf(out, "Run:       %s (attempt %d)\n", r.RunID, r.Attempt)
		fmt.Fprintf(out, "Success:   %v\n", r.Success)
		if r.ErrorMessage != "" {
			fmt.Fprintf(out, "Error:     %s\n", r.ErrorMessage)
		}
		fmt.Fprintf(out, "Duration:  %s\n", time.Duration(r.DurationMs)*time.Millisecond)
		fmt.Fprintf(out, "Rows:      %d train / %d validation\n", r.TrainRows, r.ValRows)
		fmt.Fprintf(out, "Steps:     %d\n", r.Steps)

		if len(r.History) == 0 {
			return nil
		}

		fmt.Fprintln(out)
		fmt.Fprintf(out, "%-6s  %-8s  %-8s  %-8s  %-8s\n", "Epoch", "Loss", "Acc", "ValLoss", "ValAcc")
		fmt.Fprintln(out, strings.Repeat("─", 46))
		for _, e := range r.History {
			fmt.Fprintf(out, "%-6d  %-8.4f  %-8.4f  %-8.4f  %-8.4f\n",
				e.Epoch, e.Loss, e.Accuracy, e.ValLoss, e.ValAccuracy)
		}
		return nil
	},
}

func init() {
	runsListCmd.Flags().Int("limit", 20, "Maximum number of runs to show")
	runsListCmd.Flags().Bool("failed", false, "Only show failed attempts")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsViewCmd)
}

func openRunsStore(cmd *cobra.Command) (*store.Store, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
