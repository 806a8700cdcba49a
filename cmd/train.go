package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/cardiofola/internal/engine"
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train the risk model once and print the epoch table",
	RunE: func(cmd *cobra.Command, args []string) error {
		every, _ := cmd.Flags().GetInt("every")

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

		start := time.Now()
		if err := trainAndWait(cmd.Context(), eng, cmd.ErrOrStderr()); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		printEpochs(out, eng, every)
		printSummary(out, eng, time.Since(start))
		return nil
	},
}

func init() {
	trainCmd.Flags().Int("every", 5, "Print every Nth epoch (the last epoch is always printed)")
}

// trainAndWait initializes eng and blocks until it is ready, drawing a
// progress line on w.
func trainAndWait(ctx context.Context, eng *engine.Engine, w io.Writer) error {
	task := eng.Initialize(ctx)

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-task.Done():
			fmt.Fprint(w, "\r\033[K")
			if err := task.Err(); err != nil {
				return fmt.Errorf("train model: %w", err)
			}
			return nil
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p := eng.Progress()
			fmt.Fprintf(w, "\rTraining AI model... attempt %d, epoch %d/%d", p.Attempt, p.Epoch, p.Epochs)
		}
	}
}

func printEpochs(w io.Writer, eng *engine.Engine, every int) {
	hist := eng.History()
	if hist == nil {
		return
	}
	every = max(every, 1)

	fmt.Fprintf(w, "%-6s  %-8s  %-8s  %-8s  %-8s\n", "Epoch", "Loss", "Acc", "ValLoss", "ValAcc")
	fmt.Fprintln(w, strings.Repeat("─", 46))
	for i, s := range hist.Epochs {
		if s.Epoch%every != 0 && i != len(hist.Epochs)-1 {
			continue
		}
		fmt.Fprintf(w, "%-6d  %-8.4f  %-8.4f  %-8.4f  %-8.4f\n",
			s.Epoch, s.Loss, s.Accuracy, s.ValLoss, s.ValAccuracy)
	}
}

func printSummary(w io.Writer, eng *engine.Engine, elapsed time.Duration) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%-10s  %-7s  %-6s  %s\n", "Layer", "Units", "Params", "Activation")
	fmt.Fprintln(w, strings.Repeat("─", 46))
	total := 0
	for _, l := range eng.Summary() {
		fmt.Fprintf(w, "%-10s  %-7d  %-6d  %s\n", l.Name, l.Units, l.Params, l.Activation)
		total += l.Params
	}
	fmt.Fprintln(w)

	if hist := eng.History(); hist != nil {
		fmt.Fprintf(w, "Parameters: %d   Steps: %d   Train/val rows: %d/%d   Took: %s\n",
			total, hist.Steps, hist.TrainRows, hist.ValRows, elapsed.Round(time.Millisecond))
	}
}
