package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/cardiofola/internal/ui/report"
	"github.com/abhisek/cardiofola/internal/vitals"
)

var assessCmd = &cobra.Command{
	Use:   "assess",
	Short: "Assess one or more vitals readings",
	Long: `Trains the model, then classifies vitals given by flags or read from a
JSON file (a single object or an array of objects). Cholesterol defaults
to 200 mg/dL when omitted.`,
	Example: `  cardiofola assess --age 52 --heart-rate 88 --systolic 135 --diastolic 85
  cardiofola assess --file readings.json --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := readRecords(cmd)
		if err != nil {
			return err
		}

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

		if err := trainAndWait(cmd.Context(), eng, cmd.ErrOrStderr()); err != nil {
			return err
		}

		verdicts, err := eng.InferMany(cmd.Context(), records)
		if err != nil {
			return fmt.Errorf("assess: %w", err)
		}

		now := time.Now()
		assessments := make([]report.Assessment, len(records))
		for i, rec := range records {
			assessments[i] = report.NewAssessment(rec, verdicts[i], now)
		}

		out := cmd.OutOrStdout()
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(assessments)
		}
		for _, a := range assessments {
			fmt.Fprintln(out, report.Card(a, 72))
		}
		return nil
	},
}

func init() {
	f := assessCmd.Flags()
	f.Float64("age", 0, "Age in years")
	f.Float64("heart-rate", 0, "Heart rate in BPM")
	f.Float64("systolic", 0, "Systolic blood pressure in mmHg")
	f.Float64("diastolic", 0, "Diastolic blood pressure in mmHg")
	f.Float64("cholesterol", 0, "Total cholesterol in mg/dL (default 200)")
	f.StringP("file", "f", "", "Read readings from a JSON file ('-' for stdin)")
	f.Bool("json", false, "Print assessments as JSON")

	assessCmd.MarkFlagsMutuallyExclusive("file", "age")
	assessCmd.MarkFlagsMutuallyExclusive("file", "heart-rate")
}

// readRecords returns the records named by --file or the vitals flags.
func readRecords(cmd *cobra.Command) ([]vitals.Record, error) {
	if path, _ := cmd.Flags().GetString("file"); path != "" {
		var (
			raw []byte
			err error
		)
		if path == "-" {
			raw, err = io.ReadAll(cmd.InOrStdin())
		} else {
			raw, err = os.ReadFile(path)
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		return vitals.ParseAll(raw)
	}

	f := cmd.Flags()
	var rec vitals.Record
	rec.Age, _ = f.GetFloat64("age")
	rec.HeartRate, _ = f.GetFloat64("heart-rate")
	rec.Systolic, _ = f.GetFloat64("systolic")
	rec.Diastolic, _ = f.GetFloat64("diastolic")
	rec.Cholesterol, _ = f.GetFloat64("cholesterol")
	if err := rec.Validate(); err != nil {
		return nil, fmt.Errorf("%w (use --age, --heart-rate, --systolic and --diastolic, or --file)", err)
	}
	return []vitals.Record{rec}, nil
}
