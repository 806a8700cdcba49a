package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetFlags restores every flag to its default so runs don't leak into
// each other through the shared command tree.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "cardiofola (devel)\n", out)
}

func TestRunsList_Empty(t *testing.T) {
	db := filepath.Join(t.TempDir(), "runs.db")
	out, err := execute(t, "runs", "list", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "No training runs found.")
}

func TestRunsView_NotFound(t *testing.T) {
	db := filepath.Join(t.TempDir(), "runs.db")
	_, err := execute(t, "runs", "view", "42", "--db", db)
	assert.ErrorContains(t, err, "run 42 not found")

	_, err = execute(t, "runs", "view", "abc", "--db", db)
	assert.ErrorContains(t, err, "invalid ID")
}

func TestAssess_RequiresVitals(t *testing.T) {
	_, err := execute(t, "assess", "--no-record", "--age", "40", "--heart-rate", "0", "--systolic", "0", "--diastolic", "0")
	assert.ErrorContains(t, err, "heartRate")
}

func TestAssess_FileToJSON_AndRunsRecorded(t *testing.T) {
	if testing.Short() {
		t.Skip("trains a full model")
	}
	dir := t.TempDir()
	db := filepath.Join(dir, "cardiofola.db")
	input := filepath.Join(dir, "readings.json")
	require.NoError(t, os.WriteFile(input, []byte(`[
		{"age": 30, "heartRate": 70, "systolic": 115, "diastolic": 75, "cholesterol": 180},
		{"age": 65, "heartRate": 110, "systolic": 140, "diastolic": 90, "cholesterol": 260}
	]`), 0o644))

	out, err := execute(t, "assess", "--db", db, "--seed", "42", "--file", input, "--json")
	require.NoError(t, err)

	var got []struct {
		Risk            string   `json:"risk"`
		Recommendations []string `json:"recommendations"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "Low Risk", got[0].Risk)
	assert.Equal(t, "High Risk", got[1].Risk)
	assert.Len(t, got[1].Recommendations, 3)

	out, err = execute(t, "runs", "list", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "✓")

	out, err = execute(t, "runs", "view", "1", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Success:   true")
	assert.Contains(t, out, "Rows:      800 train / 200 validation")
}
