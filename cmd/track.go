package cmd

import (
	"github.com/spf13/cobra"
)

var trackCmd = &cobra.Command{
	Use:   "track",
	Short: "Start the interactive vitals tracker",
	Long:  "Trains the model in the background and opens a form for recording vitals. Readings are kept for the session only.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTracker(cmd)
	},
}
