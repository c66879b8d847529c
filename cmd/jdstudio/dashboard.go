package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/jonathan/jdstudio/internal/dashboard"
	"github.com/jonathan/jdstudio/internal/observability"
)

var dashboardJSON bool

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Print the admin overview figures",
	Args:  cobra.NoArgs,
	RunE:  runDashboard,
}

func init() {
	dashboardCmd.Flags().BoolVar(&dashboardJSON, "json", false, "Print the snapshot as JSON")
	rootCmd.AddCommand(dashboardCmd)
}

func runDashboard(cmd *cobra.Command, _ []string) error {
	snap := dashboard.Default()

	if dashboardJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	}

	observability.NewPrinter(cmd.OutOrStdout()).PrintDashboard(snap)
	return nil
}
