package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/jonathan/jdstudio/internal/jdtext"
	"github.com/jonathan/jdstudio/internal/observability"
)

var (
	formatRole string
	formatJSON bool
)

var formatCmd = &cobra.Command{
	Use:   "format [file]",
	Short: "Show job description text as heading and body blocks",
	Long:  "Split job description text into paragraphs, classify each as a heading or body, and print the blocks under a role heading.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runFormat,
}

func init() {
	formatCmd.Flags().StringVarP(&formatRole, "role", "r", "", "Role shown in the first heading")
	formatCmd.Flags().BoolVar(&formatJSON, "json", false, "Print the blocks as JSON")
	rootCmd.AddCommand(formatCmd)
}

func runFormat(cmd *cobra.Command, args []string) error {
	text, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	blocks := jdtext.Format(text, formatRole)

	if formatJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(blocks)
	}

	observability.NewPrinter(cmd.OutOrStdout()).PrintBlocks(blocks)
	return nil
}
