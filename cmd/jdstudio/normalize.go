package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/jdstudio/internal/jdtext"
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize [file]",
	Short: "Strip Markdown markup from job description text",
	Long:  "Read job description text from a file or stdin and print it with heading, bold, bullet and rule markup removed.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runNormalize,
}

func init() {
	rootCmd.AddCommand(normalizeCmd)
}

func runNormalize(cmd *cobra.Command, args []string) error {
	text, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	normalized := jdtext.Normalize(text)
	if normalized == "" {
		return nil
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), normalized)
	return err
}
