package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// maxInputBytes caps how much text a command reads.
const maxInputBytes = 10 << 20

// readInput returns the contents of the file named in args, or stdin when args is empty or "-".
func readInput(cmd *cobra.Command, args []string) (string, error) {
	var r io.Reader = cmd.InOrStdin()
	name := "stdin"

	if len(args) > 0 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return "", fmt.Errorf("failed to open input file: %w", err)
		}
		defer func() { _ = f.Close() }()
		r, name = f, args[0]
	}

	data, err := io.ReadAll(io.LimitReader(r, maxInputBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", name, err)
	}
	return string(data), nil
}
