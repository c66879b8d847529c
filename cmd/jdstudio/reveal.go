package main

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jonathan/jdstudio/internal/backend"
	"github.com/jonathan/jdstudio/internal/reveal"
)

var (
	revealRole     string
	revealPDF      string
	revealInterval time.Duration
)

var revealCmd = &cobra.Command{
	Use:   "reveal [file]",
	Short: "Preview the typing reveal of a job description in the terminal",
	Long:  "Type out a job description one character at a time, then show it formatted. Press r to restart and q to cancel.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runReveal,
}

func init() {
	revealCmd.Flags().StringVarP(&revealRole, "role", "r", "", "Role shown in the first line")
	revealCmd.Flags().StringVar(&revealPDF, "pdf", "", "Read the description from a PDF file instead")
	revealCmd.Flags().DurationVar(&revealInterval, "interval", 0, "Delay between characters (default from config, 10ms)")
	rootCmd.AddCommand(revealCmd)
}

func runReveal(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	interval := cfg.Interval()
	if cmd.Flags().Changed("interval") {
		interval = revealInterval
	}
	if interval <= 0 {
		return &reveal.IntervalError{Interval: interval}
	}

	raw, err := revealSource(cmd, args)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	loop := reveal.NewLoop()
	go func() { _ = loop.Run(ctx) }()
	defer func() {
		cancel()
		<-loop.Done()
	}()

	var program *tea.Program
	ctl := newRevealController(loop, func(msg tea.Msg) { program.Send(msg) })
	model := newPreviewModel(ctl, raw, revealRole, interval)
	program = tea.NewProgram(model,
		tea.WithContext(ctx),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	)

	final, err := program.Run()
	if err != nil {
		return fmt.Errorf("preview failed: %w", err)
	}
	if m, ok := final.(previewModel); ok && m.err != nil {
		return m.err
	}
	return nil
}

// revealSource reads the text to reveal from --pdf, a file argument or stdin.
func revealSource(cmd *cobra.Command, args []string) (string, error) {
	if revealPDF == "" {
		return readInput(cmd, args)
	}
	if len(args) > 0 {
		return "", fmt.Errorf("cannot use a file argument with --pdf")
	}
	text, err := backend.ExtractText(revealPDF)
	if err != nil {
		return "", fmt.Errorf("failed to read PDF: %w", err)
	}
	return text, nil
}
