package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/jdstudio/internal/export"
	"github.com/jonathan/jdstudio/internal/jdtext"
	"github.com/jonathan/jdstudio/internal/observability"
	"github.com/jonathan/jdstudio/internal/types"
)

var (
	exportTitle string
	exportOut   string
	exportHTML  bool
)

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export job description text to an A4 PDF",
	Long:  "Normalize job description text, lay it out on A4 pages and print it to PDF with headless Chrome. Use --html to write the page markup without Chrome.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportTitle, "title", "t", "", "Document title; also names the output file")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output path (default <title>.pdf)")
	exportCmd.Flags().BoolVar(&exportHTML, "html", false, "Write the paginated HTML instead of a PDF")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	text, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	out := exportOut
	if out == "" {
		out = types.ExportFilename(exportTitle)
		if exportHTML {
			out = out[:len(out)-len(".pdf")] + ".html"
		}
	}

	layout := export.DefaultLayout()
	if cfg.Verbose {
		observability.NewPrinter(cmd.ErrOrStderr()).PrintPages(export.Paginate(jdtext.Normalize(text), layout))
	}

	var data []byte
	if exportHTML {
		doc, err := export.Document(text, exportTitle, layout)
		if err != nil {
			return err
		}
		data = []byte(doc)
	} else {
		exporter := export.NewPDFExporter(cfg.ChromePath, cfg.Timeout())
		exporter.Verbose = cfg.Verbose
		data, err = exporter.Export(cmd.Context(), text, exportTitle)
		if err != nil {
			return err
		}
	}

	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d bytes)\n", out, len(data))
	return nil
}
