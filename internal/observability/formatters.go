// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/jdstudio/internal/dashboard"
	"github.com/jonathan/jdstudio/internal/export"
	"github.com/jonathan/jdstudio/internal/jdtext"
	"github.com/jonathan/jdstudio/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(truncate(title)))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	if content != "" {
		for _, line := range strings.Split(content, "\n") {
			fmt.Fprintf(p.out, "│ %s │\n", pad(truncate(line)))
		}
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens a line to the box's inner width, counting characters rather than bytes.
func truncate(line string) string {
	if utf8.RuneCountInString(line) <= boxWidth-4 {
		return line
	}
	return string([]rune(line)[:boxWidth-7]) + "..."
}

func pad(line string) string {
	return line + strings.Repeat(" ", boxWidth-4-utf8.RuneCountInString(line))
}

// PrintBlocks prints a formatted job description, one box per heading with the
// body paragraphs that follow it wrapped to the box width.
func (p *Printer) PrintBlocks(blocks []jdtext.Block) {
	var (
		title   string
		content []string
		open    bool
	)
	flush := func() {
		if open {
			p.printBox(title, strings.Join(content, "\n"))
		}
	}

	for _, block := range blocks {
		if block.Kind == jdtext.KindHeading {
			flush()
			title, content, open = block.Text, nil, true
			continue
		}
		if !open {
			title, open = "", true
		}
		if len(content) > 0 {
			content = append(content, "")
		}
		for _, line := range strings.Split(block.Text, "\n") {
			content = append(content, export.Wrap(line, boxWidth-4)...)
		}
	}
	flush()
}

// PrintJobDescription outputs a human-readable summary of a generated or uploaded job description.
func (p *Printer) PrintJobDescription(jd *types.JobDescription) {
	if jd == nil {
		return
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Title:       %s\n", jd.Title))
	if jd.Location != "" {
		sb.WriteString(fmt.Sprintf("Location:    %s\n", jd.Location))
	}
	if jd.Experience != "" {
		sb.WriteString(fmt.Sprintf("Experience:  %s\n", jd.Experience))
	}
	if jd.SalaryRange != "" {
		sb.WriteString(fmt.Sprintf("Salary:      %s\n", jd.SalaryRange))
	}

	if len(jd.Skills) > 0 {
		sb.WriteString("\nSkills:\n")
		count := min(len(jd.Skills), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", jd.Skills[i]))
		}
		if len(jd.Skills) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(jd.Skills)-maxItemsToShow))
		}
	}

	sb.WriteString(fmt.Sprintf("\nDescription: %d characters", utf8.RuneCountInString(jd.FullJD)))

	p.printBox("JOB DESCRIPTION", sb.String())
}

// PrintPages outputs how text was laid out for export.
func (p *Printer) PrintPages(pages [][]string) {
	var sb strings.Builder

	lines := 0
	for _, page := range pages {
		lines += len(page)
	}
	sb.WriteString(fmt.Sprintf("Pages: %d\n", len(pages)))
	sb.WriteString(fmt.Sprintf("Lines: %d\n", lines))

	for i, page := range pages {
		if len(page) == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("\n%d. %s", i+1, page[0]))
	}

	p.printBox("EXPORT LAYOUT", sb.String())
}

// PrintDashboard outputs the admin overview figures.
func (p *Printer) PrintDashboard(snap *dashboard.Snapshot) {
	if snap == nil {
		return
	}

	var sb strings.Builder

	for _, stat := range snap.Stats {
		sb.WriteString(fmt.Sprintf("%-22s %6d\n", stat.Label, stat.Value))
	}
	sb.WriteString(fmt.Sprintf("\nSelection ratio: %.1f%%\n", snap.SelectionRatio()))

	sb.WriteString("\nMonth  Recruiters  JDs")
	for _, m := range snap.Monthly {
		sb.WriteString(fmt.Sprintf("\n%-6s %10d  %3d", m.Month, m.Recruiters, m.JDs))
	}

	p.printBox("DASHBOARD", sb.String())
}
