// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/jobtrail/internal/pipeline"
	"github.com/jonathan/jobtrail/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxRecordsToShow is the default number of records to display in lists
	maxRecordsToShow = 10
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
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintRunSummary outputs a human-readable summary of a completed sync run.
func (p *Printer) PrintRunSummary(c pipeline.Counters) {
	report := c.Report()

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Fetched:     %d\n", report.Fetched))
	sb.WriteString(fmt.Sprintf("Processed:   %d\n", report.Processed))
	sb.WriteString(fmt.Sprintf("Created:     %d\n", report.Created))
	sb.WriteString(fmt.Sprintf("Updated:     %d\n", report.Updated))
	sb.WriteString(fmt.Sprintf("Duplicates:  %d\n", report.Duplicates))
	if report.ExtractionFailures > 0 {
		sb.WriteString(fmt.Sprintf("Unparseable: %d\n", report.ExtractionFailures))
	}
	if report.Errors > 0 {
		sb.WriteString(fmt.Sprintf("Errors:      %d\n", report.Errors))
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Success rate: %s\n", report.SuccessRate))
	sb.WriteString(fmt.Sprintf("Duration:     %s", report.Duration))

	p.printBox("SYNC RUN SUMMARY", sb.String())
}

// PrintApplications outputs a compact listing of application records.
func (p *Printer) PrintApplications(records []types.ApplicationRecord) {
	if len(records) == 0 {
		p.printBox("APPLICATIONS", "No applications recorded yet")
		return
	}

	var sb strings.Builder
	count := min(len(records), maxRecordsToShow)
	for i := 0; i < count; i++ {
		rec := records[i]
		sb.WriteString(fmt.Sprintf("• %s / %s\n", rec.Company, rec.Role))
		sb.WriteString(fmt.Sprintf("  %s", rec.Status))
		if !rec.LastEmailAt.IsZero() {
			sb.WriteString(fmt.Sprintf(" (last email %s)", rec.LastEmailAt.Format("2006-01-02")))
		}
		sb.WriteString("\n")
	}
	if len(records) > maxRecordsToShow {
		sb.WriteString(fmt.Sprintf("... and %d more\n", len(records)-maxRecordsToShow))
	}

	p.printBox("APPLICATIONS", strings.TrimSuffix(sb.String(), "\n"))
}
