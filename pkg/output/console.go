// Package output prints a pass run's diagnostics and action catalogue
// to a writer, in a full console form and a compact summary form.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/go-rsc/server-actions/internal/comments"
	"github.com/go-rsc/server-actions/internal/diagnostics"
)

const outputLineWidth = 60

// Stats summarizes one pass run for the console/summary headers.
type Stats struct {
	Filename    string
	ActionCount int
	CacheCount  int
	Duration    float64
}

// ConsoleOutput writes a pass run's diagnostics and catalogue to
// console with colors.
type ConsoleOutput struct {
	writer  io.Writer
	noColor bool
}

// NewConsoleOutput creates a new console output.
func NewConsoleOutput() *ConsoleOutput {
	return &ConsoleOutput{writer: os.Stdout}
}

// WithWriter sets a custom writer.
func (c *ConsoleOutput) WithWriter(w io.Writer) *ConsoleOutput {
	c.writer = w
	return c
}

// WithNoColor disables colors.
func (c *ConsoleOutput) WithNoColor(v bool) *ConsoleOutput {
	c.noColor = v
	if v {
		color.NoColor = true
	}
	return c
}

// Write prints the pass's diagnostics followed by its action
// catalogue.
func (c *ConsoleOutput) Write(diags []diagnostics.Diagnostic, catalogue map[string]string, stats Stats) error {
	c.printHeader(stats)

	if len(diags) == 0 {
		green := color.New(color.FgGreen, color.Bold)
		green.Fprintln(c.writer, "No diagnostics.")
	} else {
		c.printDiagnostics(diags)
	}

	if len(catalogue) > 0 {
		c.printCatalogue(catalogue)
	}

	return nil
}

func (c *ConsoleOutput) printHeader(stats Stats) {
	fmt.Fprintln(c.writer)
	fmt.Fprintln(c.writer, "SERVER ACTIONS / CACHE FUNCTIONS PASS")
	fmt.Fprintln(c.writer, strings.Repeat("=", outputLineWidth))
	fmt.Fprintf(c.writer, "File: %s\n", stats.Filename)
	fmt.Fprintf(c.writer, "Actions hoisted: %d | Cache functions hoisted: %d\n", stats.ActionCount, stats.CacheCount)
	fmt.Fprintln(c.writer)
}

func (c *ConsoleOutput) printDiagnostics(diags []diagnostics.Diagnostic) {
	red := color.New(color.FgRed, color.Bold)
	gray := color.New(color.FgHiBlack)

	for _, d := range diags {
		red.Fprintf(c.writer, "[%s] ", d.Kind)
		fmt.Fprintf(c.writer, "%s ", d.Message)
		gray.Fprintf(c.writer, "(span %d-%d)\n", d.Span.Start, d.Span.End)
	}
	fmt.Fprintln(c.writer)
}

func (c *ConsoleOutput) printCatalogue(catalogue map[string]string) {
	cyan := color.New(color.FgCyan, color.Bold)
	cyan.Fprintln(c.writer, "ACTION CATALOGUE")
	fmt.Fprintln(c.writer, strings.Repeat("-", outputLineWidth))
	for _, entry := range comments.SortedEntries(catalogue) {
		fmt.Fprintf(c.writer, "  %s  %s\n", entry.ID, entry.Name)
	}
	fmt.Fprintln(c.writer)
}

// SummaryOutput writes a compact one-block summary, for scripted use.
type SummaryOutput struct {
	writer io.Writer
}

// NewSummaryOutput creates a new summary output.
func NewSummaryOutput() *SummaryOutput {
	return &SummaryOutput{writer: os.Stdout}
}

// WithWriter sets a custom writer.
func (s *SummaryOutput) WithWriter(w io.Writer) *SummaryOutput {
	s.writer = w
	return s
}

// Write prints a compact summary of a pass run.
func (s *SummaryOutput) Write(diags []diagnostics.Diagnostic, catalogue map[string]string, stats Stats) error {
	fmt.Fprintln(s.writer, "PASS SUMMARY")
	fmt.Fprintln(s.writer, "============")
	fmt.Fprintf(s.writer, "%s: %d diagnostics, %d catalogued actions (%d hoisted actions, %d hoisted cache fns)\n",
		stats.Filename, len(diags), len(catalogue), stats.ActionCount, stats.CacheCount)
	fmt.Fprintf(s.writer, "Duration: %.4fs\n", stats.Duration)
	return nil
}
