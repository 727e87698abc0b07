// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/resume-screener/internal/ingestion"
	"github.com/jonathan/resume-screener/internal/types"
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

// truncate shortens s to n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// writeList appends up to maxItemsToShow items under a heading.
func writeList(sb *strings.Builder, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	sb.WriteString(heading + ":\n")
	count := min(len(items), maxItemsToShow)
	for _, item := range items[:count] {
		sb.WriteString(fmt.Sprintf("  • %s\n", item))
	}
	if len(items) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-maxItemsToShow))
	}
}

// PrintScore outputs a compatibility breakdown.
func (p *Printer) PrintScore(result *types.DetailedScoreResult) {
	if result == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Score:        %d%% (%s)\n", result.Score, result.EligibilityLevel))
	sb.WriteString(fmt.Sprintf("Keywords:     %d of %d matched\n", result.MatchedCount, result.TotalKeywords))
	if result.Message != "" {
		sb.WriteString(result.Message + "\n")
	}
	sb.WriteString("\n")
	writeList(&sb, "Missing technical", result.MissingTechnical)
	writeList(&sb, "Missing general", result.MissingGeneral)
	sb.WriteString("\n")
	sb.WriteString(result.Recommendation)

	p.printBox("COMPATIBILITY", sb.String())
}

// PrintQuality outputs a résumé quality analysis with its suggestions.
func (p *Printer) PrintQuality(result *types.QualityResult) {
	if result == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Score: %d/100   Words: %d\n\n", result.Score, result.WordCount))
	for i, f := range result.Findings {
		marker := "✓"
		switch f.Severity {
		case types.SeverityCritical:
			marker = "✗"
		case types.SeverityWarning:
			marker = "⚠"
		}
		sb.WriteString(fmt.Sprintf("%s %s", marker, f.Message))
		if f.Penalty > 0 {
			sb.WriteString(fmt.Sprintf(" (-%d)", f.Penalty))
		}
		if i < len(result.Findings)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("RESUME QUALITY", sb.String())
}

// PrintCandidates outputs the top of a ranked screening batch and its summary.
func (p *Printer) PrintCandidates(records []types.CandidateRecord, summary types.ScreeningSummary) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Screened %d candidates for %d vacancies\n", summary.Total, summary.Vacancies))
	sb.WriteString(fmt.Sprintf("Select %d · Review %d · Reject %d · avg %.1f%%\n",
		summary.Selected, summary.Review, summary.Rejected, summary.AverageScore))

	count := min(len(records), maxItemsToShow)
	for i, rec := range records[:count] {
		sb.WriteString("\n")
		promoted := ""
		if rec.Promoted {
			promoted = " ↑"
		}
		sb.WriteString(fmt.Sprintf("#%d  %s  %d%%  %s%s\n", i+1, rec.Filename, rec.Score, rec.Recommendation, promoted))
		sb.WriteString(fmt.Sprintf("    %s", rec.Justification))
	}
	if len(records) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n\n... and %d more candidates", len(records)-maxItemsToShow))
	}

	p.printBox("RANKED CANDIDATES", sb.String())
}

// PrintSkipped outputs archive entries that produced no document.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintSkipped(skipped []ingestion.SkippedFile) {
	if len(skipped) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "✅ ALL FILES INGESTED")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Skipped %d files:\n\n", len(skipped)))
	for i, s := range skipped {
		sb.WriteString(fmt.Sprintf("⚠ %s\n", s.Name))
		sb.WriteString(fmt.Sprintf("  %s", s.Reason))
		if s.Err != nil {
			sb.WriteString(": " + s.Err.Error())
		}
		if i < len(skipped)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("SKIPPED FILES", sb.String())
}
