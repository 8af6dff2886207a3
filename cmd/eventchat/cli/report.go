// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/bureau-foundation/eventchat/lib/eventsync"
)

// Report colors, ANSI 256-color codes.
const (
	colorSucceeded = lipgloss.Color("35")
	colorFailed    = lipgloss.Color("196")
	colorSkipped   = lipgloss.Color("244")
	colorHeader    = lipgloss.Color("75")
)

type reportStyles struct {
	header    lipgloss.Style
	succeeded lipgloss.Style
	failed    lipgloss.Style
	skipped   lipgloss.Style
}

// newReportStyles binds the styles to a renderer for w. Unstyled output
// uses the ASCII profile, which drops every escape sequence.
func newReportStyles(w io.Writer, styled bool) reportStyles {
	profile := termenv.Ascii
	if styled {
		profile = termenv.ANSI256
	}
	// NewRenderer re-detects the profile from w unless it is also set
	// explicitly.
	renderer := lipgloss.NewRenderer(w, termenv.WithProfile(profile))
	renderer.SetColorProfile(profile)

	return reportStyles{
		header:    renderer.NewStyle().Bold(true).Foreground(colorHeader),
		succeeded: renderer.NewStyle().Foreground(colorSucceeded),
		failed:    renderer.NewStyle().Bold(true).Foreground(colorFailed),
		skipped:   renderer.NewStyle().Foreground(colorSkipped),
	}
}

// StdoutIsTerminal reports whether stdout is a terminal, i.e. whether
// report output should be styled.
func StdoutIsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// RenderReport writes a human-readable summary of report to w: a header
// line with counts, then one line per event.
func RenderReport(w io.Writer, report *eventsync.Report, styled bool) {
	styles := newReportStyles(w, styled)

	failed := len(report.Failed())
	counts := []string{fmt.Sprintf("%d events", len(report.Outcomes))}
	switch report.Kind {
	case eventsync.KindCleanup:
		counts = append(counts, fmt.Sprintf("%d deleted", report.Count(func(o eventsync.Outcome) bool { return o.Deleted })))
	default:
		counts = append(counts,
			fmt.Sprintf("%d created", report.Count(func(o eventsync.Outcome) bool { return o.Created })),
			fmt.Sprintf("%d skipped", report.Count(func(o eventsync.Outcome) bool { return o.Skipped })),
		)
	}
	counts = append(counts, fmt.Sprintf("%d failed", failed))

	fmt.Fprintf(w, "%s %s\n",
		styles.header.Render(fmt.Sprintf("%s %s:", report.Kind, report.RunID)),
		strings.Join(counts, ", "))

	for _, outcome := range report.Outcomes {
		marker, detail := describeOutcome(styles, report.Kind, outcome)
		label := outcome.GroupName
		if label == "" {
			label = outcome.EventName
		}
		fmt.Fprintf(w, "  %s %d %s  %s\n", marker, outcome.EventID, label, detail)
	}
}

func describeOutcome(styles reportStyles, kind string, outcome eventsync.Outcome) (marker, detail string) {
	if outcome.Err != nil {
		return styles.failed.Render("✗"), styles.failed.Render(outcome.Err.Error())
	}
	if outcome.Skipped {
		return styles.skipped.Render("-"), styles.skipped.Render("skipped, not relevant")
	}

	var parts []string
	switch kind {
	case eventsync.KindCleanup:
		if outcome.Deleted {
			parts = append(parts, fmt.Sprintf("deleted group %d", outcome.GroupID))
		} else {
			parts = append(parts, "no group")
		}
	default:
		if outcome.Created {
			parts = append(parts, fmt.Sprintf("created group %d", outcome.GroupID))
		} else {
			parts = append(parts, fmt.Sprintf("group %d", outcome.GroupID))
		}
		parts = append(parts, fmt.Sprintf("%d added", outcome.Added))
		if outcome.Missing > 0 {
			parts = append(parts, fmt.Sprintf("%d missing", outcome.Missing))
		}
	}
	return styles.succeeded.Render("✓"), strings.Join(parts, ", ")
}
