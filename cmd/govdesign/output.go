package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/MikeSquared-Agency/GovDesign/internal/scoring"
)

type tableStyles struct {
	title lipgloss.Style
	head  lipgloss.Style
	up    lipgloss.Style
	down  lipgloss.Style
	dim   lipgloss.Style
}

func newTableStyles() tableStyles {
	return tableStyles{
		title: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		head:  lipgloss.NewStyle().Bold(true),
		up:    lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		down:  lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		dim:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// renderScoreTable prints one row per objective. Per-factor results show
// relative importance; aggregated scopes show the summed score instead.
func renderScoreTable(w io.Writer, title string, results []scoring.ScoreResult, aggregate bool) {
	s := newTableStyles()
	fmt.Fprintln(w, s.title.Render(title))

	last := "Importance"
	if aggregate {
		last = "Capability"
	}
	header := fmt.Sprintf("%-4s %-7s %-52s %10s %10s %10s", "#", "ID", "Objective", "Score", "Baseline", last)
	fmt.Fprintln(w, s.head.Render(header))
	fmt.Fprintln(w, s.dim.Render(strings.Repeat("─", len(header))))

	for i, r := range results {
		name := r.ObjectiveName
		if len(name) > 52 {
			name = name[:49] + "..."
		}
		var tail string
		if aggregate {
			tail = fmt.Sprintf("%10d", r.CapabilityLevel)
		} else {
			tail = importanceStyle(s, r.RelativeImportance).Render(fmt.Sprintf("%+10.0f", r.RelativeImportance))
		}
		fmt.Fprintf(w, "%-4d %-7s %-52s %10.2f %10.2f %s\n", i+1, r.ObjectiveID, name, r.FinalScore, r.BaselineScore, tail)
	}
}

func importanceStyle(s tableStyles, ri float64) lipgloss.Style {
	switch {
	case ri >= 25:
		return s.up
	case ri <= -25:
		return s.down
	default:
		return lipgloss.NewStyle()
	}
}
