package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/programme-lv/contest/timeline"
)

var (
	labelStyle     = lipgloss.NewStyle()
	valueStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#3498db"))
	completedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7f8c8d"))
	currentStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#2ecc71")).Bold(true)
	upcomingStyle  = lipgloss.NewStyle()
	closedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#e74c3c"))
)

const dateLayout = "2006-01-02 15:04"

func renderIntervals(p timeline.Phase) string {
	lines := make([]string, len(p.Intervals))
	for i, iv := range p.Intervals {
		marker, style := " ", upcomingStyle
		switch iv.Status {
		case timeline.StatusCompleted:
			marker, style = "✓", completedStyle
		case timeline.StatusCurrent:
			marker, style = "▶", currentStyle
		}
		kind := ""
		if iv.AcceptsSubmissions {
			kind = " [submissions]"
		}
		lines[i] = style.Render(fmt.Sprintf("\t%s %d. %-20s %s → %s%s",
			marker, iv.ID, iv.Title,
			iv.Start.Format(dateLayout), iv.End.Format(dateLayout), kind))
	}
	return strings.Join(lines, "\n")
}

func renderStatus(p timeline.Phase) string {
	submissions := closedStyle.Render("closed")
	if p.SubmissionsOpen {
		submissions = valueStyle.Render(fmt.Sprintf("open (interval %d)", p.SubmissionID))
	}

	deadline := valueStyle.Render("none, the competition has concluded")
	if d := p.NextDeadline; d != nil {
		deadline = fmt.Sprintf("%s %s %s (in %s)",
			valueStyle.Render(d.Title), d.Kind,
			valueStyle.Render(d.At.Format(dateLayout+" MST")),
			formatRemaining(d.At.Sub(p.Now)))
	}

	lines := []string{
		fmt.Sprintf("%s %s", labelStyle.Render("Week:"), valueStyle.Render(p.WeekLabel)),
		fmt.Sprintf("%s %s", labelStyle.Render("Submissions:"), submissions),
		fmt.Sprintf("%s %s", labelStyle.Render("Next deadline:"), deadline),
	}
	return strings.Join(lines, "\n")
}

func renderPhase(tl timeline.Timeline, p timeline.Phase) string {
	header := fmt.Sprintf("%s %s %s",
		labelStyle.Render("Competition"), valueStyle.Render(tl.CompetitionID()),
		labelStyle.Render("at "+p.Now.Format(dateLayout+" MST")))
	progress := fmt.Sprintf("%s %s",
		labelStyle.Render("Progress:"), valueStyle.Render(fmt.Sprintf("%.2f%%", p.ProgressPercent)))

	return strings.Join([]string{header, renderIntervals(p), progress, renderStatus(p)}, "\n")
}

// formatRemaining renders d as "4d 12h 3m", seconds only below a minute.
func formatRemaining(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	days := int(d / (24 * time.Hour))
	d -= time.Duration(days) * 24 * time.Hour
	hours := int(d / time.Hour)
	d -= time.Duration(hours) * time.Hour
	minutes := int(d / time.Minute)

	parts := []string{}
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if days > 0 || hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	parts = append(parts, fmt.Sprintf("%dm", minutes))
	return strings.Join(parts, " ")
}
