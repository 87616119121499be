package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/johnthesmith/cicd/internal/model"
	"github.com/johnthesmith/cicd/internal/tui/components"
)

// View renders the current state of the model.
func (m Model) View() string {
	var sections []string

	title := titleStyle.Render(fmt.Sprintf("cicd • %s", m.title()))
	if m.mode != "" {
		title = lipgloss.JoinHorizontal(lipgloss.Left, title, " ", modeStyle.Render("["+string(m.mode)+"]"))
	}
	sections = append(sections, title)

	summary := model.Summarize(m.steps)
	progress := components.NewProgress(len(m.steps)).View(components.Counts{
		Done:    m.completed,
		Skipped: summary.Skipped,
		Failed:  summary.Failed > 0 || m.failure != "",
	})
	sections = append(sections, sectionStyle.Render("Progress"), progress)

	entries := components.NewStepList(m.labels, m.steps).Entries()
	if len(entries) > 0 {
		sections = append(sections, sectionStyle.Render("Steps"))
		sections = append(sections, renderStepEntries(entries))
	}

	text := components.NewSummary(components.SummaryData{
		Total:     len(m.steps),
		Completed: m.completed,
		Skipped:   summary.Skipped,
		Finished:  m.finished,
		Cancelled: m.cancelled,
		Failure:   m.failure,
	}).View()
	if strings.TrimSpace(text) != "" {
		sections = append(sections, sectionStyle.Render("Summary"), summaryStyle.Render(text))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func renderStepEntries(entries []components.StepEntry) string {
	lines := make([]string, 0, len(entries))
	for _, entry := range entries {
		res := entry.Result
		line := fmt.Sprintf(" %s %2d %s", StatusIcon(res.Status), res.Index, entry.Label)
		if res.Status == model.StatusFailed && res.Code != "" {
			line = fmt.Sprintf("%s %s", line, failureStyle.Render(string(res.Code)))
		}
		if res.Duration > 0 {
			line = fmt.Sprintf("%s (%s)", line, res.Duration.Truncate(10*time.Millisecond))
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (m Model) title() string {
	if strings.TrimSpace(m.name) != "" {
		return m.name
	}
	return "pipeline"
}

// StatusIcon returns the glyph representing a step status.
func StatusIcon(status string) string {
	switch status {
	case model.StatusSuccess:
		return successStyle.Render("✓")
	case model.StatusRunning:
		return runningStyle.Render("⏳")
	case model.StatusFailed:
		return failureStyle.Render("✗")
	case model.StatusSkipped:
		return skippedStyle.Render("⊘")
	default:
		return pendingStyle.Render("…")
	}
}
