package components

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

var (
	countStyle   = lipgloss.NewStyle().Bold(true)
	skippedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	failedBar    = []progress.Option{progress.WithSolidFill("196"), progress.WithoutPercentage()}
	runningBar   = []progress.Option{progress.WithGradient("#5A56E0", "#42D392"), progress.WithoutPercentage()}
)

// Progress shows how many pipeline steps reached a final state.
type Progress struct {
	steps int
}

// NewProgress creates a progress line for a pipeline of steps steps.
func NewProgress(steps int) Progress {
	return Progress{steps: steps}
}

// Counts is the run state rendered by Progress.
type Counts struct {
	Done    int
	Skipped int
	Failed  bool
}

// View renders "done/steps", the bar and the skipped count. The bar turns
// red once the run has failed.
func (p Progress) View(c Counts) string {
	opts := runningBar
	if c.Failed {
		opts = failedBar
	}
	bar := progress.New(opts...)
	bar.Width = 30

	ratio := 0.0
	if p.steps > 0 {
		ratio = min(1.0, float64(c.Done)/float64(p.steps))
	}

	parts := []string{
		countStyle.Render(fmt.Sprintf("%d/%d steps", c.Done, p.steps)),
		" ",
		bar.ViewAs(ratio),
	}
	if c.Skipped > 0 {
		parts = append(parts, " ", skippedStyle.Render(fmt.Sprintf("%d skipped", c.Skipped)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Left, parts...)
}
