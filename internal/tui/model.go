package tui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/johnthesmith/cicd/internal/config"
	"github.com/johnthesmith/cicd/internal/mode"
	"github.com/johnthesmith/cicd/internal/model"
)

// StepStartMsg indicates a step has started executing.
type StepStartMsg struct {
	Index int
	Time  time.Time
}

// StepCompleteMsg reports that a step has finished, failed or was skipped.
type StepCompleteMsg struct {
	Result model.StepResult
}

// RunDoneMsg is sent once the engine returns.
type RunDoneMsg struct {
	Err error
}

type tickMsg struct{}

// Model contains the Bubbletea state for a pipeline run.
type Model struct {
	name           string
	mode           mode.Mode
	labels         []string
	steps          []model.StepResult
	completed      int
	finished       bool
	cancelled      bool
	failure        string
	nonInteractive bool
}

// NewModel lists every step of cfg as pending.
func NewModel(cfg *config.Config, m mode.Mode, nonInteractive bool) Model {
	out := Model{mode: m, nonInteractive: nonInteractive}
	if cfg == nil {
		return out
	}
	out.name = cfg.Name
	out.labels = make([]string, len(cfg.Steps))
	out.steps = make([]model.StepResult, len(cfg.Steps))
	for i, step := range cfg.Steps {
		out.labels[i] = stepLabel(step)
		out.steps[i] = model.StepResult{Index: i, StepID: step.ID, Op: step.Op, Status: model.StatusPending}
	}
	return out
}

// Init starts the Bubbletea program.
func (m Model) Init() tea.Cmd {
	return tea.Tick(time.Millisecond, func(time.Time) tea.Msg { return tickMsg{} })
}

// TotalSteps returns the number of steps in the pipeline.
func (m Model) TotalSteps() int {
	return len(m.steps)
}

// CompletedSteps returns the number of steps that reached a final state.
func (m Model) CompletedSteps() int {
	return m.completed
}

// IsFinished reports whether the run has ended.
func (m Model) IsFinished() bool {
	return m.finished
}

// Step returns the tracked state of step i.
func (m Model) Step(i int) (model.StepResult, bool) {
	if i < 0 || i >= len(m.steps) {
		return model.StepResult{}, false
	}
	return m.steps[i], true
}

func (m *Model) markFinishedIfComplete() {
	if len(m.steps) > 0 && m.completed >= len(m.steps) {
		m.finished = true
	}
}

func stepLabel(step config.Step) string {
	label := step.Op
	if step.ID != "" {
		label = step.ID + " (" + step.Op + ")"
	}
	if c := strings.TrimSpace(step.Comment); c != "" {
		label += ": " + c
	}
	return label
}

func final(status string) bool {
	return status == model.StatusSuccess || status == model.StatusFailed || status == model.StatusSkipped
}
