package tui

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/johnthesmith/cicd/internal/model"
)

// Update handles Bubbletea messages and updates model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		return m, nil
	case StepStartMsg:
		if msg.Index < 0 || msg.Index >= len(m.steps) {
			return m, nil
		}
		m.steps[msg.Index].Status = model.StatusRunning
		return m, nil
	case StepCompleteMsg:
		i := msg.Result.Index
		if i < 0 || i >= len(m.steps) {
			return m, nil
		}
		if !final(m.steps[i].Status) {
			m.completed++
		}
		m.steps[i] = msg.Result
		if msg.Result.Status == model.StatusFailed {
			m.failure = describeFailure(msg.Result)
		}
		m.markFinishedIfComplete()
		return m, nil
	case RunDoneMsg:
		m.finished = true
		if msg.Err != nil && m.failure == "" {
			m.failure = msg.Err.Error()
		}
		if m.nonInteractive {
			return m, nil
		}
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.cancelled = true
			m.finished = true
			return m, tea.Quit
		}
	case tea.QuitMsg:
		m.finished = true
		return m, nil
	}

	return m, nil
}

func describeFailure(res model.StepResult) string {
	if len(res.Context) == 0 {
		return string(res.Code)
	}
	keys := make([]string, 0, len(res.Context))
	for k := range res.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, res.Context[k]))
	}
	return fmt.Sprintf("%s (%s)", res.Code, strings.Join(parts, ", "))
}
