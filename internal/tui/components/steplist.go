package components

import (
	"github.com/johnthesmith/cicd/internal/model"
)

// StepEntry is one rendered step.
type StepEntry struct {
	Label  string
	Result model.StepResult
}

// StepList renders steps in pipeline order.
type StepList struct {
	entries []StepEntry
}

// NewStepList pairs labels with results by position. Missing labels fall
// back to the operation name.
func NewStepList(labels []string, steps []model.StepResult) StepList {
	entries := make([]StepEntry, 0, len(steps))
	for i, res := range steps {
		label := res.Op
		if i < len(labels) && labels[i] != "" {
			label = labels[i]
		}
		entries = append(entries, StepEntry{Label: label, Result: res})
	}
	return StepList{entries: entries}
}

// Entries returns the ordered step entries.
func (s StepList) Entries() []StepEntry {
	clone := make([]StepEntry, len(s.entries))
	copy(clone, s.entries)
	return clone
}
