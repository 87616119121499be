package model

import (
	"time"

	"github.com/johnthesmith/cicd/internal/status"
)

const (
	// StatusPending marks a step that has not started yet.
	StatusPending = "pending"
	// StatusRunning marks the step currently executing.
	StatusRunning = "running"
	// StatusSuccess marks a step that left the run status OK.
	StatusSuccess = "success"
	// StatusFailed marks the step that failed the run.
	StatusFailed = "failed"
	// StatusSkipped marks a step that was not run because an earlier one failed.
	StatusSkipped = "skipped"
)

// StepResult captures the outcome of executing a single step.
type StepResult struct {
	Index     int
	StepID    string
	Op        string
	Status    string
	Code      status.Code
	Context   status.Context
	Duration  time.Duration
	Timestamp time.Time
}

// Summary counts step results by status.
type Summary struct {
	TotalSteps int
	Succeeded  int
	Failed     int
	Skipped    int
}

// Summarize counts results.
func Summarize(results []StepResult) Summary {
	s := Summary{TotalSteps: len(results)}
	for _, r := range results {
		switch r.Status {
		case StatusSuccess:
			s.Succeeded++
		case StatusFailed:
			s.Failed++
		case StatusSkipped:
			s.Skipped++
		}
	}
	return s
}

// AllSucceeded reports whether every step succeeded.
func (s Summary) AllSucceeded() bool {
	return s.TotalSteps == s.Succeeded
}
