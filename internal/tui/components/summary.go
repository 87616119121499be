package components

import (
	"fmt"
	"strings"
)

// SummaryData aggregates counts for rendering summaries.
type SummaryData struct {
	Total     int
	Completed int
	Skipped   int
	Finished  bool
	Cancelled bool
	// Failure describes the status that stopped the run.
	Failure string
}

// Summary renders a textual execution summary.
type Summary struct {
	data SummaryData
}

// NewSummary creates a new Summary component.
func NewSummary(data SummaryData) Summary {
	return Summary{data: data}
}

// View renders the summary.
func (s Summary) View() string {
	var lines []string
	if s.data.Total > 0 {
		lines = append(lines, fmt.Sprintf("Steps: %d/%d completed", s.data.Completed, s.data.Total))
	}
	if s.data.Skipped > 0 {
		lines = append(lines, fmt.Sprintf("Skipped: %d", s.data.Skipped))
	}

	switch {
	case s.data.Cancelled:
		lines = append(lines, "Execution cancelled")
	case s.data.Failure != "":
		lines = append(lines, "Failed: "+s.data.Failure)
	case s.data.Finished && s.data.Total > 0:
		if s.data.Completed == s.data.Total {
			lines = append(lines, "Execution finished successfully")
		} else {
			lines = append(lines, "Execution finished with pending steps")
		}
	}

	return strings.Join(lines, "\n")
}
