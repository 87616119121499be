// Package mode decides how real a pipeline run is.
package mode

import (
	"fmt"
	"strings"
)

// Mode is the execution mode of a pipeline run.
type Mode string

const (
	// Test logs every action and performs none.
	Test Mode = "test"
	// Build performs local actions only.
	Build Mode = "build"
	// Full performs local and remote actions.
	Full Mode = "full"
)

// Parse converts a case-insensitive mode name.
func Parse(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case Test:
		return Test, nil
	case Build:
		return Build, nil
	case Full:
		return Full, nil
	}
	return "", fmt.Errorf("unknown mode %q (expected test, build or full)", s)
}

// DryRun reports whether an action must be suppressed. It is the only place
// that maps a mode to real-world effect:
//
//	mode   local  remote
//	test   true   true
//	build  false  true
//	full   false  false
//
// Unknown modes are treated as Test.
func DryRun(m Mode, remote bool) bool {
	switch m {
	case Full:
		return false
	case Build:
		return remote
	default:
		return true
	}
}

// IsTest reports whether local actions are suppressed.
func (m Mode) IsTest() bool {
	return DryRun(m, false)
}

// IsFull reports whether remote actions are performed.
func (m Mode) IsFull() bool {
	return !DryRun(m, true)
}

func (m Mode) String() string {
	return string(m)
}
