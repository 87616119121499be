// Package status carries the success/failure outcome of a pipeline run.
//
// A Status latches on the first failure: SetResult only records a code while
// the status is still OK, so the diagnostic context of the step that failed
// first is preserved while every later step turns into a no-op. SetCode is
// the escape hatch that overwrites the code unconditionally.
package status

import (
	"maps"
)

// Code identifies a failure kind. The empty code means success.
type Code string

// OK is the success sentinel.
const OK Code = ""

// Failure codes grouped by category.
const (
	// ConfigurationError: a required parameter is missing or invalid.
	ConfigurationError Code = "ConfigurationError"
	ParamCycle         Code = "ParamCycle"
	FobIsEmpty         Code = "FobIsEmpty"
	UnknownMode        Code = "UnknownMode"

	// PathError: an expected directory is absent or cannot be created.
	FolderNotExists             Code = "FolderNotExists"
	PathNotFoundForChangeRights Code = "PathNotFoundForChangeRights"
	DirectoryCheckError         Code = "DirectoryCheckError"

	// ShellError: non-zero exit or an expected marker missing from output.
	ShellError      Code = "ShellError"
	IDImageNotFound Code = "IDImageNotFound"

	// ReplacementError: substituted content could not be written back.
	ErrorReplaceInFile Code = "ErrorReplaceInFile"

	// VersionError: the version file could not be read or written.
	VersionError Code = "VersionError"
)

// Category returns the error family a code belongs to.
func (c Code) Category() string {
	switch c {
	case OK:
		return ""
	case ConfigurationError, ParamCycle, FobIsEmpty, UnknownMode:
		return "ConfigurationError"
	case FolderNotExists, PathNotFoundForChangeRights, DirectoryCheckError:
		return "PathError"
	case ShellError, IDImageNotFound:
		return "ShellError"
	case ErrorReplaceInFile:
		return "ReplacementError"
	case VersionError:
		return "VersionError"
	default:
		return "Custom"
	}
}

// Context holds named diagnostic values attached to a failure.
type Context map[string]any

// Result is a read-only snapshot of a Status.
type Result struct {
	Code    Code
	Context Context
}

// IsOk reports whether the snapshot is a success.
func (r Result) IsOk() bool {
	return r.Code == OK
}

// Status is the mutable outcome of one pipeline run. It is not safe for
// concurrent use.
type Status struct {
	code    Code
	context Context
}

// New returns a Status in the OK state.
func New() *Status {
	return &Status{context: Context{}}
}

// IsOk reports whether no failure has been recorded.
func (s *Status) IsOk() bool {
	return s.code == OK
}

// SetResult records code and context only while the status is OK. It
// reports whether the result was recorded.
func (s *Status) SetResult(code Code, ctx Context) bool {
	if !s.IsOk() {
		return false
	}
	s.code = code
	s.context = cloneContext(ctx)
	return true
}

// SetCode overwrites the code regardless of the current state. The context
// is kept.
func (s *Status) SetCode(code Code) {
	s.code = code
}

// Code returns the current code.
func (s *Status) Code() Code {
	return s.code
}

// Get returns a single context value.
func (s *Status) Get(key string) (any, bool) {
	v, ok := s.context[key]
	return v, ok
}

// GetResult returns a snapshot of the code and a copy of the context.
func (s *Status) GetResult() Result {
	return Result{Code: s.code, Context: cloneContext(s.context)}
}

func cloneContext(ctx Context) Context {
	if ctx == nil {
		return Context{}
	}
	return maps.Clone(ctx)
}
