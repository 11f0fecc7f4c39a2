package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// FileNotFound indicates a target path does not exist
	FileNotFound ErrorCode = "FILE_NOT_FOUND"
	// ReadFailed indicates a target could not be read
	ReadFailed ErrorCode = "READ_FAILED"
	// WriteFailed indicates a sorted file could not be written back
	WriteFailed ErrorCode = "WRITE_FAILED"
	// ConfigInvalid indicates toml-sort.toml or a flag is invalid
	ConfigInvalid ErrorCode = "CONFIG_INVALID"
	// CheckFailed indicates check mode found unsorted files
	CheckFailed ErrorCode = "CHECK_FAILED"
	// VerifyFailed indicates the sorted document decodes to different data
	VerifyFailed ErrorCode = "VERIFY_FAILED"
	// CacheUnavailable indicates the sorted-file cache could not be opened
	CacheUnavailable ErrorCode = "CACHE_UNAVAILABLE"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// Process exit codes.
const (
	ExitOK          = 0
	ExitError       = 1
	ExitCheckFailed = 2
	ExitReadFailed  = 3
)

// FixActionType represents the type of fix action
type FixActionType string

const (
	// RunCommand suggests running a command
	RunCommand FixActionType = "run-command"
	// EditConfig suggests changing the configuration file
	EditConfig FixActionType = "edit-config"
)

// FixAction represents a suggested fix for an error
type FixAction struct {
	Type        FixActionType `json:"type" yaml:"type"`
	Command     string        `json:"command,omitempty" yaml:"command,omitempty"`
	Safe        bool          `json:"safe,omitempty" yaml:"safe,omitempty"`
	Description string        `json:"description,omitempty" yaml:"description,omitempty"`
}

// SortError represents a tomlsort error with code, message, and suggestions
type SortError struct {
	Code           ErrorCode   `json:"code" yaml:"code"`
	Message        string      `json:"message" yaml:"message"`
	Path           string      `json:"path,omitempty" yaml:"path,omitempty"`
	SuggestedFixes []FixAction `json:"suggestedFixes,omitempty" yaml:"suggestedFixes,omitempty"`
	cause          error       // Underlying error (not exported to JSON)
}

// New creates a SortError with the default fixes for its code
func New(code ErrorCode, message string, cause error) *SortError {
	return &SortError{
		Code:           code,
		Message:        message,
		SuggestedFixes: GetSuggestedFixes(code),
		cause:          cause,
	}
}

// Error implements the error interface
func (e *SortError) Error() string {
	msg := e.Message
	if e.Path != "" {
		msg = e.Path + ": " + msg
	}
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, msg, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, msg)
}

// Unwrap returns the underlying error
func (e *SortError) Unwrap() error {
	return e.cause
}

// WithPath attaches the file the error is about
func (e *SortError) WithPath(path string) *SortError {
	e.Path = path
	return e
}

// ErrorActions maps error codes to suggested fix actions
var ErrorActions = map[ErrorCode][]FixAction{
	CheckFailed: {
		{
			Type:        RunCommand,
			Command:     "tomlsort ${paths}",
			Safe:        true,
			Description: "Sort the reported files in place",
		},
		{
			Type:        RunCommand,
			Command:     "tomlsort --check --diff ${paths}",
			Safe:        true,
			Description: "Show what would change",
		},
	},
	ConfigInvalid: {
		{
			Type:        RunCommand,
			Command:     "tomlsort config",
			Safe:        true,
			Description: "Print the effective configuration",
		},
		{
			Type:        EditConfig,
			Description: "Fix the reported field in toml-sort.toml",
		},
	},
	VerifyFailed: {
		{
			Type:        RunCommand,
			Command:     "tomlsort --stdout ${path}",
			Safe:        true,
			Description: "Inspect the sorted output",
		},
	},
	CacheUnavailable: {
		{
			Type:        RunCommand,
			Command:     "rm -rf .tomlsort",
			Safe:        true,
			Description: "Remove the cache so it is rebuilt",
		},
	},
}

// GetSuggestedFixes returns suggested fixes for an error code
func GetSuggestedFixes(code ErrorCode) []FixAction {
	if fixes, ok := ErrorActions[code]; ok {
		return fixes
	}
	return nil
}

// CodeOf returns the code of the first SortError in err's chain, or
// InternalError when there is none.
func CodeOf(err error) ErrorCode {
	var se *SortError
	if stderrors.As(err, &se) {
		return se.Code
	}
	return InternalError
}

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	switch CodeOf(err) {
	case CheckFailed:
		return ExitCheckFailed
	case FileNotFound, ReadFailed:
		return ExitReadFailed
	default:
		return ExitError
	}
}
