package probe

import (
	"fmt"
	"strings"
)

// ErrorKind classifies why help text could not be captured
type ErrorKind string

const (
	KindNonZeroExit ErrorKind = "non_zero_exit"
	KindTimeout     ErrorKind = "timeout"
	KindEmptyOutput ErrorKind = "empty_output"
	KindNotFound    ErrorKind = "not_found"
	KindCancelled   ErrorKind = "cancelled"
)

// Sentinel errors for errors.Is; they match any *Error of the same kind
var (
	ErrNonZeroExit = &Error{Kind: KindNonZeroExit}
	ErrTimeout     = &Error{Kind: KindTimeout}
	ErrEmptyOutput = &Error{Kind: KindEmptyOutput}
	ErrNotFound    = &Error{Kind: KindNotFound}
	ErrCancelled   = &Error{Kind: KindCancelled}
)

// Error is a failed help capture for one command path
type Error struct {
	Kind     ErrorKind
	Path     []string
	Flag     string // Help flag of the last attempt
	ExitCode int    // For KindNonZeroExit
	Err      error  // Underlying cause, if any
}

// NewError creates a probe error
func NewError(kind ErrorKind, path []string, cause error) *Error {
	return &Error{Kind: kind, Path: append([]string(nil), path...), Err: cause}
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("probe")
	if len(e.Path) > 0 {
		fmt.Fprintf(&b, " %q", strings.Join(e.Path, " "))
	}
	if e.Flag != "" {
		fmt.Fprintf(&b, " %s", e.Flag)
	}
	fmt.Fprintf(&b, ": %s", e.Kind)
	if e.Kind == KindNonZeroExit {
		fmt.Fprintf(&b, " (exit %d)", e.ExitCode)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error by kind
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}
