package models

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound             = errors.New("not found")
	ErrTimeout              = errors.New("timeout")
	ErrConnectionRefused    = errors.New("connection refused")
	ErrCommandFailed        = errors.New("command failed")
	ErrConfigParse          = errors.New("config parse error")
	ErrConfirmationDeclined = errors.New("confirmation declined")
	ErrInvalidInput         = errors.New("invalid input")
)

// CommandError an external command that exited unsuccessfully
type CommandError struct {
	Command  string
	ExitCode int
	Output   string
	Err      error
}

func (e *CommandError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("command '%s' failed (exit %d): %v", e.Command, e.ExitCode, e.Err)
	}
	return fmt.Sprintf("command '%s' failed (exit %d)", e.Command, e.ExitCode)
}

func (e *CommandError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrCommandFailed, e.Err}
	}
	return []error{ErrCommandFailed}
}
