package backend

import (
	"fmt"
	"strings"
)

// ExecutionError reports a single external program that could not run, exited
// non-zero, or printed an unexpected number of lines.
type ExecutionError struct {
	Argv     []string
	ExitCode int // -1 when the program never ran
	Stderr   string
	Err      error
}

func (e *ExecutionError) Error() string {
	cmd := strings.Join(e.Argv, " ")
	if e.Stderr != "" {
		return fmt.Sprintf("%s: %v: %s", cmd, e.Err, e.Stderr)
	}
	return fmt.Sprintf("%s: %v", cmd, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// PipelineError names the first non-tolerated stage that exited non-zero.
type PipelineError struct {
	Stage    int
	Argv     []string
	ExitCode int // -1 when the stage never started
	Stderr   string
	Err      error
}

func (e *PipelineError) Error() string {
	msg := fmt.Sprintf("pipeline stage %d (%s) exited with status %d", e.Stage, strings.Join(e.Argv, " "), e.ExitCode)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}
