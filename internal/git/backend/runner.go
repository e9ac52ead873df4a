package backend

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
)

// Runner executes external programs and collects their standard output as lines.
//
// Dir and Env are applied to every spawned process; an empty Dir means the
// current working directory and a nil Env inherits the process environment.
type Runner struct {
	Dir string
	Env []string
}

func (r *Runner) command(argv []string) *exec.Cmd {
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = r.Dir
	cmd.Env = r.Env
	return cmd
}

// Run executes argv and returns its output lines.
func (r *Runner) Run(argv []string) ([]string, error) {
	return r.RunExpect(argv, -1)
}

// RunSingle executes a single-valued query and returns its only line.
func (r *Runner) RunSingle(argv []string) (string, error) {
	lines, err := r.RunExpect(argv, 1)
	if err != nil {
		return "", err
	}
	return lines[0], nil
}

// RunExpect executes argv and fails unless it printed exactly want lines.
// A negative want accepts any number of lines.
func (r *Runner) RunExpect(argv []string, want int) ([]string, error) {
	if len(argv) == 0 {
		return nil, &ExecutionError{ExitCode: -1, Err: errors.New("empty command")}
	}
	cmd := r.command(argv)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	slog.Debug("exec", slog.String("argv", strings.Join(argv, " ")), slog.String("dir", r.Dir))
	if err := cmd.Run(); err != nil {
		return nil, &ExecutionError{
			Argv:     argv,
			ExitCode: exitCode(err),
			Stderr:   strings.TrimSpace(stderr.String()),
			Err:      err,
		}
	}
	lines, err := readLines(&stdout)
	if err != nil {
		return nil, &ExecutionError{Argv: argv, Err: fmt.Errorf("read output: %w", err)}
	}
	if want >= 0 && len(lines) != want {
		return nil, &ExecutionError{
			Argv: argv,
			Err:  fmt.Errorf("expected %d output lines, got %d", want, len(lines)),
		}
	}
	return lines, nil
}

func exitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

// readLines splits r into lines with trailing "\n" and "\r" removed. Any other
// whitespace is part of the line.
func readLines(r io.Reader) ([]string, error) {
	var lines []string
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			lines = append(lines, strings.TrimRight(line, "\r\n"))
		}
		if err == io.EOF {
			return lines, nil
		}
		if err != nil {
			return nil, err
		}
	}
}
