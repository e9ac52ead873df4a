package backend

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
)

// Stage is one program in a pipeline.
//
// TolerateNonZeroExit marks line-selection stages such as grep, which exit
// non-zero when nothing matched.
type Stage struct {
	Argv                []string
	TolerateNonZeroExit bool
}

// RunPipeline connects every stage's stdout to the next stage's stdin and
// returns the lines printed by the last stage.
//
// The last stage is read to EOF before any stage is waited on, and every stage
// is waited on before the result is evaluated. The first stage (in pipeline
// order) that exited non-zero without tolerating it fails the whole pipeline.
func (r *Runner) RunPipeline(stages []Stage) ([]string, error) {
	if len(stages) == 0 {
		return nil, errors.New("pipeline has no stages")
	}
	for i, st := range stages {
		if len(st.Argv) == 0 {
			return nil, fmt.Errorf("pipeline stage %d: empty command", i)
		}
	}

	cmds := make([]*exec.Cmd, 0, len(stages))
	stderrs := make([]bytes.Buffer, len(stages))
	var prev io.ReadCloser
	for i, st := range stages {
		cmd := r.command(st.Argv)
		cmd.Stderr = &stderrs[i]
		if prev != nil {
			cmd.Stdin = prev
		}
		out, err := cmd.StdoutPipe()
		if err != nil {
			closeReader(prev)
			abort(cmds)
			return nil, &PipelineError{Stage: i, Argv: st.Argv, ExitCode: -1, Err: err}
		}
		slog.Debug("pipeline start", slog.Int("stage", i), slog.String("argv", strings.Join(st.Argv, " ")))
		if err := cmd.Start(); err != nil {
			closeReader(prev)
			abort(cmds)
			return nil, &PipelineError{Stage: i, Argv: st.Argv, ExitCode: -1, Err: err}
		}
		// Drop our copy of the upstream read end so the upstream stage gets
		// EPIPE instead of blocking when this stage stops reading early.
		closeReader(prev)
		cmds = append(cmds, cmd)
		prev = out
	}

	last := cmds[len(cmds)-1]
	lines, readErr := readLines(prev)

	var failure *PipelineError
	for i, cmd := range cmds {
		err := cmd.Wait()
		if err == nil {
			continue
		}
		code := exitCode(err)
		slog.Debug("pipeline stage exited",
			slog.Int("stage", i),
			slog.Int("status", code),
			slog.Bool("tolerated", stages[i].TolerateNonZeroExit),
		)
		if stages[i].TolerateNonZeroExit || failure != nil {
			continue
		}
		failure = &PipelineError{
			Stage:    i,
			Argv:     stages[i].Argv,
			ExitCode: code,
			Stderr:   strings.TrimSpace(stderrs[i].String()),
			Err:      err,
		}
	}
	if failure != nil {
		return nil, failure
	}
	if readErr != nil {
		return nil, fmt.Errorf("read output of %s: %w", strings.Join(last.Args, " "), readErr)
	}
	return lines, nil
}

func closeReader(r io.ReadCloser) {
	if r != nil {
		_ = r.Close()
	}
}

// abort kills stages that already started and reaps them.
func abort(started []*exec.Cmd) {
	for _, cmd := range started {
		if cmd.Process != nil {
			_ = cmd.Process.Kill()
		}
		_ = cmd.Wait()
	}
}
