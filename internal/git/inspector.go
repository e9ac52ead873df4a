package git

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/thiagokokada/pushguard/internal/git/backend"
)

// Inspector answers the single-object questions the hook driver asks about a
// repository.
//
// The default implementation shells out to the git executable; NativeInspector
// reads the object database with go-git instead.
type Inspector interface {
	// Config returns the value of a git config key and whether it is set.
	Config(key string) (value string, ok bool, err error)
	// RevisionType classifies an object name: commit, tree, blob or tag.
	RevisionType(id string) (string, error)
	// MessageBody returns the full commit message, one element per line.
	MessageBody(id string) ([]string, error)
}

const (
	BackendGitCLI = "gitcli"
	BackendNative = "native"
)

// OpenInspector returns the Inspector for the named backend ("" means gitcli).
func OpenInspector(kind, repoPath string) (Inspector, error) {
	switch kind {
	case "", BackendGitCLI:
		return OpenCLI(repoPath)
	case BackendNative:
		return OpenNative(repoPath)
	default:
		return nil, fmt.Errorf("unknown git backend %q (want %s or %s)", kind, BackendGitCLI, BackendNative)
	}
}

// CLIInspector runs git through the Command Runner.
type CLIInspector struct {
	runner *backend.Runner
}

func OpenCLI(repoPath string) (*CLIInspector, error) {
	abs, err := filepath.Abs(repoPath)
	if err != nil {
		return nil, err
	}
	r := &backend.Runner{Dir: abs}
	if err := backend.EnsureGitVersion(r); err != nil {
		return nil, err
	}
	if _, err := r.RunSingle([]string{"git", "rev-parse", "--git-dir"}); err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}
	return &CLIInspector{runner: r}, nil
}

// Runner exposes the runner so the enumerator shares the repository directory.
func (c *CLIInspector) Runner() *backend.Runner {
	return c.runner
}

func (c *CLIInspector) Config(key string) (string, bool, error) {
	value, err := c.runner.RunSingle([]string{"git", "config", "--get", key})
	if err != nil {
		var execErr *backend.ExecutionError
		// git config exits 1 when the key is not set.
		if errors.As(err, &execErr) && execErr.ExitCode == 1 && execErr.Stderr == "" {
			return "", false, nil
		}
		return "", false, fmt.Errorf("git config %s: %w", key, err)
	}
	return value, true, nil
}

func (c *CLIInspector) RevisionType(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("revision not specified")
	}
	return c.runner.RunSingle([]string{"git", "cat-file", "-t", id})
}

func (c *CLIInspector) MessageBody(id string) ([]string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("commit not specified")
	}
	lines, err := c.runner.Run([]string{"git", "log", "-1", "--no-color", "--format=%B", id})
	if err != nil {
		return nil, err
	}
	// %B ends with the message's own newline plus the format terminator.
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines, nil
}
