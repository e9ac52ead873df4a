package git

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	gitlib "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/pmezard/go-difflib/difflib"
)

// NativeInspector reads objects and configuration with go-git, without
// spawning git.
type NativeInspector struct {
	repo *gitlib.Repository
}

func OpenNative(repoPath string) (*NativeInspector, error) {
	abs, err := filepath.Abs(repoPath)
	if err != nil {
		return nil, err
	}
	// A hook's GIT_DIR is the git directory itself (bare or ".git"), which
	// PlainOpen takes as is; fall back to searching parents from a worktree.
	repo, err := gitlib.PlainOpen(abs)
	if errors.Is(err, gitlib.ErrRepositoryNotExists) {
		repo, err = gitlib.PlainOpenWithOptions(abs, &gitlib.PlainOpenOptions{DetectDotGit: true})
	}
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}
	return &NativeInspector{repo: repo}, nil
}

// Config looks up "section.key" or "section.subsection.key" in the repository
// config. Global and system config files are not consulted.
func (n *NativeInspector) Config(key string) (string, bool, error) {
	section, subsection, name, err := splitConfigKey(key)
	if err != nil {
		return "", false, err
	}
	cfg, err := n.repo.Config()
	if err != nil {
		return "", false, fmt.Errorf("read config: %w", err)
	}
	if !cfg.Raw.HasSection(section) {
		return "", false, nil
	}
	opts := cfg.Raw.Section(section).Options
	if subsection != "" {
		sec := cfg.Raw.Section(section)
		if !sec.HasSubsection(subsection) {
			return "", false, nil
		}
		opts = sec.Subsection(subsection).Options
	}
	if !opts.Has(name) {
		return "", false, nil
	}
	return opts.Get(name), true, nil
}

func splitConfigKey(key string) (section, subsection, name string, err error) {
	first := strings.Index(key, ".")
	last := strings.LastIndex(key, ".")
	if first <= 0 || last == len(key)-1 {
		return "", "", "", fmt.Errorf("invalid config key %q", key)
	}
	section = key[:first]
	name = key[last+1:]
	if first != last {
		subsection = key[first+1 : last]
	}
	return section, subsection, name, nil
}

func (n *NativeInspector) RevisionType(id string) (string, error) {
	hash, err := n.resolve(id)
	if err != nil {
		return "", err
	}
	obj, err := n.repo.Storer.EncodedObject(plumbing.AnyObject, hash)
	if err != nil {
		return "", fmt.Errorf("read object %s: %w", id, err)
	}
	return obj.Type().String(), nil
}

func (n *NativeInspector) MessageBody(id string) ([]string, error) {
	hash, err := n.resolve(id)
	if err != nil {
		return nil, err
	}
	commit, err := n.repo.CommitObject(hash)
	if err != nil {
		return nil, fmt.Errorf("read commit %s: %w", id, err)
	}
	message := strings.TrimRight(commit.Message, "\n")
	if message == "" {
		return nil, nil
	}
	lines := difflib.SplitLines(message)
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, "\r\n")
	}
	return lines, nil
}

func (n *NativeInspector) resolve(id string) (plumbing.Hash, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return plumbing.ZeroHash, fmt.Errorf("revision not specified")
	}
	if plumbing.IsHash(id) {
		return plumbing.NewHash(id), nil
	}
	hash, err := n.repo.ResolveRevision(plumbing.Revision(id))
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("resolve %s: %w", id, err)
	}
	return *hash, nil
}
