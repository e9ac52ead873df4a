package backend

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// Minimum git version for the commands issued by the enumerator and the CLI
// inspector ("git log --stdin", "git rev-parse --not --branches").
var minGitVersion = gitVersion{major: 2, minor: 13, patch: 0}

type gitVersion struct {
	major int
	minor int
	patch int
}

func MinGitVersion() string {
	return minGitVersion.String()
}

func (v gitVersion) String() string {
	return fmt.Sprintf("%d.%d.%d", v.major, v.minor, v.patch)
}

func (v gitVersion) less(other gitVersion) bool {
	if v.major != other.major {
		return v.major < other.major
	}
	if v.minor != other.minor {
		return v.minor < other.minor
	}
	return v.patch < other.patch
}

// parseGitVersionOutput accepts "git version 2.44.0", vendor suffixes such as
// "2.39.3 (Apple Git-146)" or "2.39.3.windows.1", and bare "2.42".
func parseGitVersionOutput(out string) (gitVersion, bool) {
	s := strings.TrimSpace(out)
	s = strings.TrimSpace(strings.TrimPrefix(s, "git version"))
	start := strings.IndexFunc(s, isDigit)
	if start < 0 {
		return gitVersion{}, false
	}
	s = s[start:]
	end := strings.IndexFunc(s, func(r rune) bool { return !isDigit(r) && r != '.' })
	if end >= 0 {
		s = s[:end]
	}
	parts := strings.Split(strings.Trim(s, "."), ".")
	if len(parts) < 2 {
		return gitVersion{}, false
	}
	var nums [3]int
	for i := 0; i < len(parts) && i < 3; i++ {
		n, err := strconv.Atoi(parts[i])
		if err != nil {
			return gitVersion{}, false
		}
		nums[i] = n
	}
	return gitVersion{major: nums[0], minor: nums[1], patch: nums[2]}, true
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func validateGitVersionOutput(out string) error {
	got, ok := parseGitVersionOutput(out)
	if !ok {
		return fmt.Errorf("unable to parse git version output: %q", strings.TrimSpace(out))
	}
	if got.less(minGitVersion) {
		return fmt.Errorf("git %s is too old; pushguard requires git >= %s", got, minGitVersion)
	}
	return nil
}

var (
	gitVersionOnce sync.Once
	gitVersionOut  string
	gitVersionErr  error
)

// EnsureGitVersion checks once per process that the git on PATH is recent
// enough.
func EnsureGitVersion(r *Runner) error {
	gitVersionOnce.Do(func() {
		out, err := r.RunSingle([]string{"git", "--version"})
		if err != nil {
			gitVersionErr = err
			return
		}
		gitVersionOut = out
		gitVersionErr = validateGitVersionOutput(out)
	})
	return gitVersionErr
}

// GitVersion returns the raw "git --version" line seen by EnsureGitVersion.
func GitVersion() string {
	return gitVersionOut
}
