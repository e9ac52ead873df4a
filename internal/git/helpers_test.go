package git

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"
)

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
}

func gitEnv(t *testing.T) []string {
	t.Helper()
	home := t.TempDir()
	return append(os.Environ(),
		"HOME="+home,
		"XDG_CONFIG_HOME="+home,
		"GIT_CONFIG_NOSYSTEM=1",
		"GIT_AUTHOR_NAME=Test User",
		"GIT_AUTHOR_EMAIL=test@example.com",
		"GIT_COMMITTER_NAME=Test User",
		"GIT_COMMITTER_EMAIL=test@example.com",
	)
}

// runGit runs git in dir and returns its trimmed stdout.
func runGit(t *testing.T, dir string, env []string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
	if env == nil {
		env = gitEnv(t)
	}
	cmd.Env = env
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("git %s: %v: %s", strings.Join(args, " "), err, out)
	}
	return strings.TrimSpace(string(out))
}

// commit creates an empty commit with a fixed date so ordering is stable.
func commit(t *testing.T, dir string, env []string, n int, message string) string {
	t.Helper()
	date := fmt.Sprintf("2024-01-01T00:%02d:00Z", n)
	env = append(append([]string{}, env...), "GIT_AUTHOR_DATE="+date, "GIT_COMMITTER_DATE="+date)
	runGit(t, dir, env, "commit", "--allow-empty", "--quiet", "--no-gpg-sign", "-m", message)
	return runGit(t, dir, env, "rev-parse", "HEAD")
}

// createTestRepo initializes a repository on branch main with count commits
// and returns their hashes, oldest first.
func createTestRepo(t *testing.T, count int) (string, []string, []string) {
	t.Helper()
	requireGit(t)
	dir := t.TempDir()
	env := gitEnv(t)
	runGit(t, dir, env, "init", "--quiet")
	runGit(t, dir, env, "symbolic-ref", "HEAD", "refs/heads/main")
	hashes := make([]string, 0, count)
	for i := range count {
		hashes = append(hashes, commit(t, dir, env, i, fmt.Sprintf("main %d", i+1)))
	}
	return dir, hashes, env
}
