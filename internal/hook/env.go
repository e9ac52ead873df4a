// Package hook drives header validation from git's server-side hooks and from
// a commit message file being edited.
package hook

// Env is what the hook learns from the environment git runs it in.
type Env struct {
	// ServerSide is true when git exported GIT_DIR, as it does for
	// pre-receive and update hooks.
	ServerSide bool
	GitDir     string
}

// EnvFromLookup builds an Env from a lookup such as os.LookupEnv.
func EnvFromLookup(lookup func(string) (string, bool)) Env {
	dir, ok := lookup("GIT_DIR")
	if !ok || dir == "" {
		return Env{GitDir: "."}
	}
	return Env{ServerSide: true, GitDir: dir}
}
