package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/thiagokokada/pushguard/internal/config"
	"github.com/thiagokokada/pushguard/internal/git"
	"github.com/thiagokokada/pushguard/internal/hook"
)

// errRejected is returned after the rejection has been reported to the pusher.
var errRejected = errors.New("rejected")

func Run() error {
	return run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr, os.LookupEnv)
}

// app carries what every subcommand shares.
type app struct {
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
	env     hook.Env
	v       *viper.Viper
	level   *slog.LevelVar
	cfgFile string
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer, lookupEnv func(string) (string, bool)) error {
	a := &app{
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		env:    hook.EnvFromLookup(lookupEnv),
		v:      config.New(),
		level:  new(slog.LevelVar),
	}
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(context.Background())
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "pushguard",
		Short:         "Validate commit message headers in git hooks",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if a.v.GetBool("verbose") {
				a.level.Set(slog.LevelDebug)
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: a.level})))
		},
	}
	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default: git config "+config.GitConfigKey+", then pushguard.yaml)")
	flags.Bool("verbose", false, "enable verbose logging")
	flags.String("backend", git.BackendGitCLI, "object access backend: gitcli or native")
	flags.String("mode", config.ModeCreated, "commits to check on update: created or added")
	for _, name := range []string{"verbose", "backend", "mode"} {
		// Lookup cannot fail for flags defined above.
		_ = a.v.BindPFlag(name, flags.Lookup(name))
	}

	root.AddCommand(
		a.updateCmd(),
		a.preReceiveCmd(),
		a.checkMsgCmd(),
		a.auditCmd(),
		a.versionCmd(),
	)
	return root
}

// loadConfig resolves the config file: --config, then the repository's
// pushguard.config setting, then pushguard.yaml in the git dir or the
// working directory.
func (a *app) loadConfig() (*config.Config, error) {
	cfgFile := a.cfgFile
	if cfgFile == "" {
		cfgFile = a.gitConfigPath()
	}
	cfg, err := config.Load(a.v, cfgFile, a.env.GitDir, ".")
	if err != nil {
		return nil, err
	}
	if cfg.Verbose {
		a.level.Set(slog.LevelDebug)
	}
	return cfg, nil
}

func (a *app) gitConfigPath() string {
	insp, err := git.OpenCLI(a.env.GitDir)
	if err != nil {
		slog.Debug("no repository for config lookup", slog.Any("error", err))
		return ""
	}
	path, ok, err := insp.Config(config.GitConfigKey)
	if err != nil {
		slog.Warn("read git config", slog.String("key", config.GitConfigKey), slog.Any("error", err))
		return ""
	}
	if !ok {
		return ""
	}
	return path
}

// report prints a validation failure for the user and swaps it for
// errRejected so it is not printed twice.
func (a *app) report(err error) error {
	if rerr := hook.Report(a.stderr, err); rerr != nil {
		return fmt.Errorf("report: %w (while reporting %v)", rerr, err)
	}
	return errRejected
}
