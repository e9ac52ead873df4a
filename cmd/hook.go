package cmd

import (
	"context"
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/thiagokokada/pushguard/internal/audit"
	"github.com/thiagokokada/pushguard/internal/git"
	"github.com/thiagokokada/pushguard/internal/git/backend"
	"github.com/thiagokokada/pushguard/internal/hook"
)

func (a *app) updateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update <ref> <old> <new>",
		Short: "Check one ref update (git update hook)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := git.NewRefUpdate(args[1], args[2], args[0])
			if err != nil {
				return err
			}
			return a.check(cmd.Context(), []git.RefUpdate{u})
		},
	}
}

func (a *app) preReceiveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pre-receive",
		Short: "Check all ref updates read from stdin (git pre-receive hook)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			updates, err := git.ParseRefUpdates(a.stdin)
			if err != nil {
				return err
			}
			return a.check(cmd.Context(), updates)
		},
	}
}

func (a *app) check(ctx context.Context, updates []git.RefUpdate) error {
	if !a.env.ServerSide {
		slog.Debug("GIT_DIR not set; using the current directory")
	}
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	validator, err := cfg.Validator()
	if err != nil {
		return err
	}
	insp, err := git.OpenInspector(cfg.Backend, a.env.GitDir)
	if err != nil {
		return err
	}
	runner := &backend.Runner{Dir: a.env.GitDir}
	if cli, ok := insp.(*git.CLIInspector); ok {
		runner = cli.Runner()
	} else if err := backend.EnsureGitVersion(runner); err != nil {
		return err
	}

	var recorder hook.Recorder = audit.Nop{}
	if cfg.Audit.Path != "" {
		store, err := audit.Open(cfg.Audit.Path)
		if err != nil {
			return err
		}
		defer func() {
			if err := store.Close(); err != nil {
				slog.Warn("close audit database", slog.Any("error", err))
			}
		}()
		recorder = store
	}
	identity, err := audit.CurrentIdentity()
	if err != nil {
		slog.Warn("identity lookup failed", slog.Any("error", err))
	}

	checker := &hook.Checker{
		Inspector:  insp,
		Enumerator: git.NewEnumerator(runner),
		Validator:  validator,
		Mode:       cfg.Mode,
		CheckTags:  cfg.CheckTags,
		Recorder:   recorder,
		Identity:   identity,
		Logger:     slog.Default().With(slog.Any("identity", identity)),
	}
	if err := checker.Check(ctx, updates); err != nil {
		var rej *hook.RejectionError
		if errors.As(err, &rej) {
			return a.report(err)
		}
		return err
	}
	return nil
}
