package cmd

import (
	"errors"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/thiagokokada/pushguard/internal/header"
	"github.com/thiagokokada/pushguard/internal/hook"
)

func (a *app) checkMsgCmd() *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "check-msg <file>",
		Short: "Check a commit message file (git commit-msg hook)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			validator, err := cfg.Validator()
			if err != nil {
				return err
			}
			if watch {
				ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
				defer stop()
				return hook.Watch(ctx, args[0], validator, a.stdout)
			}
			if _, err := hook.CheckMessage(args[0], validator); err != nil {
				var herr header.HeaderError
				if errors.As(err, &herr) {
					return a.report(err)
				}
				return err
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", false, "re-check the file every time it changes")
	return cmd
}
