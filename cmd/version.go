package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thiagokokada/pushguard/internal/buildinfo"
	"github.com/thiagokokada/pushguard/internal/git/backend"
)

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(a.stdout, "pushguard %s (requires git >= %s)\n", buildinfo.Describe(), backend.MinGitVersion())
			// A missing or old git is reported, not fatal: version must always print.
			if err := backend.EnsureGitVersion(&backend.Runner{}); err != nil {
				fmt.Fprintf(a.stdout, "git: %v\n", err)
				return
			}
			fmt.Fprintln(a.stdout, backend.GitVersion())
		},
	}
}
