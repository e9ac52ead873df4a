package cmd

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/thiagokokada/pushguard/internal/audit"
	"github.com/thiagokokada/pushguard/internal/git"
)

func (a *app) auditCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Show the most recent audit records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			if cfg.Audit.Path == "" {
				return errors.New("auditing is disabled; set audit.path")
			}
			store, err := audit.Open(cfg.Audit.Path)
			if err != nil {
				return err
			}
			defer store.Close()
			recs, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TIME\tUSER\tREF\tCOMMIT\tSTATUS\tFIELD")
			for _, r := range recs {
				commit := git.RevisionEntry{ID: r.Commit}.Short()
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
					r.CreatedAt.Local().Format(time.DateTime), r.User, r.Ref, commit, r.Status, r.Field)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of records to show")
	return cmd
}
