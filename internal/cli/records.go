package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newRecordsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "records",
		Short: "Access records and review decisions",
	}
	cmd.AddCommand(newRecordsListCmd(a), newRecordsActCmd(a), newRecordsSummaryCmd(a))
	return cmd
}

func newRecordsListCmd(a *app) *cobra.Command {
	var stage, application, query string
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List access records",
		Example: `  reviewctl records list --stage first
  reviewctl records list --stage second --application Salesforce`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), a.timeout)
			defer cancel()

			recs, err := a.client().ListRecords(ctx, stage, application, query)
			if err != nil {
				return err
			}
			tw := a.table()
			fmt.Fprintln(tw, "ID\tUSER\tAPPLICATION\tROLE\tREVIEW\tRECOMMENDATION")
			for _, r := range recs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
					r.ID, r.UserName, r.Application, r.Role, r.ReviewStatus, r.Recommendation)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&stage, "stage", "", "first, second or completed")
	cmd.Flags().StringVar(&application, "application", "", "only records for this application")
	cmd.Flags().StringVarP(&query, "query", "q", "", "match user name, email or application")
	return cmd
}

func newRecordsActCmd(a *app) *cobra.Command {
	var comment, actor string
	cmd := &cobra.Command{
		Use:   "act ID ACTION",
		Short: "Apply Retain, Revoke, Modify, Approve or Reject to a record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), a.timeout)
			defer cancel()

			rec, err := a.client().Act(ctx, args[0], args[1], comment, actor)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "%s is now %s\n", rec.ID, rec.ReviewStatus)
			return nil
		},
	}
	cmd.Flags().StringVarP(&comment, "comment", "m", "", "review comment (required for Modify)")
	cmd.Flags().StringVar(&actor, "actor", "", "name recorded in the history")
	return cmd
}

func newRecordsSummaryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Per-application review progress",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), a.timeout)
			defer cancel()

			summary, err := a.client().Summary(ctx)
			if err != nil {
				return err
			}
			tw := a.table()
			fmt.Fprintln(tw, "APPLICATION\tTOTAL\tPENDING\tSTATUS")
			for _, s := range summary {
				fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", s.Application, s.Total, s.Pending, s.Status)
			}
			return tw.Flush()
		},
	}
}
