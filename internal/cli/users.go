package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"access_review/internal/client"
)

func newUsersCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Application users on the manager dashboard",
	}
	cmd.AddCommand(newUsersListCmd(a), newUsersCreateCmd(a), newUsersDeleteCmd(a))
	return cmd
}

func newUsersListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List users and their application access",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), a.timeout)
			defer cancel()

			users, err := a.client().GetAppManagerUsers(ctx)
			if err != nil {
				return err
			}
			tw := a.table()
			fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tAPPLICATION\tROLE\tSTATUS")
			for _, u := range users {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", u.ID, u.Name, u.Email, u.Application, u.Role, u.Status)
			}
			return tw.Flush()
		},
	}
}

func newUsersCreateCmd(a *app) *cobra.Command {
	var in client.NewUser
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Onboard a user onto an application",
		Example: `  reviewctl users create --name "Lena Park" --email lena@example.com \
    --business-user-id EXTA341 --application Salesforce --role Analyst`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), a.timeout)
			defer cancel()

			res, err := a.client().CreateUser(ctx, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "%s (id %s)\n", res.Message, res.ID)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&in.Name, "name", "", "full name")
	f.StringVar(&in.Email, "email", "", "email address")
	f.StringVar(&in.BusinessUserID, "business-user-id", "", "business user id, e.g. IPAMC20")
	f.StringVar(&in.Application, "application", "", "application name")
	f.StringVar(&in.Role, "role", "", "role on the application")
	f.StringVar(&in.Status, "status", "Active", "Active or Inactive")
	for _, name := range []string{"name", "email", "business-user-id", "application", "role"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func newUsersDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Remove an access row",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), a.timeout)
			defer cancel()

			if err := a.client().DeleteUser(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "deleted %s\n", args[0])
			return nil
		},
	}
}
