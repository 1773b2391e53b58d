package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newAppsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "apps", Short: "Registered applications"}
	cmd.AddCommand(&cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List applications",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), a.timeout)
			defer cancel()

			apps, err := a.client().GetApplications(ctx)
			if err != nil {
				return err
			}
			tw := a.table()
			fmt.Fprintln(tw, "NAME\tOWNER\tUSERS\tSTATUS")
			for _, app := range apps {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", app.Name, app.Owner, app.UserCount, app.Status)
			}
			return tw.Flush()
		},
	})
	return cmd
}

func newRolesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "roles", Short: "Access roles"}
	cmd.AddCommand(&cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List roles",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), a.timeout)
			defer cancel()

			roles, err := a.client().GetRoles(ctx)
			if err != nil {
				return err
			}
			for _, r := range roles {
				fmt.Fprintln(a.stdout, r.Name)
			}
			return nil
		},
	})
	return cmd
}

func newLoginCmd(a *app) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Print a bearer token for the given system user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), a.timeout)
			defer cancel()

			tok, err := a.client().Login(ctx, email, password)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.stdout, tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "system user email")
	cmd.Flags().StringVar(&password, "password", "", "password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
