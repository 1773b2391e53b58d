// Package cli implements reviewctl, a command line front end for the access
// review API.
package cli

import (
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"access_review/internal/client"
)

type app struct {
	apiURL  string
	token   string
	timeout time.Duration
	stdout  io.Writer
	stderr  io.Writer
}

func (a *app) client() *client.Client {
	opts := []client.Option{}
	if a.token != "" {
		opts = append(opts, client.WithToken(a.token))
	}
	return client.New(a.apiURL, opts...)
}

func (a *app) table() *tabwriter.Writer {
	return tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
}

func NewRootCommand() *cobra.Command {
	return NewRootCommandWithIO(os.Stdout, os.Stderr)
}

func NewRootCommandWithIO(out, errOut io.Writer) *cobra.Command {
	a := &app{stdout: out, stderr: errOut}

	defaultURL := os.Getenv("REVIEW_API_URL")
	if defaultURL == "" {
		defaultURL = client.DefaultBaseURL
	}

	cmd := &cobra.Command{
		Use:           "reviewctl",
		Short:         "Manage access records and reviews from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	cmd.PersistentFlags().StringVar(&a.apiURL, "api", defaultURL, "access review API base URL (env REVIEW_API_URL)")
	cmd.PersistentFlags().StringVar(&a.token, "token", os.Getenv("REVIEW_API_TOKEN"), "bearer token (env REVIEW_API_TOKEN)")
	cmd.PersistentFlags().DurationVar(&a.timeout, "timeout", 15*time.Second, "request timeout")

	cmd.AddCommand(
		newUsersCmd(a),
		newAppsCmd(a),
		newRolesCmd(a),
		newRecordsCmd(a),
		newLoginCmd(a),
	)
	return cmd
}
