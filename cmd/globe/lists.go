package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sakif/scholarship-globe/internal/apiclient"
	"github.com/sakif/scholarship-globe/internal/listview"
	"github.com/sakif/scholarship-globe/internal/selection"
	"github.com/sakif/scholarship-globe/internal/session"
)

var errNoSession = errors.New("no session: pass --token or set GLOBE_TOKEN (see `globe login`)")

var (
	loginEmail    string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the scholarship API and print a session",
	Long: `Exchanges an email and password for a bearer token and prints it as
environment assignments, ready for eval:

  eval "$(globe login --email ada@example.com)"

The password is read from --password or GLOBE_PASSWORD.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if loginPassword == "" {
			loginPassword = os.Getenv("GLOBE_PASSWORD")
		}
		if loginEmail == "" || loginPassword == "" {
			return errors.New("login needs --email and --password (or GLOBE_PASSWORD)")
		}

		client := apiclient.New(cfg.Dashboard.APIBase, session.Session{}, cliLogger(),
			apiclient.WithTimeout(cfg.Dashboard.RequestTimeout),
		)
		sess, err := client.Login(cmd.Context(), loginEmail, loginPassword)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "export GLOBE_TOKEN=%q\n", sess.Token)
		fmt.Fprintf(out, "export GLOBE_NAME=%q\n", sess.Name)
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search scholarships for a country or keyword",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sel, err := selection.FromSearch(strings.Join(args, " "))
		if err != nil {
			return err
		}

		logger := cliLogger()
		list := listview.NewCountryList(newClient(logger), logger)
		view := list.Search(cmd.Context(), sel.Query)
		if err := listview.RenderText(cmd.OutOrStdout(), view); err != nil {
			return err
		}
		if view.IsError() {
			return errors.New(view.Message)
		}
		return nil
	},
}

var savedCmd = &cobra.Command{
	Use:   "saved",
	Short: "List your saved scholarships, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if token == "" {
			return errNoSession
		}

		logger := cliLogger()
		view := listview.NewSavedList(newClient(logger), logger).Load(cmd.Context())
		if err := listview.RenderText(cmd.OutOrStdout(), view); err != nil {
			return err
		}
		if view.IsError() {
			return errors.New(view.Message)
		}
		return nil
	},
}

var unsaveCmd = &cobra.Command{
	Use:   "unsave <id>",
	Short: "Remove a saved scholarship",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if token == "" {
			return errNoSession
		}
		if err := newClient(cliLogger()).DeleteSaved(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "account password (default $GLOBE_PASSWORD)")
}
