package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/credisphere/credisphere/internal/client/apiclient"
	"github.com/credisphere/credisphere/internal/client/session"
)

func login(opts *Options) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session locally",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.open(cmd)
			if err != nil {
				return err
			}
			if password == "" {
				password = os.Getenv(envPassword)
			}
			res, err := e.client.Login(cmd.Context(), email, password)
			if err != nil {
				return e.report(err, []string{"email", "password"})
			}
			if err := e.session.Login(cmd.Context(), res.Token, res.User); err != nil {
				return err
			}
			_, err = fmt.Fprintf(e.stdout, "Logged in as %s (%s)\n", res.User.Email, res.User.Role)
			return err
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Account password. Consumes $"+envPassword)
	return cmd
}

func logout(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the current token and forget the local session",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.open(cmd)
			if err != nil {
				return err
			}
			if err := e.requireSession(); err != nil {
				return err
			}
			// The local session is cleared even when the server already
			// forgot the token.
			if err := e.client.Logout(cmd.Context()); err != nil && !apiclient.IsUnauthorized(err) {
				e.logger.Warn("server logout failed", slog.Any("error", err))
			}
			if err := e.session.Logout(cmd.Context()); err != nil {
				return err
			}
			_, err = fmt.Fprintln(e.stdout, "Logged out")
			return err
		},
	}
}

func whoami(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed in account",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.open(cmd)
			if err != nil {
				return err
			}
			if err := e.requireSession(); err != nil {
				return err
			}
			user, err := e.client.Me(cmd.Context())
			if err != nil {
				return e.handle(cmd, err)
			}
			_, err = fmt.Fprintf(e.stdout, "%s <%s> role=%s active=%t\n", user.Name, user.Email, user.Role, user.Active)
			return err
		},
	}
}

func roles(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "roles",
		Short: "List roles and their permissions",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.open(cmd)
			if err != nil {
				return err
			}
			if err := e.requireSession(); err != nil {
				return err
			}
			table, err := e.client.Roles(cmd.Context())
			if err != nil {
				return e.handle(cmd, err)
			}
			names := make([]string, 0, len(table))
			for name := range table {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				if _, err := fmt.Fprintf(e.stdout, "%s: %s\n", name, strings.Join(table[name], ", ")); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func can(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:     "can <permission>",
		Short:   "Check whether the signed in role grants a permission",
		Example: "credisphere-cli can clubs.edit",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.open(cmd)
			if err != nil {
				return err
			}
			if err := e.requireSession(); err != nil {
				return err
			}
			table, err := e.client.Roles(cmd.Context())
			if err != nil {
				return e.handle(cmd, err)
			}
			if !session.Can(e.session, table, args[0]) {
				_, _ = fmt.Fprintln(e.stdout, "no")
				return errors.New("permission denied: " + args[0])
			}
			_, err = fmt.Fprintln(e.stdout, "yes")
			return err
		},
	}
}
