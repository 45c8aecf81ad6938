package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/outreach/internal/client/api"
	"github.com/dmitrijs2005/outreach/internal/common"
	"github.com/spf13/cobra"
)

func (a *App) registerCmd() *cobra.Command {
	var email, name string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.promptIfEmpty(&email, "Email"); err != nil {
				return err
			}
			if err := a.promptIfEmpty(&name, "Name"); err != nil {
				return err
			}
			pw, err := GetPassword(a.in, a.out)
			if err != nil {
				return fmt.Errorf("read password: %w", err)
			}
			defer common.WipeByteArray(pw)

			c, err := a.client()
			if err != nil {
				return err
			}
			u, err := c.Register(cmd.Context(), email, string(pw), name)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Registered %s (id %d). Run 'authctl login' to sign in.\n", u.Email, u.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&name, "name", "n", "", "display name")
	return cmd
}

func (a *App) loginCmd() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and keep the session cookie",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.promptIfEmpty(&email, "Email"); err != nil {
				return err
			}
			pw, err := GetPassword(a.in, a.out)
			if err != nil {
				return fmt.Errorf("read password: %w", err)
			}
			defer common.WipeByteArray(pw)

			c, err := a.client()
			if err != nil {
				return err
			}
			resp, err := c.Login(cmd.Context(), email, string(pw))
			if err != nil {
				return err
			}
			if err := a.persist(c); err != nil {
				return fmt.Errorf("save session: %w", err)
			}
			fmt.Fprintf(a.out, "Logged in as %s", resp.User.Email)
			if resp.Expires != nil {
				fmt.Fprintf(a.out, ", session expires %s", resp.Expires.Local().Format(time.RFC1123))
			}
			fmt.Fprintln(a.out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	return cmd
}

func (a *App) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			resp, err := c.Session(cmd.Context())
			if errors.Is(err, api.ErrUnauthenticated) {
				_ = a.persist(c)
				return errors.New("not logged in")
			}
			if err != nil {
				return err
			}
			// The server may have renewed the session.
			if err := a.persist(c); err != nil {
				return fmt.Errorf("save session: %w", err)
			}
			fmt.Fprintf(a.out, "%s <%s> (id %d)\n", resp.User.Name, resp.User.Email, resp.User.ID)
			if resp.Expires != nil {
				fmt.Fprintf(a.out, "Session expires %s\n", resp.Expires.Local().Format(time.RFC1123))
			}
			return nil
		},
	}
}

func (a *App) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			if err := c.Logout(cmd.Context()); err != nil {
				return err
			}
			if err := a.persist(c); err != nil {
				return fmt.Errorf("remove session: %w", err)
			}
			fmt.Fprintln(a.out, "Logged out")
			return nil
		},
	}
}
