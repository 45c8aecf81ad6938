// Package cli implements authctl, a command-line client for the outreach
// auth API: register, login, whoami and logout.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/outreach/internal/client/api"
	"github.com/spf13/cobra"
)

const defaultServer = "http://localhost:8080"

type App struct {
	in          *bufio.Reader
	out         io.Writer
	server      string
	sessionFile string

	loaded string
}

// NewRootCommand builds the authctl command tree reading prompts from in and
// writing to out.
func NewRootCommand(in io.Reader, out io.Writer) *cobra.Command {
	a := &App{in: bufio.NewReader(in), out: out}

	server := os.Getenv("OUTREACH_SERVER")
	if server == "" {
		server = defaultServer
	}

	root := &cobra.Command{
		Use:           "authctl",
		Short:         "Command-line client for the outreach auth API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&a.server, "server", server, "server base URL (env OUTREACH_SERVER)")
	root.PersistentFlags().StringVar(&a.sessionFile, "session-file", defaultSessionFile(), "where the session cookie is kept")

	root.AddCommand(
		a.registerCmd(),
		a.loginCmd(),
		a.whoamiCmd(),
		a.logoutCmd(),
	)
	return root
}

// client returns an API client primed with the stored session, if any.
func (a *App) client() (*api.Client, error) {
	c, err := api.New(a.server)
	if err != nil {
		return nil, err
	}
	cookie, err := loadSession(a.sessionFile, a.server)
	if err != nil {
		return nil, err
	}
	c.SetSessionCookie(cookie)
	a.loaded = cookie
	return c, nil
}

// persist stores the session cookie c currently holds if it differs from the
// one loaded, so a session of another server is left alone.
func (a *App) persist(c *api.Client) error {
	cookie := c.SessionCookie()
	if cookie == a.loaded {
		return nil
	}
	return saveSession(a.sessionFile, a.server, cookie)
}

func (a *App) promptIfEmpty(v *string, prompt string) error {
	if *v != "" {
		return nil
	}
	s, err := GetSimpleText(a.in, prompt, a.out)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	*v = s
	return nil
}
