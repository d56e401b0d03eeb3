package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spendtrack/spendtrack-go/internal/client"
	"github.com/spendtrack/spendtrack-go/internal/session"
	"github.com/spf13/cobra"
)

const defaultServer = "http://localhost:8080"

var errNotLoggedIn = errors.New("not logged in; run `expensectl login` first")

func main() {
	root := newRootCmd(os.Stdin, os.Stdout, os.Stderr, nil)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// cli carries what every subcommand needs. It is filled in by the root
// command's PersistentPreRunE once flags are parsed.
type cli struct {
	in        *bufio.Reader
	stdin     io.Reader
	out       io.Writer
	store     session.TokenStore
	sess      *session.Machine
	api       *client.Client
	server    string
	tokenFile string
}

// newRootCmd builds the command tree. A nil store means the token file under
// the user's config directory (or --token-file).
func newRootCmd(stdin io.Reader, stdout, stderr io.Writer, store session.TokenStore) *cobra.Command {
	c := &cli{stdin: stdin, in: bufio.NewReader(stdin), out: stdout, store: store}

	root := &cobra.Command{
		Use:          "expensectl",
		Short:        "Track personal expenses from the command line",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup()
		},
	}
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVar(&c.server, "server", envOr("SPENDTRACK_URL", defaultServer), "API base URL")
	root.PersistentFlags().StringVar(&c.tokenFile, "token-file", "", "Where to keep the session token (default: user config dir)")

	root.AddCommand(
		c.registerCmd(),
		c.loginCmd(),
		c.logoutCmd(),
		c.whoamiCmd(),
		c.listCmd(),
		c.addCmd(),
		c.deleteCmd(),
		c.summaryCmd(),
	)
	return root
}

func (c *cli) setup() error {
	if c.store == nil {
		if c.tokenFile != "" {
			c.store = session.NewFileStore(c.tokenFile)
		} else {
			fs, err := session.DefaultFileStore()
			if err != nil {
				return err
			}
			c.store = fs
		}
	}

	c.sess = session.NewMachine(c.store)
	c.api = client.New(c.server, c.sess)

	if _, err := c.sess.Rehydrate(); err != nil {
		return err
	}
	return nil
}

// authenticate finishes rehydration by asking the server who the stored
// token belongs to. A rejected token is discarded.
func (c *cli) authenticate(ctx context.Context) error {
	switch c.sess.State() {
	case session.Authenticated:
		return nil
	case session.Unauthenticated:
		return errNotLoggedIn
	}

	user, err := c.api.Me(ctx)
	if err != nil {
		if client.IsUnauthorized(err) {
			if lerr := c.sess.LoadFailed(); lerr != nil {
				return lerr
			}
			return fmt.Errorf("session expired; run `expensectl login` again")
		}
		return err
	}
	return c.sess.UserLoaded(user)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
