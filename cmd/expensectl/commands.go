package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spendtrack/spendtrack-go/internal/model"
	"github.com/spendtrack/spendtrack-go/internal/prompt"
	"github.com/spendtrack/spendtrack-go/internal/session"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func (c *cli) registerCmd() *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if name == "" {
				if name, err = c.ask("Name: "); err != nil {
					return err
				}
			}
			if email == "" {
				if email, err = c.ask("Email: "); err != nil {
					return err
				}
			}
			if password == "" {
				if password, err = c.readPassword("Password: "); err != nil {
					return err
				}
			}

			if err := c.startLogin(); err != nil {
				return err
			}
			resp, err := c.api.Register(cmd.Context(), model.RegisterRequest{Name: name, Email: email, Password: password})
			if err != nil {
				c.sess.LoginFailed()
				return err
			}
			if err := c.sess.LoginSucceeded(resp); err != nil {
				return err
			}

			fmt.Fprintf(c.out, "Registered and logged in as %s <%s>\n", resp.User.Name, resp.User.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password (prompted if omitted)")
	return cmd
}

func (c *cli) loginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and remember the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if email == "" {
				if email, err = c.ask("Email: "); err != nil {
					return err
				}
			}
			if password == "" {
				if password, err = c.readPassword("Password: "); err != nil {
					return err
				}
			}

			if err := c.startLogin(); err != nil {
				return err
			}
			resp, err := c.api.Login(cmd.Context(), model.LoginRequest{Email: email, Password: password})
			if err != nil {
				c.sess.LoginFailed()
				return err
			}
			if err := c.sess.LoginSucceeded(resp); err != nil {
				return err
			}

			fmt.Fprintf(c.out, "Logged in as %s <%s>\n", resp.User.Name, resp.User.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password (prompted if omitted)")
	return cmd
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.sess.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(c.out, "Logged out")
			return nil
		},
	}
}

func (c *cli) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.authenticate(cmd.Context()); err != nil {
				return err
			}
			user, _ := c.sess.User()
			fmt.Fprintf(c.out, "%s <%s>\n", user.Name, user.Email)
			return nil
		},
	}
}

func (c *cli) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List expenses, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.authenticate(cmd.Context()); err != nil {
				return err
			}

			expenses, err := c.api.ListExpenses(cmd.Context())
			if err != nil {
				return err
			}
			if len(expenses) == 0 {
				fmt.Fprintln(c.out, "No expenses yet")
				return nil
			}

			tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tDATE\tCATEGORY\tAMOUNT\tDESCRIPTION")
			for _, e := range expenses {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.ID, e.Date, e.Category, e.Amount.StringFixed(2), e.Description)
			}
			return tw.Flush()
		},
	}
}

func (c *cli) addCmd() *cobra.Command {
	var description, amount, date, category string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record an expense",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.authenticate(cmd.Context()); err != nil {
				return err
			}

			amt, err := model.NewAmount(amount)
			if err != nil {
				return fmt.Errorf("invalid --amount %q", amount)
			}

			d := model.DateOf(time.Now().UTC())
			if date != "" {
				if d, err = model.ParseDate(date); err != nil {
					return fmt.Errorf("invalid --date %q: use YYYY-MM-DD", date)
				}
			}

			e, err := c.api.CreateExpense(cmd.Context(), model.CreateExpenseRequest{
				Description: description,
				Amount:      &amt,
				Date:        &d,
				Category:    category,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(c.out, "Added %s: %s %s on %s (%s)\n", e.ID, e.Amount.StringFixed(2), e.Description, e.Date, e.Category)
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "What the money was spent on")
	cmd.Flags().StringVarP(&amount, "amount", "a", "", "Amount, e.g. 12.50")
	cmd.Flags().StringVar(&date, "date", "", "Date as YYYY-MM-DD (default today)")
	cmd.Flags().StringVarP(&category, "category", "c", "", "Category: "+categoryList())
	cmd.MarkFlagRequired("description")
	cmd.MarkFlagRequired("amount")
	return cmd
}

func (c *cli) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID...",
		Short: "Delete one or more expenses",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.authenticate(cmd.Context()); err != nil {
				return err
			}

			if len(args) == 1 {
				if err := c.api.DeleteExpense(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintln(c.out, "Deleted 1 expense")
				return nil
			}

			n, err := c.api.BulkDelete(cmd.Context(), args)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "Deleted %d of %d expenses\n", n, len(args))
			return nil
		},
	}
}

func (c *cli) summaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show totals per category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.authenticate(cmd.Context()); err != nil {
				return err
			}

			sum, err := c.api.Summary(cmd.Context())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
			for _, ct := range sum.Categories {
				fmt.Fprintf(tw, "%s\t%s\t%d\n", ct.Category, ct.Total.StringFixed(2), ct.Count)
			}
			fmt.Fprintf(tw, "TOTAL\t%s\t%d\n", sum.Total.StringFixed(2), sum.Count)
			return tw.Flush()
		},
	}
}

// startLogin begins a login, replacing a stored token that has not been
// validated yet.
func (c *cli) startLogin() error {
	if c.sess.State() == session.Loading {
		if err := c.sess.LoadFailed(); err != nil {
			return err
		}
	}
	return c.sess.StartLogin()
}

func (c *cli) ask(label string) (string, error) {
	fmt.Fprint(c.out, label)
	line, err := prompt.Line(c.in)
	return strings.TrimSpace(line), err
}

func (c *cli) readPassword(label string) (string, error) {
	if f, ok := c.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return prompt.Password(f, c.out, label)
	}
	return prompt.Password(c.in, c.out, label)
}

func categoryList() string {
	names := make([]string, len(model.Categories))
	for i, cat := range model.Categories {
		names[i] = string(cat)
	}
	return strings.Join(names, ", ")
}
