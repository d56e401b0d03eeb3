package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spendtrack/spendtrack-go/internal/crypto"
	"github.com/spendtrack/spendtrack-go/internal/model"
	"github.com/spendtrack/spendtrack-go/internal/prompt"
	"github.com/spendtrack/spendtrack-go/internal/repository"
	"github.com/spendtrack/spendtrack-go/internal/service"
	"github.com/spendtrack/spendtrack-go/internal/store"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("adduser", flag.ContinueOnError)
	fs.SetOutput(stderr)

	name := fs.String("name", "", "Display name")
	email := fs.String("email", "", "Email address")
	passwordFlag := fs.String("password", "", "Password (optional, will prompt if omitted)")
	generate := fs.Bool("generate", false, "Generate a temporary password and print it")
	driver := fs.String("driver", envOr("DATABASE_DRIVER", repository.DriverSQLite), "Database driver (sqlite, mysql or mongo)")
	dsn := fs.String("dsn", os.Getenv("DATABASE_DSN"), "Database DSN (default depends on -driver)")
	mongoDB := fs.String("mongo-db", os.Getenv("MONGO_DATABASE"), "MongoDB database name")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *name == "" || *email == "" {
		fmt.Fprintln(stdout, "Usage: adduser -name <name> -email <email> [-password <password> | -generate] [-driver sqlite|mysql|mongo] [-dsn <dsn>]")
		fs.PrintDefaults()
		return fmt.Errorf("missing required flags: name, email")
	}

	password := *passwordFlag
	if *generate {
		if password != "" {
			return fmt.Errorf("-password and -generate are mutually exclusive")
		}
		var err error
		if password, err = crypto.TemporaryPassword(16); err != nil {
			return fmt.Errorf("failed to generate password: %w", err)
		}
	}
	if password == "" {
		var err error
		password, err = prompt.Password(stdin, stdout, "Password: ")
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
	}

	if strings.TrimSpace(password) == "" {
		return fmt.Errorf("password cannot be empty")
	}

	ctx := context.Background()
	stores, err := store.Open(ctx, store.Options{Driver: *driver, DSN: *dsn, MongoDatabase: *mongoDB})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer stores.Close()

	hasher, err := crypto.NewPasswordHasher(crypto.DefaultHashParams())
	if err != nil {
		return err
	}

	auth := service.NewAuthService(stores.Users, hasher, nil)
	user, err := auth.CreateUser(ctx, model.RegisterRequest{Name: *name, Email: *email, Password: password})
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			return fmt.Errorf("user %s already exists", service.NormalizeEmail(*email))
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Fprintf(stdout, "User %s created successfully with ID %s\n", user.Email, user.ID)
	if *generate {
		fmt.Fprintf(stdout, "Temporary password: %s\n", password)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
