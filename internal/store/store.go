// Package store opens the persistence backend named by a driver and hands
// back the repositories the services run on. The API server and the admin
// CLI share it so both reach the same data.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spendtrack/spendtrack-go/internal/config"
	"github.com/spendtrack/spendtrack-go/internal/repository"
	"github.com/spendtrack/spendtrack-go/internal/repository/mongostore"
	"github.com/spendtrack/spendtrack-go/internal/service"
)

const DriverMongo = "mongo"

// Options selects a backend. An empty DSN or MongoDatabase falls back to
// the config defaults for the driver.
type Options struct {
	Driver        string
	DSN           string
	MongoDatabase string
}

func (o Options) withDefaults() Options {
	o.Driver = strings.ToLower(strings.TrimSpace(o.Driver))
	if o.Driver == "" {
		o.Driver = repository.DriverSQLite
	}
	if o.DSN == "" {
		o.DSN = config.DefaultDSN(o.Driver)
	}
	if o.MongoDatabase == "" {
		o.MongoDatabase = config.DefaultMongoDatabase
	}
	return o
}

// Stores holds the repositories of one open backend.
type Stores struct {
	Users    service.UserStore
	Expenses service.ExpenseStore

	driver  string
	closeFn func() error
}

// Open connects the backend described by opts.
func Open(ctx context.Context, opts Options) (*Stores, error) {
	opts = opts.withDefaults()

	switch opts.Driver {
	case DriverMongo:
		ms, err := mongostore.Connect(ctx, opts.DSN, opts.MongoDatabase)
		if err != nil {
			return nil, err
		}
		closeFn := func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return ms.Close(ctx)
		}
		return &Stores{Users: ms.Users(), Expenses: ms.Expenses(), driver: opts.Driver, closeFn: closeFn}, nil

	case repository.DriverMySQL, repository.DriverSQLite:
		db, err := repository.NewDB(ctx, opts.Driver, opts.DSN)
		if err != nil {
			return nil, err
		}
		return &Stores{
			Users:    repository.NewUserRepository(db),
			Expenses: repository.NewExpenseRepository(db),
			driver:   opts.Driver,
			closeFn:  db.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}
}

// Close releases the backend's connections. Failures are logged.
func (s *Stores) Close() {
	if err := s.closeFn(); err != nil {
		slog.Warn("closing database", "driver", s.driver, "error", err)
	}
}
