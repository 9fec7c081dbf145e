// Command userctl drives the user record store from the shell: it creates
// the table, replays the demo walkthrough, runs single record actions and
// serves the JSON form adapter.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/arllen133/userdao"
	"github.com/arllen133/userdao/internal/config"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const usage = `usage: userctl [-config file] <command> [args]

commands:
  init                                   create the users table
  demo                                   create, read, update, search and delete a sample user
  create -name N -email E -age A         insert a user
  get <id>                               show one user
  list                                   show every user
  update -id I -name N -email E -age A   overwrite a user
  delete <id>                            remove a user
  search <fragment>                      users whose name contains fragment
  serve                                  run the JSON form adapter

Name and email are trimmed and must not be blank; -age is required.
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// env is what every command needs once configuration is resolved.
type env struct {
	cfg     config.Config
	logger  *slog.Logger
	session *userdao.Session
	repo    *userdao.UserRepository
	out     io.Writer
}

type command func(ctx context.Context, e *env, args []string) error

var commands = map[string]command{
	"init":   runInit,
	"demo":   runDemo,
	"create": runCreate,
	"get":    runGet,
	"list":   runList,
	"update": runUpdate,
	"delete": runDelete,
	"search": runSearch,
	"serve":  runServe,
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("userctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }
	configPath := fs.String("config", "", "YAML configuration file")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}
	name, rest := fs.Arg(0), fs.Args()[1:]
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(stderr, "userctl: unknown command %q\n\n", name)
		fs.Usage()
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "userctl: %v\n", err)
		return 1
	}
	logger := config.NewLogger(cfg.Log, stderr)

	session, err := openSession(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(stderr, "userctl: %s\n", describe(err))
		return 1
	}
	defer session.Close()

	e := &env{
		cfg:     cfg,
		logger:  logger,
		session: session,
		repo:    userdao.NewUserRepository(session),
		out:     stdout,
	}
	if err := cmd(ctx, e, rest); err != nil {
		var uErr usageError
		if errors.As(err, &uErr) {
			fmt.Fprintf(stderr, "userctl %s: %s\n", name, uErr)
			return 2
		}
		fmt.Fprintf(stderr, "userctl %s: %s\n", name, describe(err))
		return 1
	}
	return 0
}

func openSession(ctx context.Context, cfg config.Config, logger *slog.Logger) (*userdao.Session, error) {
	opts := []userdao.SessionOption{
		userdao.WithLogger(logger),
		userdao.WithQueryLogging(cfg.Log.Queries),
		userdao.WithSlowQueryThreshold(cfg.Log.SlowQueryThreshold),
	}
	if cfg.Telemetry.Enabled {
		opts = append(opts, userdao.WithDefaultTracer(), userdao.WithDefaultMeter())
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Database.ConnectTimeout)
	defer cancel()
	return userdao.Open(ctx, cfg.Database.Driver, cfg.Database.DSN, opts...)
}

type usageError string

func (e usageError) Error() string { return string(e) }

// describe turns a repository error into the message shown to the user.
// Driver detail is kept for store failures so an operator can act on it.
func describe(err error) string {
	var (
		vErr *userdao.ValidationError
		cErr *userdao.ConnectionError
		sErr *userdao.StoreError
	)
	switch {
	case errors.As(err, &vErr):
		return fmt.Sprintf("invalid user: %s is %s", vErr.Field, vErr.Rule)
	case errors.As(err, &cErr):
		return fmt.Sprintf("cannot reach the database (%s): %v", cErr.Op, cErr.Err)
	case errors.As(err, &sErr):
		return fmt.Sprintf("database error during %s: %v", sErr.Op, sErr.Err)
	default:
		return err.Error()
	}
}
