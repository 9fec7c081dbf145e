package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/arllen133/userdao"
	"github.com/arllen133/userdao/internal/bootstrap"
	"github.com/arllen133/userdao/internal/form"
	"github.com/arllen133/userdao/internal/httpapi"
)

func runInit(ctx context.Context, e *env, _ []string) error {
	if err := bootstrap.Apply(ctx, e.session.DB().DB, e.session.Dialect().Name()); err != nil {
		return err
	}
	fmt.Fprintln(e.out, "users table ready")
	return nil
}

// runDemo walks one sample user through every repository operation.
func runDemo(ctx context.Context, e *env, _ []string) error {
	user := userdao.NewUser("Alice", "alice@example.com", 28)
	if err := e.repo.Create(ctx, user); err != nil {
		return err
	}
	fmt.Fprintf(e.out, "created: %s\n", user)

	found, err := e.repo.FindByID(ctx, user.ID)
	if err != nil {
		return err
	}
	if u, ok := found.Get(); ok {
		fmt.Fprintf(e.out, "found by id: %s\n", u)
	}

	all, err := e.repo.FindAll(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "all users (%d):\n", len(all))
	printUsers(e.out, all)

	user.Age = 29
	updated, err := e.repo.Update(ctx, user)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "updated: %t\n", updated)

	found, err = e.repo.FindByID(ctx, user.ID)
	if err != nil {
		return err
	}
	if u, ok := found.Get(); ok {
		fmt.Fprintf(e.out, "after update: %s\n", u)
	}

	matches, err := e.repo.FindByName(ctx, "Ali")
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "name contains %q (%d):\n", "Ali", len(matches))
	printUsers(e.out, matches)

	deleted, err := e.repo.Delete(ctx, user.ID)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "deleted: %t\n", deleted)
	return nil
}

// userFlags holds the editable user fields registered on a flag set.
type userFlags struct {
	fs    *flag.FlagSet
	name  *string
	email *string
	age   *int
}

func newUserFlags(fs *flag.FlagSet) userFlags {
	return userFlags{
		fs:    fs,
		name:  fs.String("name", "", "user name"),
		email: fs.String("email", "", "user email"),
		age:   fs.Int("age", 0, "user age"),
	}
}

// record checks the parsed flags as one form. -age counts as missing
// unless it was given explicitly.
func (u userFlags) record(id int64) (*userdao.User, error) {
	f := form.User{Name: *u.name, Email: *u.email}
	u.fs.Visit(func(fl *flag.Flag) {
		if fl.Name == "age" {
			f.Age = u.age
		}
	})

	user, err := f.Record(id)
	if err != nil {
		return nil, usageError(describe(err))
	}
	return user, nil
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func runCreate(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("create")
	fields := newUserFlags(fs)
	if err := fs.Parse(args); err != nil {
		return usageError(err.Error())
	}

	user, err := fields.record(0)
	if err != nil {
		return err
	}
	if err := e.repo.Create(ctx, user); err != nil {
		return err
	}
	fmt.Fprintln(e.out, user)
	return nil
}

func runGet(ctx context.Context, e *env, args []string) error {
	id, err := idArg(args)
	if err != nil {
		return err
	}

	found, err := e.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	user, ok := found.Get()
	if !ok {
		fmt.Fprintf(e.out, "no user with id %d\n", id)
		return nil
	}
	fmt.Fprintln(e.out, user)
	return nil
}

func runList(ctx context.Context, e *env, _ []string) error {
	users, err := e.repo.FindAll(ctx)
	if err != nil {
		return err
	}
	printUsers(e.out, users)
	return nil
}

func runUpdate(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("update")
	id := fs.Int64("id", 0, "id of the user to overwrite")
	fields := newUserFlags(fs)
	if err := fs.Parse(args); err != nil {
		return usageError(err.Error())
	}
	if *id == 0 {
		return usageError("-id is required")
	}

	user, err := fields.record(*id)
	if err != nil {
		return err
	}
	updated, err := e.repo.Update(ctx, user)
	if err != nil {
		return err
	}
	if !updated {
		fmt.Fprintf(e.out, "no user with id %d\n", *id)
		return nil
	}
	fmt.Fprintln(e.out, user)
	return nil
}

func runDelete(ctx context.Context, e *env, args []string) error {
	id, err := idArg(args)
	if err != nil {
		return err
	}

	deleted, err := e.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		fmt.Fprintf(e.out, "no user with id %d\n", id)
		return nil
	}
	fmt.Fprintf(e.out, "deleted user %d\n", id)
	return nil
}

func runSearch(ctx context.Context, e *env, args []string) error {
	if len(args) != 1 {
		return usageError("expected exactly one name fragment")
	}
	fragment, err := form.SearchTerm(args[0])
	if err != nil {
		return usageError("name fragment must not be blank")
	}

	users, err := e.repo.FindByName(ctx, fragment)
	if err != nil {
		return err
	}
	printUsers(e.out, users)
	return nil
}

func runServe(ctx context.Context, e *env, _ []string) error {
	srv := &http.Server{
		Addr:              e.cfg.HTTP.Addr,
		Handler:           httpapi.NewServer(e.repo, e.session, e.logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		e.logger.Info("listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	e.logger.Info("server stopped")
	return nil
}

func idArg(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, usageError("expected exactly one id")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, usageError(fmt.Sprintf("id %q is not an integer", args[0]))
	}
	return id, nil
}

func printUsers(w io.Writer, users []userdao.User) {
	if len(users) == 0 {
		fmt.Fprintln(w, "(no users)")
		return
	}
	for _, u := range users {
		fmt.Fprintf(w, "  %s\n", u)
	}
}
