// Package userdao is a data-access layer for the users table.
// This file implements UserRepository, the record access layer.
//
// UserRepository maps each call onto exactly one parameterized statement:
//   - Create: INSERT, store-assigned id backfilled into the record
//   - FindByID: SELECT by primary key, absence reported through Optional
//   - FindAll: SELECT of every row in the store's natural order
//   - Update: UPDATE by primary key, reports whether a row matched
//   - Delete: DELETE by primary key, reports whether a row was removed
//   - FindByName: SELECT with name LIKE %fragment%
//
// No call spans a transaction, retries, or caches anything. Each one borrows
// a connection from the Provider and returns it before the call ends, on
// success and on failure.
package userdao

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/arllen133/userdao/clause"
)

// UserRepository performs CRUD operations on the users table.
//
// Usage example:
//
//	repo := userdao.NewUserRepository(session)
//
//	user := userdao.NewUser("Alice", "alice@example.com", 28)
//	if err := repo.Create(ctx, user); err != nil {
//	    return err
//	}
//	fmt.Println("Created user ID:", user.ID)
//
//	found, err := repo.FindByID(ctx, user.ID)
//	if err != nil {
//	    return err
//	}
//	if u, ok := found.Get(); ok {
//	    fmt.Println(u.Name)
//	}
type UserRepository struct {
	provider Provider
	schema   Schema[User]
}

// NewUserRepository creates a repository borrowing connections from provider.
func NewUserRepository(provider Provider) *UserRepository {
	return &UserRepository{
		provider: provider,
		schema:   userSchema{},
	}
}

// sqlizer adapts a clause.Expression to squirrel's predicate interface.
type sqlizer struct{ clause.Expression }

func (s sqlizer) ToSql() (string, []any, error) { return s.Build() }

func (r *UserRepository) format() sq.PlaceholderFormat {
	return r.provider.Dialect().PlaceholderFormat()
}

func (r *UserRepository) selectBuilder() sq.SelectBuilder {
	return sq.Select(r.schema.SelectColumns()...).
		From(r.schema.TableName()).
		PlaceholderFormat(r.format())
}

// Create inserts user and backfills user.ID with the store-assigned id.
//
// Operation flow:
//  1. Trigger BeforeCreate hook (User rejects empty Name or Email)
//  2. Build INSERT from schema.InsertRow
//  3. Execute it on a borrowed connection
//  4. Read the generated key (LastInsertId, or RETURNING on PostgreSQL)
//
// Returns:
//   - *ValidationError: a required field is missing; nothing was sent to the store
//   - *ConnectionError: no connection could be acquired or it broke mid-statement
//   - *StoreError: the statement failed (constraint violation, etc.)
//
// Age is written as given, negative values included.
func (r *UserRepository) Create(ctx context.Context, user *User) error {
	if user == nil {
		return &ValidationError{Field: "User", Rule: "required"}
	}
	if err := triggerBeforeCreate(ctx, user); err != nil {
		return err
	}

	cols, vals := r.schema.InsertRow(user)
	builder := sq.Insert(r.schema.TableName()).
		Columns(cols...).
		Values(vals...).
		PlaceholderFormat(r.format())

	returning := r.provider.Dialect().ReturningID()
	if returning {
		builder = builder.Suffix("RETURNING " + r.schema.PK(nil).Column.Name)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return classify("create", err)
	}

	conn, err := r.provider.Acquire(ctx)
	if err != nil {
		return err
	}
	defer r.provider.Release(conn)

	if returning {
		var id int64
		if err := conn.Get(ctx, "create", &id, query, args...); err != nil {
			return classify("create", err)
		}
		r.schema.SetPK(user, id)
		return nil
	}

	result, err := conn.Exec(ctx, "create", query, args...)
	if err != nil {
		return classify("create", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return classify("create", err)
	}
	r.schema.SetPK(user, id)
	return nil
}

// FindByID returns the user with the given id. A missing row yields an empty
// Optional and a nil error.
func (r *UserRepository) FindByID(ctx context.Context, id int64) (Optional[User], error) {
	query, args, err := r.selectBuilder().
		Where(sqlizer{Users.ID.Eq(id)}).
		ToSql()
	if err != nil {
		return None[User](), classify("find_by_id", err)
	}

	conn, err := r.provider.Acquire(ctx)
	if err != nil {
		return None[User](), err
	}
	defer r.provider.Release(conn)

	var user User
	if err := conn.Get(ctx, "find_by_id", &user, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return None[User](), nil
		}
		return None[User](), classify("find_by_id", err)
	}
	return Some(user), nil
}

// FindAll returns every user in the order the store yields them.
// An empty table gives an empty, non-nil slice.
func (r *UserRepository) FindAll(ctx context.Context) ([]User, error) {
	query, args, err := r.selectBuilder().ToSql()
	if err != nil {
		return nil, classify("find_all", err)
	}
	return r.selectUsers(ctx, "find_all", query, args)
}

// FindByName returns users whose name contains fragment, as matched by the
// store's LIKE operator (case rules follow the column collation).
func (r *UserRepository) FindByName(ctx context.Context, fragment string) ([]User, error) {
	query, args, err := r.selectBuilder().
		Where(sqlizer{Users.Name.Contains(fragment)}).
		ToSql()
	if err != nil {
		return nil, classify("find_by_name", err)
	}
	return r.selectUsers(ctx, "find_by_name", query, args)
}

func (r *UserRepository) selectUsers(ctx context.Context, op, query string, args []any) ([]User, error) {
	conn, err := r.provider.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer r.provider.Release(conn)

	users := make([]User, 0)
	if err := conn.Select(ctx, op, &users, query, args...); err != nil {
		return nil, classify(op, err)
	}
	return users, nil
}

// Update overwrites name, email and age of the row whose id equals user.ID.
// It reports false, without error, when no row has that id.
//
// Note:
//   - No field validation runs here; only Create enforces required fields
//   - On MySQL, RowsAffected counts changed rows unless the DSN sets
//     clientFoundRows=true, so an update that writes identical values
//     reports false there
func (r *UserRepository) Update(ctx context.Context, user *User) (bool, error) {
	if user == nil {
		return false, &ValidationError{Field: "User", Rule: "required"}
	}

	pk := r.schema.PK(user)
	builder := sq.Update(r.schema.TableName()).
		Where(sqlizer{pk}).
		PlaceholderFormat(r.format())
	for _, a := range r.schema.UpdateAssignments(user) {
		builder = builder.Set(a.Column.ColumnName(), a.Value)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return false, classify("update", err)
	}
	return r.execAffecting(ctx, "update", query, args)
}

// Delete removes the row with the given id and reports whether one existed.
func (r *UserRepository) Delete(ctx context.Context, id int64) (bool, error) {
	query, args, err := sq.Delete(r.schema.TableName()).
		Where(sqlizer{Users.ID.Eq(id)}).
		PlaceholderFormat(r.format()).
		ToSql()
	if err != nil {
		return false, classify("delete", err)
	}
	return r.execAffecting(ctx, "delete", query, args)
}

func (r *UserRepository) execAffecting(ctx context.Context, op, query string, args []any) (bool, error) {
	conn, err := r.provider.Acquire(ctx)
	if err != nil {
		return false, err
	}
	defer r.provider.Release(conn)

	result, err := conn.Exec(ctx, op, query, args...)
	if err != nil {
		return false, classify(op, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, classify(op, err)
	}
	return affected > 0, nil
}
