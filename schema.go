package userdao

import (
	"github.com/arllen133/userdao/clause"
	"github.com/arllen133/userdao/field"
)

const usersTable = "users"

type PK = clause.Eq

// Schema defines how to map a model to a table and back
type Schema[T any] interface {
	// Table Metadata
	TableName() string

	// Read Operations
	SelectColumns() []string

	// Write Operations
	InsertRow(*T) ([]string, []any)

	// Update Operations
	UpdateAssignments(*T) []clause.Assignment

	// Primary Key
	PK(*T) PK
	SetPK(m *T, val int64)
}

// Users holds typed handles for the columns of the users table.
var Users = struct {
	ID    field.Number[int64]
	Name  field.String
	Email field.String
	Age   field.Number[int]
}{
	ID:    field.Number[int64]{}.WithColumn("id"),
	Name:  field.String{}.WithColumn("name"),
	Email: field.String{}.WithColumn("email"),
	Age:   field.Number[int]{}.WithColumn("age"),
}

type userSchema struct{}

var _ Schema[User] = userSchema{}

func (userSchema) TableName() string { return usersTable }

func (userSchema) SelectColumns() []string {
	return clause.Columns(Users.ID, Users.Name, Users.Email, Users.Age)
}

// InsertRow never includes id: the store assigns it.
func (userSchema) InsertRow(u *User) ([]string, []any) {
	return clause.Columns(Users.Name, Users.Email, Users.Age),
		[]any{u.Name, u.Email, u.Age}
}

func (userSchema) UpdateAssignments(u *User) []clause.Assignment {
	return []clause.Assignment{
		Users.Name.Set(u.Name),
		Users.Email.Set(u.Email),
		Users.Age.Set(u.Age),
	}
}

func (userSchema) PK(u *User) PK {
	var val any
	if u != nil {
		val = u.ID
	}
	return PK{Column: Users.ID.Column(), Value: val}
}

func (userSchema) SetPK(u *User, val int64) { u.ID = val }
