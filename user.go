package userdao

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// User is a single row of the users table.
//
// ID is zero until the record has been persisted; the store assigns it on
// insert and it never changes afterwards. Age has no range rule and Email has
// no format rule: only presence of Name and Email is enforced.
type User struct {
	ID    int64  `db:"id" json:"id"`
	Name  string `db:"name" json:"name" validate:"required"`
	Email string `db:"email" json:"email" validate:"required"`
	Age   int    `db:"age" json:"age"`
}

// NewUser builds an unsaved record.
func NewUser(name, email string, age int) *User {
	return &User{Name: name, Email: email, Age: age}
}

func (u User) String() string {
	return fmt.Sprintf("User{id=%d, name=%q, email=%q, age=%d}", u.ID, u.Name, u.Email, u.Age)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the fields required for insertion.
func (u *User) Validate() error {
	err := validate.Struct(u)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return &ValidationError{Field: fieldErrs[0].Field(), Rule: fieldErrs[0].Tag()}
	}
	return &ValidationError{Field: "User", Rule: err.Error()}
}

// BeforeCreate rejects records without a name or email.
func (u *User) BeforeCreate(context.Context) error {
	return u.Validate()
}

var _ BeforeCreateInterface = (*User)(nil)
