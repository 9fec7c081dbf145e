// Package form checks what a front-end collected before it reaches the
// repository. Text fields are trimmed, and a blank field rejects the whole
// form, for updates as well as creates.
package form

import (
	"errors"
	"strings"

	"github.com/arllen133/userdao"
	"github.com/go-playground/validator/v10"
)

// User holds the editable fields of the user form. Age is a pointer so an
// absent age can be told apart from zero.
type User struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required"`
	Age   *int   `json:"age" validate:"required"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Record trims the form and returns the user it describes, carrying id.
// A blank field yields a *userdao.ValidationError naming it.
func (f User) Record(id int64) (*userdao.User, error) {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.TrimSpace(f.Email)

	if err := validate.Struct(f); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return nil, &userdao.ValidationError{Field: fieldErrs[0].Field(), Rule: fieldErrs[0].Tag()}
		}
		return nil, err
	}

	user := userdao.NewUser(f.Name, f.Email, *f.Age)
	user.ID = id
	return user, nil
}

// SearchTerm trims term and rejects it when nothing is left.
func SearchTerm(term string) (string, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return "", &userdao.ValidationError{Field: "Search", Rule: "required"}
	}
	return term, nil
}
