package userdao_test

import (
	"context"
	"errors"
	"testing"

	"github.com/arllen133/userdao"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserValidate(t *testing.T) {
	tests := []struct {
		name      string
		user      userdao.User
		wantField string
	}{
		{name: "valid", user: userdao.User{Name: "Alice", Email: "alice@example.com", Age: 28}},
		{name: "negative age allowed", user: userdao.User{Name: "Alice", Email: "alice@example.com", Age: -1}},
		{name: "any email text allowed", user: userdao.User{Name: "Alice", Email: "nope"}},
		{name: "missing name", user: userdao.User{Email: "alice@example.com"}, wantField: "Name"},
		{name: "missing email", user: userdao.User{Name: "Alice"}, wantField: "Email"},
		{name: "missing both reports name first", user: userdao.User{}, wantField: "Name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.user.Validate()
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}

			var vErr *userdao.ValidationError
			require.True(t, errors.As(err, &vErr), "got %v", err)
			assert.Equal(t, tt.wantField, vErr.Field)
		})
	}
}

func TestUserBeforeCreate(t *testing.T) {
	u := userdao.NewUser("", "x@example.com", 1)
	err := u.BeforeCreate(context.Background())
	assert.True(t, errors.Is(err, userdao.ErrValidation))
}

func TestUserString(t *testing.T) {
	u := userdao.User{ID: 3, Name: "Alice", Email: "alice@example.com", Age: 28}
	assert.Equal(t, `User{id=3, name="Alice", email="alice@example.com", age=28}`, u.String())
}
