package userdao

import (
	"context"
)

// BeforeCreateInterface is implemented by records that check themselves
// before insertion. A non-nil error aborts Create before any statement runs.
type BeforeCreateInterface interface {
	BeforeCreate(context.Context) error
}

func triggerBeforeCreate(ctx context.Context, model any) error {
	if m, ok := model.(BeforeCreateInterface); ok {
		return m.BeforeCreate(ctx)
	}
	return nil
}
