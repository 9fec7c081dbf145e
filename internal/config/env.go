package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
)

// FieldError reports an environment variable whose value cannot be
// converted to the type of the field it targets.
type FieldError struct {
	FieldName string
	Err       error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("config: error setting field %s from environment: %v", e.FieldName, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// applyEnv overrides fields tagged `env:"NAME"` with the variables that are
// set and non-empty. The first unparsable value is reported as a *FieldError.
func applyEnv(cfg *Config) error {
	err := env.Parse(cfg)
	if err == nil {
		return nil
	}

	var agg env.AggregateError
	if errors.As(err, &agg) {
		for _, e := range agg.Errors {
			var pErr env.ParseError
			if errors.As(e, &pErr) {
				return &FieldError{FieldName: pErr.Name, Err: pErr.Err}
			}
		}
	}
	return fmt.Errorf("config: environment: %w", err)
}
