package jwtauth

import (
	"fmt"
	"log/slog"
)

// options holds the settings shared by Authorizer and Issuer
type options struct {
	logger   *slog.Logger
	executor Executor
}

// Option is a functional option for configuring an Authorizer or Issuer
type Option func(*options) error

func newOptions(opts []Option) (*options, error) {
	o := &options{
		executor: GoExecutor{},
	}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, NewValidationError(ErrConfigError, fmt.Sprintf("configuration error: %v", err), err)
		}
	}
	return o, nil
}

// WithLogger sets a structured logger for security events.
// Without it no events are logged.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) error {
		o.logger = logger
		return nil
	}
}

// WithExecutor sets the executor an Issuer runs its authenticator on.
// Defaults to GoExecutor.
func WithExecutor(executor Executor) Option {
	return func(o *options) error {
		if executor == nil {
			return fmt.Errorf("executor cannot be nil")
		}
		o.executor = executor
		return nil
	}
}
