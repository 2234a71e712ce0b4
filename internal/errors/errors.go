package errors

import (
	"errors"
	"fmt"
)

// Common error types for the console session core
var (
	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionExpired     = errors.New("session expired")
	ErrNoRefreshToken     = errors.New("no refresh token")
	ErrNotAuthenticated   = errors.New("not authenticated")

	// Credential storage errors
	ErrPartialCredentials = errors.New("partial credential pair")
	ErrCorruptCredentials = errors.New("corrupt credential record")

	// Transport errors
	ErrNetworkFailure = errors.New("network failure")

	// General errors
	ErrNotFound = errors.New("not found")
	ErrInternal = errors.New("internal error")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
