// internal/errors/errors.go
package errors

import "fmt"

// ErrMissingConfig is returned when a required configuration field is absent.
type ErrMissingConfig struct {
	Field string
}

func (e *ErrMissingConfig) Error() string {
	return fmt.Sprintf("%s is a required configuration field", e.Field)
}

// ErrMissingCredential is returned when an operation needs an API
// credential that has not been configured. It is surfaced to the caller
// before any network call is attempted.
type ErrMissingCredential struct {
	Name string
}

func (e *ErrMissingCredential) Error() string {
	return fmt.Sprintf("missing credential: %s is not configured", e.Name)
}
