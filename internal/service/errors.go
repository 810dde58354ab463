package service

import (
	"errors"
	"sort"
	"strings"

	"github.com/vedran77/messagely/internal/auth"
	"github.com/vedran77/messagely/pkg/validator"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrMessageNotFound    = errors.New("message not found")
	ErrUpstream           = errors.New("upstream failure")
)

// ValidationError carries per-field messages and matches ErrValidation.
type ValidationError struct {
	Fields validator.ValidationErrors
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return "validation failed: " + strings.Join(names, ", ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(errs validator.ValidationErrors) error {
	if !errs.HasErrors() {
		return nil
	}
	return &ValidationError{Fields: errs}
}

// UpstreamError is a store or hashing failure the caller could not have
// avoided. It matches ErrUpstream and unwraps to the cause.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstream
}

func upstream(op string, err error) error {
	return &UpstreamError{Op: op, Err: err}
}

// Observer receives lifecycle events. Metrics implement it; it is optional.
type Observer interface {
	MessageCreated()
	MessageRead()
	AuthFailed(reason string)
}

type noopObserver struct{}

func (noopObserver) MessageCreated()   {}
func (noopObserver) MessageRead()      {}
func (noopObserver) AuthFailed(string) {}

// denied reports authorization refusals to o and passes err through.
func denied(o Observer, err error) error {
	if errors.Is(err, auth.ErrForbidden) {
		o.AuthFailed("forbidden")
	}
	return err
}
