package usecases

import (
	"errors"
	"fmt"

	"eudaimonia/repositories"
)

// Error kinds. Every error returned by this package wraps exactly one of
// them so the HTTP layer can pick a status with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
)

type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

func newError(kind error, format string, args ...interface{}) error {
	return &kindError{kind: kind, msg: fmt.Sprintf(format, args...)}
}

// notFound turns a repository miss into ErrNotFound carrying msg and passes
// any other error through.
func notFound(err error, msg string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return newError(ErrNotFound, "%s", msg)
	}
	return err
}
