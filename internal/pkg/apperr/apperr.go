// Package apperr is the error taxonomy shared by services and handlers.
//
// Every error a service returns is marked with exactly one of the sentinels
// below. Hints carry the user-facing message; the error string itself may
// hold internal context and is only logged.
package apperr

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
)

var (
	ErrValidation    = errors.New("validation error")
	ErrAuthorization = errors.New("authorization error")
	ErrConflict      = errors.New("conflict")
	ErrNotFound      = errors.New("not found")
	ErrStore         = errors.New("store error")

	// ErrUnauthenticated is marked in addition to ErrAuthorization when the
	// denied caller had no session at all.
	ErrUnauthenticated = errors.New("unauthenticated")

	statusCodeMap = []struct {
		ref    error
		status int
		kind   string
	}{
		{ErrUnauthenticated, http.StatusUnauthorized, "authorization"},
		{ErrValidation, http.StatusBadRequest, "validation"},
		{ErrAuthorization, http.StatusForbidden, "authorization"},
		{ErrConflict, http.StatusConflict, "conflict"},
		{ErrNotFound, http.StatusNotFound, "not_found"},
		{ErrStore, http.StatusInternalServerError, "store"},
	}
)

// Builder chains context onto an error. Mark must be the last call.
type Builder struct {
	err     error
	details map[string]string
}

func New(msg string) *Builder {
	return &Builder{err: errors.New(msg)}
}

func Newf(format string, args ...any) *Builder {
	return &Builder{err: errors.Newf(format, args...)}
}

func Wrap(err error, msg string) *Builder {
	return &Builder{err: errors.Wrap(err, msg)}
}

// WithHint sets the message shown to API callers.
func (b *Builder) WithHint(hint string) *Builder {
	b.err = errors.WithHint(b.err, hint)
	return b
}

func (b *Builder) WithHintf(format string, args ...any) *Builder {
	b.err = errors.WithHintf(b.err, format, args...)
	return b
}

// WithDetails attaches per-field information, e.g. failed validation rules.
func (b *Builder) WithDetails(details map[string]string) *Builder {
	b.details = details
	return b
}

func (b *Builder) Mark(reference error) error {
	err := b.err
	if len(b.details) > 0 {
		err = &detailedError{cause: err, details: b.details}
	}
	return errors.Mark(err, reference)
}

type detailedError struct {
	cause   error
	details map[string]string
}

func (e *detailedError) Error() string { return e.cause.Error() }
func (e *detailedError) Unwrap() error { return e.cause }

// Details returns the per-field details attached with WithDetails, if any.
func Details(err error) map[string]string {
	var d *detailedError
	if errors.As(err, &d) {
		return d.details
	}
	return nil
}

// Validation builds a validation error. details maps field name to the failed rule.
func Validation(msg string, details map[string]string) error {
	return New(msg).WithHint(describe(msg, details)).WithDetails(details).Mark(ErrValidation)
}

func describe(msg string, details map[string]string) string {
	if len(details) == 0 {
		return msg
	}
	fields := make([]string, 0, len(details))
	for f := range details {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fmt.Sprintf("%s: %s", msg, strings.Join(fields, ", "))
}

func Forbidden(msg string) error {
	return New(msg).WithHint(msg).Mark(ErrAuthorization)
}

func Unauthenticated() error {
	err := New("login required").WithHint("login required").Mark(ErrAuthorization)
	return errors.Mark(err, ErrUnauthenticated)
}

func NotFound(what, id string) error {
	return Newf("%s %q not found", what, id).WithHintf("%s not found", what).Mark(ErrNotFound)
}

func Conflict(msg string) error {
	return New(msg).WithHint(msg).Mark(ErrConflict)
}

// Store wraps an underlying persistence failure. The raw error is kept for
// logs but never shown to callers.
func Store(err error, op string) error {
	if err == nil {
		return nil
	}
	return Wrap(err, op).WithHint("storage failure, please retry").Mark(ErrStore)
}

func IsValidation(err error) bool    { return errors.Is(err, ErrValidation) }
func IsAuthorization(err error) bool { return errors.Is(err, ErrAuthorization) }
func IsConflict(err error) bool      { return errors.Is(err, ErrConflict) }
func IsNotFound(err error) bool      { return errors.Is(err, ErrNotFound) }
func IsStore(err error) bool         { return errors.Is(err, ErrStore) }

// IsUnauthenticated reports an anonymous caller hitting a gated operation.
// Marks are invisible to the standard library's errors.Is; use this instead.
func IsUnauthenticated(err error) bool { return errors.Is(err, ErrUnauthenticated) }

// HTTPStatus maps err to a status code. Unmarked errors are 500.
func HTTPStatus(err error) int {
	for _, m := range statusCodeMap {
		if errors.Is(err, m.ref) {
			return m.status
		}
	}
	return http.StatusInternalServerError
}

// KindOf returns the machine-readable error kind.
func KindOf(err error) string {
	for _, m := range statusCodeMap {
		if errors.Is(err, m.ref) {
			return m.kind
		}
	}
	return "internal"
}

// Message returns the user-facing message for err.
func Message(err error) string {
	if hints := errors.GetAllHints(err); len(hints) > 0 {
		return hints[0]
	}
	if HTTPStatus(err) >= http.StatusInternalServerError {
		return "internal server error"
	}
	return err.Error()
}
