// Package errs classifies failures of outbound calls so callers can decide per call site
// whether a failure is fatal or best-effort.
package errs

import (
	"errors"
	"fmt"
)

// ErrMissingConfiguration is returned when a required secret or endpoint is absent.
// No network I/O is attempted in that case.
var ErrMissingConfiguration = errors.New("missing configuration")

// Kind is the coarse failure class.
type Kind string

const (
	KindMissingConfiguration Kind = "missing_configuration"
	KindUpstreamFetch        Kind = "upstream_fetch_failure"
	KindTransport            Kind = "transport_failure"
)

// Error wraps a failure with its kind and the operation that produced it.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

// Error returns "op: kind: cause".
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	return e.Err
}

// E wraps err with a kind and operation name. A nil err yields nil.
func E(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// MissingConfiguration returns a classified ErrMissingConfiguration naming what is absent.
func MissingConfiguration(op string, missing ...string) error {
	err := ErrMissingConfiguration
	if len(missing) > 0 {
		err = fmt.Errorf("%w: %v", ErrMissingConfiguration, missing)
	}
	return &Error{Kind: KindMissingConfiguration, Op: op, Err: err}
}

// KindOf returns the kind of the outermost classified error in the chain, or "" if none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsMissingConfiguration reports whether err stems from absent configuration.
func IsMissingConfiguration(err error) bool {
	return errors.Is(err, ErrMissingConfiguration)
}

// StatusError is a non-2xx HTTP response from an upstream.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.Status)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.Status, e.Body)
}
