package scrape

import (
	"context"
	"errors"
	"fmt"
)

// Kind classifies scraper failures.
type Kind string

const (
	KindTransport     Kind = "transport"
	KindBlocked       Kind = "blocked"
	KindParseFailure  Kind = "parse_failure"
	KindTimeout       Kind = "timeout"
	KindInvalidConfig Kind = "invalid_config"
)

// Error is a classified scraper failure. Scraper identifies the failing
// source, Message the cause; Err carries the underlying error when one
// exists.
type Error struct {
	Scraper string
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Scraper, e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError builds a classified error from a static message.
func NewError(scraper string, kind Kind, msg string) *Error {
	return &Error{Scraper: scraper, Kind: kind, Message: msg}
}

// WrapError classifies an underlying error.
func WrapError(scraper string, kind Kind, err error) *Error {
	return &Error{Scraper: scraper, Kind: kind, Message: err.Error(), Err: err}
}

// KindOf extracts the classification from an error chain; empty when the
// chain holds no *Error.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}

// Classify normalizes any error a scraper returned into a *Error attributed
// to the named source. Deadline errors map to the timeout kind; everything
// unclassified maps to transport.
func Classify(scraper string, err error) *Error {
	var se *Error
	if errors.As(err, &se) {
		return se
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return WrapError(scraper, KindTimeout, err)
	}
	return WrapError(scraper, KindTransport, err)
}
