package fetch

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a pipeline failure.
type Kind string

const (
	// KindNotFound is an upstream 404 for a direct fetch.
	KindNotFound Kind = "NotFound"

	// KindExternal is an unreachable, timed out or misbehaving upstream.
	KindExternal Kind = "ExternalError"

	// KindRelatedNotFound is a correlation whose related entity could not be fetched.
	KindRelatedNotFound Kind = "RelatedNotFound"

	// KindNoCorrelation is a correlation between types with no link field.
	KindNoCorrelation Kind = "NoCorrelation"

	// KindInvalidRequest is a request the gateway cannot interpret.
	KindInvalidRequest Kind = "InvalidRequest"
)

// Sentinels for errors.Is checks against an *Error of the matching kind.
var (
	ErrNotFound        = errors.New("resource not found")
	ErrExternal        = errors.New("upstream error")
	ErrRelatedNotFound = errors.New("related resource not found")
	ErrNoCorrelation   = errors.New("no correlation between resources")
	ErrInvalidRequest  = errors.New("invalid request")
)

func (k Kind) sentinel() error {
	switch k {
	case KindNotFound:
		return ErrNotFound
	case KindExternal:
		return ErrExternal
	case KindRelatedNotFound:
		return ErrRelatedNotFound
	case KindNoCorrelation:
		return ErrNoCorrelation
	case KindInvalidRequest:
		return ErrInvalidRequest
	default:
		return nil
	}
}

// Error is a typed pipeline failure.
type Error struct {
	Kind     Kind
	Resource string
	ID       string
	Message  string
	Err      error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if target := e.target(); target != "" {
		b.WriteString(" " + target)
	}
	b.WriteString(": " + e.message())
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Detail describes the failure for clients, without the wrapped cause.
func (e *Error) Detail() string {
	if target := e.target(); target != "" {
		return fmt.Sprintf("%s (%s)", e.message(), target)
	}
	return e.message()
}

func (e *Error) target() string {
	if e.ID == "" {
		return e.Resource
	}
	return e.Resource + "/" + e.ID
}

func (e *Error) message() string {
	if e.Message != "" {
		return e.Message
	}
	if s := e.Kind.sentinel(); s != nil {
		return s.Error()
	}
	return string(e.Kind)
}

// Is matches the sentinel of the error's kind.
func (e *Error) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of err, or "" if err is not an *Error.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}
