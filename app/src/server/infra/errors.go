package infra

import (
	"errors"
	"fmt"
)

// Kind classifies storage errors.
type Kind int

const (
	KindUnknown Kind = iota
	// KindUnavailable: the store could not be opened. Fatal at startup.
	KindUnavailable
	// KindNotInitialized: the handle was used before Initialize or after Shutdown.
	KindNotInitialized
	// KindQuery: a single statement failed. Recoverable per request.
	KindQuery
)

func (k Kind) String() string {
	switch k {
	case KindUnavailable:
		return "storage_unavailable"
	case KindNotInitialized:
		return "not_initialized"
	case KindQuery:
		return "query_failure"
	default:
		return "unknown"
	}
}

var (
	ErrStorageUnavailable = &Error{Kind: KindUnavailable, Message: "storage unavailable"}
	ErrNotInitialized     = &Error{Kind: KindNotInitialized, Message: "database not initialized, call Initialize first"}
)

// Error is the error type returned by DB.
type Error struct {
	Kind       Kind
	Message    string
	Query      string
	Underlying error
}

func (e *Error) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Underlying)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Underlying }

// Is matches on Kind so that wrapped errors compare equal to the sentinels.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

func unavailable(path string, err error) error {
	return &Error{Kind: KindUnavailable, Message: fmt.Sprintf("open %s", path), Underlying: err}
}

func queryFailure(query string, err error) error {
	return &Error{Kind: KindQuery, Message: "query failed", Query: query, Underlying: err}
}

// GetKind returns the Kind of err, or KindUnknown if err did not come from this package.
func GetKind(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsQueryFailure reports whether err is a recoverable statement failure.
func IsQueryFailure(err error) bool { return GetKind(err) == KindQuery }
