package indices

import (
	"errors"
	"fmt"
)

// Kind classifies fetch failures.
type Kind string

const (
	KindConfig    Kind = "configuration"
	KindTransport Kind = "transport"
	KindData      Kind = "data"
	KindParse     Kind = "parse"
)

// Error is returned by fetchers for every failure path.
type Error struct {
	Kind   Kind
	Ticker string
	Err    error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return string(e.Kind) + " error"
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var ie *Error
	if errors.As(err, &ie) {
		return ie.Kind
	}
	return ""
}

func newError(kind Kind, ticker string, format string, args ...any) *Error {
	return &Error{Kind: kind, Ticker: ticker, Err: fmt.Errorf(format, args...)}
}
