package model

import (
	"errors"
	"strings"
)

// Version is the product version reported in the default User-Agent.
const Version = "0.3.0"

// Agent is the default User-Agent value, <product>/<version>.
const Agent = "get-url/" + Version

type Kind int

const (
	KindURL Kind = iota + 1
	KindEncoding
	KindResource
	KindIO
)

func (k Kind) String() string {
	switch k {
	case KindURL:
		return "url error"
	case KindEncoding:
		return "encoding error"
	case KindResource:
		return "resource error"
	case KindIO:
		return "i/o error"
	}
	return "unknown error"
}

// Error is the error type returned by every backend. Two Errors match with
// [errors.Is] when they have the same Kind and the target carries no cause,
// so the Err* sentinels below can be used to test an error's kind.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	if e.Err != nil {
		b.WriteString(e.Err.Error())
	} else {
		b.WriteString(e.Kind.String())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(err error) bool {
	if t, ok := err.(*Error); ok {
		return t.Err == nil && t.Op == "" && t.Kind == e.Kind
	}
	return false
}

func reg(kind Kind) *Error { return &Error{Kind: kind} }

var (
	ErrURL      = reg(KindURL)
	ErrEncoding = reg(KindEncoding)
	ErrResource = reg(KindResource)
	ErrIO       = reg(KindIO)

	ErrClosed          = errors.New("get-url: response already closed")
	ErrRequestConsumed = errors.New("get-url: request already opened")
)

func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}
