package probe

import (
	"errors"
	"fmt"
)

// Base error classes. Both abort the run with an UNKNOWN verdict.
var (
	ErrConfig        = errors.New("configuration error")
	ErrCommunication = errors.New("communication error")
)

// Kind classifies why a probe run could not form a verdict.
type Kind int

const (
	KindConfig Kind = iota + 1
	KindCommunication
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindCommunication:
		return "communication"
	default:
		return "unknown"
	}
}

// Error is a fatal probe failure.
type Error struct {
	Kind Kind
	Op   string // step that failed, e.g. "resolve interface"
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the base classes as well as the wrapped error.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrConfig:
		return e.Kind == KindConfig
	case ErrCommunication:
		return e.Kind == KindCommunication
	}
	return false
}

func configError(op string, err error) error {
	return &Error{Kind: KindConfig, Op: op, Err: err}
}

func commError(op string, err error) error {
	return &Error{Kind: KindCommunication, Op: op, Err: err}
}
