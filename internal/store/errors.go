package store

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownBackend indicates a store backend name that Open does not recognise.
	ErrUnknownBackend = errors.New("unknown store backend")

	// ErrCorruptEntry indicates a persisted log entry that cannot be decoded.
	ErrCorruptEntry = errors.New("corrupt ledger entry")
)

type Error struct {
	Op  string
	Key string
	Err error
}

func (e *Error) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("store %s %s: %v", e.Op, e.Key, e.Err)
	}

	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(op, key string, err error) *Error {
	return &Error{Op: op, Key: key, Err: err}
}
