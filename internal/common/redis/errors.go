package redis

import (
	"errors"
	"fmt"
)

var (
	ErrConnectionFailed = errors.New("redis connection failed")
	// ErrInvalidOperation is returned for calls missing a key.
	ErrInvalidOperation = errors.New("invalid redis operation")
)

// StorageError records the command and key of a failed redis call.
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("redis %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("redis %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func NewStorageError(op, key string, err error) *StorageError {
	return &StorageError{Op: op, Key: key, Err: err}
}
