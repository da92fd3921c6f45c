package store

import (
	"errors"
	"fmt"
)

// ErrNotFound is the sentinel matched by every NotFoundError
var ErrNotFound = errors.New("key not found")

// ConnectionError means a session could not be established: bad credential,
// bad URL or an unreachable endpoint.
type ConnectionError struct {
	Endpoint string
	Err      error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("cannot connect to %s: %v", e.Endpoint, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// StoreError means a call on an established session failed
type StoreError struct {
	Op  string
	Key string
	Err error
}

func (e *StoreError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %q failed: %v", e.Op, e.Key, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NotFoundError means the requested key is absent
type NotFoundError struct {
	Key string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("key %q not found", e.Key)
}

// Is lets errors.Is(err, ErrNotFound) match
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// IsNotFound reports whether err is a missing-key error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func wrapOp(op, key string, err error) error {
	if err == nil {
		return nil
	}
	var notFound *NotFoundError
	if errors.As(err, &notFound) {
		return err
	}
	return &StoreError{Op: op, Key: key, Err: err}
}
