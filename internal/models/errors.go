package models

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// StoreError reports a connectivity, SQL or transaction failure.
type StoreError struct {
	Op  string // store operation, e.g. "begin", "select", "update", "commit"
	ID  int64
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s for classifier %d: %v", e.Op, e.ID, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// NewStoreError wraps err with stack context.
func NewStoreError(op string, id int64, err error) *StoreError {
	return &StoreError{Op: op, ID: id, Err: errors.WithStack(err)}
}

// EncodingError reports a failure to serialize or compress a payload.
type EncodingError struct {
	Stage string // "serialize" or "compress"
	Err   error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("encode payload (%s): %v", e.Stage, e.Err)
}

func (e *EncodingError) Unwrap() error { return e.Err }

// DecodingError reports truncated, corrupt or wrongly shaped payload bytes.
type DecodingError struct {
	Stage string // "decompress", "deserialize" or "shape"
	Err   error
}

func (e *DecodingError) Error() string {
	return fmt.Sprintf("decode payload (%s): %v", e.Stage, e.Err)
}

func (e *DecodingError) Unwrap() error { return e.Err }

// CheckoutError is returned when a checkout fails. No handle is returned with it.
type CheckoutError struct {
	ID  int64
	Err error
}

func (e *CheckoutError) Error() string {
	return fmt.Sprintf("checkout classifier %d: %v", e.ID, e.Err)
}

func (e *CheckoutError) Unwrap() error { return e.Err }

// CheckinError is returned when a checkin fails. The previously committed payload is unchanged.
type CheckinError struct {
	ID  int64
	Err error
}

func (e *CheckinError) Error() string {
	return fmt.Sprintf("checkin classifier %d: %v", e.ID, e.Err)
}

func (e *CheckinError) Unwrap() error { return e.Err }

// ReadError is returned when a lockless read fails.
type ReadError struct {
	ID  int64
	Err error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read classifier %d: %v", e.ID, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }
