package engine

import (
	"errors"
	"fmt"
	"syscall"
)

// Code is a stable classification of an engine failure.
type Code string

// Failure codes.
const (
	CodeAddrInUse  Code = "EADDRINUSE"
	CodePermission Code = "EACCES"
	CodeTLS        Code = "TLS"
	CodeStub       Code = "STUB"
	CodeServe      Code = "SERVE"
	CodeUnknown    Code = "UNKNOWN"
)

// EngineError is the error carried by EventFailed.
type EngineError struct {
	Code Code
	Op   string
	Err  error
}

func (e *EngineError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%v (%s)", e.Err, e.Code)
	}
	return fmt.Sprintf("%s: %v (%s)", e.Op, e.Err, e.Code)
}

func (e *EngineError) Unwrap() error {
	return e.Err
}

// Wrap returns err as an *EngineError. An existing *EngineError is returned
// unchanged; anything else is classified by Classify.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var engErr *EngineError
	if errors.As(err, &engErr) {
		return engErr
	}
	return &EngineError{Code: Classify(err), Op: op, Err: err}
}

// CodeOf returns the code carried by err, or CodeUnknown.
func CodeOf(err error) Code {
	var engErr *EngineError
	if errors.As(err, &engErr) {
		return engErr.Code
	}
	return CodeUnknown
}

// IsAddrInUse reports whether err is classified as address already in use.
func IsAddrInUse(err error) bool {
	return CodeOf(err) == CodeAddrInUse
}

// Classify maps an error to a Code using the errno it carries, if any.
// Message text is never inspected.
func Classify(err error) Code {
	var engErr *EngineError
	if errors.As(err, &engErr) {
		return engErr.Code
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch {
		case isAddrInUse(errno):
			return CodeAddrInUse
		case isPermission(errno):
			return CodePermission
		}
	}
	return CodeUnknown
}
