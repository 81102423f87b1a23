package client

import (
	"errors"
	"fmt"
)

// ErrEmptyExpression is returned before any network call when the input is
// blank.
var ErrEmptyExpression = errors.New("empty expression")

// TransportError means the request could not be sent or its response body
// could not be read.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("solve %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// StatusError is a non-2xx response that does not carry a solve failure.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.StatusCode)
}

// DecodeError is a 2xx response whose body is not a solve response.
type DecodeError struct {
	Body string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode solve response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// SolveError is a response with success set to false. Message is the
// server's error text, unmodified.
type SolveError struct {
	StatusCode int
	Message    string
}

func (e *SolveError) Error() string { return e.Message }

type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindEmpty
	KindTransport
	KindStatus
	KindDecode
	KindSolve
	KindUnknown
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindEmpty:
		return "empty"
	case KindTransport:
		return "transport"
	case KindStatus:
		return "status"
	case KindDecode:
		return "decode"
	case KindSolve:
		return "solve"
	}
	return "unknown"
}

// Kind classifies an error returned by Solve.
func Kind(err error) ErrorKind {
	var (
		transportErr *TransportError
		statusErr    *StatusError
		decodeErr    *DecodeError
		solveErr     *SolveError
	)
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrEmptyExpression):
		return KindEmpty
	case errors.As(err, &solveErr):
		return KindSolve
	case errors.As(err, &transportErr):
		return KindTransport
	case errors.As(err, &statusErr):
		return KindStatus
	case errors.As(err, &decodeErr):
		return KindDecode
	}
	return KindUnknown
}
