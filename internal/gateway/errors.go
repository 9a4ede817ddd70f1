package gateway

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Kind classifies a gateway failure.
type Kind string

const (
	InvalidInput Kind = "invalid_input"
	Precondition Kind = "precondition"
	Timeout      Kind = "timeout"
	Network      Kind = "network"
	Aborted      Kind = "aborted"
	StatusCode   Kind = "status"
	Decode       Kind = "decode"
	Backend      Kind = "backend"
)

// Error is the single error type returned by every Client method.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Status  int
	Err     error
}

func (e *Error) Error() string {
	prefix := "gateway"
	if e.Op != "" {
		prefix = e.Op
	}
	switch e.Kind {
	case InvalidInput:
		return fmt.Sprintf("%s: invalid input: %s", prefix, e.Message)
	case Precondition:
		return fmt.Sprintf("%s: %s", prefix, e.Message)
	case Timeout:
		return fmt.Sprintf("%s: request timed out after %s", prefix, e.Message)
	case Network:
		return fmt.Sprintf("%s: network error: %v", prefix, e.Err)
	case Aborted:
		return fmt.Sprintf("%s: request aborted", prefix)
	case StatusCode:
		return fmt.Sprintf("%s: server responded %d: %s", prefix, e.Status, e.Message)
	case Decode:
		return fmt.Sprintf("%s: malformed response: %s", prefix, e.Message)
	case Backend:
		return fmt.Sprintf("%s: %s", prefix, e.Message)
	default:
		return fmt.Sprintf("%s: %s", prefix, e.Message)
	}
}

// Unwrap allows errors.Is / errors.As to reach the cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a gateway Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var gerr *Error
	return errors.As(err, &gerr) && gerr.Kind == kind
}

func newInvalidInputError(op, msg string) *Error {
	return &Error{Kind: InvalidInput, Op: op, Message: msg}
}

func newPreconditionError(op string, cause error) *Error {
	return &Error{Kind: Precondition, Op: op, Message: cause.Error(), Err: cause}
}

func newStatusCodeError(op string, status int, msg string) *Error {
	return &Error{Kind: StatusCode, Op: op, Status: status, Message: msg}
}

func newDecodeError(op string, err error) *Error {
	return &Error{Kind: Decode, Op: op, Message: err.Error(), Err: err}
}

func newBackendError(op, msg string) *Error {
	if msg == "" {
		msg = "the server reported a failure without details"
	}
	return &Error{Kind: Backend, Op: op, Message: msg}
}

// classifyTransport maps an http.Client error onto a Kind.
func classifyTransport(op string, ctx context.Context, err error, timeout string) *Error {
	var netErr net.Error
	switch {
	case errors.Is(ctx.Err(), context.Canceled):
		return &Error{Kind: Aborted, Op: op, Message: "aborted", Err: err}
	case errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout():
		return &Error{Kind: Timeout, Op: op, Message: timeout, Err: err}
	default:
		return &Error{Kind: Network, Op: op, Message: err.Error(), Err: err}
	}
}
