package tcp

import (
	"errors"
	"fmt"

	"stanbot/internal/protocol"
)

var (
	// Protocol errors
	ErrInvalidProtocol = errors.New("invalid protocol format")

	// Connection errors
	ErrConnectFailed    = errors.New("connect failed")
	ErrConnectionClosed = errors.New("connection closed")
	ErrReadTimeout      = errors.New("read operation timeout")
	ErrWriteTimeout     = errors.New("write operation timeout")

	// Challenge errors
	ErrSolutionNotFound = errors.New("solution not found")

	// System errors
	ErrMaxRetriesExceeded = errors.New("maximum retry attempts exceeded")
)

type ClientError struct {
	Op   string
	Err  error
	Info string
}

func (e *ClientError) Error() string {
	if e.Info != "" {
		return fmt.Sprintf("%s: %v (%s)", e.Op, e.Err, e.Info)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ClientError) Unwrap() error {
	return e.Err
}

func NewClientError(op string, err error, info string) error {
	return &ClientError{
		Op:   op,
		Err:  err,
		Info: info,
	}
}

// Helper functions
func IsRetryableError(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		switch {
		case errors.Is(err, ErrConnectFailed):
			return true
		case errors.Is(err, ErrConnectionClosed):
			return true
		case errors.Is(err, ErrReadTimeout):
			return true
		case errors.Is(err, ErrWriteTimeout):
			return true
		default:
			return false
		}
	}
	return false
}

// IsSessionNotFound reports whether the server no longer knows the session.
func IsSessionNotFound(err error) bool {
	var remote *protocol.RemoteError
	return errors.As(err, &remote) && remote.Code == "SESSION_NOT_FOUND"
}
