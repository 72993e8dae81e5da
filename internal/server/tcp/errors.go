package tcp

import (
	"errors"
	"fmt"

	"stanbot/internal/usecases"
)

// Custom error types
var (
	// Protocol errors
	ErrInvalidProtocol  = errors.New("invalid protocol format")
	ErrUnknownCommand   = errors.New("unknown command")
	ErrMalformedCommand = errors.New("malformed command") // not a command plus at most one argument
	ErrInvalidSolution  = errors.New("invalid proof of work solution")

	// Connection errors
	ErrReadTimeout  = errors.New("read operation timeout")
	ErrWriteTimeout = errors.New("write operation timeout")

	// Challenge errors
	ErrChallengeFailed   = errors.New("failed to generate challenge")
	ErrChallengeDelivery = errors.New("failed to deliver challenge")
)

// Error types with additional context
type ServerError struct {
	Op   string // Operation that failed
	Err  error  // Original error
	Info string // Additional context
}

func (e *ServerError) Error() string {
	if e.Info != "" {
		return fmt.Sprintf("%s: %v (%s)", e.Op, e.Err, e.Info)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServerError) Unwrap() error {
	return e.Err
}

func NewConnectionError(op string, err error, info string) error {
	return &ServerError{
		Op:   op,
		Err:  err,
		Info: info,
	}
}

func IsTimeoutError(err error) bool {
	return errors.Is(err, ErrReadTimeout) || errors.Is(err, ErrWriteTimeout)
}

func IsProtocolError(err error) bool {
	return errors.Is(err, ErrInvalidProtocol) || errors.Is(err, ErrInvalidSolution)
}

// IsRecoverable reports whether the connection can keep serving commands
// after err was reported to the client.
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrUnknownCommand) ||
		errors.Is(err, ErrMalformedCommand) ||
		errors.Is(err, usecases.ErrSessionNotFound)
}

// Error response types
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Common error responses
var (
	ErrRespInvalidFormat = ErrorResponse{
		Code:    "INVALID_FORMAT",
		Message: "Invalid message format",
	}
	ErrRespUnknownCommand = ErrorResponse{
		Code:    "UNKNOWN_COMMAND",
		Message: "Unknown command",
	}
	ErrRespSessionNotFound = ErrorResponse{
		Code:    "SESSION_NOT_FOUND",
		Message: "Session not found or expired",
	}
	ErrRespTimeout = ErrorResponse{
		Code:    "TIMEOUT",
		Message: "Operation timed out",
	}
	ErrRespInvalidSolution = ErrorResponse{
		Code:    "INVALID_SOLUTION",
		Message: "Invalid proof of work solution",
	}
	ErrRespInternal = ErrorResponse{
		Code:    "INTERNAL_ERROR",
		Message: "An internal error occurred",
	}
)

// ToErrorResponse converts an error to the response sent on the wire.
func ToErrorResponse(err error) ErrorResponse {
	switch {
	case errors.Is(err, ErrInvalidProtocol), errors.Is(err, ErrMalformedCommand):
		return ErrRespInvalidFormat
	case errors.Is(err, ErrUnknownCommand):
		return ErrRespUnknownCommand
	case errors.Is(err, usecases.ErrSessionNotFound):
		return ErrRespSessionNotFound
	case IsTimeoutError(err):
		return ErrRespTimeout
	case errors.Is(err, ErrInvalidSolution):
		return ErrRespInvalidSolution
	default:
		return ErrRespInternal
	}
}
