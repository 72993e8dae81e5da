package tcp

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"stanbot/internal/usecases"
)

func TestToErrorResponse(t *testing.T) {
	tests := []struct {
		err  error
		want ErrorResponse
	}{
		{NewConnectionError("readLine", ErrInvalidProtocol, "line too long"), ErrRespInvalidFormat},
		{NewConnectionError("dispatch", ErrMalformedCommand, `"HELLO a b"`), ErrRespInvalidFormat},
		{NewConnectionError("dispatch", ErrUnknownCommand, "DANCE"), ErrRespUnknownCommand},
		{fmt.Errorf("%w: abc", usecases.ErrSessionNotFound), ErrRespSessionNotFound},
		{NewConnectionError("readLine", ErrReadTimeout, ""), ErrRespTimeout},
		{NewConnectionError("write", ErrWriteTimeout, ""), ErrRespTimeout},
		{NewConnectionError("handshake", ErrInvalidSolution, "validation failed"), ErrRespInvalidSolution},
		{errors.New("boom"), ErrRespInternal},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ToErrorResponse(tt.err), tt.err.Error())
	}
}

func TestServerErrorFormatting(t *testing.T) {
	err := NewConnectionError("handshake", ErrInvalidSolution, "validation failed")
	assert.Equal(t, "handshake: invalid proof of work solution (validation failed)", err.Error())
	assert.True(t, IsProtocolError(err))
	assert.False(t, IsRecoverable(err))

	err = NewConnectionError("dispatch", ErrUnknownCommand, "")
	assert.Equal(t, "dispatch: unknown command", err.Error())
	assert.True(t, IsRecoverable(err))

	assert.True(t, IsRecoverable(NewConnectionError("dispatch", ErrMalformedCommand, "")))
	assert.False(t, IsRecoverable(NewConnectionError("readLine", ErrInvalidProtocol, "line too long")))
	assert.False(t, IsRecoverable(NewConnectionError("readLine", ErrReadTimeout, "")))
}
