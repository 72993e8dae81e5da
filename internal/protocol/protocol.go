// Package protocol holds the wire format shared by the robot server and client.
//
// A connection starts with a handshake frame written by the server:
//
//	difficulty (1 byte) | length (int32, big endian) | challenge (length bytes)
//
// With a non-zero difficulty the client answers with one line holding the
// nonce. After that the client sends one command per line and the server
// answers every command with a single line:
//
//	SUCCESS:<json>
//	ERROR:<code>:<message>
package protocol

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"
)

const (
	CmdHello  = "HELLO"
	CmdClick  = "CLICK"
	CmdReset  = "RESET"
	CmdState  = "STATE"
	CmdRandom = "RANDOM"
	CmdEnd    = "END"
	CmdQuit   = "QUIT"

	successPrefix = "SUCCESS:"
	errorPrefix   = "ERROR:"

	// MaxChallengeSize bounds the challenge a client is willing to read.
	MaxChallengeSize = 1024
)

var (
	ErrMalformed     = errors.New("malformed message")
	ErrChallengeSize = errors.New("invalid challenge size")
)

// RandomQuote is the payload of a RANDOM response.
type RandomQuote struct {
	Quote string `json:"quote"`
}

// Empty is the payload of responses that carry no data.
type Empty struct{}

// RemoteError is an ERROR response received from the server.
type RemoteError struct {
	Code    string
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// ParseCommand splits a command line into its upper-cased verb and optional argument.
func ParseCommand(line string) (string, string, error) {
	fields := strings.Fields(line)
	switch len(fields) {
	case 1:
		return strings.ToUpper(fields[0]), "", nil
	case 2:
		return strings.ToUpper(fields[0]), fields[1], nil
	default:
		return "", "", fmt.Errorf("%w: %q", ErrMalformed, line)
	}
}

// FormatCommand builds a command line without the trailing newline.
func FormatCommand(cmd, arg string) string {
	if arg == "" {
		return cmd
	}
	return cmd + " " + arg
}

// FormatSuccess encodes payload as a SUCCESS line.
func FormatSuccess(payload any) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode payload: %w", err)
	}
	return successPrefix + string(data) + "\n", nil
}

// FormatError encodes an ERROR line.
func FormatError(code, message string) string {
	return fmt.Sprintf("%s%s:%s\n", errorPrefix, code, message)
}

// ParseResponse decodes a response line into out. An ERROR line is
// returned as *RemoteError.
func ParseResponse(line string, out any) error {
	line = strings.TrimSpace(line)

	if payload, ok := strings.CutPrefix(line, successPrefix); ok {
		if out == nil {
			return nil
		}
		if err := json.Unmarshal([]byte(payload), out); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		return nil
	}

	if rest, ok := strings.CutPrefix(line, errorPrefix); ok {
		code, message, found := strings.Cut(rest, ":")
		if !found {
			return fmt.Errorf("%w: invalid error format", ErrMalformed)
		}
		return &RemoteError{Code: code, Message: message}
	}

	return fmt.Errorf("%w: invalid response format", ErrMalformed)
}

// WriteChallenge writes the handshake frame.
func WriteChallenge(w io.Writer, difficulty uint64, challenge []byte) error {
	if difficulty > 255 {
		return fmt.Errorf("%w: difficulty %d does not fit the frame", ErrMalformed, difficulty)
	}
	if _, err := w.Write([]byte{byte(difficulty)}); err != nil {
		return err
	}
	if err := binary.Write(w, binary.BigEndian, int32(len(challenge))); err != nil {
		return err
	}
	_, err := w.Write(challenge)
	return err
}

// ReadChallenge reads the handshake frame.
func ReadChallenge(r *bufio.Reader) (uint64, []byte, error) {
	difficulty, err := r.ReadByte()
	if err != nil {
		return 0, nil, err
	}

	var length int32
	if err := binary.Read(r, binary.BigEndian, &length); err != nil {
		return 0, nil, err
	}
	if length < 0 || length > MaxChallengeSize {
		return 0, nil, fmt.Errorf("%w: %d", ErrChallengeSize, length)
	}
	if difficulty == 0 && length != 0 {
		return 0, nil, fmt.Errorf("%w: challenge without difficulty", ErrMalformed)
	}

	challenge := make([]byte, length)
	if _, err := io.ReadFull(r, challenge); err != nil {
		return 0, nil, err
	}
	return uint64(difficulty), challenge, nil
}
