package tcp

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"stanbot/internal/domain"
	"stanbot/internal/protocol"
	"stanbot/internal/usecases"
)

type Client struct {
	cfg           *Config
	solverUsecase usecases.SolverUsecase
	logger        Logger
}

type Config struct {
	ServerAddr     string
	ConnectTimeout time.Duration
	RequestTimeout time.Duration
	RetryAttempts  int
	RetryDelay     time.Duration
}

type Logger interface {
	Error(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Debug(msg string, args ...interface{})
}

func NewClient(
	cfg *Config,
	solverUsecase usecases.SolverUsecase,
	logger Logger,
) *Client {
	return &Client{
		cfg:           cfg,
		solverUsecase: solverUsecase,
		logger:        logger,
	}
}

// Dial connects to the server and completes the handshake, retrying
// failures that may go away on their own.
func (c *Client) Dial(ctx context.Context) (*Conn, error) {
	var lastErr error
	for attempt := 0; attempt <= c.cfg.RetryAttempts; attempt++ {
		if attempt > 0 {
			c.logger.Info("retrying connection",
				"attempt", attempt+1,
				"max_attempts", c.cfg.RetryAttempts+1,
				"error", lastErr)

			select {
			case <-time.After(c.cfg.RetryDelay):
			case <-ctx.Done():
				return nil, NewClientError("Dial", ctx.Err(), "cancelled while waiting to retry")
			}
		}

		conn, err := c.dial(ctx)
		if err == nil {
			return conn, nil
		}
		if !IsRetryableError(err) {
			return nil, err
		}
		lastErr = err
	}
	return nil, NewClientError("Dial", ErrMaxRetriesExceeded, lastErr.Error())
}

func (c *Client) dial(ctx context.Context) (*Conn, error) {
	connectCtx, cancel := context.WithTimeout(ctx, c.cfg.ConnectTimeout)
	defer cancel()

	var d net.Dialer
	netConn, err := d.DialContext(connectCtx, "tcp", c.cfg.ServerAddr)
	if err != nil {
		return nil, NewClientError("connect", ErrConnectFailed, err.Error())
	}

	conn := &Conn{
		conn:   netConn,
		reader: bufio.NewReader(netConn),
		writer: bufio.NewWriter(netConn),
		client: c,
	}
	if err := conn.handshake(ctx); err != nil {
		netConn.Close()
		return nil, err
	}
	return conn, nil
}

// Conn is an established connection to the robot server.
type Conn struct {
	conn   net.Conn
	reader *bufio.Reader
	writer *bufio.Writer
	client *Client
}

func (c *Conn) handshake(ctx context.Context) error {
	if err := c.conn.SetReadDeadline(time.Now().Add(c.client.cfg.RequestTimeout)); err != nil {
		return NewClientError("handshake", err, "setting timeout failed")
	}

	difficulty, challenge, err := protocol.ReadChallenge(c.reader)
	if err != nil {
		return c.wrapIOError("handshake", err)
	}
	if difficulty == 0 {
		return nil
	}

	c.client.logger.Debug("solving challenge", "difficulty", difficulty)

	solveCtx, cancel := context.WithTimeout(ctx, c.client.cfg.RequestTimeout)
	defer cancel()

	solution, err := c.client.solverUsecase.FindSolution(solveCtx, challenge, difficulty)
	if err != nil {
		return NewClientError("handshake", ErrSolutionNotFound, err.Error())
	}
	return c.writeLine("handshake", solution)
}

// Hello opens a new session, or resumes id when it is not empty.
func (c *Conn) Hello(id string) (domain.Snapshot, error) {
	var snap domain.Snapshot
	err := c.roundTrip("Hello", protocol.FormatCommand(protocol.CmdHello, id), &snap)
	return snap, err
}

// Click asks the robot for its next joke.
func (c *Conn) Click() (domain.Snapshot, error) {
	var snap domain.Snapshot
	err := c.roundTrip("Click", protocol.CmdClick, &snap)
	return snap, err
}

func (c *Conn) Reset() (domain.Snapshot, error) {
	var snap domain.Snapshot
	err := c.roundTrip("Reset", protocol.CmdReset, &snap)
	return snap, err
}

func (c *Conn) State() (domain.Snapshot, error) {
	var snap domain.Snapshot
	err := c.roundTrip("State", protocol.CmdState, &snap)
	return snap, err
}

// Random returns a joke without touching the session.
func (c *Conn) Random() (string, error) {
	var resp protocol.RandomQuote
	err := c.roundTrip("Random", protocol.CmdRandom, &resp)
	return resp.Quote, err
}

// End asks the server to forget the current session.
func (c *Conn) End() error {
	return c.roundTrip("End", protocol.CmdEnd, nil)
}

// Close says goodbye to the server and closes the connection.
func (c *Conn) Close() error {
	if err := c.roundTrip("Close", protocol.CmdQuit, nil); err != nil {
		c.client.logger.Debug("quit failed", "error", err)
	}
	return c.conn.Close()
}

func (c *Conn) roundTrip(op, command string, out any) error {
	if err := c.writeLine(op, command); err != nil {
		return err
	}

	if err := c.conn.SetReadDeadline(time.Now().Add(c.client.cfg.RequestTimeout)); err != nil {
		return NewClientError(op, err, "setting timeout failed")
	}
	line, err := c.reader.ReadString('\n')
	if err != nil {
		return c.wrapIOError(op, err)
	}

	if err := protocol.ParseResponse(line, out); err != nil {
		var remote *protocol.RemoteError
		if errors.As(err, &remote) {
			return NewClientError(op, remote, "")
		}
		return NewClientError(op, ErrInvalidProtocol, err.Error())
	}
	return nil
}

func (c *Conn) writeLine(op, line string) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.client.cfg.RequestTimeout)); err != nil {
		return NewClientError(op, err, "setting timeout failed")
	}
	if _, err := c.writer.WriteString(line + "\n"); err != nil {
		return c.wrapIOError(op, err)
	}
	if err := c.writer.Flush(); err != nil {
		return c.wrapIOError(op, err)
	}
	return nil
}

func (c *Conn) wrapIOError(op string, err error) error {
	var netErr net.Error
	switch {
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, net.ErrClosed):
		return NewClientError(op, ErrConnectionClosed, err.Error())
	case errors.As(err, &netErr) && netErr.Timeout():
		return NewClientError(op, ErrReadTimeout, err.Error())
	case errors.Is(err, protocol.ErrChallengeSize), errors.Is(err, protocol.ErrMalformed):
		return NewClientError(op, ErrInvalidProtocol, err.Error())
	default:
		return NewClientError(op, err, fmt.Sprintf("%s failed", op))
	}
}
