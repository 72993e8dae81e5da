package tcp

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"stanbot/internal/domain"
	"stanbot/internal/metrics"
	"stanbot/internal/protocol"
	"stanbot/internal/usecases"
)

type Server struct {
	cfg          *Config
	powUsecase   usecases.PowUsecase
	quoteUsecase usecases.QuoteUsecase
	metrics      *metrics.Metrics
	logger       Logger

	mu      sync.Mutex
	conns   map[net.Conn]struct{}
	closing bool
	wg      sync.WaitGroup
}

type Config struct {
	Address    string
	KeepAlive  time.Duration
	Deadline   time.Duration // idle limit for every read from the client
	BufferSize int           // longest accepted command line
}

type Logger interface {
	Error(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Debug(msg string, args ...interface{})
}

func NewServer(
	cfg *Config,
	powUsecase usecases.PowUsecase,
	quoteUsecase usecases.QuoteUsecase,
	m *metrics.Metrics,
	logger Logger,
) *Server {
	return &Server{
		cfg:          cfg,
		powUsecase:   powUsecase,
		quoteUsecase: quoteUsecase,
		metrics:      m,
		logger:       logger,
		conns:        make(map[net.Conn]struct{}),
	}
}

func (s *Server) Run(ctx context.Context) error {
	lc := net.ListenConfig{
		KeepAlive: s.cfg.KeepAlive,
	}

	listener, err := lc.Listen(ctx, "tcp", s.cfg.Address)
	if err != nil {
		return NewConnectionError("Run", err, "failed to start listener")
	}

	s.logger.Info("server started", "address", listener.Addr().String())

	return s.Serve(ctx, listener)
}

// Serve accepts connections on listener until ctx is done. On shutdown
// it closes the listener and every live connection and waits for their
// handlers to return. Serve takes ownership of listener.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	stop := context.AfterFunc(ctx, func() {
		listener.Close()
		s.closeConns()
	})
	defer stop()
	defer s.wg.Wait()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				s.logger.Debug("listener closed")
				return nil
			}
			s.logger.Error("accept failed", "error", err)
			continue
		}

		if !s.track(conn) {
			conn.Close()
			continue
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.untrack(conn)
			s.handleConnection(conn)
		}()
	}
}

func (s *Server) track(conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing {
		return false
	}
	s.conns[conn] = struct{}{}
	return true
}

func (s *Server) untrack(conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, conn)
}

func (s *Server) closeConns() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closing = true
	for conn := range s.conns {
		conn.Close()
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	defer func() {
		if err := conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			s.logger.Error("connection close failed",
				"error", NewConnectionError("handleConnection", err, "cleanup failed"))
		}
	}()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 64), s.cfg.BufferSize)

	session := &Session{
		conn:    conn,
		scanner: scanner,
		writer:  bufio.NewWriter(conn),
		server:  s,
	}

	if err := session.Handle(); err != nil {
		s.handleError(conn, session.writer, err)
	}
}

// Session serves the commands of one connection. It is bound to at most
// one robot session at a time.
type Session struct {
	conn      net.Conn
	scanner   *bufio.Scanner
	writer    *bufio.Writer
	server    *Server
	sessionID string
}

func (s *Session) Handle() error {
	if err := s.handshake(); err != nil {
		if errors.Is(err, io.EOF) {
			s.server.logger.Debug("client left during handshake")
			return nil
		}
		return err
	}

	for {
		line, err := s.readLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		quit, err := s.dispatch(line)
		if err != nil {
			if !IsRecoverable(err) {
				return err
			}
			s.server.handleError(s.conn, s.writer, err)
			continue
		}
		if quit {
			return nil
		}
	}
}

func (s *Session) handshake() error {
	pow, err := s.server.powUsecase.GenerateChallenge()
	if err != nil {
		return NewConnectionError("handshake", ErrChallengeFailed, err.Error())
	}

	if err := s.conn.SetWriteDeadline(time.Now().Add(s.server.cfg.Deadline)); err != nil {
		return NewConnectionError("handshake", err, "setting timeout failed")
	}
	if err := protocol.WriteChallenge(s.writer, pow.Difficulty, pow.Challenge); err != nil {
		return NewConnectionError("handshake", ErrChallengeDelivery, err.Error())
	}
	if err := s.writer.Flush(); err != nil {
		return NewConnectionError("handshake", ErrChallengeDelivery, err.Error())
	}

	if !s.server.powUsecase.Enabled() {
		return nil
	}

	s.server.logger.Debug("challenge sent", "difficulty", pow.Difficulty, "length", len(pow.Challenge))

	solution, err := s.readLine()
	if err != nil {
		s.server.metrics.HandshakeFailures.Inc()
		return err
	}
	if !s.server.powUsecase.ValidateSolution(pow.Challenge, []byte(solution)) {
		s.server.metrics.HandshakeFailures.Inc()
		return NewConnectionError("handshake", ErrInvalidSolution, "validation failed")
	}
	return nil
}

func (s *Session) readLine() (string, error) {
	if err := s.conn.SetReadDeadline(time.Now().Add(s.server.cfg.Deadline)); err != nil {
		return "", NewConnectionError("readLine", err, "setting timeout failed")
	}

	if s.scanner.Scan() {
		return s.scanner.Text(), nil
	}

	err := s.scanner.Err()
	var netErr net.Error
	switch {
	case err == nil, errors.Is(err, net.ErrClosed):
		return "", io.EOF
	case errors.Is(err, bufio.ErrTooLong):
		return "", NewConnectionError("readLine", ErrInvalidProtocol, "line too long")
	case errors.As(err, &netErr) && netErr.Timeout():
		return "", NewConnectionError("readLine", ErrReadTimeout, "idle deadline exceeded")
	default:
		return "", NewConnectionError("readLine", err, "read failed")
	}
}

func (s *Session) dispatch(line string) (bool, error) {
	cmd, arg, err := protocol.ParseCommand(line)
	if err != nil {
		return false, NewConnectionError("dispatch", ErrMalformedCommand, err.Error())
	}

	quotes := s.server.quoteUsecase
	var snap domain.Snapshot

	switch cmd {
	case protocol.CmdHello:
		snap, err = quotes.Open(arg)
		if err == nil {
			s.sessionID = snap.Session
			s.server.logger.Debug("session opened", "session", snap.Session, "resumed", arg != "")
		}
	case protocol.CmdClick:
		if err = s.ensureSession(); err == nil {
			snap, err = quotes.Click(s.sessionID)
		}
	case protocol.CmdReset:
		if err = s.ensureSession(); err == nil {
			snap, err = quotes.Reset(s.sessionID)
		}
	case protocol.CmdState:
		if err = s.ensureSession(); err == nil {
			snap, err = quotes.State(s.sessionID)
		}
	case protocol.CmdRandom:
		return false, s.respond(protocol.RandomQuote{Quote: quotes.Random()})
	case protocol.CmdEnd:
		if s.sessionID == "" {
			return false, s.respond(protocol.Empty{})
		}
		err = quotes.End(s.sessionID)
		s.sessionID = ""
		if err != nil {
			return false, err
		}
		return false, s.respond(protocol.Empty{})
	case protocol.CmdQuit:
		return true, s.respond(protocol.Empty{})
	default:
		return false, NewConnectionError("dispatch", ErrUnknownCommand, cmd)
	}

	if err != nil {
		if errors.Is(err, usecases.ErrSessionNotFound) {
			s.sessionID = ""
		}
		return false, err
	}
	return false, s.respond(snap)
}

// ensureSession opens a fresh robot session for commands sent before HELLO.
func (s *Session) ensureSession() error {
	if s.sessionID != "" {
		return nil
	}
	snap, err := s.server.quoteUsecase.Open("")
	if err != nil {
		return err
	}
	s.sessionID = snap.Session
	return nil
}

func (s *Session) respond(payload any) error {
	line, err := protocol.FormatSuccess(payload)
	if err != nil {
		return NewConnectionError("respond", err, "encode failed")
	}
	return s.write(line)
}

func (s *Session) write(line string) error {
	if err := s.conn.SetWriteDeadline(time.Now().Add(s.server.cfg.Deadline)); err != nil {
		return NewConnectionError("write", err, "setting timeout failed")
	}
	if _, err := s.writer.WriteString(line); err != nil {
		return s.writeError(err)
	}
	if err := s.writer.Flush(); err != nil {
		return s.writeError(err)
	}
	return nil
}

func (s *Session) writeError(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return NewConnectionError("write", ErrWriteTimeout, err.Error())
	}
	return NewConnectionError("write", err, "write response failed")
}

// handleError reports err to the client. The write gets its own deadline
// because an expired read deadline usually means the last one has passed too.
func (s *Server) handleError(conn net.Conn, writer *bufio.Writer, err error) {
	response := ToErrorResponse(err)
	if IsRecoverable(err) {
		s.logger.Debug("client error",
			"code", response.Code,
			"error", err)
	} else {
		s.logger.Error("client error",
			"code", response.Code,
			"message", response.Message,
			"error", err)
	}

	if err := conn.SetWriteDeadline(time.Now().Add(s.cfg.Deadline)); err != nil {
		s.logger.Debug("failed to send error response", "error", err)
		return
	}
	if err := sendErrorResponse(writer, response); err != nil {
		s.logger.Debug("failed to send error response", "error", err)
	}
}

func sendErrorResponse(writer *bufio.Writer, response ErrorResponse) error {
	if _, err := writer.WriteString(protocol.FormatError(response.Code, response.Message)); err != nil {
		return fmt.Errorf("write error response: %w", err)
	}
	return writer.Flush()
}
