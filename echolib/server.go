package echolib

import (
	"context"
	goerrors "errors"
	"net"
	"sync"

	"github.com/funglee2k22/sockecho-go/echolib/errors"
	"github.com/funglee2k22/sockecho-go/echolib/types"
	"github.com/funglee2k22/sockecho-go/internal"
	"github.com/funglee2k22/sockecho-go/internal/sockets"

	log "github.com/rs/zerolog"
)

// EchoServer accepts one client at a time and echoes what it sends.
type EchoServer struct {
	// exported fields
	Config types.ServerConfig
	Logger log.Logger

	// callback
	types.Callbacks

	// unexported fields
	metrics  *Metrics
	waiter   types.Waiter
	registry *internal.Registry

	mtx      sync.Mutex
	listener net.Listener
}

type ServerOption func(*EchoServer)

func WithLogger(logger log.Logger) ServerOption {
	return func(s *EchoServer) { s.Logger = logger }
}

func WithCallbacks(callbacks types.Callbacks) ServerOption {
	return func(s *EchoServer) { s.Callbacks = callbacks }
}

func WithMetrics(metrics *Metrics) ServerOption {
	return func(s *EchoServer) { s.metrics = metrics }
}

// WithWaiter replaces the poll based readiness wait.
func WithWaiter(waiter types.Waiter) ServerOption {
	return func(s *EchoServer) { s.waiter = waiter }
}

// NewEchoServer creates the listening socket for cfg. On error no server is
// returned, so a half-built server can never be started.
func NewEchoServer(cfg types.ServerConfig, opts ...ServerOption) (*EchoServer, error) {
	s := &EchoServer{
		Config: cfg,
		Logger: log.Nop(),
		waiter: sockets.PollWaiter{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registry = internal.NewRegistry(s.Logger)

	if err := cfg.Validate(); err != nil {
		bindErr := &errors.BindError{Addr: cfg.Addr(), Err: err}
		s.Logger.Error().Msgf("Socket setup failed: %v", bindErr)
		return nil, bindErr
	}

	ln, err := sockets.Listen(cfg.Host, cfg.Port, Backlog)
	if err != nil {
		s.Logger.Error().Msgf("Socket setup failed: %v", err)
		return nil, err
	}
	s.listener = ln
	return s, nil
}

// Start runs the accept loop until a client sends quit, the server is
// closed, ctx is done, or a readiness wait fails.
func (s *EchoServer) Start(ctx context.Context) (types.Status, error) {
	ln := s.currentListener()
	if ln == nil {
		return types.StatusFailed, errors.ErrNotListening
	}
	s.Logger.Info().Msgf("Starting socket server at %v", ln.Addr())

	stop := context.AfterFunc(ctx, func() {
		s.Logger.Info().Msgf("Server context closed")
		s.Shutdown()
	})
	defer stop()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if s.IsClosed() {
				return types.StatusClosed, nil
			}
			var netErr net.Error
			if goerrors.As(err, &netErr) && netErr.Timeout() {
				continue
			}
			s.Logger.Error().Msgf("Accept failed: %v", err)
			_ = s.Close()
			return types.StatusFailed, err
		}

		result, err := s.serveClient(conn, conn.RemoteAddr())
		if err != nil {
			s.Logger.Error().Msgf("Fatal session error: %v", err)
			_ = s.Close()
			return types.StatusFailed, err
		}
		if result == types.Stop {
			s.Logger.Info().Msgf("Quit command received, stopping server")
			_ = s.Close()
			return types.StatusQuit, nil
		}
	}
}

func (s *EchoServer) serveClient(conn net.Conn, peer net.Addr) (types.SessionResult, error) {
	session := newClientSession(s, conn, peer)
	if err := s.registry.Register(session.ID(), closerFunc(session.shutdown)); err != nil {
		s.Logger.Error().Msgf("Rejecting %v: %v", peer, err)
		_ = conn.Close()
		return types.Continue, nil
	}
	defer s.registry.Remove(session.ID())

	// Shutdown may have raced the accept.
	if s.IsClosed() {
		_ = session.shutdown()
	}

	s.Logger.Info().Msgf("Client %v connected", peer)
	s.metrics.sessionOpened()
	if s.OnSessionOpen != nil {
		s.OnSessionOpen(session.Info())
	}

	result, reason, err := session.serve()
	_ = session.Close()

	s.Logger.Info().Str("reason", string(reason)).Msgf("Session with %v ended", peer)
	s.metrics.sessionClosed(reason, session.openedAt)
	if s.OnSessionClose != nil {
		s.OnSessionClose(session.Info(), reason)
	}
	return result, err
}

func (s *EchoServer) currentListener() net.Listener {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.listener
}

// Close releases the listening socket. Calling it again is a no-op.
func (s *EchoServer) Close() error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.listener == nil {
		return nil
	}
	s.Logger.Info().Msgf("Shutting down socket server at %v", s.listener.Addr())
	err := s.listener.Close()
	s.listener = nil
	return err
}

// Shutdown closes the listening socket and the active session, if any.
func (s *EchoServer) Shutdown() {
	_ = s.Close()
	s.registry.CloseAll()
}

func (s *EchoServer) IsClosed() bool {
	return s.currentListener() == nil
}

func (s *EchoServer) Addr() net.Addr {
	ln := s.currentListener()
	if ln == nil {
		return nil
	}
	return ln.Addr()
}
