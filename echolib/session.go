package echolib

import (
	goerrors "errors"
	"io"
	"net"
	"sync/atomic"
	"time"

	"github.com/funglee2k22/sockecho-go/echolib/errors"
	"github.com/funglee2k22/sockecho-go/echolib/types"
	"github.com/google/uuid"
	log "github.com/rs/zerolog"
)

// ClientSession serves one accepted connection until the peer goes away or
// sends a control word.
type ClientSession struct {
	// exported fields
	Conn   net.Conn
	Logger log.Logger

	// unexported fields
	id       uuid.UUID
	peer     net.Addr
	openedAt time.Time
	server   *EchoServer

	closed   atomic.Bool
	stopping atomic.Bool
}

func newClientSession(server *EchoServer, conn net.Conn, peer net.Addr) *ClientSession {
	id := uuid.New()
	return &ClientSession{
		Conn:     conn,
		Logger:   server.Logger.With().Str("session", id.String()).Logger(),
		id:       id,
		peer:     peer,
		openedAt: time.Now(),
		server:   server,
	}
}

func (c *ClientSession) ID() uuid.UUID {
	return c.id
}

func (c *ClientSession) Info() types.SessionInfo {
	return types.SessionInfo{
		ID:       c.id,
		Peer:     c.peer,
		OpenedAt: c.openedAt,
	}
}

func (c *ClientSession) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	return c.Conn.Close()
}

// shutdown closes the connection on behalf of the server, so the serve loop
// reports ReasonShutdown instead of a failure.
func (c *ClientSession) shutdown() error {
	c.stopping.Store(true)
	return c.Close()
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func (c *ClientSession) serve() (types.SessionResult, types.CloseReason, error) {
	buf := make([]byte, ReadSize)

	for {
		if err := c.server.waiter.WaitReadable(c.Conn); err != nil {
			if c.stopping.Load() {
				return types.Continue, types.ReasonShutdown, nil
			}
			c.Logger.Error().Msgf("Error waiting on socket at %v: %v", c.peer, err)
			return types.Stop, types.ReasonReadinessFailure, &errors.ReadinessWaitError{Peer: c.peer, Err: err}
		}

		n, err := c.Conn.Read(buf)
		if n == 0 {
			switch {
			case c.stopping.Load():
				return types.Continue, types.ReasonShutdown, nil
			case err == nil || goerrors.Is(err, io.EOF):
				c.Logger.Info().Msgf("%v closed the socket", c.peer)
				return types.Continue, types.ReasonPeerClosed, nil
			default:
				c.Logger.Error().Msgf("Error reading from %v: %v", c.peer, err)
				return types.Continue, types.ReasonReadError, nil
			}
		}

		chunk := types.Chunk{Data: buf[:n], Peer: c.peer}
		c.Logger.Info().Msgf("> %s", chunk.Trimmed())

		switch chunk.Command() {
		case types.CommandClose:
			c.Logger.Info().Msgf("Closing socket connection to %v", c.peer)
			_ = c.Close()
			return types.Continue, types.ReasonCloseCommand, nil
		case types.CommandQuit:
			c.Logger.Info().Msgf("Closing socket connection to %v, server quitting", c.peer)
			_ = c.Close()
			return types.Stop, types.ReasonQuitCommand, nil
		}

		written, err := c.Conn.Write(chunk.Data)
		c.server.metrics.echoed(written)
		if err != nil {
			if c.stopping.Load() {
				return types.Continue, types.ReasonShutdown, nil
			}
			c.Logger.Error().Msgf("Error writing to %v: %v", c.peer, err)
			return types.Continue, types.ReasonWriteError, nil
		}
		c.Logger.Debug().Msgf("echoed %d bytes to %v", written, c.peer)
	}
}
