package types

import (
	"bytes"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultHost = "0.0.0.0"
	DefaultPort = 8000
)

// ServerConfig is the address an EchoServer binds to.
type ServerConfig struct {
	Host string
	Port int
}

func DefaultServerConfig() ServerConfig {
	return ServerConfig{Host: DefaultHost, Port: DefaultPort}
}

func (c ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c ServerConfig) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	return nil
}

type Callbacks struct {
	OnSessionOpen  func(session SessionInfo)
	OnSessionClose func(session SessionInfo, reason CloseReason)
}

// Waiter blocks until conn has data to read or was closed by the peer,
// without consuming any data.
type Waiter interface {
	WaitReadable(conn net.Conn) error
}

type SessionInfo struct {
	ID       uuid.UUID
	Peer     net.Addr
	OpenedAt time.Time
}

// Status describes why Start returned.
type Status int

const (
	StatusFailed Status = iota
	StatusQuit
	StatusClosed
)

func (s Status) String() string {
	switch s {
	case StatusQuit:
		return "terminated-by-quit"
	case StatusClosed:
		return "closed"
	default:
		return "failed"
	}
}

// SessionResult tells the accept loop whether to keep accepting.
type SessionResult int

const (
	Continue SessionResult = iota
	Stop
)

type CloseReason string

const (
	ReasonPeerClosed       CloseReason = "peer-closed"
	ReasonCloseCommand     CloseReason = "close-command"
	ReasonQuitCommand      CloseReason = "quit-command"
	ReasonReadError        CloseReason = "read-error"
	ReasonWriteError       CloseReason = "write-error"
	ReasonReadinessFailure CloseReason = "readiness-failure"
	ReasonShutdown         CloseReason = "shutdown"
)

type Command int

const (
	CommandNone Command = iota
	CommandClose
	CommandQuit
)

var (
	closeWord = []byte("close")
	quitWord  = []byte("quit")
)

// Chunk is one read from a client connection, at most ReadSize bytes.
type Chunk struct {
	Data []byte
	Peer net.Addr
}

// Trimmed returns Data without trailing ASCII whitespace. It shares the
// underlying array with Data.
func (c Chunk) Trimmed() []byte {
	return bytes.TrimRight(c.Data, " \t\n\r\v\f")
}

func (c Chunk) Command() Command {
	t := c.Trimmed()
	switch {
	case bytes.Equal(t, closeWord):
		return CommandClose
	case bytes.Equal(t, quitWord):
		return CommandQuit
	}
	return CommandNone
}
