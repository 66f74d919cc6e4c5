package echolib

import (
	"github.com/funglee2k22/sockecho-go/echolib/types"
	"github.com/funglee2k22/sockecho-go/internal/sockets"
)

var _ types.Waiter = sockets.PollWaiter{}

const (
	// ReadSize is the largest chunk read from a client per iteration.
	ReadSize = 255
	// Backlog is the listen queue length of the server socket.
	Backlog = 1
)
