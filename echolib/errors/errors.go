package errors

import (
	goerrors "errors"
	"fmt"
	"net"
)

// Process exit codes reported by the sockecho binary.
const (
	ExitOK            = 0
	ExitSetupFailure  = 1
	ExitReadinessWait = 2
)

// ErrNotListening is returned by Start when the listening socket was never
// created or has already been released.
var ErrNotListening = goerrors.New("sockecho: server is not listening")

// SocketCreateError reports that the listening socket could not be allocated
// or configured.
type SocketCreateError struct {
	Op  string
	Err error
}

func (e *SocketCreateError) Error() string {
	return fmt.Sprintf("socket creation failed (%s): %v", e.Op, e.Err)
}

func (e *SocketCreateError) Unwrap() error { return e.Err }

// BindError reports that the configured address could not be bound or
// listened on.
type BindError struct {
	Addr string
	Err  error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("bind to %s failed: %v", e.Addr, e.Err)
}

func (e *BindError) Unwrap() error { return e.Err }

// ReadinessWaitError reports a failure of the wait on an active connection.
// It is fatal to the server.
type ReadinessWaitError struct {
	Peer net.Addr
	Err  error
}

func (e *ReadinessWaitError) Error() string {
	return fmt.Sprintf("readiness wait on %v failed: %v", e.Peer, e.Err)
}

func (e *ReadinessWaitError) Unwrap() error { return e.Err }

// ExitCode maps an error returned by the server to a process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var waitErr *ReadinessWaitError
	if goerrors.As(err, &waitErr) {
		return ExitReadinessWait
	}
	return ExitSetupFailure
}
