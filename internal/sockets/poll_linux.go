package sockets

import (
	"fmt"
	"net"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// WaitReadable parks the caller until conn has data to read, has been
// closed by the peer, or is in error. No data is consumed.
//
// The probe runs inside RawConn.Read: a zero-timeout poll reports whether
// the fd is ready, and when it is not the runtime netpoller waits for
// readability and probes again.
func WaitReadable(conn net.Conn) error {
	sc, ok := conn.(syscall.Conn)
	if !ok {
		// Nothing to poll on, the following Read blocks instead.
		return nil
	}
	raw, err := sc.SyscallConn()
	if err != nil {
		return err
	}

	var pollErr error
	err = raw.Read(func(fd uintptr) bool {
		fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN | unix.POLLRDHUP}}
		for {
			n, err := unix.Poll(fds, 0)
			if err == unix.EINTR {
				continue
			}
			if err != nil {
				pollErr = os.NewSyscallError("poll", err)
				return true
			}
			if n > 0 && fds[0].Revents&unix.POLLNVAL != 0 {
				pollErr = fmt.Errorf("poll: invalid descriptor %d", fd)
			}
			return n > 0
		}
	})
	if err != nil {
		return err
	}
	return pollErr
}
