package sockets

import (
	"net"
	"os"
	"strconv"

	"github.com/funglee2k22/sockecho-go/echolib/errors"
	"golang.org/x/sys/unix"
)

// Listen creates a TCP stream socket with SO_REUSEADDR, binds it to
// (host, port) and marks it listening with the given backlog.
func Listen(host string, port, backlog int) (net.Listener, error) {
	addr := net.JoinHostPort(host, strconv.Itoa(port))

	ip, err := resolveIP(host, addr)
	if err != nil {
		return nil, err
	}

	var (
		family int
		sa     unix.Sockaddr
	)
	if ip4 := ip.To4(); ip4 != nil {
		family = unix.AF_INET
		sa4 := &unix.SockaddrInet4{Port: port}
		copy(sa4.Addr[:], ip4)
		sa = sa4
	} else {
		family = unix.AF_INET6
		sa6 := &unix.SockaddrInet6{Port: port}
		copy(sa6.Addr[:], ip.To16())
		sa = sa6
	}

	fd, err := unix.Socket(family, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, unix.IPPROTO_TCP)
	if err != nil {
		return nil, &errors.SocketCreateError{Op: "socket", Err: os.NewSyscallError("socket", err)}
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		_ = unix.Close(fd)
		return nil, &errors.SocketCreateError{Op: "setsockopt", Err: os.NewSyscallError("setsockopt", err)}
	}
	if err := unix.Bind(fd, sa); err != nil {
		_ = unix.Close(fd)
		return nil, &errors.BindError{Addr: addr, Err: os.NewSyscallError("bind", err)}
	}
	if err := unix.Listen(fd, backlog); err != nil {
		_ = unix.Close(fd)
		return nil, &errors.BindError{Addr: addr, Err: os.NewSyscallError("listen", err)}
	}

	// FileListener dups the descriptor, so the file is closed either way.
	f := os.NewFile(uintptr(fd), "sockecho-listener")
	defer f.Close()

	ln, err := net.FileListener(f)
	if err != nil {
		return nil, &errors.SocketCreateError{Op: "filelistener", Err: err}
	}
	return ln, nil
}
