//go:build !linux

package sockets

import (
	"net"
	"strconv"

	"github.com/funglee2k22/sockecho-go/echolib/errors"
)

// Listen binds (host, port) through the net package. The backlog is left to
// the platform default on this build.
func Listen(host string, port, _ int) (net.Listener, error) {
	addr := net.JoinHostPort(host, strconv.Itoa(port))

	ip, err := resolveIP(host, addr)
	if err != nil {
		return nil, err
	}

	ln, err := net.ListenTCP("tcp", &net.TCPAddr{IP: ip, Port: port})
	if err != nil {
		return nil, &errors.BindError{Addr: addr, Err: err}
	}
	return ln, nil
}
