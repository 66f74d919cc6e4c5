// Package sockets builds the listening socket of the echo server and
// implements the readiness wait on accepted connections.
package sockets

import (
	"net"

	"github.com/funglee2k22/sockecho-go/echolib/errors"
)

// PollWaiter is the default readiness-wait primitive.
type PollWaiter struct{}

func (PollWaiter) WaitReadable(conn net.Conn) error {
	return WaitReadable(conn)
}

// resolveIP turns a host string into the IP to bind. An empty host binds
// every IPv4 interface.
func resolveIP(host, addr string) (net.IP, error) {
	if host == "" {
		return net.IPv4zero, nil
	}
	if ip := net.ParseIP(host); ip != nil {
		return ip, nil
	}
	ipAddr, err := net.ResolveIPAddr("ip", host)
	if err != nil {
		return nil, &errors.BindError{Addr: addr, Err: err}
	}
	return ipAddr.IP, nil
}
