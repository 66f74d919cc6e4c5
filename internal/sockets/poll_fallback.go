//go:build !linux

package sockets

import "net"

// WaitReadable is a no-op on this build: the blocking Read that follows
// performs the wait.
func WaitReadable(conn net.Conn) error {
	return nil
}
