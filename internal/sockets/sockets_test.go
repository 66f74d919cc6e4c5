package sockets

import (
	goerrors "errors"
	"net"
	"testing"
	"time"

	"github.com/funglee2k22/sockecho-go/echolib/errors"
)

func TestListenEphemeral(t *testing.T) {
	ln, err := Listen("127.0.0.1", 0, 1)
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer ln.Close()

	addr, ok := ln.Addr().(*net.TCPAddr)
	if !ok || addr.Port == 0 {
		t.Fatalf("unexpected listener address %v", ln.Addr())
	}
}

func TestListenAddressInUse(t *testing.T) {
	// SO_REUSEADDR does not allow binding over an active listener.
	first, err := Listen("127.0.0.1", 0, 1)
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer first.Close()
	port := first.Addr().(*net.TCPAddr).Port

	_, err = Listen("127.0.0.1", port, 1)
	var bindErr *errors.BindError
	if !goerrors.As(err, &bindErr) {
		t.Fatalf("second Listen: got %v, want *BindError", err)
	}
}

func TestListenUnresolvableHost(t *testing.T) {
	_, err := Listen("no-such-host.invalid", 0, 1)
	var bindErr *errors.BindError
	if !goerrors.As(err, &bindErr) {
		t.Fatalf("got %v, want *BindError", err)
	}
}

func TestWaitReadable(t *testing.T) {
	ln, err := Listen("127.0.0.1", 0, 1)
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer ln.Close()

	client, err := net.Dial("tcp", ln.Addr().String())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer client.Close()

	server, err := ln.Accept()
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	defer server.Close()

	done := make(chan error, 1)
	go func() {
		done <- PollWaiter{}.WaitReadable(server)
	}()

	select {
	case err := <-done:
		t.Fatalf("wait returned before data was sent: %v", err)
	case <-time.After(100 * time.Millisecond):
	}

	if _, err := client.Write([]byte("ping")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("WaitReadable: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("wait did not return after data arrived")
	}

	// The wait must not consume the pending bytes.
	buf := make([]byte, 8)
	n, err := server.Read(buf)
	if err != nil || string(buf[:n]) != "ping" {
		t.Fatalf("Read = %q, %v", buf[:n], err)
	}
}

func TestWaitReadablePeerClosed(t *testing.T) {
	ln, err := Listen("127.0.0.1", 0, 1)
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer ln.Close()

	client, err := net.Dial("tcp", ln.Addr().String())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	server, err := ln.Accept()
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	defer server.Close()

	_ = client.Close()
	if err := WaitReadable(server); err != nil {
		t.Fatalf("WaitReadable: %v", err)
	}
}
