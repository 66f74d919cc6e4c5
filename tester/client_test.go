package main

import (
	"bytes"
	"context"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/funglee2k22/sockecho-go/echolib"
	"github.com/funglee2k22/sockecho-go/echolib/types"
)

func startEchoServer(t *testing.T) (string, <-chan types.Status) {
	t.Helper()
	srv, err := echolib.NewEchoServer(types.ServerConfig{Host: "127.0.0.1", Port: 0})
	if err != nil {
		t.Fatalf("NewEchoServer: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	done := make(chan types.Status, 1)
	go func() {
		status, _ := srv.Start(ctx)
		done <- status
	}()
	return srv.Addr().String(), done
}

func dialServer(t *testing.T, addr string) net.Conn {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr, 2*time.Second)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	_ = conn.SetDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func TestRunClientClose(t *testing.T) {
	addr, done := startEchoServer(t)

	var out bytes.Buffer
	in := strings.NewReader("hello\nworld  \nclose\nnever sent\n")
	if err := runClient(dialServer(t, addr), in, &out, false); err != nil {
		t.Fatalf("runClient: %v", err)
	}

	want := "hello\nworld  \nconnection closed by server\n"
	if out.String() != want {
		t.Fatalf("output = %q, want %q", out.String(), want)
	}

	out.Reset()
	if err := runClient(dialServer(t, addr), strings.NewReader("again\n"), &out, false); err != nil {
		t.Fatalf("second runClient: %v", err)
	}
	if out.String() != "again\n" {
		t.Fatalf("output = %q", out.String())
	}

	select {
	case status := <-done:
		t.Fatalf("server stopped: %v", status)
	default:
	}
}

func TestRunClientQuit(t *testing.T) {
	addr, done := startEchoServer(t)

	var out bytes.Buffer
	if err := runClient(dialServer(t, addr), strings.NewReader("quit\n"), &out, false); err != nil {
		t.Fatalf("runClient: %v", err)
	}
	if !strings.Contains(out.String(), "connection closed by server") {
		t.Fatalf("output = %q", out.String())
	}

	select {
	case status := <-done:
		if status != types.StatusQuit {
			t.Fatalf("status = %v", status)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop after quit")
	}
}

func TestServeConfigResolve(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sockecho.yaml")
	if err := os.WriteFile(path, []byte("host: 127.0.0.1\nport: 9300\nlog_level: warn\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := &ServeConfig{ConfigFile: path, Port: 9400, Metrics: "localhost:9401"}
	conf, err := cfg.resolve()
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if conf.Host != "127.0.0.1" || conf.Port != 9400 || conf.LogLevel != "warn" || conf.MetricsAddr != "localhost:9401" {
		t.Fatalf("conf = %+v", conf)
	}

	conf, err = (&ServeConfig{}).resolve()
	if err != nil {
		t.Fatalf("resolve defaults: %v", err)
	}
	if conf.ServerConfig() != types.DefaultServerConfig() {
		t.Fatalf("defaults = %+v", conf)
	}

	if _, err := (&ServeConfig{Level: "loud"}).resolve(); err == nil {
		t.Fatal("expected an error for an unknown level")
	}
}
