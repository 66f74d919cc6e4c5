package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/funglee2k22/sockecho-go/echolib"
	"github.com/funglee2k22/sockecho-go/echolib/types"
	"github.com/mattn/go-isatty"
	"github.com/scott-cotton/cli"
)

func client(cfg *ClientConfig, cc *cli.Context, args []string) error {
	_, err := cfg.Client.Parse(cc, args)
	if err != nil {
		return err
	}

	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		return fmt.Errorf("could not dial %s: %w", addr, err)
	}

	colors := cfg.Color
	if f, ok := cc.Out.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		colors = true
	}
	return runClient(conn, cc.In, cc.Out, colors)
}

// runClient sends every line of in to conn and copies the echoed reply to
// out. It returns once the server closes the connection or in is drained.
func runClient(conn net.Conn, in io.Reader, out io.Writer, colors bool) error {
	defer conn.Close()

	reply := color.New(color.FgGreen)
	notice := color.New(color.FgYellow)
	if colors {
		reply.EnableColor()
		notice.EnableColor()
	} else {
		reply.DisableColor()
		notice.DisableColor()
	}

	scan := bufio.NewScanner(in)
	for scan.Scan() {
		line := []byte(scan.Text() + "\n")
		if len(line) > echolib.ReadSize {
			_, _ = notice.Fprintf(out, "line exceeds %d bytes and is echoed in several chunks\n", echolib.ReadSize)
		}
		if _, err := conn.Write(line); err != nil {
			return fmt.Errorf("write: %w", err)
		}

		// Control words are answered by closing the connection.
		if (types.Chunk{Data: line}).Command() != types.CommandNone {
			_, _ = io.Copy(io.Discard, conn)
			_, _ = notice.Fprintf(out, "connection closed by server\n")
			return nil
		}

		buf := make([]byte, len(line))
		if _, err := io.ReadFull(conn, buf); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				_, _ = notice.Fprintf(out, "connection closed by server\n")
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}
		_, _ = reply.Fprintf(out, "%s", buf)
	}
	return scan.Err()
}
