package main

import (
	"context"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	log "github.com/rs/zerolog"
	"github.com/scott-cotton/cli"
)

var logger log.Logger

func init() {
	logger = newLogger(os.Stdout)
}

func newLogger(out *os.File) log.Logger {
	if isatty.IsTerminal(out.Fd()) || isatty.IsCygwinTerminal(out.Fd()) {
		return log.New(log.ConsoleWriter{Out: out, TimeFormat: time.StampMilli}).With().Timestamp().Logger()
	}
	return log.New(out).With().Timestamp().Logger()
}

func main() {
	cli.MainContext(context.Background(), MainCommand())
}
