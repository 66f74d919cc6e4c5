package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/scott-cotton/cli"
)

type MainConfig struct {
	Main *cli.Command
}

type ServeConfig struct {
	*MainConfig
	Serve *cli.Command

	Host       string `cli:"name=host desc='address to bind, default 0.0.0.0'"`
	Port       int    `cli:"name=port desc='TCP port to bind, default 8000'"`
	ConfigFile string `cli:"name=config desc='YAML configuration file'"`
	Level      string `cli:"name=level desc='log level: trace, debug, info, warn, error'"`
	Metrics    string `cli:"name=metrics desc='listen address of the /metrics endpoint'"`
}

type ClientConfig struct {
	*MainConfig
	Client *cli.Command

	Host  string `cli:"name=host desc='server address' default=127.0.0.1"`
	Port  int    `cli:"name=port desc='server port' default=8000"`
	Color bool   `cli:"name=color desc='colour replies even when stdout is not a terminal'"`
}

func MainCommand() *cli.Command {
	cfg := &MainConfig{}
	return cli.NewCommandAt(&cfg.Main, "sockecho").
		WithSynopsis("sockecho command [opts]").
		WithDescription("sockecho is a single-client TCP echo server.").
		WithRun(func(cc *cli.Context, args []string) error {
			return sockechoMain(cfg, cc, args)
		}).
		WithSubs(
			ServeCommand(cfg),
			ClientCommand(cfg))
}

func ServeCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &ServeConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Serve, "serve").
		WithAliases("s").
		WithSynopsis("serve [-host <host>] [-port <port>] [-config <file>] [-metrics <addr>]").
		WithDescription("run the echo server until a client sends quit").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return serve(cfg, cc, args)
		})
}

func ClientCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &ClientConfig{MainConfig: mainCfg, Host: "127.0.0.1", Port: 8000}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Client, "client").
		WithAliases("c").
		WithSynopsis("client [-host <host>] [-port <port>]").
		WithDescription("send stdin lines to an echo server and print the replies").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return client(cfg, cc, args)
		})
}

func sockechoMain(cfg *MainConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Main.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return cli.ErrNoCommandProvided
	}
	sub := cfg.Main.FindSub(cc, args[0])
	if sub == nil {
		return fmt.Errorf("%w: %q not found", cli.ErrNoSuchCommand, args[0])
	}
	err = sub.Run(cc, args[1:])
	if errors.Is(err, cli.ErrUsage) {
		sub.Usage(cc, err)
		os.Exit(sub.Exit(cc, err))
	}
	return err
}
