package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sockecho "github.com/funglee2k22/sockecho-go"
	echoerrors "github.com/funglee2k22/sockecho-go/echolib/errors"
	"github.com/funglee2k22/sockecho-go/echolib/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/scott-cotton/cli"
	"golang.org/x/sync/errgroup"
)

// resolve merges defaults, the config file and flags, in that order. Zero
// flag values mean "not set".
func (cfg *ServeConfig) resolve() (sockecho.Config, error) {
	conf := sockecho.DefaultConfig()
	if cfg.ConfigFile != "" {
		var err error
		conf, err = sockecho.LoadConfig(cfg.ConfigFile)
		if err != nil {
			return conf, err
		}
	}
	if cfg.Host != "" {
		conf.Host = cfg.Host
	}
	if cfg.Port != 0 {
		conf.Port = cfg.Port
	}
	if cfg.Level != "" {
		conf.LogLevel = cfg.Level
	}
	if cfg.Metrics != "" {
		conf.MetricsAddr = cfg.Metrics
	}
	return conf, conf.Validate()
}

func serve(cfg *ServeConfig, cc *cli.Context, args []string) error {
	_, err := cfg.Serve.Parse(cc, args)
	if err != nil {
		return err
	}

	conf, err := cfg.resolve()
	if err != nil {
		return fmt.Errorf("%w: %w", cli.ErrUsage, err)
	}

	reg := prometheus.NewRegistry()
	err = sockecho.Initialize(sockecho.Options{
		Logger:     &logger,
		Level:      conf.LogLevel,
		Registerer: reg,
		OnOpen: func() {
			logger.Debug().Msg("OnStart")
		},
		OnClose: func() {
			logger.Debug().Msg("OnClose")
		},
	})
	if err != nil {
		return err
	}

	srv, err := sockecho.Listen(conf.ServerConfig(), types.Callbacks{
		OnSessionOpen: func(info types.SessionInfo) {
			logger.Debug().Msgf(">> Session open %v (%v)", info.ID, info.Peer)
		},
		OnSessionClose: func(info types.SessionInfo, reason types.CloseReason) {
			logger.Debug().Msgf(">> Session close %v, reason %s, after %v", info.ID, reason, time.Since(info.OpenedAt))
		},
	})
	if err != nil {
		return cli.ExitCodeErr(echoerrors.ExitCode(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	var status types.Status
	g.Go(func() error {
		var err error
		status, err = srv.Start(gctx)
		// Ends the metrics server as well.
		stop()
		return err
	})

	if conf.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
		metricsSrv := &http.Server{Addr: conf.MetricsAddr, Handler: mux}

		g.Go(func() error {
			logger.Info().Msgf("Metrics server listening on %s", conf.MetricsAddr)
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return metricsSrv.Shutdown(shutdownCtx)
		})
	}

	err = g.Wait()
	sockecho.Terminate()
	if err != nil {
		logger.Error().Msgf("Server stopped: %v", err)
		return cli.ExitCodeErr(echoerrors.ExitCode(err))
	}

	logger.Info().Msgf("Exiting socket server (%v)", status)
	return nil
}
