package sockecho

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/funglee2k22/sockecho-go/echolib"
	"github.com/funglee2k22/sockecho-go/echolib/types"

	log "github.com/rs/zerolog"
)

var logger = log.Nop()
var opt Options
var metrics *echolib.Metrics

var serversLock sync.Mutex
var servers []*echolib.EchoServer

// Initialize configures logging and metrics for servers created by Listen.
// A Registerer can only be passed once, a second registration panics.
func Initialize(options Options) error {
	level := log.InfoLevel
	if options.Level != "" {
		l, err := log.ParseLevel(options.Level)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", options.Level, err)
		}
		level = l
	}
	log.SetGlobalLevel(level)
	log.TimeFieldFormat = time.StampMilli

	if options.Logger == nil {
		logger = log.New(os.Stdout).With().Timestamp().Logger()
	} else {
		logger = *options.Logger
	}

	opt = options

	metrics = nil
	if options.Registerer != nil {
		metrics = echolib.NewMetrics(options.Registerer)
	}

	logger.Info().Msg("Initialized")

	if opt.OnOpen != nil {
		opt.OnOpen()
	}
	return nil
}

// Terminate shuts down every server created by Listen.
func Terminate() {
	serversLock.Lock()
	open := servers
	servers = nil
	serversLock.Unlock()

	for _, srv := range open {
		srv.Shutdown()
	}

	logger.Info().Msg("Terminated")
	if opt.OnClose != nil {
		opt.OnClose()
	}
}

func Listen(cfg types.ServerConfig, callbacks types.Callbacks) (*echolib.EchoServer, error) {
	srv, err := echolib.NewEchoServer(cfg,
		echolib.WithLogger(logger),
		echolib.WithCallbacks(callbacks),
		echolib.WithMetrics(metrics),
	)
	if err != nil {
		logger.Error().Msgf("Could not listen on %s: %v", cfg.Addr(), err)
		return nil, err
	}

	serversLock.Lock()
	servers = append(servers, srv)
	serversLock.Unlock()

	return srv, nil
}
