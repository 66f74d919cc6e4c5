package sockecho

import (
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/rs/zerolog"
)

type Options struct {
	Logger *log.Logger
	// Level is a zerolog level name, empty means info.
	Level string

	// Registerer receives the server metrics, nil disables them.
	Registerer prometheus.Registerer

	// custom callbacks
	OnOpen  func()
	OnClose func()
}
