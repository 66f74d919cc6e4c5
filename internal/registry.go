package internal

import (
	"errors"
	"io"
	"sync"

	"github.com/google/uuid"
	log "github.com/rs/zerolog"
)

var ErrSessionActive = errors.New("a client session is already active")

// Registry tracks the live client sessions of one server. The echo server
// is sequential, so Register refuses a second live session.
type Registry struct {
	Logger log.Logger

	mtx      sync.Mutex
	sessions map[uuid.UUID]io.Closer
}

func NewRegistry(logger log.Logger) *Registry {
	return &Registry{
		Logger:   logger,
		sessions: make(map[uuid.UUID]io.Closer),
	}
}

func (r *Registry) Register(id uuid.UUID, s io.Closer) error {
	if s == nil {
		return nil
	}
	r.mtx.Lock()
	defer r.mtx.Unlock()

	if _, ok := r.sessions[id]; ok {
		r.Logger.Trace().Msgf("skipped add session id: %v (already registered)", id)
		return nil
	}
	if len(r.sessions) > 0 {
		return ErrSessionActive
	}
	r.sessions[id] = s
	r.Logger.Trace().Msgf("added session id: %v", id)
	return nil
}

func (r *Registry) Get(id uuid.UUID) (io.Closer, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	s, ok := r.sessions[id]
	return s, ok
}

func (r *Registry) Remove(id uuid.UUID) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	if _, ok := r.sessions[id]; ok {
		delete(r.sessions, id)
		r.Logger.Trace().Msgf("removed session id: %v", id)
	}
}

func (r *Registry) Len() int {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	return len(r.sessions)
}

// CloseAll closes every registered session. Entries are removed by the
// sessions themselves when their serve loop unwinds.
func (r *Registry) CloseAll() {
	r.mtx.Lock()
	live := make([]io.Closer, 0, len(r.sessions))
	for _, s := range r.sessions {
		live = append(live, s)
	}
	r.mtx.Unlock()

	for _, s := range live {
		_ = s.Close()
	}
}
