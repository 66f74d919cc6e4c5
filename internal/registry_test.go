package internal

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	log "github.com/rs/zerolog"
)

type fakeCloser struct {
	closed int
}

func (f *fakeCloser) Close() error {
	f.closed++
	return nil
}

func TestRegistryAllowsOneSession(t *testing.T) {
	r := NewRegistry(log.Nop())

	first, second := uuid.New(), uuid.New()
	if err := r.Register(first, &fakeCloser{}); err != nil {
		t.Fatalf("register first: %v", err)
	}
	if err := r.Register(second, &fakeCloser{}); !errors.Is(err, ErrSessionActive) {
		t.Fatalf("register second: got %v, want ErrSessionActive", err)
	}
	if err := r.Register(first, &fakeCloser{}); err != nil {
		t.Fatalf("re-register first: %v", err)
	}
	if r.Len() != 1 {
		t.Fatalf("Len = %d, want 1", r.Len())
	}

	r.Remove(first)
	if err := r.Register(second, &fakeCloser{}); err != nil {
		t.Fatalf("register after remove: %v", err)
	}
	if _, ok := r.Get(first); ok {
		t.Fatal("removed session still present")
	}
}

func TestRegistryCloseAll(t *testing.T) {
	r := NewRegistry(log.Nop())
	c := &fakeCloser{}
	id := uuid.New()
	if err := r.Register(id, c); err != nil {
		t.Fatal(err)
	}

	r.CloseAll()
	if c.closed != 1 {
		t.Fatalf("closed %d times, want 1", c.closed)
	}
	// CloseAll leaves removal to the session.
	if r.Len() != 1 {
		t.Fatalf("Len = %d, want 1", r.Len())
	}
	r.Remove(id)
	r.Remove(id)
	if r.Len() != 0 {
		t.Fatalf("Len = %d, want 0", r.Len())
	}
}
