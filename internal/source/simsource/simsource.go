// Package simsource is an in-process simulated source.Session: a goroutine
// feeding a buffered channel of synthetic RawEvents, standing in for the
// ebpfsource backend when no real ring buffer is attached -- the engine's
// own mock mode, grounded in the same fallback the teacher's ring buffer
// reader falls back to when it has no BPF object loaded.
package simsource

import (
	"context"
	"log/slog"
	"sync"

	"github.com/exeray/exeray/internal/source"
)

// bufferCapacity bounds how many injected events may be pending delivery
// before Inject drops the newest one, protecting the consumer from an
// unbounded backlog the same way the teacher's worker-pool channel does.
const bufferCapacity = 1000

// Session is a source.Session that delivers events pushed to it via
// Inject, useful for engine tests and for cmd/exerayd -sim.
type Session struct {
	mu      sync.Mutex
	enabled map[string]bool
	events  chan source.RawEvent
	stopped chan struct{}
	once    sync.Once
}

// New creates an idle simulated session.
func New() *Session {
	return &Session{
		enabled: make(map[string]bool),
		events:  make(chan source.RawEvent, bufferCapacity),
		stopped: make(chan struct{}),
	}
}

// EnableProvider marks a provider name as armed; simsource does not
// validate names against a fixed table since any caller-chosen name is
// valid for a simulation.
func (s *Session) EnableProvider(cfg source.ProviderConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled[cfg.Name] = true
	return nil
}

// DisableProvider un-arms a provider name.
func (s *Session) DisableProvider(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.enabled, name)
	return nil
}

// IsEnabled reports whether name was armed via EnableProvider.
func (s *Session) IsEnabled(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled[name]
}

// Inject pushes a synthetic raw event into the session's delivery queue.
// It drops the event and logs at DEBUG if the queue is full, matching the
// backpressure-drop behavior spec.md §5 requires of the real pipeline.
func (s *Session) Inject(raw source.RawEvent) {
	select {
	case s.events <- raw:
	default:
		slog.Debug("simsource: dropping injected event, queue full")
	}
}

// Start blocks, delivering injected events to cb, until ctx is cancelled
// or Stop is called.
func (s *Session) Start(ctx context.Context, cb source.Callback) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.stopped:
			return nil
		case raw := <-s.events:
			cb(raw)
		}
	}
}

// Stop unblocks a concurrent Start call. Idempotent.
func (s *Session) Stop() {
	s.once.Do(func() { close(s.stopped) })
}
