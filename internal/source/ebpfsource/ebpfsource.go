// Package ebpfsource is a Linux source.Session backed by cilium/ebpf's ring
// buffer, kprobe, and tracepoint attachment machinery -- the idiomatic Go
// stand-in for the host's kernel/userland trace-provider subsystem that
// the core treats as an external collaborator. It loads no object code of
// its own: a caller supplies already-loaded programs and a ring buffer
// map (e.g. from bpf2go-generated bindings), and this package only owns
// attachment lifecycle and framing ring-buffer records into source.RawEvent.
package ebpfsource

import (
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"sync"

	"github.com/cilium/ebpf"
	"github.com/cilium/ebpf/link"
	"github.com/cilium/ebpf/ringbuf"
	"github.com/cilium/ebpf/rlimit"

	"github.com/exeray/exeray/internal/source"
)

// ProbeKind identifies how a provider's program attaches to the kernel.
type ProbeKind int

const (
	ProbeKretprobe ProbeKind = iota
	ProbeKprobe
	ProbeTracepoint
)

// Probe describes a single attach point backing one provider: a symbol (for
// k[ret]probes) or a tracepoint category/name pair, plus the loaded program
// to attach.
type Probe struct {
	Kind     ProbeKind
	Symbol   string // kprobe/kretprobe function name
	Category string // tracepoint category, e.g. "sched"
	Name     string // tracepoint name, e.g. "sched_process_exit"
	Program  *ebpf.Program
}

// Session is a source.Session backed by a ring buffer map and a set of
// per-provider probes. Probes attach lazily, on EnableProvider, and detach
// on DisableProvider or Stop.
type Session struct {
	mu      sync.Mutex
	ring    *ringbuf.Reader
	probes  map[string]Probe
	links   map[string]link.Link
	stopped chan struct{}
	once    sync.Once
}

// New creates a session over ringbufMap (already loaded by the caller, e.g.
// via bpf2go-generated LoadObjects) and the given provider probe table. If
// ringbufMap is nil the session runs in mock mode: EnableProvider still
// validates names against the probe table, but Start blocks until the
// context is cancelled or Stop is called without delivering events,
// mirroring the ring buffer
// reader's own "no BPF RingBuffer attached" fallback.
func New(ringbufMap *ebpf.Map, probes map[string]Probe) (*Session, error) {
	if err := rlimit.RemoveMemlock(); err != nil {
		return nil, fmt.Errorf("ebpfsource: removing memlock rlimit: %w", err)
	}

	s := &Session{
		probes:  probes,
		links:   make(map[string]link.Link),
		stopped: make(chan struct{}),
	}

	if ringbufMap == nil {
		slog.Warn("ebpfsource: no ring buffer map provided, running in mock mode")
		return s, nil
	}

	rd, err := ringbuf.NewReader(ringbufMap)
	if err != nil {
		return nil, fmt.Errorf("ebpfsource: opening ring buffer reader: %w", err)
	}
	s.ring = rd
	return s, nil
}

// EnableProvider attaches the probe registered for cfg.Name, if any.
func (s *Session) EnableProvider(cfg source.ProviderConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	probe, ok := s.probes[cfg.Name]
	if !ok {
		return fmt.Errorf("ebpfsource: unknown provider %q", cfg.Name)
	}
	if _, attached := s.links[cfg.Name]; attached {
		return nil
	}
	if probe.Program == nil {
		slog.Warn("ebpfsource: provider has no loaded program, skipping attach", "provider", cfg.Name)
		return nil
	}

	l, err := attach(probe)
	if err != nil {
		return fmt.Errorf("ebpfsource: attaching provider %q: %w", cfg.Name, err)
	}
	s.links[cfg.Name] = l
	return nil
}

// DisableProvider detaches the probe for name, if attached.
func (s *Session) DisableProvider(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.links[name]
	if !ok {
		return nil
	}
	delete(s.links, name)
	return l.Close()
}

func attach(p Probe) (link.Link, error) {
	switch p.Kind {
	case ProbeKretprobe:
		return link.Kretprobe(p.Symbol, p.Program, nil)
	case ProbeKprobe:
		return link.Kprobe(p.Symbol, p.Program, nil)
	case ProbeTracepoint:
		return link.Tracepoint(p.Category, p.Name, p.Program, nil)
	default:
		return nil, fmt.Errorf("ebpfsource: unknown probe kind %d", p.Kind)
	}
}

// recordHeader is the fixed prefix every ring-buffer record carries ahead
// of the provider- and event-specific user-data blob.
type recordHeader struct {
	ProviderId source.ProviderId
	EventId    uint16
	Version    uint8
	_          uint8 // padding
	ProcessId  uint32
	Timestamp  uint64
	Is64Bit    uint8
	_          [3]byte // padding
}

const recordHeaderSize = 16 + 2 + 1 + 1 + 4 + 8 + 1 + 3

// Start blocks, decoding ring buffer records into source.RawEvent and
// invoking cb for each, until ctx is cancelled or Stop is called. In mock
// mode (no ring buffer attached) it simply blocks until either happens.
func (s *Session) Start(ctx context.Context, cb source.Callback) error {
	if s.ring == nil {
		select {
		case <-ctx.Done():
			return nil
		case <-s.stopped:
			return nil
		}
	}

	go func() {
		select {
		case <-ctx.Done():
			s.ring.Close()
		case <-s.stopped:
			s.ring.Close()
		}
	}()

	for {
		record, err := s.ring.Read()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			select {
			case <-s.stopped:
				return nil
			default:
			}
			slog.Warn("ebpfsource: ring buffer read error", "error", err)
			continue
		}

		raw, ok := decodeRecord(record.RawSample)
		if !ok {
			slog.Debug("ebpfsource: dropping undersized ring buffer record", "bytes", len(record.RawSample))
			continue
		}
		cb(raw)
	}
}

func decodeRecord(b []byte) (source.RawEvent, bool) {
	if len(b) < recordHeaderSize {
		return source.RawEvent{}, false
	}
	var providerId source.ProviderId
	copy(providerId[:], b[0:16])
	eventId := binary.LittleEndian.Uint16(b[16:18])
	version := b[18]
	pid := binary.LittleEndian.Uint32(b[20:24])
	timestamp := binary.LittleEndian.Uint64(b[24:32])
	is64 := b[32] != 0

	return source.RawEvent{
		ProviderId:   providerId,
		EventId:      eventId,
		EventVersion: version,
		Header: source.Header{
			ProcessId:        pid,
			Timestamp:        timestamp,
			PointerWidthIs64: is64,
		},
		UserData: b[recordHeaderSize:],
	}, true
}

// Stop unblocks a concurrent Start call and detaches every attached probe.
// Idempotent.
func (s *Session) Stop() {
	s.once.Do(func() {
		close(s.stopped)
		s.mu.Lock()
		defer s.mu.Unlock()
		for name, l := range s.links {
			if err := l.Close(); err != nil {
				slog.Warn("ebpfsource: detaching provider", "provider", name, "error", err)
			}
			delete(s.links, name)
		}
	})
}
