// Package source defines the external event-provider contract the core
// consumes: an opaque, provider-tagged record delivered by whatever
// mechanism the host OS exposes for kernel/userland tracing. The core
// treats the provider subsystem itself as an outside collaborator; this
// package only fixes the shape of what crosses that boundary plus the
// small interface a concrete backend (eBPF, a simulator, ETW on Windows)
// must implement to plug into the consumer pipeline.
package source

import "context"

// ProviderId is the host OS's stable 128-bit identifier for an event
// provider (GUID on Windows, a synthetic id for other backends).
type ProviderId [16]byte

// Header carries the fields common to every raw event regardless of
// provider.
type Header struct {
	ProcessId        uint32
	Timestamp        uint64 // opaque monotonic counter, provider-defined units
	PointerWidthIs64 bool
}

// RawEvent is the opaque record the provider subsystem delivers to the
// consumer callback. UserData is at most 64KiB and its internal layout is
// provider- and EventId-specific; decoding it is the parsers' job.
type RawEvent struct {
	ProviderId   ProviderId
	EventId      uint16
	EventVersion uint8
	Header       Header
	UserData     []byte
}

// MaxUserDataBytes bounds the opaque payload a single raw event may carry.
const MaxUserDataBytes = 64 * 1024

// Callback is invoked by a Session once per raw event, potentially from
// many goroutines concurrently for a high-rate backend. It must not block
// for long; heavy work belongs downstream of the dispatch it triggers.
type Callback func(RawEvent)

// ProviderConfig describes how a single provider should be enabled.
type ProviderConfig struct {
	Name     string
	Level    uint8
	Keywords uint64 // 0 means "all keywords"
}

// Session is the small interface the engine depends on in place of the
// host OS's actual trace-provider subsystem. EnableProvider/DisableProvider
// take effect for providers already started via Start; Start blocks the
// calling goroutine until the context is cancelled or Stop is called from
// elsewhere, mirroring the external "process trace" call the consumer
// worker blocks in.
type Session interface {
	// EnableProvider arms cfg for delivery once Start runs.
	EnableProvider(cfg ProviderConfig) error
	// DisableProvider stops delivery for an already-enabled provider name.
	DisableProvider(name string) error
	// Start blocks, delivering raw events to cb, until ctx is done or Stop
	// is called. Returns nil on a clean shutdown.
	Start(ctx context.Context, cb Callback) error
	// Stop unblocks a concurrent Start call. Idempotent.
	Stop()
}
