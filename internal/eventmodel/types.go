// Package eventmodel defines the fixed-shape event record that flows through
// the graph: categories, per-category operation codes, the 32-byte-equivalent
// payload union, and the 64-byte-equivalent node.
//
// C++ unions and alignas(64) structs don't translate directly into Go, so
// this package follows the sum-type-plus-tag approach: EventPayload carries
// a Category discriminator and a fixed-size raw buffer, with typed
// constructors/accessors doing the encode/decode that the C++ union did for
// free. EventNode.Marshal/UnmarshalEventNode produce the exact 64-byte wire
// shape for anything that needs byte-for-byte layout (tests, on-disk dumps).
package eventmodel

// EventId uniquely identifies an event within a graph. Zero is reserved.
type EventId uint64

// StringId references an entry in a string pool. Zero is reserved.
type StringId uint32

// Timestamp is a nanosecond count. Graph nodes carry monotonic nanoseconds
// since process start, stamped at insertion; a parsed event carries the
// source header's own timestamp.
type Timestamp uint64

// CorrelationId groups related events. Zero means "uncorrelated".
type CorrelationId uint32

// InvalidEvent is the sentinel EventId meaning "no event" / "no parent".
const InvalidEvent EventId = 0

// InvalidString is the sentinel StringId meaning "no string interned".
const InvalidString StringId = 0

// NoCorrelation is the sentinel CorrelationId meaning "not yet correlated".
const NoCorrelation CorrelationId = 0
