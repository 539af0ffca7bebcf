// Package schemacache defines the contract for the schema-guided decoding
// fallback: a black-box "best-effort property extractor" parsers may
// consult for an event version their hand-coded offsets don't recognize.
// The extractor itself -- manifest parsing, TDH-style schema lookup, or
// whatever a concrete host provides -- is an external collaborator the
// core only depends on through this interface.
package schemacache

import "github.com/exeray/exeray/internal/source"

// Extractor resolves a named property out of a raw event's user-data blob
// using provider- and version-specific schema metadata it owns. ok is
// false when the schema is unknown or the property isn't present --
// never an error, since a miss here just means the caller falls back to
// its own hand-coded offsets.
type Extractor interface {
	ExtractUint32(raw source.RawEvent, property string) (value uint32, ok bool)
	ExtractUint64(raw source.RawEvent, property string) (value uint64, ok bool)
	ExtractString(raw source.RawEvent, property string) (value string, ok bool)
}

// Unavailable is a no-op Extractor: every lookup misses. It lets a parser
// unconditionally try the schema-cache path and fall through to its own
// offsets when no real extractor has been wired in, without a nil check
// at every call site.
type Unavailable struct{}

func (Unavailable) ExtractUint32(source.RawEvent, string) (uint32, bool) { return 0, false }
func (Unavailable) ExtractUint64(source.RawEvent, string) (uint64, bool) { return 0, false }
func (Unavailable) ExtractString(source.RawEvent, string) (string, bool) { return "", false }
