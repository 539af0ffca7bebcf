// Package parsers decodes the opaque user-data blob of a source.RawEvent
// into a normalized ParsedEvent, one parser per provider. Heuristic
// detectors run inline as the last step of each parser, marking events
// suspicious rather than living as a separate post-processing pass.
package parsers

import (
	"github.com/exeray/exeray/internal/eventmodel"
	"github.com/exeray/exeray/internal/source"
	"github.com/exeray/exeray/internal/stringpool"
)

// ParsedEvent is the normalized output of a parser, ready for the consumer
// to hand to the correlator and graph.
type ParsedEvent struct {
	Category  eventmodel.Category
	Operation uint8
	Status    eventmodel.Status
	Pid       uint32
	Timestamp eventmodel.Timestamp
	Payload   eventmodel.EventPayload
	Valid     bool
}

// Func decodes a raw event into a ParsedEvent using strings to intern any
// textual fields. An invalid or unrecognized event_id yields Valid = false;
// parsers never panic or return an error -- malformed input is a dropped
// event, not a failure the caller must propagate.
type Func func(raw source.RawEvent, strings *stringpool.Pool) ParsedEvent

// invalid is the zero-value ParsedEvent every parser returns on a
// malformed or unrecognized raw event.
var invalid = ParsedEvent{}

// pointerWidth returns 4 or 8 depending on the raw event's header flag.
func pointerWidth(raw source.RawEvent) int {
	if raw.Header.PointerWidthIs64 {
		return 8
	}
	return 4
}

// readPointer reads a pointer-sized field at offset off, honoring the
// event's declared pointer width. ok is false if the blob is too short.
func readPointer(data []byte, off int, width int) (uint64, bool) {
	if off < 0 || off+width > len(data) {
		return 0, false
	}
	var v uint64
	for i := 0; i < width; i++ {
		v |= uint64(data[off+i]) << (8 * i)
	}
	return v, true
}

func readU32(data []byte, off int) (uint32, bool) {
	if off < 0 || off+4 > len(data) {
		return 0, false
	}
	return uint32(data[off]) | uint32(data[off+1])<<8 | uint32(data[off+2])<<16 | uint32(data[off+3])<<24, true
}

func readU16(data []byte, off int) (uint16, bool) {
	if off < 0 || off+2 > len(data) {
		return 0, false
	}
	return uint16(data[off]) | uint16(data[off+1])<<8, true
}

func readU64(data []byte, off int) (uint64, bool) {
	if off < 0 || off+8 > len(data) {
		return 0, false
	}
	var v uint64
	for i := 0; i < 8; i++ {
		v |= uint64(data[off+i]) << (8 * i)
	}
	return v, true
}

// readWideString reads a UTF-16LE string starting at off, terminated by a
// 16-bit zero or by running out of budget bytes, and returns the decoded
// string plus the offset immediately past the terminator (or past the
// budget, if no terminator was found). ok is false if off is out of range.
func readWideString(data []byte, off int, budget int) (units []uint16, next int, ok bool) {
	if off < 0 || off > len(data) {
		return nil, off, false
	}
	end := off + budget
	if end > len(data) {
		end = len(data)
	}
	i := off
	for i+1 < end {
		u := uint16(data[i]) | uint16(data[i+1])<<8
		i += 2
		if u == 0 {
			return units, i, true
		}
		units = append(units, u)
	}
	return units, i, true
}

// readAsciiZ reads a NUL-terminated ASCII string starting at off, bounded
// by the remaining buffer.
func readAsciiZ(data []byte, off int) (s []byte, next int, ok bool) {
	if off < 0 || off > len(data) {
		return nil, off, false
	}
	i := off
	for i < len(data) && data[i] != 0 {
		i++
	}
	s = data[off:i]
	if i < len(data) {
		i++ // skip terminator
	}
	return s, i, true
}
