package parsers

import (
	"github.com/exeray/exeray/internal/eventmodel"
	"github.com/exeray/exeray/internal/parsers/heuristics"
	"github.com/exeray/exeray/internal/source"
	"github.com/exeray/exeray/internal/stringpool"
)

// Memory event ids, Virtual memory events provider.
const (
	memoryEventAlloc = 98
	memoryEventFree  = 99
)

// maxRegionSize is the saturation ceiling spec.md calls out: a region size
// that does not fit in 32 bits is reported as u32 max rather than wrapped.
const maxRegionSize = 0xFFFFFFFF

// ParseMemory decodes Virtual memory events provider events.
func ParseMemory(raw source.RawEvent, strings *stringpool.Pool) ParsedEvent {
	if raw.EventId != memoryEventAlloc && raw.EventId != memoryEventFree {
		return invalid
	}
	width := pointerWidth(raw)
	data := raw.UserData

	// BaseAddress(ptr) RegionSize(ptr) PID(u32) Flags(u32)
	baseAddr, ok := readPointer(data, 0, width)
	if !ok {
		return invalid
	}
	regionSize, ok := readPointer(data, width, width)
	if !ok {
		return invalid
	}
	pidOff := 2 * width
	pid, ok := readU32(data, pidOff)
	if !ok {
		return invalid
	}
	flags, ok := readU32(data, pidOff+4)
	if !ok {
		return invalid
	}

	regionSize32 := uint32(maxRegionSize)
	if regionSize <= maxRegionSize {
		regionSize32 = uint32(regionSize)
	}

	op := eventmodel.MemoryAlloc
	if raw.EventId == memoryEventFree {
		op = eventmodel.MemoryFree
	}

	suspicious := heuristics.IsSuspiciousMemoryProtection(flags)
	status := eventmodel.StatusSuccess
	if suspicious {
		status = eventmodel.StatusSuspicious
	}

	payload := eventmodel.NewMemoryPayload(eventmodel.MemoryPayload{
		BaseAddress:  baseAddr,
		RegionSize:   regionSize32,
		ProcessId:    pid,
		Protection:   flags,
		IsSuspicious: suspicious,
	})
	return ParsedEvent{
		Category:  eventmodel.CategoryMemory,
		Operation: uint8(op),
		Status:    status,
		Pid:       pid,
		Timestamp: eventmodel.Timestamp(raw.Header.Timestamp),
		Payload:   payload,
		Valid:     true,
	}
}
