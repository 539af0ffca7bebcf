package parsers

import (
	"github.com/exeray/exeray/internal/eventmodel"
	"github.com/exeray/exeray/internal/parsers/heuristics"
	"github.com/exeray/exeray/internal/source"
	"github.com/exeray/exeray/internal/stringpool"
)

// Image event ids, Image Load provider.
const (
	imageEventLoad   = 10
	imageEventUnload = 2
)

// ParseImage decodes Image Load provider events.
func ParseImage(raw source.RawEvent, strings *stringpool.Pool) ParsedEvent {
	width := pointerWidth(raw)
	data := raw.UserData

	switch raw.EventId {
	case imageEventLoad:
		// ImageBase(ptr) ImageSize(ptr) PID(u32) Checksum(u32)
		// TimeDateStamp(u32) Reserved0(u32) DefaultBase(ptr)
		// Reserved1..4(u32x4) FileName(wide)
		baseAddr, ok := readPointer(data, 0, width)
		if !ok {
			return invalid
		}
		imageSize, ok := readPointer(data, width, width)
		if !ok {
			return invalid
		}
		pidOff := 2 * width
		pid, ok := readU32(data, pidOff)
		if !ok {
			return invalid
		}
		nameOff := pidOff + 4 + 4 + 4 + 4 + width + 4*4
		name, _, ok := readWideString(data, nameOff, len(data)-nameOff)
		if !ok {
			return invalid
		}
		pathId := strings.InternWide(name)
		suspicious := heuristics.IsSuspiciousImagePath(strings.GetString(pathId))
		status := eventmodel.StatusSuccess
		if suspicious {
			status = eventmodel.StatusSuspicious
		}
		imageSize32 := uint32(maxRegionSize)
		if imageSize <= maxRegionSize {
			imageSize32 = uint32(imageSize)
		}
		payload := eventmodel.NewImagePayload(eventmodel.ImagePayload{
			ImagePath:    pathId,
			ProcessId:    pid,
			BaseAddress:  baseAddr,
			Size:         imageSize32,
			IsSuspicious: suspicious,
		})
		return ParsedEvent{
			Category:  eventmodel.CategoryImage,
			Operation: uint8(eventmodel.ImageLoad),
			Status:    status,
			Pid:       pid,
			Timestamp: eventmodel.Timestamp(raw.Header.Timestamp),
			Payload:   payload,
			Valid:     true,
		}

	case imageEventUnload:
		pidOff := 2 * width
		pid, ok := readU32(data, pidOff)
		if !ok {
			return invalid
		}
		payload := eventmodel.NewImagePayload(eventmodel.ImagePayload{ProcessId: pid})
		return ParsedEvent{
			Category:  eventmodel.CategoryImage,
			Operation: uint8(eventmodel.ImageUnload),
			Status:    eventmodel.StatusSuccess,
			Pid:       pid,
			Timestamp: eventmodel.Timestamp(raw.Header.Timestamp),
			Payload:   payload,
			Valid:     true,
		}

	default:
		return invalid
	}
}
