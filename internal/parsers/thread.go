package parsers

import (
	"github.com/exeray/exeray/internal/eventmodel"
	"github.com/exeray/exeray/internal/parsers/heuristics"
	"github.com/exeray/exeray/internal/source"
	"github.com/exeray/exeray/internal/stringpool"
)

// Thread event ids, Thread events provider.
const (
	threadEventStart   = 1
	threadEventEnd     = 2
	threadEventDCStart = 3
	threadEventDCEnd   = 4
)

// ParseThread decodes Thread events provider events.
func ParseThread(raw source.RawEvent, strings *stringpool.Pool) ParsedEvent {
	width := pointerWidth(raw)
	data := raw.UserData

	switch raw.EventId {
	case threadEventStart, threadEventDCStart:
		// PID(u32) ThreadId(u32) StackBase(ptr) StackLimit(ptr)
		// UserStackBase(ptr) UserStackLimit(ptr) Affinity(ptr)
		// Win32StartAddr(ptr) TebBase(ptr) SubProcessTag(u32)
		// BasePriority(u8) PagePriority(u8) IoPriority(u8) ThreadFlags(u8)
		pid, ok := readU32(data, 0)
		if !ok {
			return invalid
		}
		tid, ok := readU32(data, 4)
		if !ok {
			return invalid
		}
		startAddrOff := 8 + 5*width
		startAddr, ok := readPointer(data, startAddrOff, width)
		if !ok {
			return invalid
		}
		op := eventmodel.ThreadStart
		if raw.EventId == threadEventDCStart {
			op = eventmodel.ThreadDCStart
		}
		creatorPid := raw.Header.ProcessId
		isRemote := heuristics.IsRemoteThreadCreation(creatorPid, pid)
		status := eventmodel.StatusSuccess
		if isRemote {
			status = eventmodel.StatusSuspicious
		}
		payload := eventmodel.NewThreadPayload(eventmodel.ThreadPayload{
			ThreadId:     tid,
			ProcessId:    pid,
			StartAddress: startAddr,
			CreatorPid:   creatorPid,
			IsRemote:     isRemote,
		})
		return ParsedEvent{
			Category:  eventmodel.CategoryThread,
			Operation: uint8(op),
			Status:    status,
			Pid:       pid,
			Timestamp: eventmodel.Timestamp(raw.Header.Timestamp),
			Payload:   payload,
			Valid:     true,
		}

	case threadEventEnd, threadEventDCEnd:
		// PID(u32) ThreadId(u32)
		pid, ok := readU32(data, 0)
		if !ok {
			return invalid
		}
		tid, ok := readU32(data, 4)
		if !ok {
			return invalid
		}
		op := eventmodel.ThreadEnd
		if raw.EventId == threadEventDCEnd {
			op = eventmodel.ThreadDCEnd
		}
		payload := eventmodel.NewThreadPayload(eventmodel.ThreadPayload{
			ThreadId:  tid,
			ProcessId: pid,
		})
		return ParsedEvent{
			Category:  eventmodel.CategoryThread,
			Operation: uint8(op),
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
