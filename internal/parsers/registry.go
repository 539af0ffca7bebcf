package parsers

import (
	"github.com/exeray/exeray/internal/eventmodel"
	"github.com/exeray/exeray/internal/source"
	"github.com/exeray/exeray/internal/stringpool"
)

// Registry event ids, Microsoft-Windows-Kernel-Registry.
const (
	registryEventCreateKey = 1
	registryEventDeleteKey = 2
	registryEventSetValue  = 5
	registryEventDeleteValue = 6
)

// ParseRegistry decodes Microsoft-Windows-Kernel-Registry events.
func ParseRegistry(raw source.RawEvent, strings *stringpool.Pool) ParsedEvent {
	width := pointerWidth(raw)
	data := raw.UserData

	switch raw.EventId {
	case registryEventCreateKey, registryEventDeleteKey:
		// BaseObject(ptr) KeyObject(ptr) Status(i32) ...
		status, ok := readU32(data, 2*width)
		if !ok {
			return invalid
		}
		op := eventmodel.RegistryCreateKey
		if raw.EventId == registryEventDeleteKey {
			op = eventmodel.RegistryDeleteKey
		}
		return ParsedEvent{
			Category:  eventmodel.CategoryRegistry,
			Operation: uint8(op),
			Status:    statusFromNtStatus(status),
			Pid:       raw.Header.ProcessId,
			Timestamp: eventmodel.Timestamp(raw.Header.Timestamp),
			Payload:   eventmodel.NewRegistryPayload(eventmodel.RegistryPayload{}),
			Valid:     true,
		}

	case registryEventSetValue, registryEventDeleteValue:
		// KeyObject(ptr) Status(i32) Type(u32) DataSize(u32) ...
		status, ok := readU32(data, width)
		if !ok {
			return invalid
		}
		valueType, ok := readU32(data, width+4)
		if !ok {
			return invalid
		}
		dataSize, ok := readU32(data, width+8)
		if !ok {
			return invalid
		}
		op := eventmodel.RegistrySetValue
		if raw.EventId == registryEventDeleteValue {
			op = eventmodel.RegistryDeleteValue
		}
		payload := eventmodel.NewRegistryPayload(eventmodel.RegistryPayload{
			ValueType: valueType,
			DataSize:  dataSize,
		})
		return ParsedEvent{
			Category:  eventmodel.CategoryRegistry,
			Operation: uint8(op),
			Status:    statusFromNtStatus(status),
			Pid:       raw.Header.ProcessId,
			Timestamp: eventmodel.Timestamp(raw.Header.Timestamp),
			Payload:   payload,
			Valid:     true,
		}

	default:
		return invalid
	}
}

// statusFromNtStatus maps an NTSTATUS-shaped i32 (0 == success, negative ==
// failure per the high bit) onto the normalized Status enum.
func statusFromNtStatus(status uint32) eventmodel.Status {
	if status == 0 {
		return eventmodel.StatusSuccess
	}
	if int32(status) < 0 {
		return eventmodel.StatusDenied
	}
	return eventmodel.StatusError
}
