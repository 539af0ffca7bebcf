package parsers

import (
	"github.com/exeray/exeray/internal/eventmodel"
	"github.com/exeray/exeray/internal/source"
	"github.com/exeray/exeray/internal/stringpool"
)

// File event ids, Microsoft-Windows-Kernel-File.
const (
	fileEventCreate = 10
	fileEventRead   = 14
	fileEventWrite  = 15
)

// ParseFile decodes Microsoft-Windows-Kernel-File events.
func ParseFile(raw source.RawEvent, strings *stringpool.Pool) ParsedEvent {
	width := pointerWidth(raw)
	data := raw.UserData

	switch raw.EventId {
	case fileEventCreate:
		// Irp(ptr) FileObject(ptr) TTID(u32) CreateOptions(u32)
		// FileAttributes(u32) ShareAccess(u32) OpenPath(wide)
		attrsOff := 2*width + 8
		attrs, ok := readU32(data, attrsOff)
		if !ok {
			return invalid
		}
		pathOff := attrsOff + 8 // skip FileAttributes, ShareAccess
		path, _, ok := readWideString(data, pathOff, len(data)-pathOff)
		if !ok {
			return invalid
		}
		payload := eventmodel.NewFilePayload(eventmodel.FilePayload{
			Path:       strings.InternWide(path),
			Attributes: attrs,
		})
		return ParsedEvent{
			Category:  eventmodel.CategoryFileSystem,
			Operation: uint8(eventmodel.FileCreate),
			Status:    eventmodel.StatusSuccess,
			Pid:       raw.Header.ProcessId,
			Timestamp: eventmodel.Timestamp(raw.Header.Timestamp),
			Payload:   payload,
			Valid:     true,
		}

	case fileEventRead, fileEventWrite:
		// Offset(u64) Irp(ptr) FileObject(ptr) FileKey(ptr) TTID(u32)
		// IoSize(u32) IoFlags(u32)
		off := 8 + 3*width + 4
		ioSize, ok := readU32(data, off)
		if !ok {
			return invalid
		}
		op := eventmodel.FileRead
		if raw.EventId == fileEventWrite {
			op = eventmodel.FileWrite
		}
		payload := eventmodel.NewFilePayload(eventmodel.FilePayload{
			Size: uint64(ioSize),
		})
		return ParsedEvent{
			Category:  eventmodel.CategoryFileSystem,
			Operation: uint8(op),
			Status:    eventmodel.StatusSuccess,
			Pid:       raw.Header.ProcessId,
			Timestamp: eventmodel.Timestamp(raw.Header.Timestamp),
			Payload:   payload,
			Valid:     true,
		}

	default:
		return invalid
	}
}
