package parsers

import (
	"github.com/exeray/exeray/internal/eventmodel"
	"github.com/exeray/exeray/internal/source"
	"github.com/exeray/exeray/internal/stringpool"
)

// Process event ids, Microsoft-Windows-Kernel-Process.
const (
	processEventStart     = 1
	processEventStop      = 2
	processEventImageLoad = 5
)

// sidLength returns the byte length of a Windows SID starting at off:
// Revision(u8) SubAuthorityCount(u8) IdentifierAuthority(6 bytes)
// SubAuthority(4 bytes each). Returns 0, false if the buffer is too short
// to even read the header.
func sidLength(data []byte, off int) (int, bool) {
	if off < 0 || off+2 > len(data) {
		return 0, false
	}
	subAuthorityCount := int(data[off+1])
	length := 8 + 4*subAuthorityCount
	if off+length > len(data) {
		return 0, false
	}
	return length, true
}

// ParseProcess decodes Microsoft-Windows-Kernel-Process events.
func ParseProcess(raw source.RawEvent, strings *stringpool.Pool) ParsedEvent {
	width := pointerWidth(raw)
	data := raw.UserData

	switch raw.EventId {
	case processEventStart:
		// UniqueProcessKey(ptr) PID(u32) ParentPID(u32) SessionId(u32)
		// ExitStatus(i32) DirTableBase(ptr) Flags(u32) UserSID(variable)
		// ImageFileName(ASCII NUL) CommandLine(wide NUL)
		off := width
		pid, ok := readU32(data, off)
		if !ok {
			return invalid
		}
		off += 4
		parentPid, ok := readU32(data, off)
		if !ok {
			return invalid
		}
		off += 4 + 4 + 4 // ParentPID, SessionId, ExitStatus
		off += width     // DirTableBase
		off += 4          // Flags
		sidLen, ok := sidLength(data, off)
		if !ok {
			return invalid
		}
		off += sidLen
		imageName, next, ok := readAsciiZ(data, off)
		if !ok {
			return invalid
		}
		cmdLine, _, ok := readWideString(data, next, len(data)-next)
		if !ok {
			return invalid
		}

		payload := eventmodel.NewProcessPayload(eventmodel.ProcessPayload{
			Pid:         pid,
			ParentPid:   parentPid,
			ImagePath:   strings.Intern(imageName),
			CommandLine: strings.InternWide(cmdLine),
		})
		return ParsedEvent{
			Category:  eventmodel.CategoryProcess,
			Operation: uint8(eventmodel.ProcessCreate),
			Status:    eventmodel.StatusSuccess,
			Pid:       pid,
			Timestamp: eventmodel.Timestamp(raw.Header.Timestamp),
			Payload:   payload,
			Valid:     true,
		}

	case processEventStop:
		off := width
		pid, ok := readU32(data, off)
		if !ok {
			return invalid
		}
		payload := eventmodel.NewProcessPayload(eventmodel.ProcessPayload{Pid: pid})
		return ParsedEvent{
			Category:  eventmodel.CategoryProcess,
			Operation: uint8(eventmodel.ProcessTerminate),
			Status:    eventmodel.StatusSuccess,
			Pid:       pid,
			Timestamp: eventmodel.Timestamp(raw.Header.Timestamp),
			Payload:   payload,
			Valid:     true,
		}

	case processEventImageLoad:
		// ImageBase(ptr) ImageSize(ptr) PID(u32) ...
		off := 2 * width
		pid, ok := readU32(data, off)
		if !ok {
			return invalid
		}
		payload := eventmodel.NewProcessPayload(eventmodel.ProcessPayload{
			Pid:       pid,
			ImagePath: strings.Intern([]byte("")),
		})
		return ParsedEvent{
			Category:  eventmodel.CategoryProcess,
			Operation: uint8(eventmodel.ProcessLoadLibrary),
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
