package parsers

import (
	"unicode/utf16"

	"github.com/exeray/exeray/internal/eventmodel"
	"github.com/exeray/exeray/internal/parsers/heuristics"
	"github.com/exeray/exeray/internal/source"
	"github.com/exeray/exeray/internal/stringpool"
)

// CLR event ids, Microsoft-Windows-DotNETRuntime.
const (
	clrEventAssemblyLoad   = 152
	clrEventAssemblyUnload = 153
	clrEventModuleLoad     = 154
	clrEventMethodJit      = 155
)

// ParseClr decodes Microsoft-Windows-DotNETRuntime events.
func ParseClr(raw source.RawEvent, strings_ *stringpool.Pool) ParsedEvent {
	data := raw.UserData

	switch raw.EventId {
	case clrEventAssemblyLoad, clrEventAssemblyUnload, clrEventModuleLoad:
		// ClrInstanceID(u16) AssemblyID(u64) AppDomainID(u64) BindingID(u64)
		// AssemblyFlags(u32) FullyQualifiedAssemblyName(wide)
		loadAddr, ok := readU64(data, 2)
		if !ok {
			return invalid
		}
		flags, ok := readU32(data, 2+8+8+8)
		if !ok {
			return invalid
		}
		nameOff := 2 + 8 + 8 + 8 + 4
		name, _, ok := readWideString(data, nameOff, len(data)-nameOff)
		if !ok {
			return invalid
		}
		nameStr := string(utf16.Decode(name))
		isDynamic := flags&heuristics.AssemblyFlagDynamic != 0
		suspicious := heuristics.IsSuspiciousClrAssembly(flags, nameStr)

		payload := eventmodel.NewClrPayload(eventmodel.ClrPayload{
			AssemblyName: strings_.InternWide(name),
			LoadAddress:  loadAddr,
			IsDynamic:    isDynamic,
			IsSuspicious: suspicious,
		})
		op := eventmodel.ClrAssemblyLoad
		if raw.EventId == clrEventAssemblyUnload {
			op = eventmodel.ClrAssemblyUnload
		}
		status := eventmodel.StatusSuccess
		if suspicious {
			status = eventmodel.StatusSuspicious
		}
		return ParsedEvent{
			Category:  eventmodel.CategoryClr,
			Operation: uint8(op),
			Status:    status,
			Pid:       raw.Header.ProcessId,
			Timestamp: eventmodel.Timestamp(raw.Header.Timestamp),
			Payload:   payload,
			Valid:     true,
		}

	case clrEventMethodJit:
		// MethodID(u64) ModuleID(u64) MethodToken(u32) MethodILSize(u32)
		// MethodNamespace(wide) MethodName(wide) MethodSignature(wide)
		methodId, ok := readU64(data, 0)
		if !ok {
			return invalid
		}
		nsOff := 8 + 8 + 4 + 4
		_, next, ok := readWideString(data, nsOff, len(data)-nsOff)
		if !ok {
			return invalid
		}
		name, _, ok := readWideString(data, next, len(data)-next)
		if !ok {
			return invalid
		}
		nameStr := string(utf16.Decode(name))
		obfuscated := heuristics.IsObfuscatedClrMethod(nameStr)

		payload := eventmodel.NewClrPayload(eventmodel.ClrPayload{
			MethodName:   strings_.InternWide(name),
			LoadAddress:  methodId,
			IsSuspicious: obfuscated,
		})
		status := eventmodel.StatusSuccess
		if obfuscated {
			status = eventmodel.StatusSuspicious
		}
		return ParsedEvent{
			Category:  eventmodel.CategoryClr,
			Operation: uint8(eventmodel.ClrMethodJit),
			Status:    status,
			Pid:       raw.Header.ProcessId,
			Timestamp: eventmodel.Timestamp(raw.Header.Timestamp),
			Payload:   payload,
			Valid:     true,
		}

	default:
		return invalid
	}
}
