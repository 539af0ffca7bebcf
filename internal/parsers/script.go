package parsers

import (
	"unicode/utf16"

	"github.com/exeray/exeray/internal/eventmodel"
	"github.com/exeray/exeray/internal/parsers/heuristics"
	"github.com/exeray/exeray/internal/source"
	"github.com/exeray/exeray/internal/stringpool"
)

// PowerShell event ids, Microsoft-Windows-PowerShell.
const (
	scriptEventBlock  = 4104
	scriptEventModule = 4103
)

// ParseScript decodes Microsoft-Windows-PowerShell events.
func ParseScript(raw source.RawEvent, strings *stringpool.Pool) ParsedEvent {
	data := raw.UserData

	switch raw.EventId {
	case scriptEventBlock:
		// MessageNumber(u32) MessageTotal(u32) ScriptBlockText(wide)
		// ScriptBlockId(16 bytes) Path(wide)
		text, _, ok := readWideString(data, 8, len(data)-8)
		if !ok {
			return invalid
		}
		block := string(utf16.Decode(text))
		suspicious := heuristics.IsSuspiciousScript(block)
		status := eventmodel.StatusSuccess
		if suspicious {
			status = eventmodel.StatusSuspicious
		}
		payload := eventmodel.NewScriptPayload(eventmodel.ScriptPayload{
			ScriptBlock:  strings.InternWide(text),
			Sequence:     0,
			IsSuspicious: suspicious,
		})
		return ParsedEvent{
			Category:  eventmodel.CategoryScript,
			Operation: uint8(eventmodel.ScriptExecute),
			Status:    status,
			Pid:       raw.Header.ProcessId,
			Timestamp: eventmodel.Timestamp(raw.Header.Timestamp),
			Payload:   payload,
			Valid:     true,
		}

	case scriptEventModule:
		payload := eventmodel.NewScriptPayload(eventmodel.ScriptPayload{})
		return ParsedEvent{
			Category:  eventmodel.CategoryScript,
			Operation: uint8(eventmodel.ScriptModule),
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
