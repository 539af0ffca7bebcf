package parsers

import (
	"unicode/utf16"

	"github.com/exeray/exeray/internal/eventmodel"
	"github.com/exeray/exeray/internal/parsers/heuristics"
	"github.com/exeray/exeray/internal/source"
	"github.com/exeray/exeray/internal/stringpool"
)

// amsiEventScanBuffer is the Microsoft-Antimalware-Scan-Interface scan event id.
const amsiEventScanBuffer = 1101

// ParseAmsi decodes Microsoft-Antimalware-Scan-Interface events.
func ParseAmsi(raw source.RawEvent, strings *stringpool.Pool) ParsedEvent {
	if raw.EventId != amsiEventScanBuffer {
		return invalid
	}
	data := raw.UserData

	// Session(u64) ScanStatus(u32) ScanResult(u32) AppName(wide)
	// ContentName(wide) ContentSize(u32)
	scanResult, ok := readU32(data, 12)
	if !ok {
		return invalid
	}
	appName, next, ok := readWideString(data, 16, len(data)-16)
	if !ok {
		return invalid
	}
	_, next, ok = readWideString(data, next, len(data)-next)
	if !ok {
		return invalid
	}
	contentSize, ok := readU32(data, next)
	if !ok {
		return invalid
	}

	appNameStr := string(utf16.Decode(appName))
	verdict := heuristics.ClassifyAmsiScan(contentSize, appNameStr, scanResult)

	payload := eventmodel.NewAmsiPayload(eventmodel.AmsiPayload{
		AppName:     strings.InternWide(appName),
		ScanResult:  scanResult,
		ContentSize: contentSize,
	})
	status := eventmodel.StatusSuccess
	if verdict != heuristics.AmsiVerdictClean {
		status = eventmodel.StatusSuspicious
	}
	return ParsedEvent{
		Category:  eventmodel.CategoryAmsi,
		Operation: uint8(eventmodel.AmsiScan),
		Status:    status,
		Pid:       raw.Header.ProcessId,
		Timestamp: eventmodel.Timestamp(raw.Header.Timestamp),
		Payload:   payload,
		Valid:     true,
	}
}
