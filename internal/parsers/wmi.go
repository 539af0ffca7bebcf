package parsers

import (
	"unicode/utf16"

	"github.com/exeray/exeray/internal/eventmodel"
	"github.com/exeray/exeray/internal/parsers/heuristics"
	"github.com/exeray/exeray/internal/source"
	"github.com/exeray/exeray/internal/stringpool"
)

// WMI event ids, Microsoft-Windows-WMI-Activity.
const (
	wmiEventQuery     = 5
	wmiEventExec      = 11
	wmiEventSubscribe = 22
	wmiEventConnect   = 23
)

// ParseWmi decodes Microsoft-Windows-WMI-Activity events.
func ParseWmi(raw source.RawEvent, strings_ *stringpool.Pool) ParsedEvent {
	data := raw.UserData

	// Namespace(wide) Query-or-Method(wide) TargetHost(wide, optional)
	namespace, next, ok := readWideString(data, 0, len(data))
	if !ok {
		return invalid
	}
	query, next, ok := readWideString(data, next, len(data)-next)
	if !ok {
		return invalid
	}
	targetHost, _, ok := readWideString(data, next, len(data)-next)
	if !ok {
		targetHost = nil
	}

	var op eventmodel.WmiOp
	switch raw.EventId {
	case wmiEventQuery:
		op = eventmodel.WmiQuery
	case wmiEventExec:
		op = eventmodel.WmiExecMethod
	case wmiEventSubscribe:
		op = eventmodel.WmiSubscribe
	case wmiEventConnect:
		op = eventmodel.WmiConnect
	default:
		return invalid
	}

	namespaceStr := string(utf16.Decode(namespace))
	queryStr := string(utf16.Decode(query))
	targetStr := string(utf16.Decode(targetHost))
	suspicious := heuristics.IsSuspiciousWmiActivity(namespaceStr, queryStr, targetStr)
	isRemote := heuristics.IsRemoteWmiTarget(targetStr)

	payload := eventmodel.NewWmiPayload(eventmodel.WmiPayload{
		WmiNamespace: strings_.InternWide(namespace),
		Query:        strings_.InternWide(query),
		TargetHost:   strings_.InternWide(targetHost),
		IsRemote:     isRemote,
		IsSuspicious: suspicious,
	})
	status := eventmodel.StatusSuccess
	if suspicious {
		status = eventmodel.StatusSuspicious
	}
	return ParsedEvent{
		Category:  eventmodel.CategoryWmi,
		Operation: uint8(op),
		Status:    status,
		Pid:       raw.Header.ProcessId,
		Timestamp: eventmodel.Timestamp(raw.Header.Timestamp),
		Payload:   payload,
		Valid:     true,
	}
}
