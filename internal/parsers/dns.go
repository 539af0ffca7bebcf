package parsers

import (
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/exeray/exeray/internal/eventmodel"
	"github.com/exeray/exeray/internal/parsers/heuristics"
	"github.com/exeray/exeray/internal/source"
	"github.com/exeray/exeray/internal/stringpool"
)

// DNS event ids, Microsoft-Windows-DNS-Client.
const (
	dnsEventCompleted = 3006
	dnsEventFailed    = 3008
)

// ParseDns decodes Microsoft-Windows-DNS-Client events.
func ParseDns(raw source.RawEvent, strings_ *stringpool.Pool) ParsedEvent {
	data := raw.UserData

	switch raw.EventId {
	case dnsEventCompleted:
		// QueryName(wide) QueryType(u16) QueryStatus(u32)
		// QueryResults(wide; first ";-terminated IPv4 if A record)
		name, next, ok := readWideString(data, 0, len(data))
		if !ok {
			return invalid
		}
		queryType, ok := readU16(data, next)
		if !ok {
			return invalid
		}
		next += 2
		status, ok := readU32(data, next)
		if !ok {
			return invalid
		}
		next += 4
		results, _, ok := readWideString(data, next, len(data)-next)
		if !ok {
			return invalid
		}

		domain := string(utf16.Decode(name))
		resolvedIp := firstResolvedIpv4(string(utf16.Decode(results)))
		suspicious := heuristics.IsDgaSuspiciousDomain(domain)

		payload := eventmodel.NewDnsPayload(eventmodel.DnsPayload{
			Domain:       strings_.InternWide(name),
			QueryType:    uint32(queryType),
			ResultCode:   status,
			ResolvedIp:   resolvedIp,
			IsSuspicious: suspicious,
		})
		evStatus := eventmodel.StatusSuccess
		if suspicious {
			evStatus = eventmodel.StatusSuspicious
		}
		return ParsedEvent{
			Category:  eventmodel.CategoryDns,
			Operation: uint8(eventmodel.DnsResponse),
			Status:    evStatus,
			Pid:       raw.Header.ProcessId,
			Timestamp: eventmodel.Timestamp(raw.Header.Timestamp),
			Payload:   payload,
			Valid:     true,
		}

	case dnsEventFailed:
		// QueryName(wide) QueryType(u16) ErrorCode(u32)
		name, next, ok := readWideString(data, 0, len(data))
		if !ok {
			return invalid
		}
		queryType, ok := readU16(data, next)
		if !ok {
			return invalid
		}
		errCode, ok := readU32(data, next+2)
		if !ok {
			return invalid
		}
		payload := eventmodel.NewDnsPayload(eventmodel.DnsPayload{
			Domain:     strings_.InternWide(name),
			QueryType:  uint32(queryType),
			ResultCode: errCode,
		})
		return ParsedEvent{
			Category:  eventmodel.CategoryDns,
			Operation: uint8(eventmodel.DnsFailure),
			Status:    eventmodel.StatusError,
			Pid:       raw.Header.ProcessId,
			Timestamp: eventmodel.Timestamp(raw.Header.Timestamp),
			Payload:   payload,
			Valid:     true,
		}

	default:
		return invalid
	}
}

// firstResolvedIpv4 parses the leading ";"-separated IPv4 address out of a
// DNS.Completed QueryResults string, returning 0 if none is present or it
// does not parse as dotted-quad.
func firstResolvedIpv4(results string) uint32 {
	first := results
	if idx := strings.IndexByte(results, ';'); idx >= 0 {
		first = results[:idx]
	}
	parts := strings.Split(first, ".")
	if len(parts) != 4 {
		return 0
	}
	var ip uint32
	for i, part := range parts {
		v, err := strconv.Atoi(part)
		if err != nil || v < 0 || v > 255 {
			return 0
		}
		ip |= uint32(v) << (8 * i)
	}
	return ip
}
