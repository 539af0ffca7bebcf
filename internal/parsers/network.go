package parsers

import (
	"github.com/exeray/exeray/internal/eventmodel"
	"github.com/exeray/exeray/internal/source"
	"github.com/exeray/exeray/internal/stringpool"
)

// Network event ids, Microsoft-Windows-Kernel-Network (IPv4 variants; IPv6
// uses the same event ids with 16-byte addresses, which this decoder folds
// down to the low 32 bits for the fixed-size NetworkPayload).
const (
	networkEventConnectV4  = 10
	networkEventConnectV6  = 11
	networkEventSend       = 14
	networkEventReceive    = 15
)

// ParseNetwork decodes Microsoft-Windows-Kernel-Network events.
func ParseNetwork(raw source.RawEvent, strings *stringpool.Pool) ParsedEvent {
	data := raw.UserData

	switch raw.EventId {
	case networkEventConnectV4, networkEventConnectV6:
		// PID(u32) AF(u16) LocalAddr(u32) LocalPort(u16) RemoteAddr(u32)
		// RemotePort(u16). IPv6 carries 16-byte addresses; only the first
		// 4 bytes are kept in the fixed-size payload.
		pid, ok := readU32(data, 0)
		if !ok {
			return invalid
		}
		off := 6 // PID + AF
		localAddr, ok := readU32(data, off)
		if !ok {
			return invalid
		}
		addrWidth := 4
		if raw.EventId == networkEventConnectV6 {
			addrWidth = 16
		}
		localPort, ok := readU16(data, off+addrWidth)
		if !ok {
			return invalid
		}
		off += addrWidth + 2
		remoteAddr, ok := readU32(data, off)
		if !ok {
			return invalid
		}
		remotePort, ok := readU16(data, off+addrWidth)
		if !ok {
			return invalid
		}
		payload := eventmodel.NewNetworkPayload(eventmodel.NetworkPayload{
			LocalAddr:  localAddr,
			RemoteAddr: remoteAddr,
			LocalPort:  localPort,
			RemotePort: remotePort,
			Protocol:   6, // TCP
		})
		return ParsedEvent{
			Category:  eventmodel.CategoryNetwork,
			Operation: uint8(eventmodel.NetworkConnect),
			Status:    eventmodel.StatusSuccess,
			Pid:       pid,
			Timestamp: eventmodel.Timestamp(raw.Header.Timestamp),
			Payload:   payload,
			Valid:     true,
		}

	case networkEventSend, networkEventReceive:
		// PID(u32) Bytes(u32) ...
		pid, ok := readU32(data, 0)
		if !ok {
			return invalid
		}
		nbytes, ok := readU32(data, 4)
		if !ok {
			return invalid
		}
		op := eventmodel.NetworkSend
		if raw.EventId == networkEventReceive {
			op = eventmodel.NetworkReceive
		}
		payload := eventmodel.NewNetworkPayload(eventmodel.NetworkPayload{
			Bytes:    nbytes,
			Protocol: 6,
		})
		return ParsedEvent{
			Category:  eventmodel.CategoryNetwork,
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
