package parsers

import (
	"encoding/binary"
	"testing"
	"unicode/utf16"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exeray/exeray/internal/arena"
	"github.com/exeray/exeray/internal/eventmodel"
	"github.com/exeray/exeray/internal/parsers/heuristics"
	"github.com/exeray/exeray/internal/source"
	"github.com/exeray/exeray/internal/stringpool"
)

func wideNulString(s string) []byte {
	units := utf16.Encode([]rune(s))
	buf := make([]byte, 2*(len(units)+1))
	for i, u := range units {
		binary.LittleEndian.PutUint16(buf[2*i:], u)
	}
	return buf
}

func logonEvent(eventId uint16, user string, logonType uint32) source.RawEvent {
	data := append([]byte{}, wideNulString("SYSTEM")...) // subject
	data = append(data, wideNulString(user)...)           // target
	tail := make([]byte, 4)
	binary.LittleEndian.PutUint32(tail, logonType)
	data = append(data, tail...)
	return source.RawEvent{ProviderId: source.ProviderId{}, EventId: eventId, UserData: data}
}

func TestParseSecurityLogonFailureTripsBruteForceAfterThreshold(t *testing.T) {
	pool := stringpool.New(arena.New(1 << 16))
	tracker := heuristics.NewBruteForceTracker(60e9, 5) // 60s window, threshold 5
	parse := NewSecurityParser(tracker)

	var last ParsedEvent
	for i := 0; i < 5; i++ {
		last = parse(logonEvent(securityEventLogonFailure, "alice", 2), pool)
		require.True(t, last.Valid)
	}

	assert.Equal(t, eventmodel.StatusSuspicious, last.Status)
}

func TestParseSecurityLogonFailureBelowThresholdIsDenied(t *testing.T) {
	pool := stringpool.New(arena.New(1 << 16))
	tracker := heuristics.NewBruteForceTracker(60e9, 5)
	parse := NewSecurityParser(tracker)

	got := parse(logonEvent(securityEventLogonFailure, "bob", 2), pool)

	require.True(t, got.Valid)
	assert.Equal(t, eventmodel.StatusDenied, got.Status)
}

func TestParseSecurityLogonSuccessRemoteInteractiveIsSuspicious(t *testing.T) {
	pool := stringpool.New(arena.New(1 << 16))
	parse := NewSecurityParser(heuristics.NewBruteForceTracker(60e9, 5))

	got := parse(logonEvent(securityEventLogonSuccess, "carol", 10), pool)

	require.True(t, got.Valid)
	assert.Equal(t, eventmodel.StatusSuspicious, got.Status)
}

func TestParseSecurityServiceInstallAutoStartIsSuspicious(t *testing.T) {
	pool := stringpool.New(arena.New(1 << 16))
	parse := NewSecurityParser(heuristics.NewBruteForceTracker(60e9, 5))

	data := append([]byte{}, wideNulString("Administrator")...)
	data = append(data, wideNulString("EvilSvc")...)
	tail := make([]byte, 4)
	binary.LittleEndian.PutUint32(tail, 0x2) // AUTO_START
	data = append(data, tail...)

	got := parse(source.RawEvent{EventId: securityEventServiceInstall, UserData: data}, pool)

	require.True(t, got.Valid)
	assert.Equal(t, eventmodel.CategoryService, got.Category)
	assert.Equal(t, eventmodel.StatusSuspicious, got.Status)
	svc, ok := got.Payload.AsService()
	require.True(t, ok)
	assert.True(t, svc.IsSuspicious)
}
