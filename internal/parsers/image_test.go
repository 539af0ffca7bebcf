package parsers

import (
	"encoding/binary"
	"testing"
	"unicode/utf16"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exeray/exeray/internal/arena"
	"github.com/exeray/exeray/internal/eventmodel"
	"github.com/exeray/exeray/internal/source"
	"github.com/exeray/exeray/internal/stringpool"
)

func imageLoadEvent(path string) source.RawEvent {
	return imageLoadEventSized(path, 0, 0)
}

func imageLoadEventSized(path string, pid uint32, imageSize uint64) source.RawEvent {
	const width = 8
	pidOff := 2 * width
	nameOff := pidOff + 4 + 4 + 4 + 4 + width + 4*4
	units := utf16.Encode([]rune(path))
	nameBytes := make([]byte, 2*(len(units)+1))
	for i, u := range units {
		binary.LittleEndian.PutUint16(nameBytes[2*i:], u)
	}
	data := make([]byte, nameOff+len(nameBytes))
	binary.LittleEndian.PutUint64(data[width:2*width], imageSize)
	binary.LittleEndian.PutUint32(data[pidOff:pidOff+4], pid)
	copy(data[nameOff:], nameBytes)
	return source.RawEvent{
		EventId:  imageEventLoad,
		Header:   source.Header{PointerWidthIs64: true},
		UserData: data,
	}
}

func TestParseImageLoadFromTempIsSuspicious(t *testing.T) {
	pool := stringpool.New(arena.New(1 << 12))

	got := ParseImage(imageLoadEvent(`C:\Users\bob\AppData\Local\Temp\evil.dll`), pool)

	require.True(t, got.Valid)
	assert.Equal(t, eventmodel.StatusSuspicious, got.Status)
	img, ok := got.Payload.AsImage()
	require.True(t, ok)
	assert.True(t, img.IsSuspicious)
}

func TestParseImageLoadFromSystemPathIsNotSuspicious(t *testing.T) {
	pool := stringpool.New(arena.New(1 << 12))

	got := ParseImage(imageLoadEvent(`C:\Windows\System32\kernel32.dll`), pool)

	require.True(t, got.Valid)
	assert.Equal(t, eventmodel.StatusSuccess, got.Status)
	img, ok := got.Payload.AsImage()
	require.True(t, ok)
	assert.False(t, img.IsSuspicious)
}

func TestParseImageLoadSetsPidAndSize(t *testing.T) {
	pool := stringpool.New(arena.New(1 << 12))

	got := ParseImage(imageLoadEventSized(`C:\Windows\System32\kernel32.dll`, 777, 0x4000), pool)

	require.True(t, got.Valid)
	assert.Equal(t, uint32(777), got.Pid)
	img, ok := got.Payload.AsImage()
	require.True(t, ok)
	assert.Equal(t, uint32(0x4000), img.Size)
}
