package dispatcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exeray/exeray/internal/arena"
	"github.com/exeray/exeray/internal/eventmodel"
	"github.com/exeray/exeray/internal/source"
	"github.com/exeray/exeray/internal/stringpool"
)

func TestDispatchUnknownProviderReturnsInvalid(t *testing.T) {
	table := Default()
	pool := stringpool.New(arena.New(4096))

	raw := source.RawEvent{
		ProviderId: source.ProviderId{0xFF},
		EventId:    1,
	}
	got := table.Dispatch(raw, pool)
	assert.False(t, got.Valid)
}

func TestDispatchRoutesMemoryEventToMemoryParser(t *testing.T) {
	table := Default()
	pool := stringpool.New(arena.New(4096))

	data := make([]byte, 8+8+4+4)
	data[16], data[17], data[18], data[19] = 0, 0, 0, 0 // PID
	data[20] = 0x40                                      // Flags: PAGE_EXECUTE_READWRITE

	raw := source.RawEvent{
		ProviderId: ProviderMemory,
		EventId:    98,
		Header:     source.Header{PointerWidthIs64: true},
		UserData:   data,
	}
	got := table.Dispatch(raw, pool)
	require.True(t, got.Valid)
	assert.Equal(t, eventmodel.StatusSuspicious, got.Status)
	mem, ok := got.Payload.AsMemory()
	require.True(t, ok)
	assert.True(t, mem.IsSuspicious)
}

func TestProvidersListsEveryWiredProvider(t *testing.T) {
	table := Default()
	assert.Len(t, table.Providers(), 13)
}
