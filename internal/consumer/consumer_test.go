package consumer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exeray/exeray/internal/arena"
	"github.com/exeray/exeray/internal/correlator"
	"github.com/exeray/exeray/internal/dispatcher"
	"github.com/exeray/exeray/internal/eventmodel"
	"github.com/exeray/exeray/internal/graph"
	"github.com/exeray/exeray/internal/source"
	"github.com/exeray/exeray/internal/stringpool"
)

func newTestContext(capacity int) *Context {
	pool := stringpool.New(arena.New(1 << 16))
	g := graph.New(capacity, pool)
	return New(g, pool, correlator.New(), dispatcher.Default(), nil)
}

func memoryAllocEvent(pid uint32) source.RawEvent {
	data := make([]byte, 8+8+4+4)
	data[16] = byte(pid)
	data[20] = 0x40 // PAGE_EXECUTE_READWRITE
	return source.RawEvent{
		ProviderId: dispatcher.ProviderMemory,
		EventId:    98,
		Header:     source.Header{ProcessId: pid, PointerWidthIs64: true},
		UserData:   data,
	}
}

func TestCallbackDropsEventsOutsidePidFilter(t *testing.T) {
	c := newTestContext(8)
	c.TargetPid.Store(999)

	c.Callback()(memoryAllocEvent(100))

	assert.Equal(t, uint64(0), c.Graph.Count())
}

func TestCallbackPushesMatchingEventAndRegistersCorrelation(t *testing.T) {
	c := newTestContext(8)
	c.TargetPid.Store(100)

	c.Callback()(memoryAllocEvent(100))

	require.Equal(t, uint64(1), c.Graph.Count())
	view, ok := c.Graph.Get(eventmodel.EventId(1))
	require.True(t, ok)
	assert.Equal(t, eventmodel.CategoryMemory, view.Category())
	assert.Equal(t, eventmodel.StatusSuspicious, view.Status())
	assert.Equal(t, eventmodel.CorrelationId(1), view.CorrelationId())
}

func TestCallbackZeroFilterAcceptsEveryPid(t *testing.T) {
	c := newTestContext(8)

	c.Callback()(memoryAllocEvent(100))
	c.Callback()(memoryAllocEvent(200))

	assert.Equal(t, uint64(2), c.Graph.Count())
}

func TestCallbackDropsInvalidProvider(t *testing.T) {
	c := newTestContext(8)

	c.Callback()(source.RawEvent{ProviderId: source.ProviderId{0xAA}, EventId: 1})

	assert.Equal(t, uint64(0), c.Graph.Count())
}

func TestCallbackDropsWhenGraphFull(t *testing.T) {
	c := newTestContext(1)

	c.Callback()(memoryAllocEvent(100))
	c.Callback()(memoryAllocEvent(100))

	assert.Equal(t, uint64(1), c.Graph.Count())
}
