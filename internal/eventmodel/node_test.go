package eventmodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventNodeMarshalRoundTrip(t *testing.T) {
	node := EventNode{
		Id:            42,
		ParentId:      41,
		Timestamp:     1700000000000000000,
		CorrelationId: 7,
		Status:        StatusSuspicious,
		Operation:     uint8(MemoryAlloc),
		Payload: NewMemoryPayload(MemoryPayload{
			BaseAddress:  0x7ffe0000,
			RegionSize:   4096,
			ProcessId:    1234,
			Protection:   0x40, // PAGE_EXECUTE_READWRITE
			IsSuspicious: true,
		}),
	}

	wire := node.Marshal()
	assert.Len(t, wire, NodeSize)

	got := UnmarshalEventNode(wire)
	require.Equal(t, node.Id, got.Id)
	require.Equal(t, node.ParentId, got.ParentId)
	require.Equal(t, node.Timestamp, got.Timestamp)
	require.Equal(t, node.CorrelationId, got.CorrelationId)
	require.Equal(t, node.Status, got.Status)
	require.Equal(t, node.Operation, got.Operation)
	require.Equal(t, node.Payload.Category, got.Payload.Category)

	mem, ok := got.Payload.AsMemory()
	require.True(t, ok)
	assert.Equal(t, uint64(0x7ffe0000), mem.BaseAddress)
	assert.Equal(t, uint32(4096), mem.RegionSize)
	assert.True(t, mem.IsSuspicious)
}

func TestEventViewCategoryMismatchPanics(t *testing.T) {
	node := EventNode{
		Operation: uint8(FileCreate),
		Payload:   NewFilePayload(FilePayload{Path: 5, Size: 100}),
	}
	view := NewEventView(&node)

	assert.Equal(t, CategoryFileSystem, view.Category())
	assert.Equal(t, FileCreate, view.FileOp())

	assert.Panics(t, func() { view.NetworkOp() })
	assert.Panics(t, func() { view.AsNetwork() })
}

func TestIsRoot(t *testing.T) {
	root := EventNode{Id: 1, ParentId: InvalidEvent}
	child := EventNode{Id: 2, ParentId: 1}

	assert.True(t, root.IsRoot())
	assert.False(t, child.IsRoot())
}

func TestPayloadRoundTripsPerCategory(t *testing.T) {
	t.Run("file", func(t *testing.T) {
		p := NewFilePayload(FilePayload{Path: 1, Size: 2048, Attributes: 0x20})
		got, ok := p.AsFile()
		require.True(t, ok)
		assert.Equal(t, StringId(1), got.Path)
		assert.Equal(t, uint64(2048), got.Size)
	})

	t.Run("registry", func(t *testing.T) {
		p := NewRegistryPayload(RegistryPayload{KeyPath: 3, ValueName: 4, ValueType: 1, DataSize: 8})
		got, ok := p.AsRegistry()
		require.True(t, ok)
		assert.Equal(t, StringId(3), got.KeyPath)
		assert.Equal(t, uint32(8), got.DataSize)
	})

	t.Run("network", func(t *testing.T) {
		p := NewNetworkPayload(NetworkPayload{LocalPort: 443, RemotePort: 55123, Protocol: 6})
		got, ok := p.AsNetwork()
		require.True(t, ok)
		assert.Equal(t, uint16(443), got.LocalPort)
		assert.Equal(t, uint8(6), got.Protocol)
	})

	t.Run("process", func(t *testing.T) {
		p := NewProcessPayload(ProcessPayload{Pid: 100, ParentPid: 50})
		got, ok := p.AsProcess()
		require.True(t, ok)
		assert.Equal(t, uint32(100), got.Pid)
	})

	t.Run("wrong accessor returns zero value and false", func(t *testing.T) {
		p := NewFilePayload(FilePayload{Path: 1})
		_, ok := p.AsRegistry()
		assert.False(t, ok)
	})
}
