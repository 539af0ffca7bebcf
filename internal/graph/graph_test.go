package graph

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exeray/exeray/internal/arena"
	"github.com/exeray/exeray/internal/eventmodel"
	"github.com/exeray/exeray/internal/stringpool"
)

func newTestGraph(capacity int) *Graph {
	pool := stringpool.New(arena.New(1 << 16))
	return New(capacity, pool)
}

func TestPushThenGetAndExists(t *testing.T) {
	g := newTestGraph(8)

	id := g.Push(eventmodel.CategoryProcess, uint8(eventmodel.ProcessCreate), eventmodel.StatusSuccess,
		eventmodel.InvalidEvent, eventmodel.NoCorrelation,
		eventmodel.NewProcessPayload(eventmodel.ProcessPayload{Pid: 100}))

	require.NotEqual(t, eventmodel.InvalidEvent, id)
	assert.True(t, g.Exists(id))

	view, ok := g.Get(id)
	require.True(t, ok)
	assert.Equal(t, eventmodel.CategoryProcess, view.Category())
	assert.Equal(t, uint64(1), g.Count())
}

func TestPushIdsStrictlyIncreasing(t *testing.T) {
	g := newTestGraph(8)

	a := g.Push(eventmodel.CategoryFileSystem, uint8(eventmodel.FileCreate), eventmodel.StatusSuccess, 0, 0, eventmodel.NewFilePayload(eventmodel.FilePayload{}))
	b := g.Push(eventmodel.CategoryFileSystem, uint8(eventmodel.FileCreate), eventmodel.StatusSuccess, 0, 0, eventmodel.NewFilePayload(eventmodel.FilePayload{}))

	assert.Less(t, a, b)
}

func TestPushParentLinksViaForEachChild(t *testing.T) {
	g := newTestGraph(8)

	parent := g.Push(eventmodel.CategoryProcess, uint8(eventmodel.ProcessCreate), eventmodel.StatusSuccess, 0, 0,
		eventmodel.NewProcessPayload(eventmodel.ProcessPayload{Pid: 100}))
	child := g.Push(eventmodel.CategoryProcess, uint8(eventmodel.ProcessCreate), eventmodel.StatusSuccess, parent, 0,
		eventmodel.NewProcessPayload(eventmodel.ProcessPayload{Pid: 200, ParentPid: 100}))

	var children []eventmodel.EventId
	g.ForEachChild(parent, func(v eventmodel.EventView) {
		children = append(children, v.Id())
	})

	require.Len(t, children, 1)
	assert.Equal(t, child, children[0])
}

func TestPushCorrelationLinksViaForEachCorrelation(t *testing.T) {
	g := newTestGraph(8)
	const corr = eventmodel.CorrelationId(42)

	id1 := g.Push(eventmodel.CategoryNetwork, uint8(eventmodel.NetworkConnect), eventmodel.StatusSuccess, 0, corr,
		eventmodel.NewNetworkPayload(eventmodel.NetworkPayload{}))
	id2 := g.Push(eventmodel.CategoryNetwork, uint8(eventmodel.NetworkSend), eventmodel.StatusSuccess, 0, corr,
		eventmodel.NewNetworkPayload(eventmodel.NetworkPayload{}))

	var seen []eventmodel.EventId
	g.ForEachCorrelation(corr, func(v eventmodel.EventView) {
		seen = append(seen, v.Id())
	})

	assert.Equal(t, []eventmodel.EventId{id1, id2}, seen)
}

func TestPushAtCapacityReturnsInvalidEvent(t *testing.T) {
	g := newTestGraph(2)

	a := g.Push(eventmodel.CategoryFileSystem, uint8(eventmodel.FileCreate), eventmodel.StatusSuccess, 0, 0, eventmodel.NewFilePayload(eventmodel.FilePayload{}))
	b := g.Push(eventmodel.CategoryFileSystem, uint8(eventmodel.FileCreate), eventmodel.StatusSuccess, 0, 0, eventmodel.NewFilePayload(eventmodel.FilePayload{}))
	require.NotEqual(t, eventmodel.InvalidEvent, a)
	require.NotEqual(t, eventmodel.InvalidEvent, b)

	overflow := g.Push(eventmodel.CategoryFileSystem, uint8(eventmodel.FileCreate), eventmodel.StatusSuccess, 0, 0, eventmodel.NewFilePayload(eventmodel.FilePayload{}))
	assert.Equal(t, eventmodel.InvalidEvent, overflow)
	assert.Equal(t, uint64(2), g.Count())
}

func TestForEachVisitsInsertionOrder(t *testing.T) {
	g := newTestGraph(16)

	var want []eventmodel.EventId
	for i := 0; i < 10; i++ {
		id := g.Push(eventmodel.CategoryFileSystem, uint8(eventmodel.FileRead), eventmodel.StatusSuccess, 0, 0, eventmodel.NewFilePayload(eventmodel.FilePayload{}))
		want = append(want, id)
	}

	var got []eventmodel.EventId
	g.ForEach(func(v eventmodel.EventView) {
		got = append(got, v.Id())
	})

	assert.Equal(t, want, got)
}

func TestConcurrentPushesAllDistinctAndCountMatches(t *testing.T) {
	const workers = 8
	const perWorker = 50
	g := newTestGraph(workers * perWorker)

	ids := make(chan eventmodel.EventId, workers*perWorker)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				id := g.Push(eventmodel.CategoryFileSystem, uint8(eventmodel.FileWrite), eventmodel.StatusSuccess, 0, 0, eventmodel.NewFilePayload(eventmodel.FilePayload{}))
				ids <- id
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[eventmodel.EventId]bool)
	for id := range ids {
		require.NotEqual(t, eventmodel.InvalidEvent, id)
		require.False(t, seen[id], "duplicate id observed")
		seen[id] = true
	}
	assert.Equal(t, workers*perWorker, len(seen))
	assert.Equal(t, uint64(workers*perWorker), g.Count())
}

func TestResolveAndInternStringDelegates(t *testing.T) {
	g := newTestGraph(4)
	id := g.InternString([]byte("hello"))
	assert.Equal(t, []byte("hello"), g.ResolveString(id))
}
