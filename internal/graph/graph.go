// Package graph implements the append-only event lineage store; its node
// slice is a plain Go slice, not an arena allocation. Insertion is lock-free
// on the fast path and the parent/correlation multimap indexes are guarded
// by a brief mutex. ForEach walks the node slice without a lock; the child
// and correlation iterators copy their slot lists under a shared lock. Every
// read skips a slot until its node is fully written.
package graph

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/exeray/exeray/internal/eventmodel"
	"github.com/exeray/exeray/internal/stringpool"
)

// Graph is a fixed-capacity, append-only store of EventNode records plus
// O(1) parent and correlation indexes.
//
// Open-question resolution (spec §9): the push API is implemented as
// "write the node, then publish it" rather than "increment count, then
// write" -- each slot carries its own ready flag, and Get/Exists/iteration
// only ever observe a slot once its node is fully written. This closes the
// torn-read window the naive increment-first ordering leaves open, per the
// recommended tightening in the design notes.
type Graph struct {
	nodes    []eventmodel.EventNode
	ready    []atomic.Bool
	capacity uint64

	reserved atomic.Uint64 // slots handed out, including ones rolled back

	mu       sync.RWMutex
	byParent map[eventmodel.EventId][]int
	byCorr   map[eventmodel.CorrelationId][]int

	clock func() eventmodel.Timestamp

	strings *stringpool.Pool
}

// New creates a graph with room for capacity nodes, delegating string
// resolution/interning to strings (see ResolveString/InternString).
//
// The node slice itself is a plain Go slice rather than a carve-out of the
// shared byte arena: EventNode holds no raw pointers (string fields are
// StringId handles), so there is nothing arena ownership would protect here
// that the Go runtime doesn't already guarantee. The arena remains the sole
// backing store for variable-length string bytes, which is where the
// capacity-accounting contract actually matters.
func New(capacity int, strings *stringpool.Pool) *Graph {
	if capacity < 0 {
		capacity = 0
	}
	g := &Graph{
		nodes:    make([]eventmodel.EventNode, capacity),
		ready:    make([]atomic.Bool, capacity),
		capacity: uint64(capacity),
		byParent: make(map[eventmodel.EventId][]int),
		byCorr:   make(map[eventmodel.CorrelationId][]int),
		clock:    monotonicNow,
		strings:  strings,
	}
	return g
}

// ResolveString delegates to the pool backing this graph's strings.
func (g *Graph) ResolveString(id eventmodel.StringId) []byte {
	if g.strings == nil {
		return nil
	}
	return g.strings.Get(id)
}

// InternString delegates to the pool backing this graph's strings.
func (g *Graph) InternString(b []byte) eventmodel.StringId {
	if g.strings == nil {
		return eventmodel.InvalidString
	}
	return g.strings.Intern(b)
}

var processStart = time.Now()

func monotonicNow() eventmodel.Timestamp {
	return eventmodel.Timestamp(time.Since(processStart).Nanoseconds())
}

// Push reserves a slot, writes the node, and links it into the parent and
// correlation indexes. The id is the reserved slot index plus one, so ids
// are dense from 1 and Get(id) reads slot id-1. Returns
// eventmodel.InvalidEvent if the graph is at capacity; no id is consumed on
// that path.
func (g *Graph) Push(category eventmodel.Category, operation uint8, status eventmodel.Status, parentId eventmodel.EventId, correlationId eventmodel.CorrelationId, payload eventmodel.EventPayload) eventmodel.EventId {
	slot := g.reserved.Add(1) - 1
	if slot >= g.capacity {
		g.reserved.Add(^uint64(0)) // roll back the reservation
		return eventmodel.InvalidEvent
	}

	id := eventmodel.EventId(slot + 1)
	node := eventmodel.EventNode{
		Id:            id,
		ParentId:      parentId,
		Timestamp:     g.clock(),
		CorrelationId: correlationId,
		Status:        status,
		Operation:     operation,
		Payload:       payload,
	}
	node.Payload.Category = category // category is the authoritative tag

	g.nodes[slot] = node
	g.ready[slot].Store(true)

	if parentId != eventmodel.InvalidEvent || correlationId != eventmodel.NoCorrelation {
		g.mu.Lock()
		if parentId != eventmodel.InvalidEvent {
			g.byParent[parentId] = append(g.byParent[parentId], int(slot))
		}
		if correlationId != eventmodel.NoCorrelation {
			g.byCorr[correlationId] = append(g.byCorr[correlationId], int(slot))
		}
		g.mu.Unlock()
	}

	return id
}

// Get returns the view for id, or false if id is out of range or its slot
// hasn't finished publishing yet.
func (g *Graph) Get(id eventmodel.EventId) (eventmodel.EventView, bool) {
	if id == eventmodel.InvalidEvent {
		return eventmodel.EventView{}, false
	}
	slot := uint64(id) - 1
	if slot >= uint64(len(g.nodes)) {
		return eventmodel.EventView{}, false
	}
	if !g.ready[slot].Load() {
		return eventmodel.EventView{}, false
	}
	return eventmodel.NewEventView(&g.nodes[slot]), true
}

// Exists reports whether id refers to a fully published node.
func (g *Graph) Exists(id eventmodel.EventId) bool {
	_, ok := g.Get(id)
	return ok
}

// Count returns the number of slots reserved so far, including any still
// mid-write. Use Get/Exists to check whether a specific id is visible yet.
func (g *Graph) Count() uint64 {
	return g.reserved.Load()
}

// Capacity returns the maximum number of nodes the graph can hold.
func (g *Graph) Capacity() uint64 {
	return g.capacity
}

// ForEach invokes fn for every published node, in insertion order.
func (g *Graph) ForEach(fn func(eventmodel.EventView)) {
	count := g.reserved.Load()
	if count > g.capacity {
		count = g.capacity
	}
	for i := uint64(0); i < count; i++ {
		if !g.ready[i].Load() {
			continue
		}
		fn(eventmodel.NewEventView(&g.nodes[i]))
	}
}

// ForEachCategory invokes fn for every published node of the given category,
// in insertion order.
func (g *Graph) ForEachCategory(category eventmodel.Category, fn func(eventmodel.EventView)) {
	g.ForEach(func(v eventmodel.EventView) {
		if v.Category() == category {
			fn(v)
		}
	})
}

// ForEachChild invokes fn for every published node whose parent id is
// parent, in the order they were linked.
func (g *Graph) ForEachChild(parent eventmodel.EventId, fn func(eventmodel.EventView)) {
	g.mu.RLock()
	slots := append([]int(nil), g.byParent[parent]...)
	g.mu.RUnlock()

	for _, slot := range slots {
		if !g.ready[slot].Load() {
			continue
		}
		fn(eventmodel.NewEventView(&g.nodes[slot]))
	}
}

// ForEachCorrelation invokes fn for every published node sharing the given
// correlation id, in the order they were linked.
func (g *Graph) ForEachCorrelation(corr eventmodel.CorrelationId, fn func(eventmodel.EventView)) {
	g.mu.RLock()
	slots := append([]int(nil), g.byCorr[corr]...)
	g.mu.RUnlock()

	for _, slot := range slots {
		if !g.ready[slot].Load() {
			continue
		}
		fn(eventmodel.NewEventView(&g.nodes[slot]))
	}
}
