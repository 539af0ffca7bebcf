// Package correlator tracks, per process id, the most recently observed
// event and the correlation id assigned to that process's subtree.
package correlator

import (
	"sync"
	"sync/atomic"

	"github.com/exeray/exeray/internal/eventmodel"
)

// Correlator maps pid -> most-recent event id and pid -> correlation id.
// Reads are shared; writes are exclusive. Entries are never removed, even
// on process termination, so later queries remain answerable for forensic
// ordering.
type Correlator struct {
	mu          sync.RWMutex
	lastEvent   map[uint32]eventmodel.EventId
	correlation map[uint32]eventmodel.CorrelationId

	nextCorrelation atomic.Uint32
}

// New creates an empty correlator. Correlation ids start at 1.
func New() *Correlator {
	c := &Correlator{
		lastEvent:   make(map[uint32]eventmodel.EventId),
		correlation: make(map[uint32]eventmodel.CorrelationId),
	}
	c.nextCorrelation.Store(1)
	return c
}

// FindProcessParent returns the recorded most-recent event id for
// parentPid, or eventmodel.InvalidEvent if none is known.
func (c *Correlator) FindProcessParent(parentPid uint32) eventmodel.EventId {
	return c.lookup(parentPid)
}

// FindThreadParent returns the recorded most-recent event id for pid.
func (c *Correlator) FindThreadParent(pid uint32) eventmodel.EventId {
	return c.lookup(pid)
}

// FindOperationParent returns the recorded most-recent event id for pid.
func (c *Correlator) FindOperationParent(pid uint32) eventmodel.EventId {
	return c.lookup(pid)
}

func (c *Correlator) lookup(pid uint32) eventmodel.EventId {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastEvent[pid]
}

// GetCorrelationId returns pid's correlation id, allocating one if needed.
// If pid has none yet and parentPid is non-zero and already correlated,
// pid inherits the parent's correlation id; otherwise a fresh id is drawn.
func (c *Correlator) GetCorrelationId(pid uint32, parentPid uint32) eventmodel.CorrelationId {
	c.mu.RLock()
	if id, ok := c.correlation[pid]; ok {
		c.mu.RUnlock()
		return id
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	if id, ok := c.correlation[pid]; ok {
		return id
	}

	var id eventmodel.CorrelationId
	if parentPid != 0 {
		if parentId, ok := c.correlation[parentPid]; ok {
			id = parentId
		}
	}
	if id == eventmodel.NoCorrelation {
		id = eventmodel.CorrelationId(c.nextCorrelation.Add(1) - 1)
	}
	c.correlation[pid] = id
	return id
}

// RegisterEvent records node as the most-recent event for its pid when it
// is a process-create event; other categories don't move the pointer.
func (c *Correlator) RegisterEvent(view eventmodel.EventView) {
	if view.Category() != eventmodel.CategoryProcess {
		return
	}
	if view.ProcessOp() != eventmodel.ProcessCreate {
		return
	}
	proc := view.AsProcess()
	c.RegisterProcess(proc.Pid, view.Id())
}

// RegisterProcess explicitly records eventId as the most-recent event for
// pid, used at process start before a node view is available.
func (c *Correlator) RegisterProcess(pid uint32, eventId eventmodel.EventId) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastEvent[pid] = eventId
}
