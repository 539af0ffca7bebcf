package correlator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exeray/exeray/internal/eventmodel"
)

func TestRegisterProcessThenFindParents(t *testing.T) {
	c := New()
	c.RegisterProcess(200, 7)

	assert.Equal(t, eventmodel.EventId(7), c.FindProcessParent(200))
	assert.Equal(t, eventmodel.EventId(7), c.FindThreadParent(200))
	assert.Equal(t, eventmodel.EventId(7), c.FindOperationParent(200))
}

func TestUnknownPidReturnsInvalidEvent(t *testing.T) {
	c := New()
	assert.Equal(t, eventmodel.InvalidEvent, c.FindProcessParent(999))
}

func TestGetCorrelationIdStableAcrossCalls(t *testing.T) {
	c := New()
	first := c.GetCorrelationId(100, 0)
	second := c.GetCorrelationId(100, 0)
	assert.Equal(t, first, second)
	assert.NotEqual(t, eventmodel.NoCorrelation, first)
}

func TestGetCorrelationIdInheritsFromParent(t *testing.T) {
	c := New()
	parentCorr := c.GetCorrelationId(100, 0)
	childCorr := c.GetCorrelationId(200, 100)
	assert.Equal(t, parentCorr, childCorr)
}

func TestGetCorrelationIdNoParentAllocatesFresh(t *testing.T) {
	c := New()
	a := c.GetCorrelationId(100, 0)
	b := c.GetCorrelationId(200, 0)
	assert.NotEqual(t, a, b)
}

func TestRegisterEventOnlyMovesForProcessCreate(t *testing.T) {
	c := New()

	createNode := eventmodel.EventNode{
		Id:        5,
		Operation: uint8(eventmodel.ProcessCreate),
		Payload:   eventmodel.NewProcessPayload(eventmodel.ProcessPayload{Pid: 300}),
	}
	c.RegisterEvent(eventmodel.NewEventView(&createNode))
	require.Equal(t, eventmodel.EventId(5), c.FindProcessParent(300))

	terminateNode := eventmodel.EventNode{
		Id:        9,
		Operation: uint8(eventmodel.ProcessTerminate),
		Payload:   eventmodel.NewProcessPayload(eventmodel.ProcessPayload{Pid: 300}),
	}
	c.RegisterEvent(eventmodel.NewEventView(&terminateNode))
	assert.Equal(t, eventmodel.EventId(5), c.FindProcessParent(300), "terminate must not overwrite the last process-create event")
}

func TestProcessTerminateDoesNotRemoveEntry(t *testing.T) {
	c := New()
	c.RegisterProcess(400, 11)

	// Even after the process is conceptually gone, later queries must
	// still resolve -- the correlator never forgets for forensic ordering.
	assert.Equal(t, eventmodel.EventId(11), c.FindProcessParent(400))
}
