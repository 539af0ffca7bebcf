package eventmodel

import "encoding/binary"

// NodeSize is the wire size of a marshalled EventNode: one cache line.
const NodeSize = 64

// EventNode is a single record in the event graph.
//
//	id:             8 bytes
//	parent_id:      8 bytes (0 = root event)
//	timestamp:      8 bytes (monotonic ns, stamped by the graph)
//	correlation_id: 4 bytes
//	status:         1 byte
//	operation:      1 byte (category-specific code)
//	payload:        32-byte-equivalent union (1-byte category tag + 24-byte raw + 7 pad)
type EventNode struct {
	Id            EventId
	ParentId      EventId
	Timestamp     Timestamp
	CorrelationId CorrelationId
	Status        Status
	Operation     uint8
	Payload       EventPayload
}

// IsRoot reports whether this event has no parent.
func (n EventNode) IsRoot() bool {
	return n.ParentId == InvalidEvent
}

// Marshal packs the node into the 64-byte wire shape the original layout
// promises, for anything that needs byte-for-byte interop (tests, dumps).
func (n EventNode) Marshal() [NodeSize]byte {
	var b [NodeSize]byte
	binary.LittleEndian.PutUint64(b[0:8], uint64(n.Id))
	binary.LittleEndian.PutUint64(b[8:16], uint64(n.ParentId))
	binary.LittleEndian.PutUint64(b[16:24], uint64(n.Timestamp))
	binary.LittleEndian.PutUint32(b[24:28], uint32(n.CorrelationId))
	b[28] = byte(n.Status)
	b[29] = n.Operation
	// b[30:32] explicit padding
	b[32] = byte(n.Payload.Category)
	// b[33:40] explicit padding to align the raw window at 8 bytes
	copy(b[40:40+payloadSize], n.Payload.Raw[:])
	return b
}

// UnmarshalEventNode reverses Marshal.
func UnmarshalEventNode(b [NodeSize]byte) EventNode {
	var n EventNode
	n.Id = EventId(binary.LittleEndian.Uint64(b[0:8]))
	n.ParentId = EventId(binary.LittleEndian.Uint64(b[8:16]))
	n.Timestamp = Timestamp(binary.LittleEndian.Uint64(b[16:24]))
	n.CorrelationId = CorrelationId(binary.LittleEndian.Uint32(b[24:28]))
	n.Status = Status(b[28])
	n.Operation = b[29]
	n.Payload.Category = Category(b[32])
	copy(n.Payload.Raw[:], b[40:40+payloadSize])
	return n
}

// EventView is a read-only, category-checked accessor over an EventNode.
// The typed operation accessors below assume the caller already checked
// Category (via the event's own Payload.Category or a prior As* call) --
// calling one for the wrong category is a programming bug, not a runtime
// condition the pipeline needs to recover from, so they panic rather than
// thread an error through every call site.
type EventView struct {
	node *EventNode
}

// NewEventView wraps a node for typed access. Panics on a nil node, mirroring
// the non-recoverable precondition the original accessor family enforces.
func NewEventView(node *EventNode) EventView {
	if node == nil {
		panic("eventmodel: NewEventView requires a non-nil node")
	}
	return EventView{node: node}
}

func (v EventView) Id() EventId                  { return v.node.Id }
func (v EventView) ParentId() EventId            { return v.node.ParentId }
func (v EventView) Timestamp() Timestamp         { return v.node.Timestamp }
func (v EventView) Category() Category           { return v.node.Payload.Category }
func (v EventView) Status() Status               { return v.node.Status }
func (v EventView) Operation() uint8             { return v.node.Operation }
func (v EventView) CorrelationId() CorrelationId { return v.node.CorrelationId }
func (v EventView) IsRoot() bool                 { return v.node.IsRoot() }
func (v EventView) Node() *EventNode             { return v.node }

func (v EventView) requireCategory(c Category, who string) {
	if v.Category() != c {
		panic("eventmodel: invalid category for " + who)
	}
}

func (v EventView) FileOp() FileOp {
	v.requireCategory(CategoryFileSystem, "FileOp")
	return FileOp(v.node.Operation)
}

func (v EventView) RegistryOp() RegistryOp {
	v.requireCategory(CategoryRegistry, "RegistryOp")
	return RegistryOp(v.node.Operation)
}

func (v EventView) NetworkOp() NetworkOp {
	v.requireCategory(CategoryNetwork, "NetworkOp")
	return NetworkOp(v.node.Operation)
}

func (v EventView) ProcessOp() ProcessOp {
	v.requireCategory(CategoryProcess, "ProcessOp")
	return ProcessOp(v.node.Operation)
}

func (v EventView) SchedulerOp() SchedulerOp {
	v.requireCategory(CategoryScheduler, "SchedulerOp")
	return SchedulerOp(v.node.Operation)
}

func (v EventView) InputOp() InputOp {
	v.requireCategory(CategoryInput, "InputOp")
	return InputOp(v.node.Operation)
}

func (v EventView) ImageOp() ImageOp {
	v.requireCategory(CategoryImage, "ImageOp")
	return ImageOp(v.node.Operation)
}

func (v EventView) ThreadOp() ThreadOp {
	v.requireCategory(CategoryThread, "ThreadOp")
	return ThreadOp(v.node.Operation)
}

func (v EventView) MemoryOp() MemoryOp {
	v.requireCategory(CategoryMemory, "MemoryOp")
	return MemoryOp(v.node.Operation)
}

func (v EventView) ScriptOp() ScriptOp {
	v.requireCategory(CategoryScript, "ScriptOp")
	return ScriptOp(v.node.Operation)
}

func (v EventView) AmsiOp() AmsiOp {
	v.requireCategory(CategoryAmsi, "AmsiOp")
	return AmsiOp(v.node.Operation)
}

func (v EventView) DnsOp() DnsOp {
	v.requireCategory(CategoryDns, "DnsOp")
	return DnsOp(v.node.Operation)
}

func (v EventView) SecurityOp() SecurityOp {
	v.requireCategory(CategorySecurity, "SecurityOp")
	return SecurityOp(v.node.Operation)
}

func (v EventView) ServiceOp() ServiceOp {
	v.requireCategory(CategoryService, "ServiceOp")
	return ServiceOp(v.node.Operation)
}

func (v EventView) WmiOp() WmiOp {
	v.requireCategory(CategoryWmi, "WmiOp")
	return WmiOp(v.node.Operation)
}

func (v EventView) ClrOp() ClrOp {
	v.requireCategory(CategoryClr, "ClrOp")
	return ClrOp(v.node.Operation)
}

func (v EventView) AsFile() FilePayload {
	v.requireCategory(CategoryFileSystem, "AsFile")
	p, _ := v.node.Payload.AsFile()
	return p
}

func (v EventView) AsRegistry() RegistryPayload {
	v.requireCategory(CategoryRegistry, "AsRegistry")
	p, _ := v.node.Payload.AsRegistry()
	return p
}

func (v EventView) AsNetwork() NetworkPayload {
	v.requireCategory(CategoryNetwork, "AsNetwork")
	p, _ := v.node.Payload.AsNetwork()
	return p
}

func (v EventView) AsProcess() ProcessPayload {
	v.requireCategory(CategoryProcess, "AsProcess")
	p, _ := v.node.Payload.AsProcess()
	return p
}

func (v EventView) AsScheduler() SchedulerPayload {
	v.requireCategory(CategoryScheduler, "AsScheduler")
	p, _ := v.node.Payload.AsScheduler()
	return p
}

func (v EventView) AsInput() InputPayload {
	v.requireCategory(CategoryInput, "AsInput")
	p, _ := v.node.Payload.AsInput()
	return p
}

func (v EventView) AsImage() ImagePayload {
	v.requireCategory(CategoryImage, "AsImage")
	p, _ := v.node.Payload.AsImage()
	return p
}

func (v EventView) AsThread() ThreadPayload {
	v.requireCategory(CategoryThread, "AsThread")
	p, _ := v.node.Payload.AsThread()
	return p
}

func (v EventView) AsMemory() MemoryPayload {
	v.requireCategory(CategoryMemory, "AsMemory")
	p, _ := v.node.Payload.AsMemory()
	return p
}

func (v EventView) AsScript() ScriptPayload {
	v.requireCategory(CategoryScript, "AsScript")
	p, _ := v.node.Payload.AsScript()
	return p
}

func (v EventView) AsAmsi() AmsiPayload {
	v.requireCategory(CategoryAmsi, "AsAmsi")
	p, _ := v.node.Payload.AsAmsi()
	return p
}

func (v EventView) AsDns() DnsPayload {
	v.requireCategory(CategoryDns, "AsDns")
	p, _ := v.node.Payload.AsDns()
	return p
}

func (v EventView) AsSecurity() SecurityPayload {
	v.requireCategory(CategorySecurity, "AsSecurity")
	p, _ := v.node.Payload.AsSecurity()
	return p
}

func (v EventView) AsService() ServicePayload {
	v.requireCategory(CategoryService, "AsService")
	p, _ := v.node.Payload.AsService()
	return p
}

func (v EventView) AsWmi() WmiPayload {
	v.requireCategory(CategoryWmi, "AsWmi")
	p, _ := v.node.Payload.AsWmi()
	return p
}

func (v EventView) AsClr() ClrPayload {
	v.requireCategory(CategoryClr, "AsClr")
	p, _ := v.node.Payload.AsClr()
	return p
}
