package eventmodel

import "encoding/binary"

// payloadSize is the width of the raw variant storage inside EventPayload.
// Every per-category payload struct below packs into at most this many
// bytes; Go has no union, so EventPayload carries a category tag plus this
// fixed byte window and each category knows how to encode/decode itself.
const payloadSize = 24

// EventPayload is a tagged union of all per-category payload shapes,
// represented as a discriminator plus a fixed raw byte window instead of a
// C union. Category says which As*/New* pair is valid for Raw.
type EventPayload struct {
	Category Category
	Raw      [payloadSize]byte
}

func putStringId(b []byte, v StringId) { binary.LittleEndian.PutUint32(b, uint32(v)) }
func getStringId(b []byte) StringId    { return StringId(binary.LittleEndian.Uint32(b)) }

// FilePayload describes a file/directory operation.
type FilePayload struct {
	Path       StringId
	Size       uint64
	Attributes uint32
}

func NewFilePayload(p FilePayload) EventPayload {
	var raw [payloadSize]byte
	putStringId(raw[0:4], p.Path)
	binary.LittleEndian.PutUint64(raw[4:12], p.Size)
	binary.LittleEndian.PutUint32(raw[12:16], p.Attributes)
	return EventPayload{Category: CategoryFileSystem, Raw: raw}
}

func (p EventPayload) AsFile() (FilePayload, bool) {
	if p.Category != CategoryFileSystem {
		return FilePayload{}, false
	}
	return FilePayload{
		Path:       getStringId(p.Raw[0:4]),
		Size:       binary.LittleEndian.Uint64(p.Raw[4:12]),
		Attributes: binary.LittleEndian.Uint32(p.Raw[12:16]),
	}, true
}

// RegistryPayload describes a Windows registry operation.
type RegistryPayload struct {
	KeyPath   StringId
	ValueName StringId
	ValueType uint32
	DataSize  uint32
}

func NewRegistryPayload(p RegistryPayload) EventPayload {
	var raw [payloadSize]byte
	putStringId(raw[0:4], p.KeyPath)
	putStringId(raw[4:8], p.ValueName)
	binary.LittleEndian.PutUint32(raw[8:12], p.ValueType)
	binary.LittleEndian.PutUint32(raw[12:16], p.DataSize)
	return EventPayload{Category: CategoryRegistry, Raw: raw}
}

func (p EventPayload) AsRegistry() (RegistryPayload, bool) {
	if p.Category != CategoryRegistry {
		return RegistryPayload{}, false
	}
	return RegistryPayload{
		KeyPath:   getStringId(p.Raw[0:4]),
		ValueName: getStringId(p.Raw[4:8]),
		ValueType: binary.LittleEndian.Uint32(p.Raw[8:12]),
		DataSize:  binary.LittleEndian.Uint32(p.Raw[12:16]),
	}, true
}

// NetworkPayload describes a socket-level network operation.
type NetworkPayload struct {
	LocalAddr  uint32
	RemoteAddr uint32
	LocalPort  uint16
	RemotePort uint16
	Bytes      uint32
	Protocol   uint8
}

func NewNetworkPayload(p NetworkPayload) EventPayload {
	var raw [payloadSize]byte
	binary.LittleEndian.PutUint32(raw[0:4], p.LocalAddr)
	binary.LittleEndian.PutUint32(raw[4:8], p.RemoteAddr)
	binary.LittleEndian.PutUint16(raw[8:10], p.LocalPort)
	binary.LittleEndian.PutUint16(raw[10:12], p.RemotePort)
	binary.LittleEndian.PutUint32(raw[12:16], p.Bytes)
	raw[16] = p.Protocol
	return EventPayload{Category: CategoryNetwork, Raw: raw}
}

func (p EventPayload) AsNetwork() (NetworkPayload, bool) {
	if p.Category != CategoryNetwork {
		return NetworkPayload{}, false
	}
	return NetworkPayload{
		LocalAddr:  binary.LittleEndian.Uint32(p.Raw[0:4]),
		RemoteAddr: binary.LittleEndian.Uint32(p.Raw[4:8]),
		LocalPort:  binary.LittleEndian.Uint16(p.Raw[8:10]),
		RemotePort: binary.LittleEndian.Uint16(p.Raw[10:12]),
		Bytes:      binary.LittleEndian.Uint32(p.Raw[12:16]),
		Protocol:   p.Raw[16],
	}, true
}

// ProcessPayload describes a process lifecycle operation.
type ProcessPayload struct {
	Pid         uint32
	ParentPid   uint32
	ImagePath   StringId
	CommandLine StringId
}

func NewProcessPayload(p ProcessPayload) EventPayload {
	var raw [payloadSize]byte
	binary.LittleEndian.PutUint32(raw[0:4], p.Pid)
	binary.LittleEndian.PutUint32(raw[4:8], p.ParentPid)
	putStringId(raw[8:12], p.ImagePath)
	putStringId(raw[12:16], p.CommandLine)
	return EventPayload{Category: CategoryProcess, Raw: raw}
}

func (p EventPayload) AsProcess() (ProcessPayload, bool) {
	if p.Category != CategoryProcess {
		return ProcessPayload{}, false
	}
	return ProcessPayload{
		Pid:         binary.LittleEndian.Uint32(p.Raw[0:4]),
		ParentPid:   binary.LittleEndian.Uint32(p.Raw[4:8]),
		ImagePath:   getStringId(p.Raw[8:12]),
		CommandLine: getStringId(p.Raw[12:16]),
	}, true
}

// SchedulerPayload describes a task scheduler operation.
type SchedulerPayload struct {
	TaskName    StringId
	Action      StringId
	TriggerType uint32
}

func NewSchedulerPayload(p SchedulerPayload) EventPayload {
	var raw [payloadSize]byte
	putStringId(raw[0:4], p.TaskName)
	putStringId(raw[4:8], p.Action)
	binary.LittleEndian.PutUint32(raw[8:12], p.TriggerType)
	return EventPayload{Category: CategoryScheduler, Raw: raw}
}

func (p EventPayload) AsScheduler() (SchedulerPayload, bool) {
	if p.Category != CategoryScheduler {
		return SchedulerPayload{}, false
	}
	return SchedulerPayload{
		TaskName:    getStringId(p.Raw[0:4]),
		Action:      getStringId(p.Raw[4:8]),
		TriggerType: binary.LittleEndian.Uint32(p.Raw[8:12]),
	}, true
}

// InputPayload describes an input device hook/block operation.
type InputPayload struct {
	HookType  uint32
	TargetTid uint32
}

func NewInputPayload(p InputPayload) EventPayload {
	var raw [payloadSize]byte
	binary.LittleEndian.PutUint32(raw[0:4], p.HookType)
	binary.LittleEndian.PutUint32(raw[4:8], p.TargetTid)
	return EventPayload{Category: CategoryInput, Raw: raw}
}

func (p EventPayload) AsInput() (InputPayload, bool) {
	if p.Category != CategoryInput {
		return InputPayload{}, false
	}
	return InputPayload{
		HookType:  binary.LittleEndian.Uint32(p.Raw[0:4]),
		TargetTid: binary.LittleEndian.Uint32(p.Raw[4:8]),
	}, true
}

// ImagePayload describes a DLL/EXE image load/unload operation.
type ImagePayload struct {
	ImagePath    StringId
	ProcessId    uint32
	BaseAddress  uint64
	Size         uint32
	IsSuspicious bool
}

func NewImagePayload(p ImagePayload) EventPayload {
	var raw [payloadSize]byte
	putStringId(raw[0:4], p.ImagePath)
	binary.LittleEndian.PutUint32(raw[4:8], p.ProcessId)
	binary.LittleEndian.PutUint64(raw[8:16], p.BaseAddress)
	binary.LittleEndian.PutUint32(raw[16:20], p.Size)
	raw[20] = boolToByte(p.IsSuspicious)
	return EventPayload{Category: CategoryImage, Raw: raw}
}

func (p EventPayload) AsImage() (ImagePayload, bool) {
	if p.Category != CategoryImage {
		return ImagePayload{}, false
	}
	return ImagePayload{
		ImagePath:    getStringId(p.Raw[0:4]),
		ProcessId:    binary.LittleEndian.Uint32(p.Raw[4:8]),
		BaseAddress:  binary.LittleEndian.Uint64(p.Raw[8:16]),
		Size:         binary.LittleEndian.Uint32(p.Raw[16:20]),
		IsSuspicious: p.Raw[20] != 0,
	}, true
}

// ThreadPayload describes a thread lifecycle operation.
type ThreadPayload struct {
	ThreadId     uint32
	ProcessId    uint32
	StartAddress uint64
	CreatorPid   uint32
	IsRemote     bool
}

func NewThreadPayload(p ThreadPayload) EventPayload {
	var raw [payloadSize]byte
	binary.LittleEndian.PutUint32(raw[0:4], p.ThreadId)
	binary.LittleEndian.PutUint32(raw[4:8], p.ProcessId)
	binary.LittleEndian.PutUint64(raw[8:16], p.StartAddress)
	binary.LittleEndian.PutUint32(raw[16:20], p.CreatorPid)
	raw[20] = boolToByte(p.IsRemote)
	return EventPayload{Category: CategoryThread, Raw: raw}
}

func (p EventPayload) AsThread() (ThreadPayload, bool) {
	if p.Category != CategoryThread {
		return ThreadPayload{}, false
	}
	return ThreadPayload{
		ThreadId:     binary.LittleEndian.Uint32(p.Raw[0:4]),
		ProcessId:    binary.LittleEndian.Uint32(p.Raw[4:8]),
		StartAddress: binary.LittleEndian.Uint64(p.Raw[8:16]),
		CreatorPid:   binary.LittleEndian.Uint32(p.Raw[16:20]),
		IsRemote:     p.Raw[20] != 0,
	}, true
}

// MemoryPayload describes a virtual memory allocation operation.
type MemoryPayload struct {
	BaseAddress  uint64
	RegionSize   uint32
	ProcessId    uint32
	Protection   uint32
	IsSuspicious bool
}

func NewMemoryPayload(p MemoryPayload) EventPayload {
	var raw [payloadSize]byte
	binary.LittleEndian.PutUint64(raw[0:8], p.BaseAddress)
	binary.LittleEndian.PutUint32(raw[8:12], p.RegionSize)
	binary.LittleEndian.PutUint32(raw[12:16], p.ProcessId)
	binary.LittleEndian.PutUint32(raw[16:20], p.Protection)
	raw[20] = boolToByte(p.IsSuspicious)
	return EventPayload{Category: CategoryMemory, Raw: raw}
}

func (p EventPayload) AsMemory() (MemoryPayload, bool) {
	if p.Category != CategoryMemory {
		return MemoryPayload{}, false
	}
	return MemoryPayload{
		BaseAddress:  binary.LittleEndian.Uint64(p.Raw[0:8]),
		RegionSize:   binary.LittleEndian.Uint32(p.Raw[8:12]),
		ProcessId:    binary.LittleEndian.Uint32(p.Raw[12:16]),
		Protection:   binary.LittleEndian.Uint32(p.Raw[16:20]),
		IsSuspicious: p.Raw[20] != 0,
	}, true
}

// ScriptPayload describes a PowerShell script logging operation.
type ScriptPayload struct {
	ScriptBlock  StringId
	Context      StringId
	Sequence     uint32
	IsSuspicious bool
}

func NewScriptPayload(p ScriptPayload) EventPayload {
	var raw [payloadSize]byte
	putStringId(raw[0:4], p.ScriptBlock)
	putStringId(raw[4:8], p.Context)
	binary.LittleEndian.PutUint32(raw[8:12], p.Sequence)
	raw[12] = boolToByte(p.IsSuspicious)
	return EventPayload{Category: CategoryScript, Raw: raw}
}

func (p EventPayload) AsScript() (ScriptPayload, bool) {
	if p.Category != CategoryScript {
		return ScriptPayload{}, false
	}
	return ScriptPayload{
		ScriptBlock:  getStringId(p.Raw[0:4]),
		Context:      getStringId(p.Raw[4:8]),
		Sequence:     binary.LittleEndian.Uint32(p.Raw[8:12]),
		IsSuspicious: p.Raw[12] != 0,
	}, true
}

// AmsiPayload describes an AMSI scan operation.
type AmsiPayload struct {
	Content     StringId
	AppName     StringId
	ScanResult  uint32
	ContentSize uint32
}

func NewAmsiPayload(p AmsiPayload) EventPayload {
	var raw [payloadSize]byte
	putStringId(raw[0:4], p.Content)
	putStringId(raw[4:8], p.AppName)
	binary.LittleEndian.PutUint32(raw[8:12], p.ScanResult)
	binary.LittleEndian.PutUint32(raw[12:16], p.ContentSize)
	return EventPayload{Category: CategoryAmsi, Raw: raw}
}

func (p EventPayload) AsAmsi() (AmsiPayload, bool) {
	if p.Category != CategoryAmsi {
		return AmsiPayload{}, false
	}
	return AmsiPayload{
		Content:     getStringId(p.Raw[0:4]),
		AppName:     getStringId(p.Raw[4:8]),
		ScanResult:  binary.LittleEndian.Uint32(p.Raw[8:12]),
		ContentSize: binary.LittleEndian.Uint32(p.Raw[12:16]),
	}, true
}

// DnsPayload describes a DNS resolution operation.
type DnsPayload struct {
	Domain       StringId
	QueryType    uint32
	ResultCode   uint32
	ResolvedIp   uint32
	IsSuspicious bool
}

func NewDnsPayload(p DnsPayload) EventPayload {
	var raw [payloadSize]byte
	putStringId(raw[0:4], p.Domain)
	binary.LittleEndian.PutUint32(raw[4:8], p.QueryType)
	binary.LittleEndian.PutUint32(raw[8:12], p.ResultCode)
	binary.LittleEndian.PutUint32(raw[12:16], p.ResolvedIp)
	raw[16] = boolToByte(p.IsSuspicious)
	return EventPayload{Category: CategoryDns, Raw: raw}
}

func (p EventPayload) AsDns() (DnsPayload, bool) {
	if p.Category != CategoryDns {
		return DnsPayload{}, false
	}
	return DnsPayload{
		Domain:       getStringId(p.Raw[0:4]),
		QueryType:    binary.LittleEndian.Uint32(p.Raw[4:8]),
		ResultCode:   binary.LittleEndian.Uint32(p.Raw[8:12]),
		ResolvedIp:   binary.LittleEndian.Uint32(p.Raw[12:16]),
		IsSuspicious: p.Raw[16] != 0,
	}, true
}

// SecurityPayload describes a security auditing event (logon, privilege).
type SecurityPayload struct {
	SubjectUser  StringId
	TargetUser   StringId
	CommandLine  StringId
	LogonType    uint32
	ProcessId    uint32
	IsSuspicious bool
}

func NewSecurityPayload(p SecurityPayload) EventPayload {
	var raw [payloadSize]byte
	putStringId(raw[0:4], p.SubjectUser)
	putStringId(raw[4:8], p.TargetUser)
	putStringId(raw[8:12], p.CommandLine)
	binary.LittleEndian.PutUint32(raw[12:16], p.LogonType)
	binary.LittleEndian.PutUint32(raw[16:20], p.ProcessId)
	raw[20] = boolToByte(p.IsSuspicious)
	return EventPayload{Category: CategorySecurity, Raw: raw}
}

func (p EventPayload) AsSecurity() (SecurityPayload, bool) {
	if p.Category != CategorySecurity {
		return SecurityPayload{}, false
	}
	return SecurityPayload{
		SubjectUser:  getStringId(p.Raw[0:4]),
		TargetUser:   getStringId(p.Raw[4:8]),
		CommandLine:  getStringId(p.Raw[8:12]),
		LogonType:    binary.LittleEndian.Uint32(p.Raw[12:16]),
		ProcessId:    binary.LittleEndian.Uint32(p.Raw[16:20]),
		IsSuspicious: p.Raw[20] != 0,
	}, true
}

// ServicePayload describes a Windows service lifecycle operation.
type ServicePayload struct {
	ServiceName  StringId
	ServicePath  StringId
	ServiceType  uint32
	StartType    uint32
	IsSuspicious bool
}

func NewServicePayload(p ServicePayload) EventPayload {
	var raw [payloadSize]byte
	putStringId(raw[0:4], p.ServiceName)
	putStringId(raw[4:8], p.ServicePath)
	binary.LittleEndian.PutUint32(raw[8:12], p.ServiceType)
	binary.LittleEndian.PutUint32(raw[12:16], p.StartType)
	raw[16] = boolToByte(p.IsSuspicious)
	return EventPayload{Category: CategoryService, Raw: raw}
}

func (p EventPayload) AsService() (ServicePayload, bool) {
	if p.Category != CategoryService {
		return ServicePayload{}, false
	}
	return ServicePayload{
		ServiceName:  getStringId(p.Raw[0:4]),
		ServicePath:  getStringId(p.Raw[4:8]),
		ServiceType:  binary.LittleEndian.Uint32(p.Raw[8:12]),
		StartType:    binary.LittleEndian.Uint32(p.Raw[12:16]),
		IsSuspicious: p.Raw[16] != 0,
	}, true
}

// WmiPayload describes a WMI activity operation.
type WmiPayload struct {
	WmiNamespace StringId
	Query        StringId
	TargetHost   StringId
	IsRemote     bool
	IsSuspicious bool
}

func NewWmiPayload(p WmiPayload) EventPayload {
	var raw [payloadSize]byte
	putStringId(raw[0:4], p.WmiNamespace)
	putStringId(raw[4:8], p.Query)
	putStringId(raw[8:12], p.TargetHost)
	raw[12] = boolToByte(p.IsRemote)
	raw[13] = boolToByte(p.IsSuspicious)
	return EventPayload{Category: CategoryWmi, Raw: raw}
}

func (p EventPayload) AsWmi() (WmiPayload, bool) {
	if p.Category != CategoryWmi {
		return WmiPayload{}, false
	}
	return WmiPayload{
		WmiNamespace: getStringId(p.Raw[0:4]),
		Query:        getStringId(p.Raw[4:8]),
		TargetHost:   getStringId(p.Raw[8:12]),
		IsRemote:     p.Raw[12] != 0,
		IsSuspicious: p.Raw[13] != 0,
	}, true
}

// ClrPayload describes a .NET CLR runtime operation.
type ClrPayload struct {
	AssemblyName StringId
	MethodName   StringId
	LoadAddress  uint64
	IsDynamic    bool
	IsSuspicious bool
}

func NewClrPayload(p ClrPayload) EventPayload {
	var raw [payloadSize]byte
	putStringId(raw[0:4], p.AssemblyName)
	putStringId(raw[4:8], p.MethodName)
	binary.LittleEndian.PutUint64(raw[8:16], p.LoadAddress)
	raw[16] = boolToByte(p.IsDynamic)
	raw[17] = boolToByte(p.IsSuspicious)
	return EventPayload{Category: CategoryClr, Raw: raw}
}

func (p EventPayload) AsClr() (ClrPayload, bool) {
	if p.Category != CategoryClr {
		return ClrPayload{}, false
	}
	return ClrPayload{
		AssemblyName: getStringId(p.Raw[0:4]),
		MethodName:   getStringId(p.Raw[4:8]),
		LoadAddress:  binary.LittleEndian.Uint64(p.Raw[8:16]),
		IsDynamic:    p.Raw[16] != 0,
		IsSuspicious: p.Raw[17] != 0,
	}, true
}

func boolToByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
