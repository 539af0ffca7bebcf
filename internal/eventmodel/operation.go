package eventmodel

// Each category has its own small, closed set of operation codes. These are
// stored as a single uint8 on EventNode; the category tag on the payload
// says which enum that byte should be read back as.

// FileOp enumerates file system operations.
type FileOp uint8

const (
	FileCreate FileOp = iota
	FileDelete
	FileRead
	FileWrite
	FileRename
	FileSetAttributes
)

// RegistryOp enumerates Windows registry operations.
type RegistryOp uint8

const (
	RegistryCreateKey RegistryOp = iota
	RegistryDeleteKey
	RegistrySetValue
	RegistryDeleteValue
	RegistryQueryValue
)

// NetworkOp enumerates socket-level network operations.
type NetworkOp uint8

const (
	NetworkConnect NetworkOp = iota
	NetworkListen
	NetworkSend
	NetworkReceive
	NetworkDnsQuery
)

// ProcessOp enumerates process lifecycle operations.
type ProcessOp uint8

const (
	ProcessCreate ProcessOp = iota
	ProcessTerminate
	ProcessInject
	ProcessLoadLibrary
)

// SchedulerOp enumerates task scheduler operations.
type SchedulerOp uint8

const (
	SchedulerCreateTask SchedulerOp = iota
	SchedulerDeleteTask
	SchedulerModifyTask
	SchedulerRunTask
)

// InputOp enumerates input device hook/block operations.
type InputOp uint8

const (
	InputBlockKeyboard InputOp = iota
	InputBlockMouse
	InputInstallHook
)

// ImageOp enumerates DLL/EXE image load/unload operations.
type ImageOp uint8

const (
	ImageLoad ImageOp = iota
	ImageUnload
)

// ThreadOp enumerates thread lifecycle operations.
type ThreadOp uint8

const (
	ThreadStart ThreadOp = iota
	ThreadEnd
	ThreadDCStart
	ThreadDCEnd
)

// MemoryOp enumerates virtual memory operations.
type MemoryOp uint8

const (
	MemoryAlloc MemoryOp = iota
	MemoryFree
)

// ScriptOp enumerates PowerShell script logging operations.
type ScriptOp uint8

const (
	ScriptExecute ScriptOp = iota
	ScriptModule
)

// AmsiOp enumerates AMSI scan operations.
type AmsiOp uint8

const (
	AmsiScan AmsiOp = iota
	AmsiSession
)

// DnsOp enumerates DNS resolution operations.
type DnsOp uint8

const (
	DnsQuery DnsOp = iota
	DnsResponse
	DnsFailure
)

// SecurityOp enumerates security auditing operations (logon, privilege).
type SecurityOp uint8

const (
	SecurityLogon SecurityOp = iota
	SecurityLogonFailed
	SecurityPrivilegeAdjust
	SecurityProcessCreate
	SecurityProcessTerminate
)

// ServiceOp enumerates Windows service lifecycle operations.
type ServiceOp uint8

const (
	ServiceInstall ServiceOp = iota
	ServiceStart
	ServiceStop
	ServiceDelete
)

// WmiOp enumerates WMI activity operations.
type WmiOp uint8

const (
	WmiQuery WmiOp = iota
	WmiExecMethod
	WmiSubscribe
	WmiConnect
)

// ClrOp enumerates .NET CLR runtime operations.
type ClrOp uint8

const (
	ClrAssemblyLoad ClrOp = iota
	ClrAssemblyUnload
	ClrMethodJit
)
