package dispatcher

import (
	"encoding/binary"

	"github.com/exeray/exeray/internal/source"
)

// guid packs a GUID's four fields into the standard little-endian wire
// layout (Data1, Data2, Data3 little-endian; Data4 taken as-is), matching
// how the host OS's event-trace provider identifiers are defined.
func guid(data1 uint32, data2, data3 uint16, data4 [8]byte) source.ProviderId {
	var id source.ProviderId
	binary.LittleEndian.PutUint32(id[0:4], data1)
	binary.LittleEndian.PutUint16(id[4:6], data2)
	binary.LittleEndian.PutUint16(id[6:8], data3)
	copy(id[8:16], data4[:])
	return id
}

// Well-known provider identifiers. Names and GUID values are the stable,
// externally-defined constants spec.md requires parsers to treat as opaque.
var (
	ProviderKernelProcess = guid(0x22FB2CD6, 0x0E7B, 0x422B, [8]byte{0xA0, 0xC7, 0x2F, 0xAD, 0x1F, 0xD0, 0xE7, 0x16})
	ProviderKernelFile    = guid(0xEDD08927, 0x9CC4, 0x4E65, [8]byte{0xB9, 0x70, 0xC2, 0x56, 0x0F, 0xB5, 0xC2, 0x89})
	ProviderKernelRegistry = guid(0x70EB4F03, 0xC1DE, 0x4F73, [8]byte{0xA0, 0x51, 0x33, 0xD1, 0x3D, 0x54, 0x13, 0xBD})
	ProviderKernelNetwork = guid(0x7DD42A49, 0x5329, 0x4832, [8]byte{0x8D, 0xFD, 0x43, 0xD9, 0x79, 0x15, 0x3A, 0x88})
	ProviderImageLoad     = guid(0x2CB15D1D, 0x5FC1, 0x11D2, [8]byte{0xAB, 0xE1, 0x00, 0xA0, 0xC9, 0x11, 0xF5, 0x18})
	ProviderThread        = guid(0x3D6FA8D1, 0xFE05, 0x11D0, [8]byte{0x9D, 0xDA, 0x00, 0xC0, 0x4F, 0xD7, 0xBA, 0x7C})
	ProviderMemory        = guid(0x3D6FA8D3, 0xFE05, 0x11D0, [8]byte{0x9D, 0xDA, 0x00, 0xC0, 0x4F, 0xD7, 0xBA, 0x7C})
	ProviderPowerShell    = guid(0xA0C1853B, 0x5C40, 0x4B15, [8]byte{0x87, 0x66, 0x3C, 0xF1, 0xC5, 0x8F, 0x98, 0x5A})
	ProviderAmsi          = guid(0x2A576B87, 0x09A7, 0x520E, [8]byte{0xC2, 0x1A, 0x49, 0x42, 0xF0, 0x27, 0x1D, 0x67})
	ProviderDnsClient     = guid(0x1C95126E, 0x7EEA, 0x49A9, [8]byte{0xA3, 0xFE, 0xA3, 0x78, 0xB0, 0x3D, 0xDB, 0x4D})
	ProviderSecurityAuditing = guid(0x54849625, 0x5478, 0x4994, [8]byte{0xA5, 0xBA, 0x3E, 0x3B, 0x03, 0x28, 0xC3, 0x0D})
	ProviderWmiActivity   = guid(0x1418EF04, 0xB0B4, 0x4623, [8]byte{0xBF, 0x7E, 0xD7, 0x4A, 0xB4, 0x7B, 0xBD, 0xAA})
	ProviderClrRuntime    = guid(0xE13C0D23, 0xCCBC, 0x4E12, [8]byte{0x93, 0x1B, 0xD9, 0xCC, 0x2E, 0xEE, 0x27, 0xE4})
)

// NameToProviderConfig is the provider-name recognition table Engine's
// EnableProvider/DisableProvider/IsProviderEnabled validate names against.
// Unknown names are no-ops logged at WARN by the caller, per spec.md §6.
var NameToProviderConfig = map[string]source.ProviderId{
	"Process":    ProviderKernelProcess,
	"File":       ProviderKernelFile,
	"Registry":   ProviderKernelRegistry,
	"Network":    ProviderKernelNetwork,
	"Image":      ProviderImageLoad,
	"Thread":     ProviderThread,
	"Memory":     ProviderMemory,
	"PowerShell": ProviderPowerShell,
	"AMSI":       ProviderAmsi,
	"DNS":        ProviderDnsClient,
	"WMI":        ProviderWmiActivity,
	"CLR":        ProviderClrRuntime,
	"Security":   ProviderSecurityAuditing,
}
