// Package heuristics holds the pure predicates each parser calls to decide
// whether a decoded event is suspicious: pattern matching, Shannon entropy,
// and a brute-force sliding window. None of these touch the graph or the
// string pool -- they are pure functions over already-decoded fields so
// they can be tested in isolation.
package heuristics

import (
	"math"
	"strings"
	"sync"
	"time"
)

// SuspiciousProtections are the VirtualAlloc/VirtualProtect protection
// flags that indicate an RWX or execute-writecopy shellcode allocation.
var SuspiciousProtections = map[uint32]bool{
	0x40: true, // PAGE_EXECUTE_READWRITE
	0x80: true, // PAGE_EXECUTE_WRITECOPY
}

// IsSuspiciousMemoryProtection reports whether protection indicates a
// writable+executable allocation.
func IsSuspiciousMemoryProtection(protection uint32) bool {
	return SuspiciousProtections[protection]
}

// IsRemoteThreadCreation reports whether a thread was created by a
// different, real process than the one it runs in.
func IsRemoteThreadCreation(creatorPid, targetPid uint32) bool {
	if creatorPid == 0 || targetPid == 0 {
		return false
	}
	return creatorPid != targetPid
}

// suspiciousImagePathFragments are case-insensitive path fragments that
// flag an image load as coming from an unusual, frequently-abused location.
var suspiciousImagePathFragments = []string{
	`\temp\`,
	`\tmp\`,
	`\appdata\local\temp\`,
	`\appdata\roaming\`,
	`\users\public\`,
	`\programdata\`,
}

// IsSuspiciousImagePath reports whether path looks like it was loaded from
// a commonly-abused staging directory.
func IsSuspiciousImagePath(path string) bool {
	lower := strings.ToLower(path)
	for _, frag := range suspiciousImagePathFragments {
		if strings.Contains(lower, frag) {
			return true
		}
	}
	return false
}

// SuspiciousScriptPatterns are the lowercased substrings that flag a
// PowerShell script block as likely malicious.
var SuspiciousScriptPatterns = []string{
	"iex",
	"invoke-expression",
	"-encodedcommand",
	"downloadstring",
	"net.webclient",
	"bypass",
	"-windowstyle hidden",
	"frombase64string",
	"amsiutils",
	"invoke-mimikatz",
	"invoke-reflectivepeinjection",
	"new-object net.sockets.tcpclient",
	"downloadfile",
	"iwr ",
	"invoke-webrequest",
	"-nop ",
	"-noprofile",
	"start-bitstransfer",
}

// MatchScriptPattern returns the first suspicious pattern found in script
// (case-insensitive), or "" if none match.
func MatchScriptPattern(script string) string {
	lower := strings.ToLower(script)
	for _, pattern := range SuspiciousScriptPatterns {
		if strings.Contains(lower, pattern) {
			return pattern
		}
	}
	return ""
}

// IsSuspiciousScript reports whether script matches any suspicious pattern.
func IsSuspiciousScript(script string) bool {
	return MatchScriptPattern(script) != ""
}

// AMSI scan-result ranges, per Windows AMSI_RESULT_* semantics.
const (
	AmsiResultDetectedMalwareThreshold = 32768
	AmsiResultAdminBlockLow            = 0x4000
	AmsiResultAdminBlockHigh           = 0x4FFF
)

// AmsiVerdict classifies an AMSI scan result.
type AmsiVerdict int

const (
	AmsiVerdictClean AmsiVerdict = iota
	AmsiVerdictBypass
	AmsiVerdictMalwareDenied
	AmsiVerdictAdminBlocked
)

// ClassifyAmsiScan mirrors the AMSI.ScanBuffer heuristic: an empty buffer
// from a PowerShell host looks like a bypass attempt; otherwise the scan
// result itself may indicate malware or an administrative block.
func ClassifyAmsiScan(contentSize uint32, appName string, scanResult uint32) AmsiVerdict {
	if contentSize == 0 && strings.Contains(strings.ToLower(appName), "powershell") {
		return AmsiVerdictBypass
	}
	if scanResult >= AmsiResultDetectedMalwareThreshold {
		return AmsiVerdictMalwareDenied
	}
	if scanResult >= AmsiResultAdminBlockLow && scanResult <= AmsiResultAdminBlockHigh {
		return AmsiVerdictAdminBlocked
	}
	return AmsiVerdictClean
}

// ShannonEntropy returns the base-2 Shannon entropy of s, in bits per
// character.
func ShannonEntropy(s string) float64 {
	if len(s) == 0 {
		return 0
	}
	counts := make(map[rune]int)
	total := 0
	for _, r := range s {
		counts[r]++
		total++
	}
	var entropy float64
	for _, c := range counts {
		p := float64(c) / float64(total)
		entropy -= p * math.Log2(p)
	}
	return entropy
}

// subdomain returns the portion of domain before the first dot, lowercased.
func subdomain(domain string) string {
	lower := strings.ToLower(domain)
	if idx := strings.IndexByte(lower, '.'); idx >= 0 {
		return lower[:idx]
	}
	return lower
}

func digitFraction(s string) float64 {
	if len(s) == 0 {
		return 0
	}
	digits := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return float64(digits) / float64(len(s))
}

func hasVowel(s string) bool {
	for _, r := range s {
		switch r {
		case 'a', 'e', 'i', 'o', 'u':
			return true
		}
	}
	return false
}

// IsDgaSuspiciousDomain applies the DNS-parser heuristic to a full domain
// name: checks length, entropy, digit density and vowel absence of the
// leading subdomain label.
func IsDgaSuspiciousDomain(domain string) bool {
	sub := subdomain(domain)
	alnum := alphanumericOnly(sub)

	if len(sub) > 20 {
		return true
	}
	if ShannonEntropy(alnum) > 3.8 {
		return true
	}
	if digitFraction(alnum) > 0.3 && len(sub) > 5 {
		return true
	}
	if len(sub) > 8 && !hasVowel(alnum) {
		return true
	}
	return false
}

func alphanumericOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// WMI activity patterns that indicate lateral movement, persistence, or
// fileless execution.
var wmiExecutionPatterns = []string{
	"win32_process.create",
}

var wmiPersistencePatterns = []string{
	"__eventconsumer",
	"__eventfilter",
	"__filtertoconsumerbinding",
	"commandlineeventconsumer",
	"activescripteventconsumer",
}

// IsSuspiciousWmiActivity mirrors the WMI heuristic: execution/persistence
// keywords, a PowerShell reference, a subscription namespace, or a remote
// target host all mark the activity suspicious.
func IsSuspiciousWmiActivity(namespace, queryOrMethod, targetHost string) bool {
	lowerQuery := strings.ToLower(queryOrMethod)
	for _, pattern := range wmiExecutionPatterns {
		if strings.Contains(lowerQuery, pattern) {
			return true
		}
	}
	for _, pattern := range wmiPersistencePatterns {
		if strings.Contains(lowerQuery, pattern) {
			return true
		}
	}
	if strings.Contains(lowerQuery, "powershell") || strings.Contains(lowerQuery, "pwsh") {
		return true
	}
	if strings.Contains(strings.ToLower(namespace), "subscription") {
		return true
	}
	if IsRemoteWmiTarget(targetHost) {
		return true
	}
	return false
}

var localWmiTargets = map[string]bool{
	"":          true,
	".":         true,
	"localhost": true,
	"127.0.0.1": true,
	"::1":       true,
}

// IsRemoteWmiTarget reports whether targetHost names a non-local machine.
func IsRemoteWmiTarget(targetHost string) bool {
	return !localWmiTargets[strings.ToLower(targetHost)]
}

// AssemblyFlagDynamic is the CLR assembly-flags bit indicating the
// assembly was loaded from memory rather than a file on disk.
const AssemblyFlagDynamic = 0x2

// IsSuspiciousClrAssembly mirrors the CLR.AssemblyLoad heuristic.
func IsSuspiciousClrAssembly(assemblyFlags uint32, assemblyName string) bool {
	if assemblyFlags&AssemblyFlagDynamic != 0 {
		return true
	}
	if assemblyName == "" {
		return true
	}
	return IsSuspiciousImagePath(assemblyName)
}

// IsObfuscatedClrMethod mirrors the CLR.MethodJit heuristic: a very short
// name or a name dominated by non-identifier characters looks obfuscated.
func IsObfuscatedClrMethod(name string) bool {
	if len(name) < 3 {
		return true
	}
	nonIdentifier := 0
	for _, r := range name {
		if !(r >= 'a' && r <= 'z') && !(r >= 'A' && r <= 'Z') && !(r >= '0' && r <= '9') && r != '.' && r != '_' {
			nonIdentifier++
		}
	}
	return float64(nonIdentifier)/float64(len(name)) > 0.5
}

// PrivilegedRights are token privileges whose presence on a logon/adjust
// event indicates privilege escalation.
var PrivilegedRights = map[string]bool{
	"SeDebugPrivilege":              true,
	"SeTcbPrivilege":                true,
	"SeImpersonatePrivilege":        true,
	"SeAssignPrimaryTokenPrivilege": true,
	"SeLoadDriverPrivilege":         true,
	"SeRestorePrivilege":            true,
	"SeBackupPrivilege":             true,
	"SeTakeOwnershipPrivilege":      true,
}

// HasPrivilegeEscalationRight reports whether any right in rights is a
// privileged one worth flagging.
func HasPrivilegeEscalationRight(rights []string) bool {
	for _, r := range rights {
		if PrivilegedRights[r] {
			return true
		}
	}
	return false
}

// ServiceAutoStart is the Windows service start-type value meaning the
// service starts automatically at boot -- the persistence mechanism the
// Security.ServiceInstall heuristic watches for.
const ServiceAutoStart = 0x2

// IsAutoStartService reports whether startType indicates persistence via
// automatic startup.
func IsAutoStartService(startType uint32) bool {
	return startType == ServiceAutoStart
}

// LogonTypeRemoteInteractive is the Windows logon-type value for an RDP
// session.
const LogonTypeRemoteInteractive = 10

// IsRemoteInteractiveLogon reports whether logonType is a remote desktop
// session.
func IsRemoteInteractiveLogon(logonType uint32) bool {
	return logonType == LogonTypeRemoteInteractive
}

// BruteForceTracker counts failed logon attempts per user within a sliding
// window, flagging the attempt that crosses the threshold. It owns its own
// lock rather than being a process-wide global, per the translation guide
// for the source's singleton trackers.
type BruteForceTracker struct {
	mu     sync.Mutex
	window time.Duration
	limit  int
	byUser map[string][]time.Time
	now    func() time.Time
}

// NewBruteForceTracker creates a tracker with the given sliding window and
// failure threshold (the Nth failure within the window is flagged).
func NewBruteForceTracker(window time.Duration, threshold int) *BruteForceTracker {
	return &BruteForceTracker{
		window: window,
		limit:  threshold,
		byUser: make(map[string][]time.Time),
		now:    time.Now,
	}
}

// RecordFailure records a failed logon for user at the current time and
// reports whether this failure pushes the user over the threshold within
// the tracker's window.
func (b *BruteForceTracker) RecordFailure(user string) bool {
	return b.recordFailureAt(user, b.now())
}

func (b *BruteForceTracker) recordFailureAt(user string, at time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	cutoff := at.Add(-b.window)
	attempts := b.byUser[user]
	kept := attempts[:0]
	for _, t := range attempts {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	kept = append(kept, at)
	b.byUser[user] = kept

	return len(kept) >= b.limit
}
