package target

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLaunchAndTerminate(t *testing.T) {
	c := NewProcessController()
	require.NoError(t, c.Launch("/bin/sleep", []string{"5"}, "/tmp"))
	assert.True(t, c.IsRunning())
	assert.NotZero(t, c.Pid())

	require.NoError(t, c.Terminate(0))
	require.Eventually(t, func() bool { return !c.IsRunning() }, 2*time.Second, 10*time.Millisecond)
}

func TestSuspendResumeRoundTrip(t *testing.T) {
	c := NewProcessController()
	require.NoError(t, c.Launch("/bin/sleep", []string{"5"}, "/tmp"))
	defer c.Terminate(0)

	require.NoError(t, c.Suspend())
	require.NoError(t, c.Resume())
	assert.True(t, c.IsRunning())
}

func TestExitCodeReportedAfterNaturalExit(t *testing.T) {
	c := NewProcessController()
	require.NoError(t, c.Launch("/bin/true", nil, "/tmp"))

	require.Eventually(t, func() bool {
		_, exited := c.ExitCode()
		return exited
	}, 2*time.Second, 10*time.Millisecond)

	code, exited := c.ExitCode()
	assert.True(t, exited)
	assert.Equal(t, uint32(0), code)
}
