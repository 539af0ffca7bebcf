package simsource

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exeray/exeray/internal/source"
)

func TestEnableDisableProvider(t *testing.T) {
	s := New()
	require.NoError(t, s.EnableProvider(source.ProviderConfig{Name: "Process"}))
	assert.True(t, s.IsEnabled("Process"))

	require.NoError(t, s.DisableProvider("Process"))
	assert.False(t, s.IsEnabled("Process"))
}

func TestStartDeliversInjectedEvents(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan source.RawEvent, 1)
	go func() {
		_ = s.Start(ctx, func(raw source.RawEvent) { received <- raw })
	}()

	s.Inject(source.RawEvent{EventId: 42})

	select {
	case raw := <-received:
		assert.Equal(t, uint16(42), raw.EventId)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for injected event")
	}
}

func TestStopUnblocksStart(t *testing.T) {
	s := New()
	done := make(chan struct{})
	go func() {
		_ = s.Start(context.Background(), func(source.RawEvent) {})
		close(done)
	}()

	s.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Start did not return after Stop")
	}
}
