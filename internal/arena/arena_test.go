package arena

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocateAlignment(t *testing.T) {
	a := New(1 << 20)
	for i := 0; i < 20; i++ {
		buf := a.Allocate(i + 1)
		require.NotNil(t, buf)
		used := a.Used()
		assert.Equal(t, uint64(0), (used-uint64(len(buf)))%AlignFloor)
	}
}

func TestAllocateZeroSized(t *testing.T) {
	a := New(128)
	buf := a.Allocate(0)
	require.NotNil(t, buf)
	assert.Len(t, buf, 0)
}

func TestAllocateExhaustion(t *testing.T) {
	a := New(128)
	buf := a.Allocate(128)
	require.NotNil(t, buf)

	assert.Nil(t, a.Allocate(1))
}

func TestAllocateBoundary(t *testing.T) {
	a := New(64)
	buf := a.Allocate(64)
	require.NotNil(t, buf)
	assert.Equal(t, uint64(64), a.Used())
	assert.Nil(t, a.Allocate(1))
}

func TestResetReclaimsCapacity(t *testing.T) {
	a := New(64)
	require.NotNil(t, a.Allocate(64))
	assert.Nil(t, a.Allocate(1))

	a.Reset()
	assert.Equal(t, uint64(0), a.Used())
	require.NotNil(t, a.Allocate(64))
}

func TestAllocateWritesDoNotOverlap(t *testing.T) {
	a := New(1 << 16)
	const n = 50
	bufs := make([][]byte, n)
	for i := 0; i < n; i++ {
		bufs[i] = a.Allocate(17)
		require.NotNil(t, bufs[i])
		for j := range bufs[i] {
			bufs[i][j] = byte(i)
		}
	}
	for i := 0; i < n; i++ {
		for _, b := range bufs[i] {
			require.Equal(t, byte(i), b)
		}
	}
}

func TestAllocateConcurrentCallersStaySafe(t *testing.T) {
	a := New(1 << 20)
	var wg sync.WaitGroup
	const workers = 8
	const perWorker = 200

	results := make(chan []byte, workers*perWorker)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(tag byte) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				buf := a.Allocate(64)
				if buf == nil {
					continue
				}
				for j := range buf {
					buf[j] = tag
				}
				results <- buf
			}
		}(byte(w))
	}
	wg.Wait()
	close(results)

	count := 0
	for buf := range results {
		require.Len(t, buf, 64)
		tag := buf[0]
		for _, b := range buf {
			require.Equal(t, tag, b, "allocation corrupted by a concurrent writer")
		}
		count++
	}
	assert.Equal(t, workers*perWorker, count)
}
