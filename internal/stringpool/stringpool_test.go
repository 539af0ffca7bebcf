package stringpool

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exeray/exeray/internal/arena"
	"github.com/exeray/exeray/internal/eventmodel"
)

func TestInternGetRoundTrip(t *testing.T) {
	pool := New(arena.New(4096))

	id := pool.Intern([]byte("C:\\Windows\\System32\\cmd.exe"))
	require.NotEqual(t, eventmodel.InvalidString, id)
	assert.Equal(t, "C:\\Windows\\System32\\cmd.exe", pool.GetString(id))
}

func TestInternDeduplicates(t *testing.T) {
	pool := New(arena.New(4096))

	a := pool.Intern([]byte("admin"))
	b := pool.Intern([]byte("admin"))
	c := pool.Intern([]byte("administrator"))

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Equal(t, 2, pool.Count())
}

func TestGetZeroIdIsEmpty(t *testing.T) {
	pool := New(arena.New(64))
	assert.Empty(t, pool.Get(eventmodel.InvalidString))
}

func TestInternWideSurrogatePair(t *testing.T) {
	pool := New(arena.New(4096))

	// U+1F600 GRINNING FACE encoded as a surrogate pair.
	units := []uint16{0xD83D, 0xDE00}
	id := pool.InternWide(units)
	require.NotEqual(t, eventmodel.InvalidString, id)
	assert.Equal(t, "\U0001F600", pool.GetString(id))
}

func TestInternWideUnpairedSurrogateBecomesReplacementChar(t *testing.T) {
	pool := New(arena.New(4096))

	units := []uint16{'a', 0xD800, 'b'} // lone high surrogate
	id := pool.InternWide(units)
	require.NotEqual(t, eventmodel.InvalidString, id)
	assert.Equal(t, "a\uFFFDb", pool.GetString(id))
}

func TestInternOnExhaustionReturnsInvalid(t *testing.T) {
	pool := New(arena.New(8)) // too small for this string's length prefix + bytes
	id := pool.Intern([]byte("this string does not fit"))
	assert.Equal(t, eventmodel.InvalidString, id)
}

func TestInternConcurrentSameStringYieldsOneId(t *testing.T) {
	pool := New(arena.New(1 << 16))

	const workers = 32
	ids := make([]eventmodel.StringId, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			ids[idx] = pool.Intern([]byte("shared-value"))
		}(i)
	}
	wg.Wait()

	for i := 1; i < workers; i++ {
		assert.Equal(t, ids[0], ids[i])
	}
	assert.Equal(t, 1, pool.Count())
}
