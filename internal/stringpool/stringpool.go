// Package stringpool deduplicates byte strings into an arena and hands out
// stable handles. It is the only way to dereference a StringId: handles
// never carry raw pointers into the arena, only integers the pool knows how
// to resolve.
package stringpool

import (
	"encoding/binary"
	"sync"
	"unicode/utf16"
	"unsafe"

	"github.com/exeray/exeray/internal/eventmodel"
)

// lengthPrefixSize is the width of the length prefix written ahead of every
// interned string's bytes.
const lengthPrefixSize = 4

// Pool interns byte strings into an arena-backed store and returns stable
// 32-bit handles. Safe for concurrent use by many readers and, on the
// interning slow path, one writer at a time (brief exclusive section).
type Pool struct {
	mu    sync.RWMutex
	arena arenaAllocator
	index map[string]eventmodel.StringId
}

// arenaAllocator is the subset of *arena.Arena the pool needs; expressed as
// an interface so tests can substitute a tiny in-memory stand-in without
// pulling in the concrete arena package.
type arenaAllocator interface {
	Allocate(size int) []byte
	Base() []byte
}

// New creates a pool backed by the given arena.
func New(a arenaAllocator) *Pool {
	return &Pool{
		arena: a,
		index: make(map[string]eventmodel.StringId),
	}
}

// Intern stores bytes (if not already present) and returns a stable id.
// Returns eventmodel.InvalidString on arena exhaustion.
func (p *Pool) Intern(b []byte) eventmodel.StringId {
	p.mu.RLock()
	if id, ok := p.index[string(b)]; ok {
		p.mu.RUnlock()
		return id
	}
	p.mu.RUnlock()

	p.mu.Lock()
	defer p.mu.Unlock()

	// Re-check: another writer may have inserted while we waited for the
	// exclusive lock.
	if id, ok := p.index[string(b)]; ok {
		return id
	}

	region := p.arena.Allocate(lengthPrefixSize + len(b))
	if region == nil {
		return eventmodel.InvalidString
	}
	binary.LittleEndian.PutUint32(region[0:lengthPrefixSize], uint32(len(b)))
	copy(region[lengthPrefixSize:], b)

	offset := p.offsetOf(region)
	id := eventmodel.StringId(offset + 1)
	// Key the index by a view into the arena's own backing bytes so the
	// map owns no separate copy of the string contents.
	key := unsafe.String(unsafe.SliceData(region[lengthPrefixSize:]), len(b))
	p.index[key] = id
	return id
}

// offsetOf computes the byte offset of region within the arena's backing
// storage, used to derive the StringId. region is always a sub-slice of
// Base() handed back by the arena's own allocator.
func (p *Pool) offsetOf(region []byte) int {
	base := p.arena.Base()
	baseAddr := uintptr(unsafe.Pointer(unsafe.SliceData(base)))
	regionAddr := uintptr(unsafe.Pointer(unsafe.SliceData(region)))
	return int(regionAddr - baseAddr)
}

// InternWide transcodes a UTF-16 code unit sequence to UTF-8 (explicit
// surrogate-pair handling; an unpaired surrogate becomes U+FFFD) and interns
// the result.
func (p *Pool) InternWide(units []uint16) eventmodel.StringId {
	return p.Intern([]byte(string(utf16.Decode(units))))
}

// Get resolves a StringId back to its bytes. id == 0 returns an empty slice.
func (p *Pool) Get(id eventmodel.StringId) []byte {
	if id == eventmodel.InvalidString {
		return nil
	}
	offset := uint32(id) - 1

	p.mu.RLock()
	defer p.mu.RUnlock()

	base := p.arena.Base()
	if uint64(offset)+lengthPrefixSize > uint64(len(base)) {
		return nil
	}
	length := binary.LittleEndian.Uint32(base[offset : offset+lengthPrefixSize])
	start := uint64(offset) + lengthPrefixSize
	end := start + uint64(length)
	if end > uint64(len(base)) {
		return nil
	}
	return base[start:end]
}

// GetString is a convenience wrapper returning the string form.
func (p *Pool) GetString(id eventmodel.StringId) string {
	return string(p.Get(id))
}

// Count returns the number of distinct strings interned so far.
func (p *Pool) Count() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.index)
}
