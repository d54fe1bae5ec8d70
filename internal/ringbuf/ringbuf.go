// Package ringbuf provides a fixed-capacity ring of scan summaries.
// Once full, new entries overwrite the oldest, so the buffer always
// holds the most recent scans without unbounded growth. It backs the
// in-memory "recent scans" view so serving it never touches disk.
package ringbuf

import (
	"sync"

	"marketscan/internal/model"
)

// Ring is a concurrency-safe overwrite-oldest ring of scan summaries.
// Size is rounded up to a power of two for bitwise modulo.
type Ring struct {
	mu    sync.RWMutex
	buf   []model.Summary
	mask  uint64
	head  uint64 // next write position, monotonically increasing
	total uint64 // lifetime pushes, for overwrite accounting
}

// New creates a ring. capacity is rounded up to the next power of two,
// minimum 2.
func New(capacity int) *Ring {
	n := nextPow2(capacity)
	if n < 2 {
		n = 2
	}
	return &Ring{
		buf:  make([]model.Summary, n),
		mask: uint64(n - 1),
	}
}

// Push appends a summary, overwriting the oldest entry when full.
func (r *Ring) Push(s model.Summary) {
	r.mu.Lock()
	r.buf[r.head&r.mask] = s
	r.head++
	r.total++
	r.mu.Unlock()
}

// Recent returns up to n summaries, newest first. n <= 0 returns all
// buffered entries.
func (r *Ring) Recent(n int) []model.Summary {
	r.mu.RLock()
	defer r.mu.RUnlock()

	have := int(r.head)
	if have > len(r.buf) {
		have = len(r.buf)
	}
	if n <= 0 || n > have {
		n = have
	}

	out := make([]model.Summary, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, r.buf[(r.head-uint64(i))&r.mask])
	}
	return out
}

// Len returns the number of buffered summaries.
func (r *Ring) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if int(r.head) > len(r.buf) {
		return len(r.buf)
	}
	return int(r.head)
}

// Cap returns the ring capacity.
func (r *Ring) Cap() int {
	return len(r.buf)
}

// Overwritten reports how many entries have been displaced so far.
func (r *Ring) Overwritten() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.total <= uint64(len(r.buf)) {
		return 0
	}
	return r.total - uint64(len(r.buf))
}

// nextPow2 returns the smallest power of 2 >= n.
func nextPow2(n int) int {
	if n <= 0 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}
