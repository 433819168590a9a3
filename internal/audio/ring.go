package audio

import "sync/atomic"

// Ring is a single-producer single-consumer byte ring: the synthesis side
// writes, the playback side reads. Writable and Readable are exact on their
// own side and conservative on the other, so neither side needs a lock.
type Ring struct {
	buf  []uint8
	mask uint32
	w    atomic.Uint32
	r    atomic.Uint32
}

// NewRing returns a ring holding at least size bytes, rounded up to a power
// of two. One slot is reserved to tell full from empty.
func NewRing(size int) *Ring {
	n := uint32(2)
	for int(n) < size+1 {
		n <<= 1
	}
	return &Ring{buf: make([]uint8, n), mask: n - 1}
}

// Writable reports how many bytes fit without overrunning the reader.
func (rb *Ring) Writable() int {
	return len(rb.buf) - 1 - int(rb.w.Load()-rb.r.Load())
}

// Overwrite appends one byte. The writer must have checked Writable.
func (rb *Ring) Overwrite(s uint8) {
	w := rb.w.Load()
	rb.buf[w&rb.mask] = s
	rb.w.Store(w + 1)
}

// Readable reports how many bytes are buffered.
func (rb *Ring) Readable() int {
	return int(rb.w.Load() - rb.r.Load())
}

// Read pops the oldest byte; ok is false when the ring is empty.
func (rb *Ring) Read() (uint8, bool) {
	r := rb.r.Load()
	if rb.w.Load() == r {
		return 0, false
	}
	s := rb.buf[r&rb.mask]
	rb.r.Store(r + 1)
	return s, true
}
