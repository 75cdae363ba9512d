package serial

import "sync/atomic"

// DefaultRingSize is used when a PortConfig leaves a size at zero.
const DefaultRingSize = 256

// RingBuffer is a single-producer single-consumer byte ring. One side runs in
// interrupt context, the other in the foreground; head is only written by the
// producer and tail only by the consumer.
type RingBuffer struct {
	buf  []byte
	mask uint32
	head atomic.Uint32
	tail atomic.Uint32
}

// NewRingBuffer returns a ring holding size bytes. size is rounded up to a
// power of two.
func NewRingBuffer(size int) *RingBuffer {
	if size <= 0 {
		size = DefaultRingSize
	}
	n := 1
	for n < size {
		n <<= 1
	}
	return &RingBuffer{buf: make([]byte, n), mask: uint32(n - 1)}
}

// Size returns the total capacity of the buffer in bytes.
func (rb *RingBuffer) Size() int { return len(rb.buf) }

// Used returns how many bytes in buffer have been used.
func (rb *RingBuffer) Used() int { return int(rb.head.Load() - rb.tail.Load()) }

// Free returns the remaining space in bytes.
func (rb *RingBuffer) Free() int { return rb.Size() - rb.Used() }

// Put stores a byte in the buffer. If the buffer is already full, it returns false.
func (rb *RingBuffer) Put(val byte) bool {
	h := rb.head.Load()
	if int(h-rb.tail.Load()) == len(rb.buf) {
		return false
	}
	rb.buf[h&rb.mask] = val // write data, then publish
	rb.head.Store(h + 1)
	return true
}

// Get returns a byte from the buffer. If the buffer is empty, it returns (0, false).
func (rb *RingBuffer) Get() (byte, bool) {
	t := rb.tail.Load()
	if rb.head.Load() == t {
		return 0, false
	}
	v := rb.buf[t&rb.mask]
	rb.tail.Store(t + 1)
	return v, true
}

// Clear discards the contents. Only safe while the producer is quiet.
func (rb *RingBuffer) Clear() {
	rb.tail.Store(rb.head.Load())
}
