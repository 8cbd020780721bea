package pipeline

import "sync"

// Buffer is a thread-safe FIFO that doubles its capacity when it reaches
// 70% full. Senders never block.
type Buffer[T any] struct {
	mu       sync.Mutex
	cond     *sync.Cond
	buf      []T
	head     int
	tail     int
	count    int
	capacity int
	closed   bool

	sent    int64
	resizes int
}

// NewBuffer creates a Buffer with the given initial capacity.
func NewBuffer[T any](initialCapacity int) *Buffer[T] {
	if initialCapacity < 1 {
		initialCapacity = 1
	}
	b := &Buffer[T]{
		buf:      make([]T, initialCapacity),
		capacity: initialCapacity,
	}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Send appends item. It returns false if the buffer is closed.
func (b *Buffer[T]) Send(item T) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return false
	}

	threshold := (b.capacity * 70) / 100
	if threshold < 1 {
		threshold = 1
	}
	if b.count+1 >= threshold {
		b.grow()
	}

	b.buf[b.tail] = item
	b.tail = (b.tail + 1) % b.capacity
	b.count++
	b.sent++

	b.cond.Signal()
	return true
}

// ReceiveBatch blocks until at least one item is available or the buffer
// is closed, then removes up to max items (all of them if max <= 0) and
// appends them to dst. It returns false once the buffer is closed and
// drained.
func (b *Buffer[T]) ReceiveBatch(dst []T, max int) ([]T, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for b.count == 0 && !b.closed {
		b.cond.Wait()
	}
	if b.count == 0 {
		return dst, false
	}

	n := b.count
	if max > 0 && max < n {
		n = max
	}

	var zero T
	for i := 0; i < n; i++ {
		dst = append(dst, b.buf[b.head])
		b.buf[b.head] = zero
		b.head = (b.head + 1) % b.capacity
		b.count--
	}
	return dst, true
}

// Close stops further sends and wakes receivers. Items already buffered
// can still be received.
func (b *Buffer[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	b.cond.Broadcast()
}

// Len returns the number of buffered items.
func (b *Buffer[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

// Stats returns buffer statistics.
func (b *Buffer[T]) Stats() BufferStats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return BufferStats{
		Count:     b.count,
		Capacity:  b.capacity,
		TotalSent: b.sent,
		Resizes:   b.resizes,
	}
}

// BufferStats contains buffer statistics.
type BufferStats struct {
	Count     int
	Capacity  int
	TotalSent int64
	Resizes   int
}

// grow doubles the capacity. Must be called with the lock held.
func (b *Buffer[T]) grow() {
	newCapacity := b.capacity * 2
	newBuf := make([]T, newCapacity)

	if b.count > 0 {
		if b.head < b.tail {
			copy(newBuf, b.buf[b.head:b.tail])
		} else {
			n := copy(newBuf, b.buf[b.head:])
			copy(newBuf[n:], b.buf[:b.tail])
		}
	}

	b.buf = newBuf
	b.head = 0
	b.tail = b.count
	b.capacity = newCapacity
	b.resizes++
}
