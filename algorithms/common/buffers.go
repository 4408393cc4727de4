package common

// CircularBuffer keeps the most recent samples of a stream. Writes past
// capacity overwrite the oldest data.
type CircularBuffer struct {
	buffer   []float64
	size     int
	writePos int
	count    int
}

// NewCircularBuffer creates an empty circular buffer
func NewCircularBuffer(size int) *CircularBuffer {
	size = max(size, 0)
	return &CircularBuffer{
		buffer: make([]float64, size),
		size:   size,
	}
}

// NewSilentBuffer creates a circular buffer that starts full of zeros, so
// its contents always span exactly size samples.
func NewSilentBuffer(size int) *CircularBuffer {
	cb := NewCircularBuffer(size)
	cb.count = cb.size
	return cb
}

// Write adds data to the buffer, dropping the oldest samples once full.
// Returns the number of samples retained from data.
func (cb *CircularBuffer) Write(data []float64) int {
	if cb.size == 0 {
		return 0
	}

	// Only the tail of an oversized write can survive
	if len(data) > cb.size {
		data = data[len(data)-cb.size:]
	}

	for _, sample := range data {
		cb.buffer[cb.writePos] = sample
		cb.writePos = (cb.writePos + 1) % cb.size
	}
	cb.count = min(cb.count+len(data), cb.size)

	return len(data)
}

// Snapshot copies the buffered samples, oldest first, into dst (grown as
// needed) and returns it.
func (cb *CircularBuffer) Snapshot(dst []float64) []float64 {
	dst = dst[:0]
	if cb.count == 0 {
		return dst
	}

	start := (cb.writePos - cb.count + cb.size) % cb.size
	for i := range cb.count {
		dst = append(dst, cb.buffer[(start+i)%cb.size])
	}
	return dst
}

// Available returns number of buffered samples
func (cb *CircularBuffer) Available() int {
	return cb.count
}

// Capacity returns the fixed buffer size
func (cb *CircularBuffer) Capacity() int {
	return cb.size
}

// Fill resets the buffer to size copies of value
func (cb *CircularBuffer) Fill(value float64) {
	for i := range cb.buffer {
		cb.buffer[i] = value
	}
	cb.writePos = 0
	cb.count = cb.size
}

// IsFull returns true if buffer is full
func (cb *CircularBuffer) IsFull() bool {
	return cb.count == cb.size
}
