package mqtt

// bufferedMsg stores a serialized MQTT message for replay after reconnection.
type bufferedMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// ring is a fixed-capacity FIFO that overwrites its oldest entry when full.
// Not safe for concurrent use; caller must synchronize.
type ring[T any] struct {
	items []T
	head  int // next write position
	count int
}

func newRing[T any](capacity int) *ring[T] {
	return &ring[T]{items: make([]T, capacity)}
}

// push appends v and reports whether the oldest entry was dropped to make room.
func (r *ring[T]) push(v T) bool {
	capacity := len(r.items)
	r.items[r.head] = v
	r.head = (r.head + 1) % capacity
	if r.count == capacity {
		return true
	}
	r.count++
	return false
}

// drain returns the entries oldest first and empties the ring.
func (r *ring[T]) drain() []T {
	if r.count == 0 {
		return nil
	}

	capacity := len(r.items)
	out := make([]T, r.count)
	start := (r.head - r.count + capacity) % capacity
	for i := range out {
		out[i] = r.items[(start+i)%capacity]
	}

	var zero T
	for i := range r.items {
		r.items[i] = zero
	}
	r.head = 0
	r.count = 0
	return out
}

func (r *ring[T]) len() int {
	return r.count
}
