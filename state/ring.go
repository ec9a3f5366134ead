package state

// ring is a fixed-capacity buffer: Append evicts the oldest entry once full.
type ring[T any] struct {
	buf   []T
	head  int // index of the oldest entry
	count int
}

func newRing[T any](capacity int) *ring[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &ring[T]{buf: make([]T, capacity)}
}

func (r *ring[T]) Append(v T) {
	if r.count < len(r.buf) {
		r.buf[(r.head+r.count)%len(r.buf)] = v
		r.count++
		return
	}
	r.buf[r.head] = v
	r.head = (r.head + 1) % len(r.buf)
}

func (r *ring[T]) Len() int { return r.count }

// Items returns a copy, oldest first.
func (r *ring[T]) Items() []T {
	out := make([]T, r.count)
	for i := 0; i < r.count; i++ {
		out[i] = r.buf[(r.head+i)%len(r.buf)]
	}
	return out
}

// Tail returns a copy of the newest k entries, oldest first.
func (r *ring[T]) Tail(k int) []T {
	if k > r.count {
		k = r.count
	}
	out := make([]T, k)
	start := r.count - k
	for i := 0; i < k; i++ {
		out[i] = r.buf[(r.head+start+i)%len(r.buf)]
	}
	return out
}
