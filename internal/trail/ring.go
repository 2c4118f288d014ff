// Package trail implements the bounded position history drawn behind each body.
package trail

// Ring is a fixed-capacity circular buffer. It is always full: construction
// fills every slot and Push overwrites the oldest entry, so Len == Cap for the
// lifetime of the ring.
type Ring[T any] struct {
	buf  []T
	head int // index of the oldest entry
}

// NewRing returns a ring of the given capacity with every slot set to fill.
// Capacities below one are raised to one.
func NewRing[T any](capacity int, fill T) *Ring[T] {
	if capacity < 1 {
		capacity = 1
	}
	buf := make([]T, capacity)
	for i := range buf {
		buf[i] = fill
	}
	return &Ring[T]{buf: buf}
}

// Push appends v as the newest entry and drops the oldest.
func (r *Ring[T]) Push(v T) {
	r.buf[r.head] = v
	r.head++
	if r.head == len(r.buf) {
		r.head = 0
	}
}

func (r *Ring[T]) Len() int { return len(r.buf) }
func (r *Ring[T]) Cap() int { return len(r.buf) }

// At returns the i-th entry counting from the oldest. It panics when i is
// out of range, like a slice index.
func (r *Ring[T]) At(i int) T {
	if i < 0 || i >= len(r.buf) {
		panic("trail: index out of range")
	}
	j := r.head + i
	if j >= len(r.buf) {
		j -= len(r.buf)
	}
	return r.buf[j]
}

// Last returns the newest entry.
func (r *Ring[T]) Last() T {
	return r.At(len(r.buf) - 1)
}

// Fill overwrites every slot with v.
func (r *Ring[T]) Fill(v T) {
	for i := range r.buf {
		r.buf[i] = v
	}
	r.head = 0
}

// AppendTo appends the entries oldest first to dst and returns it.
func (r *Ring[T]) AppendTo(dst []T) []T {
	dst = append(dst, r.buf[r.head:]...)
	return append(dst, r.buf[:r.head]...)
}

// Values returns a fresh slice of the entries, oldest first.
func (r *Ring[T]) Values() []T {
	return r.AppendTo(make([]T, 0, len(r.buf)))
}
